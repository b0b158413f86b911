package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/cadastro/internal/domain"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ETOOLARGE, http.StatusRequestEntityTooLarge},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EUNAVAILABLE, http.StatusServiceUnavailable},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"unknown_code", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ErrorCodeToHTTPStatus(tt.code); got != tt.expected {
				t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.expected)
			}
		})
	}
}

func TestErrorResponse_JSON(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "not found error",
			err:            domain.NotFound("address.search", "CEP", "01310100"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   domain.ENOTFOUND,
		},
		{
			name:           "validation error",
			err:            domain.Invalid("registration.update_field", "field is not editable"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.EINVALID,
		},
		{
			name:           "forbidden error",
			err:            domain.Forbidden(nil, "users.create", "permission denied"),
			expectedStatus: http.StatusForbidden,
			expectedCode:   domain.EFORBIDDEN,
		},
		{
			name:           "unavailable error keeps its message",
			err:            domain.Unavailable(nil, "address.search", "CEP service unavailable"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   domain.EUNAVAILABLE,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Accept", "application/json")
			rec := httptest.NewRecorder()

			ErrorResponse(rec, req, tt.err)

			if rec.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedStatus)
			}

			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want %q", ct, "application/json")
			}

			var response struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}

			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if response.Error.Code != tt.expectedCode {
				t.Errorf("error.code = %q, want %q", response.Error.Code, tt.expectedCode)
			}
		})
	}
}

func TestErrorResponse_HTML(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	err := domain.NotFound("address.search", "CEP", "01310100")
	ErrorResponse(rec, req, err)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	// Should be plain text, not JSON
	body := rec.Body.String()
	if body == "" {
		t.Error("response body should not be empty")
	}
}

func TestErrorResponse_InternalHidesDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	// Internal error with sensitive details
	err := domain.Internal(nil, "db.query", "failed to connect to database at 192.168.1.100:5432")
	ErrorResponse(rec, req, err)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var response struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// Should show generic message, not internal details
	expected := "An internal error occurred. Please try again later."
	if response.Error.Message != expected {
		t.Errorf("message = %q, want %q", response.Error.Message, expected)
	}
}

func TestValidationErrorResponse_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	err := domain.NewValidationError("users.create", map[string]string{
		"nome":  "Nome é obrigatório",
		"idade": "Idade mínima é 18 anos",
	})

	ValidationErrorResponse(rec, req, err)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var response struct {
		Error struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		} `json:"error"`
	}

	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Error.Code != domain.EINVALID {
		t.Errorf("error.code = %q, want %q", response.Error.Code, domain.EINVALID)
	}

	if len(response.Error.Fields) != 2 {
		t.Errorf("fields count = %d, want 2", len(response.Error.Fields))
	}

	if response.Error.Fields["nome"] != "Nome é obrigatório" {
		t.Errorf("fields[nome] = %q, want %q", response.Error.Fields["nome"], "Nome é obrigatório")
	}
}

func TestValidationErrorResponse_NonValidationError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	// Pass a non-validation error
	err := domain.NotFound("address.search", "CEP", "01310100")
	ValidationErrorResponse(rec, req, err)

	// Should fall back to regular error response
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestConvenienceResponses(t *testing.T) {
	t.Run("NotFoundResponse", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		NotFoundResponse(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("ForbiddenResponse", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		ForbiddenResponse(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("InternalErrorResponse", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()

		InternalErrorResponse(rec, req, nil)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
		}
	})
}

func TestAcceptsJSON(t *testing.T) {
	tests := []struct {
		name        string
		accept      string
		contentType string
		path        string
		expected    bool
	}{
		{
			name:     "application/json in Accept",
			accept:   "application/json",
			expected: true,
		},
		{
			name:     "application/json with charset in Accept",
			accept:   "application/json; charset=utf-8",
			expected: true,
		},
		{
			name:        "application/json in Content-Type",
			contentType: "application/json",
			expected:    true,
		},
		{
			name:     ".json extension in path",
			path:     "/usuarios.json",
			expected: true,
		},
		{
			name:     "api path",
			path:     "/api/cep/01310100",
			expected: true,
		},
		{
			name:   "text/html Accept",
			accept: "text/html",
			path:   "/cadastro",
		},
		{
			name: "no headers",
			path: "/cadastro",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if path == "" {
				path = "/test"
			}

			req := httptest.NewRequest(http.MethodGet, path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			if got := acceptsJSON(req); got != tt.expected {
				t.Errorf("acceptsJSON() = %v, want %v", got, tt.expected)
			}
		})
	}
}
