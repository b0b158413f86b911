// Package handler holds the HTTP plumbing shared by the page and API
// handlers: template rendering and error responses.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/cadastro/internal/domain"
)

const internalErrorMessage = "An internal error occurred. Please try again later."

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ETOOLARGE:
		return http.StatusRequestEntityTooLarge
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse writes err as JSON or plain text depending on the client.
// Internal errors are logged and replaced with a generic message.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	message := domain.ErrorMessage(err)
	if status >= http.StatusInternalServerError && code != domain.EUNAVAILABLE {
		slog.ErrorContext(r.Context(), "internal error",
			"error", err,
			"op", domain.ErrorOp(err),
			"path", r.URL.Path,
		)
		message = internalErrorMessage
	}

	writeError(w, r, status, errorBody{Code: code, Message: message})
}

// ValidationErrorResponse writes a 400 with per-field messages.
// Errors that are not validation errors fall back to ErrorResponse.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	fields := domain.GetValidationFields(err)
	if fields == nil {
		ErrorResponse(w, r, err)
		return
	}

	writeError(w, r, http.StatusBadRequest, errorBody{
		Code:    domain.EINVALID,
		Message: "Dados inválidos",
		Fields:  fields,
	})
}

// NotFoundResponse writes a 404.
func NotFoundResponse(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, errorBody{Code: domain.ENOTFOUND, Message: "Página não encontrada"})
}

// ForbiddenResponse writes a 403.
func ForbiddenResponse(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusForbidden, errorBody{Code: domain.EFORBIDDEN, Message: "Acesso negado"})
}

// InternalErrorResponse logs err and writes a generic 500.
func InternalErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	ErrorResponse(w, r, domain.Internal(err, "", internalErrorMessage))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body errorBody) {
	if acceptsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]errorBody{"error": body})
		return
	}
	http.Error(w, body.Message, status)
}

// acceptsJSON checks if the client prefers JSON responses.
func acceptsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasSuffix(r.URL.Path, ".json") || strings.HasPrefix(r.URL.Path, "/api/")
}
