// Package middleware holds the HTTP middleware chain: request ids, request
// logging, metrics, security headers, body and time limits, rate limiting,
// anonymous sessions and CSRF protection.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/cadastro/internal/domain"
)

type contextKey string

// ============================================================================
// MIDDLEWARE ERROR RESPONSE HELPERS
// ============================================================================
//
// These helpers mirror handler.ErrorResponse but are self-contained
// to avoid circular imports (handler imports middleware for GetLogger, etc.)

// respondWithError writes an error response to the client.
// For JSON requests, returns structured JSON error.
// For other requests, returns plain text error.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	status := errorCodeToHTTPStatus(code)

	logger := GetLogger(r.Context())

	attrs := []any{
		"error", err.Error(),
		"code", code,
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
	}

	if reqID := GetRequestID(r.Context()); reqID != "" {
		attrs = append(attrs, "request_id", reqID)
	}

	if status >= 500 {
		logger.Error("middleware error", attrs...)
	} else {
		logger.Info("middleware error", attrs...)
	}

	if acceptsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"code":    code,
				"message": message,
			},
		})
		return
	}

	http.Error(w, message, status)
}

// respondForbidden is a convenience wrapper for 403 errors.
func respondForbidden(w http.ResponseWriter, r *http.Request) {
	err := domain.Errorf(domain.EFORBIDDEN, "", "Sessão expirada. Recarregue a página.")
	respondWithError(w, r, err)
}

// respondInternalError logs the error and returns a generic 500 response.
func respondInternalError(w http.ResponseWriter, r *http.Request, err error) {
	respondWithError(w, r, domain.Internal(err, "", "An unexpected error occurred"))
}

// respondTooManyRequests is a convenience wrapper for 429 errors.
func respondTooManyRequests(w http.ResponseWriter, r *http.Request) {
	err := domain.Errorf(domain.ERATELIMIT, "", "Muitas requisições. Aguarde um instante.")
	respondWithError(w, r, err)
}

// respondTooLarge is a convenience wrapper for 413 errors.
func respondTooLarge(w http.ResponseWriter, r *http.Request) {
	err := domain.Errorf(domain.ETOOLARGE, "", "Request body too large")
	respondWithError(w, r, err)
}

// errorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest // 400
	case domain.EFORBIDDEN:
		return http.StatusForbidden // 403
	case domain.ENOTFOUND:
		return http.StatusNotFound // 404
	case domain.ECONFLICT:
		return http.StatusConflict // 409
	case domain.ETOOLARGE:
		return http.StatusRequestEntityTooLarge // 413
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests // 429
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}

// acceptsJSON checks if the client prefers JSON responses.
func acceptsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// matchesPathPrefix checks if requestPath matches prefix on a path boundary,
// so /api/ does not match /api-evil/.
func matchesPathPrefix(requestPath, prefix string) bool {
	if !strings.HasPrefix(requestPath, prefix) {
		return false
	}
	if strings.HasSuffix(prefix, "/") || len(requestPath) == len(prefix) {
		return true
	}
	return requestPath[len(prefix)] == '/'
}

func matchesAnyPrefix(requestPath string, prefixes []string) bool {
	for _, p := range prefixes {
		if matchesPathPrefix(requestPath, p) {
			return true
		}
	}
	return false
}
