package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dukerupert/cadastro/internal/domain"
)

// RequestIDHeader is the header name for request ID
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds ids accepted from upstream proxies.
const maxRequestIDLength = 128

// RequestID generates a unique request ID for each request.
// If the request already has an X-Request-ID header, it uses that value.
// The request ID is added to the response headers and request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := domain.NewContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	return domain.RequestIDFromContext(ctx)
}
