package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// MaxBodySize limits the size of request bodies.
// If no size is provided, DefaultMaxBodySize is used.
// If the request body exceeds maxBytes, it returns 413 Request Entity Too Large.
func MaxBodySize(maxBytes ...int64) func(http.Handler) http.Handler {
	limit := int64(DefaultMaxBodySize)
	if len(maxBytes) > 0 {
		limit = maxBytes[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength > limit {
				respondTooLarge(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// Common size limits
const (
	KB = 1024
	MB = 1024 * KB

	// DefaultMaxBodySize covers the registration form and its CSRF token (64KB)
	DefaultMaxBodySize = 64 * KB
)

// Timeout adds a timeout to request processing.
// If no duration is provided, DefaultTimeout is used.
// If the handler doesn't complete within the timeout, it returns 503 Service Unavailable.
func Timeout(timeout ...time.Duration) func(http.Handler) http.Handler {
	duration := DefaultTimeout
	if len(timeout) > 0 {
		duration = timeout[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()

			done := make(chan struct{})
			tw := &timeoutWriter{w: w, h: make(http.Header)}

			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()

				tw.timedOut = true
				if !tw.wroteHeader {
					w.WriteHeader(http.StatusServiceUnavailable)
					_, _ = w.Write([]byte("Request timeout"))
				}
			}
		})
	}
}

// DefaultTimeout bounds a request, including the CEP lookup retries.
const DefaultTimeout = 15 * time.Second

// timeoutWriter buffers headers in its own map so the handler never touches
// the real header map the timeout branch writes. After a timeout every write
// is dropped.
type timeoutWriter struct {
	w           http.ResponseWriter
	h           http.Header
	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.h
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.wroteHeader || tw.timedOut {
		return
	}
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, context.DeadlineExceeded
	}
	if !tw.wroteHeader {
		tw.writeHeaderLocked(http.StatusOK)
	}
	return tw.w.Write(b)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	tw.wroteHeader = true
	dst := tw.w.Header()
	for k, v := range tw.h {
		dst[k] = append([]string(nil), v...)
	}
	tw.w.WriteHeader(code)
}
