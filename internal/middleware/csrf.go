package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/cadastro/internal/cookie"
)

const (
	// CSRFTokenLength is the length of the CSRF token in bytes
	CSRFTokenLength = 32

	// CSRFHeaderName is the header name for CSRF token
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormFieldName is the form field name for CSRF token
	CSRFFormFieldName = "csrf_token"

	// CSRFContextKey is the context key for the CSRF token
	CSRFContextKey contextKey = "csrf_token"
)

// CSRFConfig configures CSRF protection
type CSRFConfig struct {
	// CookieConfig carries the shared cookie attributes
	CookieConfig *cookie.Config

	// CookieName is the name of the CSRF cookie
	CookieName string

	// CookieMaxAge is the lifetime of the CSRF cookie
	CookieMaxAge time.Duration

	// SkipPaths are path prefixes that skip CSRF validation
	SkipPaths []string

	// ErrorHandler is called when CSRF validation fails
	// Default: returns 403 Forbidden
	ErrorHandler func(w http.ResponseWriter, r *http.Request)
}

// DefaultCSRFConfig returns sensible defaults.
func DefaultCSRFConfig(cookieConfig *cookie.Config) CSRFConfig {
	return CSRFConfig{
		CookieConfig: cookieConfig,
		CookieName:   cookie.CSRFCookieName,
		CookieMaxAge: 24 * time.Hour,
		SkipPaths:    []string{"/api/", "/health", "/metrics"},
	}
}

// CSRF provides double-submit cookie CSRF protection.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	if cfg.CookieConfig == nil {
		panic("csrf: CookieConfig is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = cookie.CSRFCookieName
	}
	if cfg.CookieMaxAge == 0 {
		cfg.CookieMaxAge = 24 * time.Hour
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if matchesAnyPrefix(r.URL.Path, cfg.SkipPaths) {
				next.ServeHTTP(w, r)
				return
			}

			token := cookie.Get(r, cfg.CookieName)
			if token == "" {
				var err error
				token, err = generateCSRFToken()
				if err != nil {
					// Fail closed.
					respondInternalError(w, r, err)
					return
				}
				cfg.CookieConfig.SetReadable(w, cfg.CookieName, token, cfg.CookieMaxAge)
			}

			r = r.WithContext(context.WithValue(r.Context(), CSRFContextKey, token))

			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			if !validateCSRFToken(token, getSubmittedCSRFToken(r)) {
				if cfg.ErrorHandler != nil {
					cfg.ErrorHandler(w, r)
				} else {
					respondForbidden(w, r)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetCSRFToken retrieves the CSRF token from the request context
func GetCSRFToken(ctx context.Context) string {
	if token, ok := ctx.Value(CSRFContextKey).(string); ok {
		return token
	}
	return ""
}

func generateCSRFToken() (string, error) {
	b := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// getSubmittedCSRFToken reads the token from the htmx header or the form body
func getSubmittedCSRFToken(r *http.Request) string {
	if token := r.Header.Get(CSRFHeaderName); token != "" {
		return token
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return ""
	}
	if err := r.ParseForm(); err != nil {
		return ""
	}
	return r.PostFormValue(CSRFFormFieldName)
}

func validateCSRFToken(cookieToken, submittedToken string) bool {
	if cookieToken == "" || submittedToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(submittedToken)) == 1
}

// isSafeMethod returns true for HTTP methods that don't change state
func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions ||
		method == http.MethodTrace
}
