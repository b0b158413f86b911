package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/dukerupert/cadastro/internal/cookie"
	"github.com/dukerupert/cadastro/internal/domain"
	"github.com/dukerupert/cadastro/internal/session"
)

// SessionContextKey is the context key for the session entry
const SessionContextKey contextKey = "session"

// SessionStore finds or starts sessions.
type SessionStore interface {
	Get(id string) (*session.Entry, bool)
	Create() (*session.Entry, error)
	TTL() time.Duration
}

// SessionConfig configures the session middleware
type SessionConfig struct {
	Store        SessionStore
	CookieConfig *cookie.Config

	// SkipPaths are path prefixes served without a session
	SkipPaths []string
}

// DefaultSessionSkipPaths are the routes that never need a form.
var DefaultSessionSkipPaths = []string{"/static/", "/health", "/metrics", "/api/", "/login"}

// Session attaches the browser's anonymous session to the request,
// starting a new one when the cookie is missing or expired.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.Store == nil || cfg.CookieConfig == nil {
		panic("session: Store and CookieConfig are required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if matchesAnyPrefix(r.URL.Path, cfg.SkipPaths) {
				next.ServeHTTP(w, r)
				return
			}

			entry, ok := cfg.Store.Get(cookie.Get(r, cookie.SessionCookieName))
			if !ok {
				var err error
				entry, err = cfg.Store.Create()
				if err != nil {
					respondInternalError(w, r, err)
					return
				}
			}
			// Refresh the cookie so it expires with the session.
			cfg.CookieConfig.SetSession(w, cookie.SessionCookieName, entry.Session.ID, cfg.Store.TTL())

			ctx := domain.NewContextWithSession(r.Context(), &entry.Session)
			ctx = context.WithValue(ctx, SessionContextKey, entry)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession returns the session entry attached by the Session middleware.
func GetSession(ctx context.Context) *session.Entry {
	if e, ok := ctx.Value(SessionContextKey).(*session.Entry); ok {
		return e
	}
	return nil
}
