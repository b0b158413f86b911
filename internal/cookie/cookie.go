// Package cookie sets and clears the cookies the registration app relies on.
package cookie

import (
	"net/http"
	"time"
)

// Config holds cookie attributes shared by every cookie the app writes.
type Config struct {
	// Domain scopes the cookie. Empty means host-only.
	Domain string

	// Secure determines whether cookies require HTTPS.
	// Should be true in production, false in development.
	Secure bool
}

// NewConfig creates a new cookie configuration.
func NewConfig(domain string, secure bool) *Config {
	return &Config{
		Domain: domain,
		Secure: secure,
	}
}

// SetSession sets an HttpOnly, SameSite=Lax cookie valid for maxAge.
func (c *Config) SetSession(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear removes a cookie by setting MaxAge to -1.
// Domain and Path must match the original cookie.
func (c *Config) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetReadable sets a cookie scripts may read, as the double-submit CSRF
// token needs for htmx requests.
func (c *Config) SetReadable(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: false,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Get retrieves a cookie value from the request.
// Returns empty string if cookie not found.
func Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Cookie names used throughout the application.
const (
	// SessionCookieName identifies the anonymous registration session.
	SessionCookieName = "cadastro_session"

	// CSRFCookieName stores the CSRF token for form protection.
	CSRFCookieName = "cadastro_csrf"
)
