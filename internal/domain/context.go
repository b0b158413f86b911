// Package domain provides core types, error codes and context helpers for the
// registration service.
//
// Context helpers centralize request-scoped data access so handlers never
// reach for ad hoc context keys.
package domain

import (
	"context"
	"time"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// sessionContextKey stores the browser session in context.
	sessionContextKey contextKey = iota

	// requestIDContextKey stores the request ID for tracing.
	requestIDContextKey
)

// Session represents the anonymous browser session a registration form belongs to.
type Session struct {
	ID        string
	CreatedAt time.Time
}

// --- Session Context Helpers ---

// NewContextWithSession returns a new context with the session attached.
func NewContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext retrieves the session from context.
// Returns nil if no session is present.
func SessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionContextKey).(*Session)
	return session
}

// SessionIDFromContext retrieves the session ID from context.
// Returns empty string if no session is present.
func SessionIDFromContext(ctx context.Context) string {
	if session := SessionFromContext(ctx); session != nil {
		return session.ID
	}
	return ""
}

// MustSession retrieves the session from context, panicking if not present.
// The panic is caught by the recovery middleware.
func MustSession(ctx context.Context) *Session {
	session := SessionFromContext(ctx)
	if session == nil {
		panic("session required in context but not found")
	}
	return session
}

// --- Request ID Context Helpers ---

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
