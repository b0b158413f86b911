// Package session keeps one anonymous registration session per browser.
// Each session owns its registration form; both live in memory and expire
// after a period of inactivity.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dukerupert/cadastro/internal/cache"
	"github.com/dukerupert/cadastro/internal/domain"
	"github.com/dukerupert/cadastro/internal/registration"
)

// DefaultTTL is the idle lifetime of a session.
const DefaultTTL = 30 * time.Minute

// FormFactory builds the form for a new session. The form receives the
// session's Handle so it can sign out.
type FormFactory func(sess registration.Session) *registration.Form

// Entry is a live session and its form.
type Entry struct {
	Session domain.Session
	Form    *registration.Form
}

// Manager creates, finds and destroys sessions.
type Manager struct {
	ttl     time.Duration
	entries *cache.Memory[*Entry]
	newForm FormFactory
	now     func() time.Time
}

// NewManager creates a Manager whose sessions expire after ttl of inactivity.
func NewManager(ttl time.Duration, newForm FormFactory) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		ttl:     ttl,
		entries: cache.NewMemory[*Entry](ttl, cache.DefaultCleanupInterval),
		newForm: newForm,
		now:     time.Now,
	}
}

// TTL is the idle lifetime applied to sessions and their cookie.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create starts a new session with an empty form.
func (m *Manager) Create() (*Entry, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, domain.Internal(err, "session.create", "failed to generate session id")
	}

	e := &Entry{Session: domain.Session{ID: id, CreatedAt: m.now().UTC()}}
	e.Form = m.newForm(m.Handle(id))

	if err := m.entries.Add(id, e); err != nil {
		return nil, domain.Internal(err, "session.create", "session id collision")
	}
	return e, nil
}

// Get returns the session for id and extends its lifetime.
func (m *Manager) Get(id string) (*Entry, bool) {
	if id == "" {
		return nil, false
	}
	return m.entries.Touch(id)
}

// Destroy removes the session and its form.
func (m *Manager) Destroy(id string) error {
	if _, ok := m.entries.Get(id); !ok {
		return domain.NotFound("session.destroy", "session", id)
	}
	m.entries.Delete(id)
	return nil
}

// OnEnded registers fn to run whenever a session is destroyed or expires.
// Expired sessions are reported when the cache purges them.
func (m *Manager) OnEnded(fn func(e *Entry)) {
	m.entries.OnEvicted(func(_ string, e *Entry) {
		fn(e)
	})
}

// Count is the number of sessions held, including expired ones not yet purged.
func (m *Manager) Count() int {
	return m.entries.Len()
}

// Handle returns the sign-out capability for the session id.
func (m *Manager) Handle(id string) Handle {
	return Handle{manager: m, id: id}
}

// Handle binds a Manager to one session.
type Handle struct {
	manager *Manager
	id      string
}

// SignOut destroys the session. Signing out a session that no longer exists
// is an error so the form can tell the user.
func (h Handle) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domain.Unavailable(err, "session.sign_out", "sign out cancelled")
	}
	return h.manager.Destroy(h.id)
}

// generateSessionID generates a cryptographically secure session ID.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
