package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/cadastro/internal/address"
	"github.com/dukerupert/cadastro/internal/domain"
	"github.com/dukerupert/cadastro/internal/registration"
)

type nopStore struct{}

func (nopStore) Create(ctx context.Context, u domain.User) (string, error) { return "id", nil }

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(ttl, func(sess registration.Session) *registration.Form {
		return registration.New(address.NewMockLookup(), nopStore{}, sess)
	})
}

func TestManager_CreateGet(t *testing.T) {
	m := newTestManager(time.Minute)

	e, err := m.Create()
	require.NoError(t, err)
	require.NotNil(t, e.Form)
	assert.NotEmpty(t, e.Session.ID)

	got, ok := m.Get(e.Session.ID)
	require.True(t, ok)
	assert.Same(t, e, got)

	_, ok = m.Get("")
	assert.False(t, ok)
	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestManager_IDsAreUnique(t *testing.T) {
	m := newTestManager(time.Minute)
	seen := make(map[string]bool)
	for range 50 {
		e, err := m.Create()
		require.NoError(t, err)
		assert.False(t, seen[e.Session.ID])
		seen[e.Session.ID] = true
	}
	assert.Equal(t, 50, m.Count())
}

func TestManager_Expiry(t *testing.T) {
	m := newTestManager(20 * time.Millisecond)
	e, err := m.Create()
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, ok := m.Get(e.Session.ID)
	assert.False(t, ok)
}

func TestHandle_SignOut(t *testing.T) {
	t.Run("destroys the session", func(t *testing.T) {
		m := newTestManager(time.Minute)
		e, err := m.Create()
		require.NoError(t, err)

		res := e.Form.SignOut(context.Background())

		assert.Equal(t, registration.StatusSucceeded, res.Status)
		assert.Equal(t, registration.ScreenLogin, res.Navigate)
		_, ok := m.Get(e.Session.ID)
		assert.False(t, ok)
	})

	t.Run("missing session fails without ending the form", func(t *testing.T) {
		m := newTestManager(time.Minute)
		e, err := m.Create()
		require.NoError(t, err)
		require.NoError(t, m.Destroy(e.Session.ID))

		res := e.Form.SignOut(context.Background())

		assert.Equal(t, registration.StatusFailed, res.Status)
		assert.True(t, domain.IsCode(res.Err, domain.ENOTFOUND))
		assert.Equal(t, registration.MsgSignOutFailed, e.Form.Snapshot().Banner)
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		m := newTestManager(time.Minute)
		e, err := m.Create()
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err = m.Handle(e.Session.ID).SignOut(ctx)

		assert.True(t, domain.IsCode(err, domain.EUNAVAILABLE))
		_, ok := m.Get(e.Session.ID)
		assert.True(t, ok)
	})
}

func TestManager_OnEnded(t *testing.T) {
	m := newTestManager(time.Minute)
	var ended []string
	m.OnEnded(func(e *Entry) {
		ended = append(ended, e.Session.ID)
	})

	e, err := m.Create()
	require.NoError(t, err)
	_, ok := m.Get(e.Session.ID)
	require.True(t, ok)
	assert.Empty(t, ended, "refreshing a session does not end it")

	require.Equal(t, registration.StatusSucceeded, e.Form.SignOut(context.Background()).Status)
	assert.Equal(t, []string{e.Session.ID}, ended)
}

func TestManager_GetAfterDestroy(t *testing.T) {
	m := newTestManager(time.Minute)
	e, err := m.Create()
	require.NoError(t, err)
	require.NoError(t, m.Destroy(e.Session.ID))

	_, ok := m.Get(e.Session.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Count(), "a lookup never brings a destroyed session back")
}
