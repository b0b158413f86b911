package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/cadastro/internal/domain"
)

// mockConn implements Conn for testing
type mockConn struct {
	publishFunc func(subject string, data []byte) error
	subjects    []string
	payloads    [][]byte
	drained     bool
}

func (m *mockConn) Publish(subject string, data []byte) error {
	m.subjects = append(m.subjects, subject)
	m.payloads = append(m.payloads, data)
	if m.publishFunc != nil {
		return m.publishFunc(subject, data)
	}
	return nil
}

func (m *mockConn) Drain() error {
	m.drained = true
	return nil
}

// mockCreator implements UserCreator for testing
type mockCreator struct {
	createFunc func(ctx context.Context, user domain.User) (string, error)
}

func (m *mockCreator) Create(ctx context.Context, user domain.User) (string, error) {
	return m.createFunc(ctx, user)
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := &mockConn{}
	p := NewNATSPublisher(conn, "")

	err := p.PublishUserRegistered(context.Background(), UserRegistered{ID: "u1", Name: "Ana", Age: 30})

	require.NoError(t, err)
	require.Equal(t, []string{DefaultSubject}, conn.subjects)
	var got map[string]any
	require.NoError(t, json.Unmarshal(conn.payloads[0], &got))
	assert.Equal(t, "u1", got["id"])
	assert.Equal(t, "Ana", got["nome"])

	require.NoError(t, p.Close())
	assert.True(t, conn.drained)
}

func TestNATSPublisher_PublishError(t *testing.T) {
	conn := &mockConn{publishFunc: func(string, []byte) error { return errors.New("nats: connection closed") }}

	err := NewNATSPublisher(conn, "custom.subject").PublishUserRegistered(context.Background(), UserRegistered{})

	assert.True(t, domain.IsCode(err, domain.EUNAVAILABLE))
	assert.Equal(t, []string{"custom.subject"}, conn.subjects)
}

func TestPublishingStore(t *testing.T) {
	t.Run("publishes after a successful write", func(t *testing.T) {
		conn := &mockConn{}
		store := NewPublishingStore(&mockCreator{createFunc: func(ctx context.Context, u domain.User) (string, error) {
			return "u1", nil
		}}, NewNATSPublisher(conn, ""), slog.Default())

		id, err := store.Create(context.Background(), domain.User{Name: "Ana", PostalCode: "01310100"})

		require.NoError(t, err)
		assert.Equal(t, "u1", id)
		require.Len(t, conn.payloads, 1)
		var evt UserRegistered
		require.NoError(t, json.Unmarshal(conn.payloads[0], &evt))
		assert.Equal(t, "u1", evt.ID)
		assert.Equal(t, "01310100", evt.PostalCode)
		assert.False(t, evt.OccurredAt.IsZero())
	})

	t.Run("write errors are returned and nothing is published", func(t *testing.T) {
		conn := &mockConn{}
		writeErr := domain.Forbidden(nil, "postgres.user.create", "permission denied")
		store := NewPublishingStore(&mockCreator{createFunc: func(ctx context.Context, u domain.User) (string, error) {
			return "", writeErr
		}}, NewNATSPublisher(conn, ""), slog.Default())

		_, err := store.Create(context.Background(), domain.User{})

		assert.ErrorIs(t, err, writeErr)
		assert.Empty(t, conn.payloads)
	})

	t.Run("publish failures are logged and swallowed", func(t *testing.T) {
		var logs bytes.Buffer
		var hooked []error
		conn := &mockConn{publishFunc: func(string, []byte) error { return errors.New("down") }}
		store := NewPublishingStore(&mockCreator{createFunc: func(ctx context.Context, u domain.User) (string, error) {
			return "u1", nil
		}}, NewNATSPublisher(conn, ""), slog.New(slog.NewTextHandler(&logs, nil)),
			WithPublishHook(func(err error) { hooked = append(hooked, err) }))

		id, err := store.Create(context.Background(), domain.User{})

		require.NoError(t, err)
		assert.Equal(t, "u1", id)
		assert.Contains(t, logs.String(), "failed to publish registration event")
		require.Len(t, hooked, 1)
		assert.Error(t, hooked[0])
	})
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishUserRegistered(context.Background(), UserRegistered{}))
	assert.NoError(t, p.Close())
}
