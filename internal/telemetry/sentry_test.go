package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSentry_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cleanup, err := InitSentry(SentryConfig{Enabled: false}, logger)
	require.NoError(t, err)
	cleanup()
	assert.False(t, IsEnabled())

	cleanup, err = InitSentry(SentryConfig{Enabled: true, DSN: ""}, logger)
	require.NoError(t, err)
	cleanup()
	assert.False(t, IsEnabled(), "missing DSN disables capture")

	// No-ops when disabled.
	CaptureErrorFromContext(context.Background(), errors.New("boom"), nil)
	AddBreadcrumb("cep", "lookup", nil)
}

func TestSentryMiddleware_DisabledPassesThrough(t *testing.T) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})
	sessionOf := func(ctx context.Context) string { return "s1" }

	mw := SentryMiddleware()(SentryContextMiddleware(sessionOf)(inner))
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHTTPTransport_PassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := &http.Client{Transport: &HTTPTransport{}}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(body))
}
