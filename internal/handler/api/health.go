package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dukerupert/cadastro/internal/middleware"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service health
type HealthHandler struct {
	db      Pinger
	timeout time.Duration
}

// NewHealthHandler creates a health handler. A nil db always reports ok.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, timeout: 2 * time.Second}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			middleware.GetLogger(r.Context()).Warn("health check failed", "error", err)
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
