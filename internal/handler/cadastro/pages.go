package cadastro

import (
	"net/http"
	"strings"

	"github.com/dukerupert/cadastro/internal/handler"
)

// PagesHandler serves the static pages
type PagesHandler struct {
	renderer *handler.Renderer
}

// NewPagesHandler creates a new pages handler
func NewPagesHandler(renderer *handler.Renderer) *PagesHandler {
	return &PagesHandler{renderer: renderer}
}

// Login handles GET /login, the page shown after signing out
func (h *PagesHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, "login", BaseTemplateData(r))
}

// NotFound renders the 404 page, or a JSON error for API clients
func (h *PagesHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || strings.Contains(r.Header.Get("Accept"), "application/json") {
		handler.NotFoundResponse(w, r)
		return
	}
	h.renderer.RenderHTTPStatus(w, http.StatusNotFound, "erro", BaseTemplateData(r))
}
