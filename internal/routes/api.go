package routes

import (
	"net/http"

	"github.com/dukerupert/cadastro/internal/router"
)

// RegisterAPIRoutes registers the JSON routes. They run without a session.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	r.Get("/health", deps.HealthHandler.Check)

	r.Get("/api/cep/{cep}", deps.CEPHandler.Get, optional(deps.CORS, deps.RateLimit)...)
	if deps.CORS != nil {
		// Preflight is answered by the CORS middleware itself.
		r.Handle(http.MethodOptions, "/api/cep/{cep}", http.NotFoundHandler(), deps.CORS)
	}
}
