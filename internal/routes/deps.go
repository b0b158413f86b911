package routes

import (
	"github.com/dukerupert/cadastro/internal/handler/api"
	"github.com/dukerupert/cadastro/internal/handler/cadastro"
	"github.com/dukerupert/cadastro/internal/router"
)

// CadastroDeps contains dependencies for the registration pages
type CadastroDeps struct {
	// Form (page, field validation, CEP search, submit, clear, sign out)
	FormHandler *cadastro.FormHandler

	// Users list
	UsersHandler *cadastro.UsersHandler

	// Static pages (login, not found)
	PagesHandler *cadastro.PagesHandler

	// RateLimit guards the routes that call the CEP service or the user store
	RateLimit router.Middleware
}

// APIDeps contains dependencies for API routes
type APIDeps struct {
	CEPHandler    *api.CEPHandler
	HealthHandler *api.HealthHandler

	// RateLimit and CORS apply to the CEP endpoint only
	RateLimit router.Middleware
	CORS      router.Middleware
}
