package routes

import (
	"github.com/dukerupert/cadastro/internal/router"
)

// RegisterCadastroRoutes registers the browser-facing registration routes.
// Every route here runs with a session and its form.
func RegisterCadastroRoutes(r *router.Router, deps CadastroDeps) {
	limited := optional(deps.RateLimit)

	r.Get("/{$}", deps.FormHandler.Root)

	// Registration form
	r.Get("/cadastro", deps.FormHandler.Page)
	r.Post("/cadastro", deps.FormHandler.Submit, limited...)
	r.Post("/cadastro/campo/{field}", deps.FormHandler.UpdateField)
	r.Post("/cadastro/cep", deps.FormHandler.SearchAddress, limited...)
	r.Post("/cadastro/limpar", deps.FormHandler.Clear)
	r.Post("/sair", deps.FormHandler.SignOut)

	// Users list
	r.Get("/usuarios", deps.UsersHandler.List)

	// Pages
	r.Get("/login", deps.PagesHandler.Login)
	r.NotFound(deps.PagesHandler.NotFound)
}

// optional drops nil middleware so routes can be registered without them.
func optional(middleware ...router.Middleware) []router.Middleware {
	var out []router.Middleware
	for _, m := range middleware {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
