package cadastro

import (
	"context"
	"net/http"

	"github.com/dukerupert/cadastro/internal/domain"
	"github.com/dukerupert/cadastro/internal/handler"
	"github.com/dukerupert/cadastro/internal/middleware"
)

// DefaultUsersPageSize caps how many users the list shows.
const DefaultUsersPageSize = 100

const msgUsersUnavailable = "Não foi possível carregar os usuários. Tente novamente."

// UserLister is the read half of a user store.
type UserLister interface {
	List(ctx context.Context, limit int) ([]domain.User, error)
}

// UsersHandler renders the registered users list
type UsersHandler struct {
	users    UserLister
	renderer *handler.Renderer
	limit    int
}

// NewUsersHandler creates a new users list handler
func NewUsersHandler(users UserLister, renderer *handler.Renderer) *UsersHandler {
	return &UsersHandler{
		users:    users,
		renderer: renderer,
		limit:    DefaultUsersPageSize,
	}
}

// List handles GET /usuarios
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	data := BaseTemplateData(r)

	users, err := h.users.List(r.Context(), h.limit)
	if err != nil {
		middleware.GetLogger(r.Context()).Error("failed to list users", "error", err)
		data["Banner"] = msgUsersUnavailable
	}
	data["Users"] = users

	h.renderer.RenderHTTP(w, "usuarios", data)
}
