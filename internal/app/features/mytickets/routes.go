// internal/app/features/mytickets/routes.go
package mytickets

import (
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the routes at "/my/tickets".
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeMine)
		pr.Post("/{id}/accept", h.HandleAccept)
	})

	return r
}
