// internal/app/features/tickets/routes.go
package tickets

import (
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the ticket routes at "/tickets". Every signed-in user can
// browse; changes are admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeList)

		pr.Group(func(ar chi.Router) {
			ar.Use(sm.RequireAdmin)
			ar.Get("/new", h.ServeNew)
			ar.Post("/", h.HandleCreate)
			ar.Get("/{id}/edit", h.ServeEdit)
			ar.Post("/{id}/edit", h.HandleEdit)
			ar.Post("/{id}/delete", h.HandleDelete)
		})
	})

	return r
}
