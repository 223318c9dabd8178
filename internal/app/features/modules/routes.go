// internal/app/features/modules/routes.go
package modules

import (
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the module routes at "/modules". Admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireAdmin)

		pr.Get("/", h.ServeList)
		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}/edit", h.HandleEdit)
		pr.Post("/{id}/delete", h.HandleDelete)

		pr.Get("/{id}/tickets", h.ServeTickets)
		pr.Post("/{id}/tickets/add", h.HandleAddTicket)
		pr.Post("/{id}/tickets/remove", h.HandleRemoveTicket)
	})

	return r
}
