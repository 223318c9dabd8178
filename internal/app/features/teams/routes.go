// internal/app/features/teams/routes.go
package teams

import (
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the team routes (typically at "/teams"). Admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireAdmin)

		// LIST
		pr.Get("/", h.ServeList)

		// CREATE
		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		// EDIT
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}/edit", h.HandleEdit)

		// DELETE
		pr.Post("/{id}/delete", h.HandleDelete)

		// MANAGE (tickets/users)
		pr.Get("/{id}/manage", h.ServeManage)
		pr.Post("/{id}/manage/add-ticket", h.HandleAddTicket)
		pr.Post("/{id}/manage/remove-ticket", h.HandleRemoveTicket)
		pr.Post("/{id}/manage/add-user", h.HandleAddUser)
		pr.Post("/{id}/manage/remove-user", h.HandleRemoveUser)
	})

	return r
}
