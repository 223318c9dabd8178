// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the settings routes (typically at "/settings").
// All routes require an admin.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireAdmin)

		pr.Get("/", h.ServeSettings)
		pr.Post("/profile", h.HandleProfile)
		pr.Post("/users/{id}/toggle", h.HandleToggle)
		pr.Post("/users/{id}/transfer", h.HandleTransfer)
	})
	return r
}
