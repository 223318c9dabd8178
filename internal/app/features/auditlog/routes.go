// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit trail at "/audit". Admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireAdmin)

		pr.Get("/", h.ServeList)
	})

	return r
}
