// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/system/authz"
	"github.com/dalemusser/deskhub/internal/app/system/screen"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"go.uber.org/zap"
)

// upcomingLimit caps the due-soon list on both dashboards.
const upcomingLimit = 5

type Handler struct {
	Screens *screen.Opener
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(screens *screen.Opener, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Screens: screens,
		ErrLog:  errLog,
		Log:     logger,
	}
}

// ServeDashboard dispatches to the role's dashboard.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	role, _, _, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	switch role {
	case models.RoleAdmin:
		h.ServeAdmin(w, r)
	case models.RoleUser:
		h.ServeUser(w, r)
	default:
		http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
	}
}
