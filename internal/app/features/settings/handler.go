// internal/app/features/settings/handler.go
package settings

import (
	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/system/auditlog"
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/dalemusser/deskhub/internal/app/system/screen"
	"go.uber.org/zap"
)

// Handler owns the admin Settings screen: the operator's own profile,
// enabling and disabling accounts, and handing the admin role to someone else.
type Handler struct {
	Screens    *screen.Opener
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
}

// NewHandler constructs a settings Handler.
func NewHandler(screens *screen.Opener, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Screens:    screens,
		SessionMgr: sm,
		Log:        logger,
		ErrLog:     errLog,
		AuditLog:   audit,
	}
}
