// internal/app/features/teams/handler.go
package teams

import (
	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/system/auditlog"
	"github.com/dalemusser/deskhub/internal/app/system/screen"
	"go.uber.org/zap"
)

// Handler owns the team ("équipe") screens.
type Handler struct {
	Screens  *screen.Opener
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler constructs a teams Handler.
func NewHandler(screens *screen.Opener, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Screens:  screens,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}
