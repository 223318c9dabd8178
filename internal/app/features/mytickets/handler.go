// internal/app/features/mytickets/handler.go
package mytickets

import (
	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/system/auditlog"
	"github.com/dalemusser/deskhub/internal/app/system/screen"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's own tickets.
type Handler struct {
	Screens  *screen.Opener
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(screens *screen.Opener, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Screens: screens, Log: logger, ErrLog: errLog, AuditLog: audit}
}
