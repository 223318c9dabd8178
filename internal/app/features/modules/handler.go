// internal/app/features/modules/handler.go
package modules

import (
	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/system/auditlog"
	"github.com/dalemusser/deskhub/internal/app/system/screen"
	"go.uber.org/zap"
)

// Handler owns the module screens. Modules are the product areas tickets
// are filed against.
type Handler struct {
	Screens  *screen.Opener
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(screens *screen.Opener, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Screens: screens, Log: logger, ErrLog: errLog, AuditLog: audit}
}
