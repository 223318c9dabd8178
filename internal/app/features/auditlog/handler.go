// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Handler serves the admin audit trail. It reads MongoDB only; the
// ticketing backend is never called from here.
type Handler struct {
	Store  *audit.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(store *audit.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Log: logger, ErrLog: errLog}
}
