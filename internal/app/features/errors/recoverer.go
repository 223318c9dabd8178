// internal/app/features/errors/recoverer.go
package errors

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Recoverer turns a handler panic into a 500 page and logs the stack.
// It sits above the feature routers so a bug in one screen never drops the
// connection without a response.
func Recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic serving request",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.ByteString("stack", debug.Stack()),
				)
				// The error page itself must not take the process down.
				defer func() { _ = recover() }()
				msg := "Something went wrong. Please try again."
				HTMXError(w, r, http.StatusInternalServerError, msg, func() {
					RenderServerError(w, r, msg, "/dashboard")
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
