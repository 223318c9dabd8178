// internal/app/features/errors/logger.go
package errors

import (
	"errors"
	"net/http"

	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/relations"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SessionExpirer drops a session whose token the backend refused.
// *auth.SessionManager satisfies it.
type SessionExpirer interface {
	Expire(w http.ResponseWriter, r *http.Request)
}

// ErrorLogger logs handler failures with request context and renders the
// matching error page.
type ErrorLogger struct {
	Log *zap.Logger

	// Sessions, when set, is used to end the session on backend auth errors.
	Sessions SessionExpirer
	// OnExpire is called before a session is ended, e.g. to audit it.
	OnExpire func(r *http.Request, op string)
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	f := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		f = append(f, zap.String("request_id", id))
	}
	return f
}

// LogServerError logs at error level and renders a 500 page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Error(logMsg, e.fields(r, err)...)
	RenderServerError(w, r, userMsg, backURL)
}

// HTMXLogServerError is LogServerError for HTMX-aware endpoints.
func (e *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Error(logMsg, e.fields(r, err)...)
	HTMXError(w, r, http.StatusInternalServerError, userMsg, func() { RenderServerError(w, r, userMsg, backURL) })
}

// LogBadRequest logs at warn level and renders a 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Warn(logMsg, e.fields(r, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}

// HTMXLogBadRequest is LogBadRequest for HTMX-aware endpoints.
func (e *ErrorLogger) HTMXLogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Warn(logMsg, e.fields(r, err)...)
	HTMXBadRequest(w, r, userMsg, backURL)
}

// LogForbidden logs at warn level and renders a 403 page.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Warn(logMsg, e.fields(r, err)...)
	RenderForbidden(w, r, userMsg, backURL)
}

// Upstream maps a failed backend operation to the right response.
//
//   - directory.ErrAbandoned: the caller left; nothing is written
//   - relations.ReloadError: the change is saved; flash a warning and go to backURL
//   - relations.ValidationError: 400 with the message
//   - relations.ErrConfirmationRequired: a prompt that re-posts with confirm=1
//   - apiclient KindAuth: the session ends and the caller goes to /login
//   - apiclient KindConflictOrNotFound: 404 or 409
//   - anything else: 502 with a retry hint
func (e *ErrorLogger) Upstream(w http.ResponseWriter, r *http.Request, op string, err error, backURL string) {
	var ve *relations.ValidationError
	var re *relations.ReloadError
	switch {
	case errors.Is(err, directory.ErrAbandoned):
		e.Log.Debug("request abandoned", zap.String("op", op))
		return
	case errors.As(err, &re):
		e.Log.Warn("change saved, reload failed", append(e.fields(r, err), zap.String("op", op))...)
		flash.Add(w, r, flash.Warning, "The change was saved, but the page could not be refreshed. Reload to see it.")
		if isHTMX(r) {
			w.Header().Set("HX-Redirect", backURL)
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, backURL, http.StatusSeeOther)
		return
	case errors.As(err, &ve):
		HTMXBadRequest(w, r, ve.Message, backURL)
		return
	case errors.Is(err, relations.ErrConfirmationRequired):
		prompt := "Please confirm the removal."
		var ce *relations.ConfirmationError
		if errors.As(err, &ce) {
			prompt = ce.Prompt()
		}
		RenderConfirm(w, r, prompt, backURL)
		return
	case apiclient.IsAuth(err):
		e.Log.Warn("backend rejected session", append(e.fields(r, err), zap.String("op", op))...)
		if e.OnExpire != nil {
			e.OnExpire(r, op)
		}
		if e.Sessions != nil {
			e.Sessions.Expire(w, r)
			return
		}
		RenderUnauthorized(w, r, "/login")
		return
	case apiclient.IsNotFound(err):
		e.Log.Info("backend record not found", append(e.fields(r, err), zap.String("op", op))...)
		HTMXNotFound(w, r, "That record no longer exists.", backURL)
		return
	case apiclient.IsConflictOrNotFound(err):
		e.Log.Warn("backend refused change", append(e.fields(r, err), zap.String("op", op))...)
		msg := "The change was refused by the ticketing service."
		HTMXError(w, r, http.StatusConflict, msg, func() { RenderConflict(w, r, msg, backURL) })
		return
	}
	e.Log.Error("backend call failed", append(e.fields(r, err), zap.String("op", op))...)
	msg := "The ticketing service is unavailable. Please try again."
	HTMXError(w, r, http.StatusBadGateway, msg, func() { RenderUnavailable(w, r, msg, backURL) })
}
