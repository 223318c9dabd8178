// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID: the backend's numeric id of the user record
//   - Login: the human-readable name the operator types to sign in

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/auditlog"
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/dalemusser/deskhub/internal/app/system/identity"
	"github.com/dalemusser/deskhub/internal/app/system/ratelimit"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	API        *apiclient.Client
	Tokens     *identity.Decoder
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger

	// Limiter throttles attempts per client and per login. Nil disables it.
	Limiter *ratelimit.LoginLimiter
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Login     string // what the operator typed
	ReturnURL string
}

func NewHandler(
	api *apiclient.Client,
	tokens *identity.Decoder,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:        logger,
		API:        api,
		Tokens:     tokens,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := query.Get(r, "return")
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, urlutil.SafeReturn(ret, "", "/dashboard"), http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(w, r, "Sign in", "/"),
		ReturnURL: ret,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	login := strings.TrimSpace(r.FormValue("login"))
	password := r.FormValue("password")
	ret := strings.TrimSpace(r.FormValue("return"))

	if login == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your login and password.", login, ret)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "login")
	defer cancel()

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, login); !ok {
			h.AuditLog.LoginFailed(ctx, r, login, "rate limited")
			w.WriteHeader(http.StatusTooManyRequests)
			h.renderFormWithError(w, r, msg, login, ret)
			return
		}
	}

	/*── exchange credentials for a token ──────────────────────────────────*/

	tok, err := h.API.Authenticate(ctx, apiclient.Credentials{Login: login, Password: password})
	switch {
	case err == nil:
	case apiclient.IsAuth(err), apiclient.IsConflictOrNotFound(err):
		h.AuditLog.LoginFailed(ctx, r, login, "bad credentials")
		h.renderFormWithError(w, r, "Invalid login or password.", login, ret)
		return
	case errors.Is(ctx.Err(), context.Canceled):
		return
	default:
		h.Log.Error("authenticate failed", zap.Error(err), zap.String("login", login))
		h.AuditLog.LoginFailed(ctx, r, login, "backend unavailable")
		h.renderFormWithError(w, r, "The ticketing service is unavailable. Please try again.", login, ret)
		return
	}

	/*── decode the token into an explicit session ─────────────────────────*/

	sess, err := h.Tokens.FromToken(tok)
	if err != nil {
		reason := err.Error()
		h.Log.Warn("token rejected", zap.Error(err), zap.String("login", login))
		if errors.Is(err, identity.ErrNoRole) {
			h.AuditLog.LoginRejectedRole(ctx, r, login, reason)
			h.renderFormWithError(w, r, "Your account has no role this console accepts.", login, ret)
			return
		}
		h.AuditLog.LoginFailed(ctx, r, login, reason)
		h.renderFormWithError(w, r, "Sign-in failed. Please try again.", login, ret)
		return
	}
	if sess.Subject == "" {
		sess.Subject = login
	}

	/*── look up the operator's own record ─────────────────────────────────*/

	me, err := h.API.WithSession(sess).Me(ctx)
	if err != nil {
		// The record only adds the numeric id; sign-in proceeds without it
		// unless the backend rejects the fresh token outright.
		if apiclient.IsAuth(err) {
			h.AuditLog.LoginFailed(ctx, r, login, "token rejected by /me")
			h.renderFormWithError(w, r, "Sign-in failed. Please try again.", login, ret)
			return
		}
		h.Log.Warn("lookup of signed-in user failed", zap.Error(err), zap.String("login", login))
	} else if !me.Actif {
		h.AuditLog.LoginFailed(ctx, r, login, "account disabled")
		h.renderFormWithError(w, r, "Your account is currently disabled. Please contact an administrator.", login, ret)
		return
	}

	h.createSessionAndRedirect(w, r, sess, me.ID, ret)
}

// createSessionAndRedirect stores the session and redirects to the destination.
func (h *Handler) createSessionAndRedirect(w http.ResponseWriter, r *http.Request, sess identity.Session, userID int64, returnURL string) {
	if err := h.SessionMgr.SignIn(w, r, sess, userID, time.Time{}); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("login", sess.Subject))
		h.renderFormWithError(w, r, "Unable to create session. Please try again.", sess.Subject, returnURL)
		return
	}

	h.AuditLog.LoginSuccess(r.Context(), r, sess.Subject, sess.Role.String(), userID)
	if h.Limiter != nil {
		h.Limiter.ResetLogin(sess.Subject)
	}

	dest := urlutil.SafeReturn(returnURL, "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, login, ret string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(w, r, "Sign in", "/"),
		Error:     msg,
		Login:     login,
		ReturnURL: ret,
	})
}
