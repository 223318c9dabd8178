// internal/app/features/settings/settings.go
package settings

import (
	"context"
	"net/http"

	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/screen"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"go.uber.org/zap"
)

// accountRow is one line of the account management table.
type accountRow struct {
	ID          int64
	Login       string
	Role        string
	Actif       bool
	IsSelf      bool
	CanTransfer bool
}

// settingsData is the view model for the settings page.
type settingsData struct {
	formutil.Base

	Login    string
	Accounts []accountRow
}

// ServeSettings renders the operator's profile and the account table.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "settings")
	defer cancel()

	scr, me, err := h.open(ctx, r)
	if err != nil {
		h.ErrLog.Upstream(w, r, "settings", err, "/dashboard")
		return
	}
	h.render(w, r, scr, me, me.Login, nil)
}

// HandleProfile updates the operator's own login and, optionally, password.
// Every change must be confirmed with the current password.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/settings")
		return
	}
	login := formutil.Text(r, "login")
	current := formutil.Secret(r, "current_password")
	next := formutil.Secret(r, "new_password")
	confirm := formutil.Secret(r, "confirm_password")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update profile")
	defer cancel()

	scr, me, err := h.open(ctx, r)
	if err != nil {
		h.ErrLog.Upstream(w, r, "update profile", err, "/settings")
		return
	}

	var b formutil.Base
	b.Require("login", "Login", login)
	b.MaxLen("login", "Login", login, 100)
	b.Require("current_password", "Current password", current)
	if next != "" {
		switch {
		case next != confirm:
			b.FieldError("confirm_password", "New passwords do not match.")
		case next == current:
			b.FieldError("new_password", "New password cannot be the same as your current password.")
		}
	}
	if login == me.Login && next == "" && !b.HasErrors() {
		b.SetError("Nothing to change.")
	}
	if b.HasErrors() {
		h.render(w, r, scr, me, login, &b)
		return
	}

	ok, err := scr.Client.VerifyPassword(ctx, me.ID, current)
	if err != nil {
		h.ErrLog.Upstream(w, r, "verify password", err, "/settings")
		return
	}
	if !ok {
		h.AuditLog.PasswordCheckFailed(ctx, r, me.ID, "update profile")
		b.FieldError("current_password", "Current password is incorrect.")
		h.render(w, r, scr, me, login, &b)
		return
	}

	upd := me
	upd.Login = login
	upd.Password = next
	if _, err := scr.Client.UpdateUser(ctx, me.ID, upd); err != nil {
		if isRefusal(err) {
			b.SetError("The ticketing service rejected the change. That login may already be taken.")
			h.render(w, r, scr, me, login, &b)
			return
		}
		h.ErrLog.Upstream(w, r, "update profile", err, "/settings")
		return
	}

	if next != "" {
		h.AuditLog.PasswordChanged(ctx, r, me.ID)
	}
	if login != me.Login {
		h.AuditLog.EntityUpdated(ctx, r, audit.EntityUser, me.ID, login)
		// The session token still names the old login.
		if err := h.SessionMgr.SignOut(w, r); err != nil {
			h.Log.Error("settings: sign out after login change", zap.Error(err))
		}
		flash.Add(w, r, flash.Info, "Your login changed. Please sign in as "+login+".")
		formutil.Done(w, r, "/login")
		return
	}

	flash.Add(w, r, flash.Success, "Profile updated.")
	formutil.Done(w, r, "/settings")
}

// open loads the users collection and the operator's own record.
func (h *Handler) open(ctx context.Context, r *http.Request) (*screen.Screen, models.User, error) {
	scr, err := h.Screens.Open(ctx, r, directory.Users)
	if err != nil {
		return nil, models.User{}, err
	}
	me, err := scr.Client.Me(ctx)
	if err != nil {
		return nil, models.User{}, err
	}
	return scr, me, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, scr *screen.Screen, me models.User, login string, errs *formutil.Base) {
	data := settingsData{Login: login}
	if errs != nil {
		data.Base = *errs
	}
	formutil.SetBase(&data.Base, w, r, "Settings", "/dashboard")

	for _, u := range directory.UsersOf(scr.Dir) {
		self := u.ID == me.ID
		data.Accounts = append(data.Accounts, accountRow{
			ID:          u.ID,
			Login:       u.Login,
			Role:        u.Role.String(),
			Actif:       u.Actif,
			IsSelf:      self,
			CanTransfer: !self && u.Actif && !u.Role.IsAdmin(),
		})
	}
	formutil.Render(w, r, "settings", "settings_body", data)
}
