// internal/app/features/settings/accounts.go
package settings

import (
	"net/http"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/authz"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func isRefusal(err error) bool {
	return apiclient.IsConflictOrNotFound(err) && !apiclient.IsNotFound(err)
}

func accountID(r *http.Request) int64 {
	return formutil.ParseID(chi.URLParam(r, "id"))
}

// HandleToggle flips a user's actif flag. Operators cannot disable themselves.
//
// Route: POST /settings/users/{id}/toggle
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	id := accountID(r)
	if id == 0 {
		uierrors.HTMXBadRequest(w, r, "Invalid user ID.", "/settings")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "toggle account")
	defer cancel()

	c := h.Screens.Client(r)
	u, err := c.GetUser(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "toggle account", err, "/settings")
		return
	}
	if authz.IsSelf(r, u.Login) {
		uierrors.HTMXForbidden(w, r, "You can't disable your own account.", "/settings")
		return
	}

	u.Actif = !u.Actif
	u.Password = ""
	if _, err := c.UpdateUser(ctx, id, u); err != nil {
		h.ErrLog.Upstream(w, r, "toggle account", err, "/settings")
		return
	}

	h.AuditLog.AccountToggled(ctx, r, id, u.Actif)
	state := "disabled"
	if u.Actif {
		state = "enabled"
	}
	flash.Add(w, r, flash.Success, "Account "+u.Login+" "+state+".")
	formutil.Done(w, r, "/settings")
}

// HandleTransfer gives the admin role to another active user and demotes
// the operator, who is then signed out since their token still says Admin.
// The target is promoted first so the console never has no admin.
//
// Route: POST /settings/users/{id}/transfer (form: confirm=1)
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	id := accountID(r)
	if id == 0 {
		uierrors.HTMXBadRequest(w, r, "Invalid user ID.", "/settings")
		return
	}
	if !formutil.Bool(r, "confirm") {
		uierrors.RenderConfirm(w, r, "Transfer the admin role? You will be signed out.", "/settings")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "transfer admin")
	defer cancel()

	c := h.Screens.Client(r)
	me, err := c.Me(ctx)
	if err != nil {
		h.ErrLog.Upstream(w, r, "transfer admin", err, "/settings")
		return
	}
	if !me.Role.IsAdmin() {
		uierrors.HTMXForbidden(w, r, "Only an admin can transfer the admin role.", "/settings")
		return
	}
	target, err := c.GetUser(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "transfer admin", err, "/settings")
		return
	}
	switch {
	case target.ID == me.ID:
		uierrors.HTMXBadRequest(w, r, "You already hold the admin role.", "/settings")
		return
	case target.Role.IsAdmin():
		uierrors.HTMXBadRequest(w, r, target.Login+" is already an admin.", "/settings")
		return
	case !target.Actif:
		uierrors.HTMXBadRequest(w, r, "Enable "+target.Login+" before making them admin.", "/settings")
		return
	}

	target.Role = models.RoleAdmin
	target.Password = ""
	if _, err := c.UpdateUser(ctx, target.ID, target); err != nil {
		h.ErrLog.Upstream(w, r, "promote user", err, "/settings")
		return
	}

	me.Role = models.RoleUser
	me.Password = ""
	if _, err := c.UpdateUser(ctx, me.ID, me); err != nil {
		// The target is already promoted; the operator keeps Admin too.
		h.Log.Error("transfer admin: demote self failed",
			zap.Int64("from", me.ID), zap.Int64("to", target.ID), zap.Error(err))
		flash.Add(w, r, flash.Warning, target.Login+" is now an admin, but your own role could not be changed.")
		h.ErrLog.Upstream(w, r, "demote self", err, "/settings")
		return
	}

	h.AuditLog.AdminRoleTransferred(ctx, r, me.ID, target.ID, target.Login)
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("transfer admin: sign out", zap.Error(err))
	}
	flash.Add(w, r, flash.Success, "Admin role transferred to "+target.Login+". Please sign in again.")
	formutil.Done(w, r, "/login")
}
