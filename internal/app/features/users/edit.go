// internal/app/features/users/edit.go
package users

import (
	"net/http"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/authz"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/navigation"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/domain/models"
)

// ServeEdit renders the Edit User form.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid user ID.", "/users")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "edit user form")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, directory.Teams, directory.Postes)
	if err != nil {
		h.ErrLog.Upstream(w, r, "edit user form", err, "/users")
		return
	}
	u, err := scr.Client.GetUser(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get user", err, "/users")
		return
	}

	data := newForm(w, r, scr.Dir, "Edit User", fromUser(u))
	data.ID, data.IsEdit, data.IsSelf = u.ID, true, authz.IsSelf(r, u.Login)
	renderForm(w, r, data)
}

// HandleEdit processes the Edit User form POST.
//
// The password is sent only when "change password" is ticked; otherwise the
// backend keeps the current one.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid user ID.", "/users")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/users")
		return
	}
	in := readInput(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update user")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, directory.Teams, directory.Postes)
	if err != nil {
		h.ErrLog.Upstream(w, r, "update user", err, "/users")
		return
	}
	old, err := scr.Client.GetUser(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get user", err, "/users")
		return
	}

	isSelf := authz.IsSelf(r, old.Login)
	data := newForm(w, r, scr.Dir, "Edit User", in)
	data.ID, data.IsEdit, data.IsSelf = id, true, isSelf

	in.validate(&data)
	if in.ChangePassword {
		data.Require("password", "New password", in.Password)
	}
	// An admin can't lock themselves out from this screen.
	if isSelf && (in.Role != models.RoleAdmin || !in.Actif) {
		data.SetError("You can't change your own role or status here. Use Settings to transfer the admin role.")
	}
	if data.HasErrors() {
		renderForm(w, r, data)
		return
	}

	// Start from the stored record so fields the form doesn't edit survive.
	upd := old
	upd.ID = id
	upd.Login = in.Login
	upd.Role = in.Role
	upd.Actif = in.Actif
	upd.IdEquip = formutil.Ref(in.Team)
	upd.IdPoste = formutil.Ref(in.Poste)
	upd.Password = ""
	if in.ChangePassword {
		upd.Password = in.Password
	}

	if _, err := scr.Client.UpdateUser(ctx, id, upd); err != nil {
		if refused(w, r, err, data) {
			return
		}
		h.ErrLog.Upstream(w, r, "update user", err, "/users")
		return
	}

	h.AuditLog.EntityUpdated(ctx, r, audit.EntityUser, id, in.Login)
	flash.Add(w, r, flash.Success, "User "+in.Login+" updated.")
	formutil.Done(w, r, navigation.SafeBackURL(r, navigation.UsersBackURL))
}
