// internal/app/features/users/delete.go
package users

import (
	"net/http"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/authz"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/navigation"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
)

// HandleDelete deletes a user. Admins cannot delete themselves.
//
// Route: POST /users/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid user ID.", "/users")
		return
	}
	back := navigation.SafeBackURL(r, navigation.UsersBackURL)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete user")
	defer cancel()

	c := h.Screens.Client(r)
	u, err := c.GetUser(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get user", err, back)
		return
	}
	if authz.IsSelf(r, u.Login) {
		uierrors.HTMXForbidden(w, r, "You can't delete your own account.", back)
		return
	}

	if err := c.DeleteUser(ctx, id); err != nil {
		h.ErrLog.Upstream(w, r, "delete user", err, back)
		return
	}

	h.AuditLog.EntityDeleted(ctx, r, audit.EntityUser, id, u.Login)
	flash.Add(w, r, flash.Success, "User "+u.Login+" deleted.")
	formutil.Done(w, r, back)
}
