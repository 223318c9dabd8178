// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/dalemusser/deskhub/internal/domain/models"
)

// UserCtx returns the user's role, login, backend id and a found flag.
// Without a signed-in user it returns RoleUnknown, "", 0, false.
func UserCtx(r *http.Request) (role models.Role, login string, userID int64, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return models.RoleUnknown, "", 0, false
	}
	return u.Role, u.Login, u.UserID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role.IsAdmin()
}

// IsUser reports whether the current request's user has the plain user role.
func IsUser(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleUser
}

// HasAnyRole reports whether the current user holds one of roles. Role
// strings are canonicalized before comparing.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok || !role.Valid() {
		return false
	}
	for _, want := range roles {
		if models.ParseRole(want) == role {
			return true
		}
	}
	return false
}

// IsSelf reports whether login names the signed-in user.
func IsSelf(r *http.Request, login string) bool {
	_, me, _, ok := UserCtx(r)
	return ok && me != "" && strings.EqualFold(strings.TrimSpace(login), me)
}

// CanEditTicket reports whether the current user may change a ticket.
// Admins can change any ticket; users only tickets assigned to them.
func CanEditTicket(r *http.Request, t models.Ticket) bool {
	if IsAdmin(r) {
		return true
	}
	return IsUser(r) && IsSelf(r, t.Collaborateur)
}
