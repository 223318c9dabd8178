package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/dalemusser/deskhub/internal/app/system/authz"
	"github.com/dalemusser/deskhub/internal/domain/models"
)

func withRole(role models.Role, login string) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	return auth.WithTestUser(req, &auth.SessionUser{UserID: 1, Login: login, Role: role, Token: "t"})
}

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		req  *http.Request
		want bool
	}{
		{"admin", withRole(models.RoleAdmin, "a"), true},
		{"user", withRole(models.RoleUser, "u"), false},
		{"unknown role", withRole(models.Role("auditor"), "x"), false},
		{"no user", httptest.NewRequest("GET", "/test", nil), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := authz.IsAdmin(tc.req); got != tc.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUserCtx_NoUser(t *testing.T) {
	role, login, id, ok := authz.UserCtx(httptest.NewRequest("GET", "/", nil))
	if ok || role != models.RoleUnknown || login != "" || id != 0 {
		t.Errorf("unexpected UserCtx: %q %q %d %v", role, login, id, ok)
	}
}

func TestHasAnyRole(t *testing.T) {
	req := withRole(models.RoleUser, "bob")
	if !authz.HasAnyRole(req, "ROLE_User") {
		t.Error("expected ROLE_User to match User")
	}
	if authz.HasAnyRole(req, "admin") {
		t.Error("expected admin not to match User")
	}
	if authz.HasAnyRole(withRole(models.Role("auditor"), "x"), "auditor") {
		t.Error("unknown roles never match")
	}
}

func TestCanEditTicket(t *testing.T) {
	tk := models.Ticket{ID: 1, Collaborateur: "bob"}

	if !authz.CanEditTicket(withRole(models.RoleAdmin, "alice"), tk) {
		t.Error("admin should edit any ticket")
	}
	if !authz.CanEditTicket(withRole(models.RoleUser, "Bob"), tk) {
		t.Error("assignee should edit own ticket")
	}
	if authz.CanEditTicket(withRole(models.RoleUser, "carol"), tk) {
		t.Error("other users should not edit the ticket")
	}
}
