// internal/app/features/users/new.go
package users

import (
	"net/http"
	"time"

	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/authz"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/navigation"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/domain/models"
)

// ServeNew renders the "New User" form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "new user form")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, directory.Teams, directory.Postes)
	if err != nil {
		h.ErrLog.Upstream(w, r, "new user form", err, "/users")
		return
	}

	renderForm(w, r, newForm(w, r, scr.Dir, "New User", input{Role: models.RoleUser, Actif: true}))
}

// HandleCreate processes the New User form submission.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/users")
		return
	}
	in := readInput(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create user")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, directory.Teams, directory.Postes)
	if err != nil {
		h.ErrLog.Upstream(w, r, "create user", err, "/users")
		return
	}

	data := newForm(w, r, scr.Dir, "New User", in)
	in.validate(&data)
	data.Require("password", "Password", in.Password)
	if data.HasErrors() {
		renderForm(w, r, data)
		return
	}

	_, me, _, _ := authz.UserCtx(r)
	created, err := scr.Client.CreateUser(ctx, models.User{
		Login:        in.Login,
		Password:     in.Password,
		Role:         in.Role,
		Actif:        in.Actif,
		CreationDate: models.MillisOf(time.Now()),
		CreationUser: me,
		IdEquip:      formutil.Ref(in.Team),
		IdPoste:      formutil.Ref(in.Poste),
	})
	if err != nil {
		if refused(w, r, err, data) {
			return
		}
		h.ErrLog.Upstream(w, r, "create user", err, "/users")
		return
	}

	h.AuditLog.EntityCreated(ctx, r, audit.EntityUser, created.ID, created.Login)
	flash.Add(w, r, flash.Success, "User "+created.Login+" created.")
	formutil.Done(w, r, navigation.SafeBackURL(r, navigation.UsersBackURL))
}
