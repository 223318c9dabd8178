// internal/app/features/users/form.go
package users

import (
	"net/http"

	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// input is what the new and edit forms post.
type input struct {
	Login          string
	Password       string
	Role           models.Role
	Actif          bool
	Team           int64
	Poste          int64
	ChangePassword bool
}

func readInput(r *http.Request) input {
	return input{
		Login:          formutil.Text(r, "login"),
		Password:       formutil.Secret(r, "password"),
		Role:           models.ParseRole(r.FormValue("role")),
		Actif:          formutil.Bool(r, "actif"),
		Team:           formutil.ID(r, "team"),
		Poste:          formutil.ID(r, "poste"),
		ChangePassword: formutil.Bool(r, "change_password"),
	}
}

func fromUser(u models.User) input {
	return input{
		Login: u.Login,
		Role:  u.Role,
		Actif: u.Actif,
		Team:  models.RefID(u.IdEquip),
		Poste: models.RefID(u.IdPoste),
	}
}

// newForm builds the form view model with the parent selects from d.
func newForm(w http.ResponseWriter, r *http.Request, d *directory.Directory, title string, in input) formData {
	data := formData{
		Login:          in.Login,
		Role:           in.Role.String(),
		Actif:          in.Actif,
		ChangePassword: in.ChangePassword,
		Roles:          roleChoices,
		Teams: formutil.Options(directory.TeamsOf(d),
			func(t models.Team) int64 { return t.ID },
			func(t models.Team) string { return t.NomEquipe },
			in.Team, true),
		Postes: formutil.Options(directory.PostesOf(d),
			func(p models.Poste) int64 { return p.ID },
			func(p models.Poste) string { return p.Designation },
			in.Poste, true),
	}
	formutil.SetBase(&data.Base, w, r, title, "/users")
	return data
}

// validate checks the fields every form shares. Password is checked by
// the caller since edit only requires it when it is being changed.
func (in input) validate(data *formData) {
	data.Require("login", "Login", in.Login)
	data.MaxLen("login", "Login", in.Login, 100)
	if !in.Role.Valid() {
		data.FieldError("role", "Please choose a role.")
	}
}

func renderForm(w http.ResponseWriter, r *http.Request, data formData) {
	page := "user_new"
	if data.IsEdit {
		page = "user_edit"
	}
	formutil.Render(w, r, page, "user_form", data)
}

// refused re-renders the form when the backend rejected the record and
// reports whether it did. Other failures are left to the caller.
func refused(w http.ResponseWriter, r *http.Request, err error, data formData) bool {
	if !apiclient.IsConflictOrNotFound(err) || apiclient.IsNotFound(err) {
		return false
	}
	data.SetError("The ticketing service rejected this user. The login may already be taken, or the team or poste no longer exists.")
	renderForm(w, r, data)
	return true
}

func userID(r *http.Request) int64 {
	return formutil.ParseID(chi.URLParam(r, "id"))
}
