// internal/app/features/teams/teamnew.go
package teams

import (
	"net/http"
	"time"

	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/authz"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/navigation"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/domain/models"
)

func newForm(w http.ResponseWriter, r *http.Request, title, name string) formData {
	data := formData{NomEquipe: name}
	formutil.SetBase(&data.Base, w, r, title, "/teams")
	return data
}

func renderForm(w http.ResponseWriter, r *http.Request, data formData) {
	page := "team_new"
	if data.IsEdit {
		page = "team_edit"
	}
	formutil.Render(w, r, page, "team_form", data)
}

// refused re-renders the form when the backend rejected the team.
func refused(w http.ResponseWriter, r *http.Request, err error, data formData) bool {
	if !apiclient.IsConflictOrNotFound(err) || apiclient.IsNotFound(err) {
		return false
	}
	data.SetError("The ticketing service rejected this team. The name may already be in use.")
	renderForm(w, r, data)
	return true
}

// ServeNew renders the New Team form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	renderForm(w, r, newForm(w, r, "New Team", ""))
}

// HandleCreate processes the New Team form.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/teams")
		return
	}
	name := formutil.Text(r, "nomEquipe")

	data := newForm(w, r, "New Team", name)
	data.Require("nomEquipe", "Team name", name)
	data.MaxLen("nomEquipe", "Team name", name, 100)
	if data.HasErrors() {
		renderForm(w, r, data)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create team")
	defer cancel()

	_, me, _, _ := authz.UserCtx(r)
	created, err := h.Screens.Client(r).CreateTeam(ctx, models.Team{
		NomEquipe:    name,
		CreationDate: models.MillisOf(time.Now()),
		CreationUser: me,
	})
	if err != nil {
		if refused(w, r, err, data) {
			return
		}
		h.ErrLog.Upstream(w, r, "create team", err, "/teams")
		return
	}

	h.AuditLog.EntityCreated(ctx, r, audit.EntityTeam, created.ID, created.NomEquipe)
	flash.Add(w, r, flash.Success, "Team "+created.NomEquipe+" created.")
	formutil.Done(w, r, navigation.SafeBackURL(r, navigation.TeamsBackURL))
}
