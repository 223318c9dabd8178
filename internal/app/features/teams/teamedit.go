// internal/app/features/teams/teamedit.go
package teams

import (
	"net/http"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/navigation"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
)

// ServeEdit renders the Edit Team form.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id := teamID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid team ID.", "/teams")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "edit team form")
	defer cancel()

	t, err := h.Screens.Client(r).GetTeam(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get team", err, "/teams")
		return
	}

	data := newForm(w, r, "Edit Team", t.NomEquipe)
	data.ID, data.IsEdit = t.ID, true
	renderForm(w, r, data)
}

// HandleEdit renames a team. The assigned lists are left to the backend.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := teamID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid team ID.", "/teams")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/teams")
		return
	}
	name := formutil.Text(r, "nomEquipe")

	data := newForm(w, r, "Edit Team", name)
	data.ID, data.IsEdit = id, true
	data.Require("nomEquipe", "Team name", name)
	data.MaxLen("nomEquipe", "Team name", name, 100)
	if data.HasErrors() {
		renderForm(w, r, data)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update team")
	defer cancel()

	c := h.Screens.Client(r)
	t, err := c.GetTeam(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get team", err, "/teams")
		return
	}
	t.NomEquipe = name
	t.TicketList, t.UtilisateurList = nil, nil

	if _, err := c.UpdateTeam(ctx, id, t); err != nil {
		if refused(w, r, err, data) {
			return
		}
		h.ErrLog.Upstream(w, r, "update team", err, "/teams")
		return
	}

	h.AuditLog.EntityUpdated(ctx, r, audit.EntityTeam, id, name)
	flash.Add(w, r, flash.Success, "Team "+name+" updated.")
	formutil.Done(w, r, navigation.SafeBackURL(r, navigation.TeamsBackURL))
}
