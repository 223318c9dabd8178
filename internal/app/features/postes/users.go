// internal/app/features/postes/users.go
package postes

import (
	"net/http"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/relations"
	"github.com/dalemusser/deskhub/internal/app/system/screen"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

var usersCollections = []string{directory.Postes, directory.Users}

func posteKey(p models.Poste) int64 { return p.ID }

// ServeUsers lists the poste's users with a picker for adding more.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	id := posteID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid poste ID.", "/postes")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "poste users")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, usersCollections...)
	if err != nil {
		h.ErrLog.Upstream(w, r, "poste users", err, "/postes")
		return
	}
	data, ok := buildUsers(scr, id)
	if !ok {
		uierrors.RenderNotFound(w, r, "Poste not found.", "/postes")
		return
	}
	data.BaseVM = viewdata.NewBaseVM(w, r, data.Designation, "/postes")
	templates.Render(w, r, "poste_users", data)
}

// HandleAddUser sets the poste on a user (form: userID).
func (h *Handler) HandleAddUser(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, "assign user to poste", false)
}

// HandleRemoveUser clears the poste of a user (form: userID, confirm=1).
func (h *Handler) HandleRemoveUser(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, "unassign user from poste", true)
}

func (h *Handler) change(w http.ResponseWriter, r *http.Request, op string, remove bool) {
	id := posteID(r)
	if id == 0 {
		uierrors.HTMXBadRequest(w, r, "Invalid poste ID.", "/postes")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/postes")
		return
	}
	back := usersURL(id)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, op)
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, usersCollections...)
	if err != nil {
		h.ErrLog.Upstream(w, r, op, err, back)
		return
	}
	if _, ok := directory.Find(directory.PostesOf(scr.Dir), id, posteKey); !ok {
		uierrors.HTMXNotFound(w, r, "Poste not found.", "/postes")
		return
	}

	ed := relations.PosteUsers(scr.Client)
	user := formutil.ID(r, "userID")
	if remove {
		err = ed.Unassign(ctx, scr.Dir, user, formutil.Bool(r, "confirm"))
	} else {
		err = ed.Assign(ctx, scr.Dir, id, user)
	}
	if relations.Saved(err) {
		if remove {
			h.AuditLog.Unassigned(ctx, r, ed.Name, audit.EntityUser, user, audit.EntityPoste, id)
		} else {
			h.AuditLog.Assigned(ctx, r, ed.Name, audit.EntityUser, user, audit.EntityPoste, id)
		}
	}
	if err != nil {
		h.ErrLog.Upstream(w, r, op, err, back)
		return
	}

	if !formutil.IsHTMX(r) {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	data, _ := buildUsers(scr, id)
	data.BaseVM = viewdata.NewBaseVM(w, r, data.Designation, "/postes")
	templates.RenderSnippet(w, "poste_users_body", data)
}

func buildUsers(scr *screen.Screen, id int64) (usersData, bool) {
	p, ok := directory.Find(directory.PostesOf(scr.Dir), id, posteKey)
	if !ok {
		return usersData{}, false
	}
	data := usersData{PosteID: p.ID, Designation: p.Designation, Code: p.Code}
	for _, u := range p.UtilisateurList {
		data.Users = append(data.Users, userItem{ID: u.ID, Login: u.Login, Actif: u.Actif})
	}
	data.Available = formutil.Options(
		relations.PosteUsers(scr.Client).Candidates(id, directory.UsersOf(scr.Dir)),
		func(u models.User) int64 { return u.ID },
		func(u models.User) string { return u.Login },
		0, false)
	return data, true
}
