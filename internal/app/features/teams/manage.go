// internal/app/features/teams/manage.go
package teams

import (
	"context"
	"fmt"
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

// manageCollections is what the Manage Team page renders from.
var manageCollections = []string{directory.Teams, directory.Tickets, directory.Users}

// ServeManage renders the team with its tickets and users and the pickers
// for assigning more.
func (h *Handler) ServeManage(w http.ResponseWriter, r *http.Request) {
	id := teamID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid team ID.", "/teams")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "manage team")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, manageCollections...)
	if err != nil {
		h.ErrLog.Upstream(w, r, "manage team", err, "/teams")
		return
	}

	data, ok := buildManage(scr, id)
	if !ok {
		uierrors.RenderNotFound(w, r, "Team not found.", "/teams")
		return
	}
	data.BaseVM = viewdata.NewBaseVM(w, r, "Manage "+data.TeamName, "/teams")
	templates.Render(w, r, "team_manage", data)
}

// HandleAddTicket assigns a pending ticket (form: ticketID) to the team.
func (h *Handler) HandleAddTicket(w http.ResponseWriter, r *http.Request) {
	h.relate(w, r, "assign ticket", func(ctx context.Context, scr *screen.Screen, team int64) error {
		ed := relations.TeamTickets(scr.Client)
		child := formutil.ID(r, "ticketID")
		err := ed.Assign(ctx, scr.Dir, team, child)
		if relations.Saved(err) {
			h.AuditLog.Assigned(ctx, r, ed.Name, audit.EntityTicket, child, audit.EntityTeam, team)
		}
		return err
	})
}

// HandleRemoveTicket unassigns a ticket (form: ticketID, confirm=1).
func (h *Handler) HandleRemoveTicket(w http.ResponseWriter, r *http.Request) {
	h.relate(w, r, "unassign ticket", func(ctx context.Context, scr *screen.Screen, team int64) error {
		ed := relations.TeamTickets(scr.Client)
		child := formutil.ID(r, "ticketID")
		err := ed.Unassign(ctx, scr.Dir, child, formutil.Bool(r, "confirm"))
		if relations.Saved(err) {
			h.AuditLog.Unassigned(ctx, r, ed.Name, audit.EntityTicket, child, audit.EntityTeam, team)
		}
		return err
	})
}

// HandleAddUser moves a user (form: userID) into the team.
func (h *Handler) HandleAddUser(w http.ResponseWriter, r *http.Request) {
	h.relate(w, r, "assign user", func(ctx context.Context, scr *screen.Screen, team int64) error {
		ed := relations.TeamUsers(scr.Client)
		child := formutil.ID(r, "userID")
		err := ed.Assign(ctx, scr.Dir, team, child)
		if relations.Saved(err) {
			h.AuditLog.Assigned(ctx, r, ed.Name, audit.EntityUser, child, audit.EntityTeam, team)
		}
		return err
	})
}

// HandleRemoveUser takes a user (form: userID, confirm=1) out of the team.
func (h *Handler) HandleRemoveUser(w http.ResponseWriter, r *http.Request) {
	h.relate(w, r, "unassign user", func(ctx context.Context, scr *screen.Screen, team int64) error {
		ed := relations.TeamUsers(scr.Client)
		child := formutil.ID(r, "userID")
		err := ed.Unassign(ctx, scr.Dir, child, formutil.Bool(r, "confirm"))
		if relations.Saved(err) {
			h.AuditLog.Unassigned(ctx, r, ed.Name, audit.EntityUser, child, audit.EntityTeam, team)
		}
		return err
	})
}

// relate loads the manage collections, runs change, and answers with the
// refreshed assignments fragment (htmx) or a redirect to the manage page.
func (h *Handler) relate(w http.ResponseWriter, r *http.Request, op string, change func(context.Context, *screen.Screen, int64) error) {
	id := teamID(r)
	if id == 0 {
		uierrors.HTMXBadRequest(w, r, "Invalid team ID.", "/teams")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/teams")
		return
	}
	back := manageURL(id)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, op)
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, manageCollections...)
	if err != nil {
		h.ErrLog.Upstream(w, r, op, err, back)
		return
	}
	if _, ok := directory.Find(directory.TeamsOf(scr.Dir), id, teamKey); !ok {
		uierrors.HTMXNotFound(w, r, "Team not found.", "/teams")
		return
	}

	if err := change(ctx, scr, id); err != nil {
		h.ErrLog.Upstream(w, r, op, err, back)
		return
	}

	if !formutil.IsHTMX(r) {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	data, ok := buildManage(scr, id)
	if !ok {
		uierrors.HTMXNotFound(w, r, "Team not found.", "/teams")
		return
	}
	data.BaseVM = viewdata.NewBaseVM(w, r, "Manage "+data.TeamName, "/teams")
	templates.RenderSnippet(w, "team_assignments", data)
}

func teamKey(t models.Team) int64 { return t.ID }

// buildManage builds the page from the snapshot. Assigned lists come from
// the team as the backend materialized it; pickers from the editors.
func buildManage(scr *screen.Screen, id int64) (manageData, bool) {
	t, ok := directory.Find(directory.TeamsOf(scr.Dir), id, teamKey)
	if !ok {
		return manageData{}, false
	}

	data := manageData{
		TeamID:    t.ID,
		TeamName:  t.NomEquipe,
		CreatedOn: t.CreationDate.Date(),
		CreatedBy: t.CreationUser,
	}
	for _, tk := range t.TicketList {
		data.Tickets = append(data.Tickets, ticketItem{
			ID:          tk.ID,
			Num:         tk.NumTicket,
			Designation: tk.Designation,
			Status:      string(tk.Status),
			Priorite:    tk.Priorite,
			Echeance:    tk.Echeance,
		})
	}
	for _, u := range t.UtilisateurList {
		data.Users = append(data.Users, userItem{ID: u.ID, Login: u.Login})
	}

	data.AvailableTickets = formutil.Options(
		relations.TeamTickets(scr.Client).Candidates(id, directory.TicketsOf(scr.Dir)),
		func(tk models.Ticket) int64 { return tk.ID },
		func(tk models.Ticket) string {
			return fmt.Sprintf("#%d %s (%s)", tk.NumTicket, tk.Designation, tk.Status)
		},
		0, false)
	data.AvailableUsers = formutil.Options(
		relations.TeamUsers(scr.Client).Candidates(id, directory.UsersOf(scr.Dir)),
		func(u models.User) int64 { return u.ID },
		func(u models.User) string { return u.Login },
		0, false)
	return data, true
}
