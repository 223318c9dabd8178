// internal/app/features/modules/tickets.go
package modules

import (
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

// Teams are loaded only to label each ticket with its team name.
var ticketCollections = []string{directory.Modules, directory.Tickets, directory.Teams}

func moduleKey(m models.Module) int64 { return m.ID }

// ServeTickets lists the tickets filed against the module.
func (h *Handler) ServeTickets(w http.ResponseWriter, r *http.Request) {
	id := moduleID(r)
	if id == 0 {
		uierrors.RenderBadRequest(w, r, "Invalid module ID.", "/modules")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "module tickets")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, ticketCollections...)
	if err != nil {
		h.ErrLog.Upstream(w, r, "module tickets", err, "/modules")
		return
	}
	data, ok := buildTickets(scr, id)
	if !ok {
		uierrors.RenderNotFound(w, r, "Module not found.", "/modules")
		return
	}
	data.BaseVM = viewdata.NewBaseVM(w, r, data.Designation, "/modules")
	templates.Render(w, r, "module_tickets", data)
}

// HandleAddTicket files a pending ticket (form: ticketID) under the module.
func (h *Handler) HandleAddTicket(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, "assign ticket to module", false)
}

// HandleRemoveTicket clears the module of a ticket (form: ticketID, confirm=1).
func (h *Handler) HandleRemoveTicket(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, "unassign ticket from module", true)
}

func (h *Handler) change(w http.ResponseWriter, r *http.Request, op string, remove bool) {
	id := moduleID(r)
	if id == 0 {
		uierrors.HTMXBadRequest(w, r, "Invalid module ID.", "/modules")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/modules")
		return
	}
	back := ticketsURL(id)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, op)
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, ticketCollections...)
	if err != nil {
		h.ErrLog.Upstream(w, r, op, err, back)
		return
	}
	if _, ok := directory.Find(directory.ModulesOf(scr.Dir), id, moduleKey); !ok {
		uierrors.HTMXNotFound(w, r, "Module not found.", "/modules")
		return
	}

	ed := relations.ModuleTickets(scr.Client)
	ticket := formutil.ID(r, "ticketID")
	if remove {
		err = ed.Unassign(ctx, scr.Dir, ticket, formutil.Bool(r, "confirm"))
	} else {
		err = ed.Assign(ctx, scr.Dir, id, ticket)
	}
	if relations.Saved(err) {
		if remove {
			h.AuditLog.Unassigned(ctx, r, ed.Name, audit.EntityTicket, ticket, audit.EntityModule, id)
		} else {
			h.AuditLog.Assigned(ctx, r, ed.Name, audit.EntityTicket, ticket, audit.EntityModule, id)
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
	data, _ := buildTickets(scr, id)
	data.BaseVM = viewdata.NewBaseVM(w, r, data.Designation, "/modules")
	templates.RenderSnippet(w, "module_tickets_body", data)
}

func buildTickets(scr *screen.Screen, id int64) (ticketsData, bool) {
	m, ok := directory.Find(directory.ModulesOf(scr.Dir), id, moduleKey)
	if !ok {
		return ticketsData{}, false
	}
	teamNames := make(map[int64]string)
	for _, t := range directory.TeamsOf(scr.Dir) {
		teamNames[t.ID] = t.NomEquipe
	}

	data := ticketsData{ModuleID: m.ID, Designation: m.Designation, Code: m.Code}
	for _, tk := range m.TicketList {
		data.Tickets = append(data.Tickets, ticketItem{
			ID:          tk.ID,
			Num:         tk.NumTicket,
			Designation: tk.Designation,
			Status:      string(tk.Status),
			Team:        teamNames[models.RefID(tk.IdEquip)],
		})
	}
	data.Available = formutil.Options(
		relations.ModuleTickets(scr.Client).Candidates(id, directory.TicketsOf(scr.Dir)),
		func(tk models.Ticket) int64 { return tk.ID },
		func(tk models.Ticket) string { return fmt.Sprintf("#%d %s", tk.NumTicket, tk.Designation) },
		0, false)
	return data, true
}
