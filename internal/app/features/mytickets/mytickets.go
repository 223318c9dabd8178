// internal/app/features/mytickets/mytickets.go
package mytickets

import (
	"fmt"
	"net/http"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/system/authz"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/formutil"
	"github.com/dalemusser/deskhub/internal/app/system/projection"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

type ticketCard struct {
	ID          int64
	Num         int64
	Designation string
	Status      string
	Priorite    string
	Echeance    string
	Team        string
	Module      string
	Client      string
	CanAccept   bool
}

type pageData struct {
	viewdata.BaseVM

	Status   string
	Statuses []string
	Cards    []ticketCard
}

// ServeMine lists the tickets whose collaborator is the signed-in user,
// optionally narrowed by ?status=.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "my tickets")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, directory.Tickets, directory.Teams, directory.Modules, directory.Clients)
	if err != nil {
		h.ErrLog.Upstream(w, r, "my tickets", err, "/dashboard")
		return
	}

	data := build(r, directory.LabelsOf(scr.Dir).Tickets(directory.TicketsOf(scr.Dir)))
	data.BaseVM = viewdata.NewBaseVM(w, r, "My Tickets", "/dashboard")

	if formutil.IsHTMX(r) {
		templates.RenderSnippet(w, "my_tickets_cards", data)
		return
	}
	templates.Render(w, r, "my_tickets", data)
}

// HandleAccept moves one of the user's pending tickets to Accepte. The
// change is persisted with a full-record update.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	id := formutil.ParseID(chi.URLParam(r, "id"))
	if id == 0 {
		uierrors.HTMXBadRequest(w, r, "Invalid ticket ID.", "/my/tickets")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "accept ticket")
	defer cancel()

	c := h.Screens.Client(r)
	t, err := c.GetTicket(ctx, id)
	if err != nil {
		h.ErrLog.Upstream(w, r, "get ticket", err, "/my/tickets")
		return
	}
	if !authz.IsSelf(r, t.Collaborateur) {
		uierrors.HTMXForbidden(w, r, "This ticket is not assigned to you.", "/my/tickets")
		return
	}
	if !t.IsPending() {
		uierrors.HTMXBadRequest(w, r, fmt.Sprintf("Ticket #%d is no longer pending.", t.NumTicket), "/my/tickets")
		return
	}

	t.Status = models.StatusAccepted
	if _, err := c.UpdateTicket(ctx, id, t); err != nil {
		h.ErrLog.Upstream(w, r, "accept ticket", err, "/my/tickets")
		return
	}

	h.AuditLog.TicketAccepted(ctx, r, id)
	flash.Add(w, r, flash.Success, fmt.Sprintf("Ticket #%d accepted.", t.NumTicket))
	formutil.Done(w, r, "/my/tickets")
}

func build(r *http.Request, all []models.Ticket) pageData {
	_, me, _, _ := authz.UserCtx(r)
	status := r.URL.Query().Get("status")

	data := pageData{Status: status, Statuses: []string{projection.AllOption}}
	for _, s := range models.TicketStatuses {
		data.Statuses = append(data.Statuses, string(s))
	}
	if me == "" {
		return data
	}

	mine := projection.TicketFilter{Collaborator: me, Status: status}.Apply(all)
	for _, t := range mine {
		data.Cards = append(data.Cards, ticketCard{
			ID:          t.ID,
			Num:         t.NumTicket,
			Designation: t.Designation,
			Status:      string(t.Status),
			Priorite:    t.Priorite,
			Echeance:    t.Echeance,
			Team:        models.RefName(t.IdEquip),
			Module:      models.RefName(t.IdModule),
			Client:      models.RefName(t.IdClient),
			CanAccept:   t.IsPending(),
		})
	}
	return data
}
