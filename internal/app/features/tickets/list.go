// internal/app/features/tickets/list.go
package tickets

import (
	"net/http"

	"github.com/dalemusser/deskhub/internal/app/system/authz"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/projection"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type ticketRow struct {
	ID            int64
	Num           int64
	Designation   string
	Status        string
	Pending       bool
	Priorite      string
	Echeance      string
	Collaborateur string
	Client        string
	Team          string
	Module        string
}

// filterSelect is one select of the filter bar.
type filterSelect struct {
	Name    string
	Label   string
	Options []string
	Value   string
}

type listData struct {
	viewdata.BaseVM

	Filter  projection.TicketFilter
	Selects []filterSelect
	Active  bool
	CanEdit bool
	Total   int
	Shown   int
	Rows    []ticketRow
}

// listCollections are loaded by the ticket list; the parents resolve the
// team, module and client names of id-only references.
var listCollections = []string{directory.Tickets, directory.Teams, directory.Modules, directory.Clients}

// ServeList handles GET /tickets with the priority, status, team, module,
// collaborator and q filters. Rows are ordered by due date.
// HX-Target="tickets-table-wrap" gets just the table.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list tickets")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, listCollections...)
	if err != nil {
		h.ErrLog.Upstream(w, r, "list tickets", err, "/dashboard")
		return
	}

	f := projection.TicketFilterFromQuery(r.URL.Query())
	all := directory.LabelsOf(scr.Dir).Tickets(directory.TicketsOf(scr.Dir))
	shown := f.Apply(all)

	data := listData{
		BaseVM:  viewdata.NewBaseVM(w, r, "Tickets", "/dashboard"),
		Filter:  f,
		Selects: selects(f, projection.OptionsForTickets(all)),
		Active:  f.Active(),
		CanEdit: authz.IsAdmin(r),
		Total:   len(all),
		Shown:   len(shown),
	}
	for _, t := range shown {
		data.Rows = append(data.Rows, rowOf(t))
	}

	if r.Header.Get("HX-Target") == "tickets-table-wrap" {
		templates.RenderSnippet(w, "tickets_table", data)
		return
	}
	templates.Render(w, r, "tickets_list", data)
}

func rowOf(t models.Ticket) ticketRow {
	return ticketRow{
		ID:            t.ID,
		Num:           t.NumTicket,
		Designation:   t.Designation,
		Status:        string(t.Status),
		Pending:       t.IsPending(),
		Priorite:      t.Priorite,
		Echeance:      t.Echeance,
		Collaborateur: t.Collaborateur,
		Client:        models.RefName(t.IdClient),
		Team:          models.RefName(t.IdEquip),
		Module:        models.RefName(t.IdModule),
	}
}

func selects(f projection.TicketFilter, o projection.TicketOptions) []filterSelect {
	return []filterSelect{
		{Name: "priority", Label: "Priority", Options: o.Priorities, Value: f.Priority},
		{Name: "status", Label: "Status", Options: o.Statuses, Value: f.Status},
		{Name: "team", Label: "Team", Options: o.Teams, Value: f.Team},
		{Name: "module", Label: "Module", Options: o.Modules, Value: f.Module},
	}
}
