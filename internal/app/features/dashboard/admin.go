// internal/app/features/dashboard/admin.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/projection"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type adminData struct {
	viewdata.BaseVM

	Users   projection.UserStats
	Tickets projection.TicketStats

	TeamsCount   int
	ModulesCount int
	PostesCount  int

	Unassigned int // tickets with no team
	Upcoming   []models.Ticket
}

func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin dashboard")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r,
		directory.Users, directory.Tickets, directory.Teams, directory.Modules, directory.Postes)
	if err != nil {
		h.ErrLog.Upstream(w, r, "admin dashboard", err, "/")
		return
	}

	data := buildAdminData(scr.Dir)
	data.BaseVM = viewdata.NewBaseVM(w, r, "Admin Dashboard", "/")

	h.Log.Debug("admin dashboard served", zap.String("user", data.UserName))

	templates.Render(w, r, "admin_dashboard", data)
}

func buildAdminData(d *directory.Directory) adminData {
	tickets := directory.LabelsOf(d).Tickets(directory.TicketsOf(d))
	pending := projection.Project(tickets, projection.Equals(projection.TicketStatus, string(models.StatusPending)))

	unassigned := 0
	for _, t := range tickets {
		if t.IdEquip == nil {
			unassigned++
		}
	}

	return adminData{
		Users:        projection.StatsForUsers(directory.UsersOf(d)),
		Tickets:      projection.StatsForTickets(tickets),
		TeamsCount:   len(directory.TeamsOf(d)),
		ModulesCount: len(directory.ModulesOf(d)),
		PostesCount:  len(directory.PostesOf(d)),
		Unassigned:   unassigned,
		Upcoming:     firstN(projection.SortByDueDate(pending), upcomingLimit),
	}
}

func firstN(ts []models.Ticket, n int) []models.Ticket {
	if len(ts) > n {
		return ts[:n]
	}
	return ts
}
