// internal/app/features/dashboard/user.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/projection"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type userData struct {
	viewdata.BaseVM

	Mine         projection.TicketStats
	ClientsCount int
	Upcoming     []models.Ticket // my pending tickets, soonest first
}

func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user dashboard")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, directory.Tickets, directory.Teams, directory.Clients)
	if err != nil {
		h.ErrLog.Upstream(w, r, "user dashboard", err, "/")
		return
	}

	vm := viewdata.NewBaseVM(w, r, "Dashboard", "/")
	data := buildUserData(scr.Dir, vm.UserName)
	data.BaseVM = vm

	templates.Render(w, r, "user_dashboard", data)
}

func buildUserData(d *directory.Directory, login string) userData {
	mine := projection.TicketFilter{Collaborator: login}.Apply(directory.LabelsOf(d).Tickets(directory.TicketsOf(d)))
	pending := projection.Project(mine, func(t models.Ticket) bool { return t.IsPending() })

	return userData{
		Mine:         projection.StatsForTickets(mine),
		ClientsCount: len(directory.ClientsOf(d)),
		Upcoming:     firstN(pending, upcomingLimit),
	}
}
