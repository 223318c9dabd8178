// internal/app/features/teams/list.go
package teams

import (
	"net/http"

	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/projection"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// ServeList handles GET /teams (with optional ?q= and ?assigned=1).
// HX-Target="teams-table-wrap" gets just the table.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list teams")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, directory.Teams)
	if err != nil {
		h.ErrLog.Upstream(w, r, "list teams", err, "/dashboard")
		return
	}

	f := projection.ListFilterFromQuery(r.URL.Query())
	all := directory.TeamsOf(scr.Dir)
	shown := projection.Teams(all, f)

	data := listData{
		BaseVM:   viewdata.NewBaseVM(w, r, "Teams", "/dashboard"),
		Q:        f.Search,
		Assigned: f.HasAssignments,
		Total:    len(all),
		Shown:    len(shown),
	}
	for _, t := range shown {
		data.Rows = append(data.Rows, teamRow{
			ID:        t.ID,
			Name:      t.NomEquipe,
			CreatedOn: t.CreationDate.Date(),
			CreatedBy: t.CreationUser,
			Tickets:   len(t.TicketList),
			Users:     len(t.UtilisateurList),
		})
	}

	if r.Header.Get("HX-Target") == "teams-table-wrap" {
		templates.RenderSnippet(w, "teams_table", data)
		return
	}
	templates.Render(w, r, "teams_list", data)
}
