// internal/app/features/users/list.go
package users

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

// ServeList handles GET /users (with optional ?q= search and ?assigned=1).
// It supports HTMX partial refresh of the table when HX-Target="users-table-wrap".
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list users")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, directory.Users, directory.Teams, directory.Postes)
	if err != nil {
		h.ErrLog.Upstream(w, r, "list users", err, "/dashboard")
		return
	}

	f := projection.ListFilterFromQuery(r.URL.Query())
	all := directory.LabelsOf(scr.Dir).Users(directory.UsersOf(scr.Dir))
	_, me, _, _ := authz.UserCtx(r)

	data := listData{
		BaseVM:   viewdata.NewBaseVM(w, r, "Users", "/dashboard"),
		Q:        f.Search,
		Assigned: f.HasAssignments,
		Stats:    projection.StatsForUsers(all),
		Rows:     rows(projection.Users(all, f), me),
	}
	data.Shown = len(data.Rows)

	if r.Header.Get("HX-Target") == "users-table-wrap" {
		templates.RenderSnippet(w, "users_table", data)
		return
	}
	templates.Render(w, r, "users_list", data)
}

func rows(users []models.User, me string) []userRow {
	out := make([]userRow, 0, len(users))
	for _, u := range users {
		out = append(out, userRow{
			ID:        u.ID,
			Login:     u.Login,
			Role:      u.Role.String(),
			Actif:     u.Actif,
			Team:      models.RefName(u.IdEquip),
			Poste:     models.RefName(u.IdPoste),
			CreatedOn: u.CreationDate.Date(),
			IsSelf:    u.Login == me,
		})
	}
	return out
}
