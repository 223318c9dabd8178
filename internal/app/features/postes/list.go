// internal/app/features/postes/list.go
package postes

import (
	"net/http"

	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/projection"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// ServeList handles GET /postes (?q= matches designation or code).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list postes")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, directory.Postes)
	if err != nil {
		h.ErrLog.Upstream(w, r, "list postes", err, "/dashboard")
		return
	}

	f := projection.ListFilterFromQuery(r.URL.Query())
	all := directory.PostesOf(scr.Dir)
	shown := projection.Postes(all, f)

	data := listData{
		BaseVM:   viewdata.NewBaseVM(w, r, "Postes", "/dashboard"),
		Q:        f.Search,
		Assigned: f.HasAssignments,
		Total:    len(all),
		Shown:    len(shown),
	}
	for _, p := range shown {
		data.Rows = append(data.Rows, posteRow{
			ID:          p.ID,
			Designation: p.Designation,
			Code:        p.Code,
			Users:       len(p.UtilisateurList),
		})
	}

	if r.Header.Get("HX-Target") == "postes-table-wrap" {
		templates.RenderSnippet(w, "postes_table", data)
		return
	}
	templates.Render(w, r, "postes_list", data)
}
