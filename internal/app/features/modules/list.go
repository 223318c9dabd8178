// internal/app/features/modules/list.go
package modules

import (
	"net/http"

	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/projection"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// ServeList handles GET /modules.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list modules")
	defer cancel()

	scr, err := h.Screens.Open(ctx, r, directory.Modules)
	if err != nil {
		h.ErrLog.Upstream(w, r, "list modules", err, "/dashboard")
		return
	}

	f := projection.ListFilterFromQuery(r.URL.Query())
	all := directory.ModulesOf(scr.Dir)
	shown := projection.Modules(all, f)

	data := listData{
		BaseVM:   viewdata.NewBaseVM(w, r, "Modules", "/dashboard"),
		Q:        f.Search,
		Assigned: f.HasAssignments,
		Total:    len(all),
		Shown:    len(shown),
	}
	for _, m := range shown {
		data.Rows = append(data.Rows, moduleRow{
			ID:          m.ID,
			Designation: m.Designation,
			Code:        m.Code,
			CreatedOn:   m.CreationDate.Date(),
			CreatedBy:   m.CreationUser,
			Tickets:     len(m.TicketList),
		})
	}

	if r.Header.Get("HX-Target") == "modules-table-wrap" {
		templates.RenderSnippet(w, "modules_table", data)
		return
	}
	templates.Render(w, r, "modules_list", data)
}
