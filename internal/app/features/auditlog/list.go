// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"

	"github.com/dalemusser/deskhub/internal/app/system/paging"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ServeList handles GET /audit.
//
// Filters: category, event_type, actor, entity, entity_id, start_date and
// end_date (YYYY-MM-DD, inclusive). start is the 1-based row the page
// begins at.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit log list")
	defer cancel()

	f := filtersFromQuery(r.URL.Query())
	f.Start = paging.ParseStart(r)
	qf := f.query()

	events, err := h.Store.Query(ctx, qf)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		h.ErrLog.LogServerError(w, r, "database error", err, "The audit trail could not be loaded.", "/dashboard")
		return
	}
	total, err := h.Store.CountByFilter(ctx, qf)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		h.ErrLog.LogServerError(w, r, "database error", err, "The audit trail could not be loaded.", "/dashboard")
		return
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, toItem(e))
	}

	data := listData{
		BaseVM:     viewdata.NewBaseVM(w, r, "Audit trail", "/dashboard"),
		Filter:     f,
		Query:      f.values(),
		Categories: categoryOptions(f.Category),
		EventTypes: selectOptions(eventTypesForCategory(f.Category), eventLabel, f.EventType),
		Entities:   entityOptions(f.Entity),
		Items:      items,
		Page:       paging.ComputeRange(f.Start, len(items), total),
	}

	if r.Header.Get("HX-Target") == "audit-table-wrap" {
		templates.RenderSnippet(w, "audit_table", data)
		return
	}
	templates.Render(w, r, "audit_list", data)
}
