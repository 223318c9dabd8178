// internal/app/features/auditlog/types.go
package auditlog

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/paging"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
)

const dateLayout = "2006-01-02"

// listItem is one audit event row.
type listItem struct {
	Timestamp time.Time
	Category  string
	EventType string
	Actor     string
	ActorRole string
	Target    string // "ticket #42", or "" for auth events without an entity
	Parent    string // "team #1" for assignments
	Relation  string
	IP        string
	Success   bool
	Reason    string
	Details   map[string]string
}

// option is a value/label pair for the filter selects.
type option struct {
	Value    string
	Label    string
	Selected bool
}

// filters holds the query-string state of the audit screen.
type filters struct {
	Category  string
	EventType string
	Actor     string
	Entity    string
	EntityID  int64
	StartDate string
	EndDate   string
	Start     int
}

// filtersFromQuery reads the filter parameters. Dates that do not parse are
// dropped rather than rejected.
func filtersFromQuery(q url.Values) filters {
	f := filters{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Actor:     strings.TrimSpace(q.Get("actor")),
		Entity:    strings.TrimSpace(q.Get("entity")),
		StartDate: strings.TrimSpace(q.Get("start_date")),
		EndDate:   strings.TrimSpace(q.Get("end_date")),
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(q.Get("entity_id")), 10, 64); err == nil && id > 0 {
		f.EntityID = id
	}
	if _, err := time.Parse(dateLayout, f.StartDate); err != nil {
		f.StartDate = ""
	}
	if _, err := time.Parse(dateLayout, f.EndDate); err != nil {
		f.EndDate = ""
	}
	return f
}

// query converts the screen filters into a store query for one page.
func (f filters) query() audit.QueryFilter {
	qf := audit.QueryFilter{
		Category:  f.Category,
		EventType: f.EventType,
		Actor:     f.Actor,
		Entity:    f.Entity,
		EntityID:  f.EntityID,
		Limit:     paging.PageSize,
		Offset:    paging.Skip(f.Start),
	}
	if t, err := time.Parse(dateLayout, f.StartDate); err == nil {
		qf.StartTime = &t
	}
	if t, err := time.Parse(dateLayout, f.EndDate); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		qf.EndTime = &end
	}
	return qf
}

// values encodes the filters without the page position, for pager links.
func (f filters) values() template.URL {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("category", f.Category)
	set("event_type", f.EventType)
	set("actor", f.Actor)
	set("entity", f.Entity)
	if f.EntityID > 0 {
		v.Set("entity_id", strconv.FormatInt(f.EntityID, 10))
	}
	set("start_date", f.StartDate)
	set("end_date", f.EndDate)
	return template.URL(v.Encode())
}

// listData is the view model for the audit page.
type listData struct {
	viewdata.BaseVM

	Filter     filters
	Query      template.URL // encoded filters for pager links
	Categories []option
	EventTypes []option
	Entities   []option

	Items []listItem
	Page  paging.Range
}

func selectOptions(values []string, label func(string) string, selected string) []option {
	out := []option{{Value: "", Label: "All", Selected: selected == ""}}
	for _, v := range values {
		out = append(out, option{Value: v, Label: label(v), Selected: v == selected})
	}
	return out
}

var categoryLabels = map[string]string{
	audit.CategoryAuth:  "Authentication",
	audit.CategoryAdmin: "Administration",
	audit.CategoryWork:  "Ticket work",
}

func categoryOptions(selected string) []option {
	return selectOptions([]string{audit.CategoryAuth, audit.CategoryAdmin, audit.CategoryWork},
		func(v string) string { return categoryLabels[v] }, selected)
}

// eventTypesForCategory lists the event types a category can hold. An empty
// category lists them all.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventLoginRejectedRole,
		audit.EventLogout,
		audit.EventSessionExpired,
		audit.EventPasswordChanged,
		audit.EventAccountToggled,
	}
	adminEvents := []string{
		audit.EventCreated,
		audit.EventUpdated,
		audit.EventDeleted,
		audit.EventAssigned,
		audit.EventUnassigned,
		audit.EventAdminRoleTransfer,
	}
	workEvents := []string{
		audit.EventAccepted,
		audit.EventUpdated,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case audit.CategoryWork:
		return workEvents
	case "":
		all := append(append([]string{}, authEvents...), adminEvents...)
		return append(all, audit.EventAccepted)
	default:
		return nil
	}
}

func eventLabel(v string) string {
	return strings.ReplaceAll(v, "_", " ")
}

func entityOptions(selected string) []option {
	return selectOptions([]string{audit.EntityUser, audit.EntityTicket, audit.EntityTeam, audit.EntityModule, audit.EntityPoste},
		func(v string) string { return v }, selected)
}

func toItem(e audit.Event) listItem {
	it := listItem{
		Timestamp: e.Timestamp,
		Category:  e.Category,
		EventType: e.EventType,
		Actor:     e.Actor,
		ActorRole: e.ActorRole,
		Relation:  e.Relation,
		IP:        e.IP,
		Success:   e.Success,
		Reason:    e.FailureReason,
		Details:   e.Details,
	}
	if e.Entity != "" {
		it.Target = e.Entity + " #" + strconv.FormatInt(e.EntityID, 10)
	}
	if e.Parent != "" {
		it.Parent = e.Parent + " #" + strconv.FormatInt(e.ParentID, 10)
	}
	return it
}
