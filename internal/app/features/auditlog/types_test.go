package auditlog

import (
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/paging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltersFromQuery(t *testing.T) {
	q := url.Values{
		"category":   {" admin "},
		"event_type": {"assigned"},
		"actor":      {"admin"},
		"entity":     {"ticket"},
		"entity_id":  {"42"},
		"start_date": {"2026-03-01"},
		"end_date":   {"03/31/2026"},
	}
	f := filtersFromQuery(q)

	assert.Equal(t, "admin", f.Category)
	assert.Equal(t, "assigned", f.EventType)
	assert.Equal(t, int64(42), f.EntityID)
	assert.Equal(t, "2026-03-01", f.StartDate)
	assert.Empty(t, f.EndDate, "unparseable dates are dropped")
}

func TestFiltersFromQuery_BadEntityID(t *testing.T) {
	for _, v := range []string{"", "x", "-3", "0"} {
		f := filtersFromQuery(url.Values{"entity_id": {v}})
		assert.Zero(t, f.EntityID, v)
	}
}

func TestFilters_Query(t *testing.T) {
	f := filters{Category: audit.CategoryAuth, StartDate: "2026-03-01", EndDate: "2026-03-01", Start: 51}
	qf := f.query()

	assert.Equal(t, int64(paging.PageSize), qf.Limit)
	assert.Equal(t, int64(50), qf.Offset)
	require.NotNil(t, qf.StartTime)
	require.NotNil(t, qf.EndTime)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *qf.StartTime)
	assert.True(t, qf.EndTime.After(time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)), "end date is inclusive")
	assert.True(t, qf.EndTime.Before(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))
}

func TestFilters_Values(t *testing.T) {
	f := filters{Category: audit.CategoryAdmin, Actor: "bob", EntityID: 7, Start: 101}
	v, err := url.ParseQuery(string(f.values()))
	require.NoError(t, err)

	assert.Equal(t, "admin", v.Get("category"))
	assert.Equal(t, "bob", v.Get("actor"))
	assert.Equal(t, "7", v.Get("entity_id"))
	assert.Empty(t, v.Get("start"), "the pager adds its own start")
	assert.NotContains(t, v, "entity")
}

func TestEventTypesForCategory(t *testing.T) {
	assert.Contains(t, eventTypesForCategory(audit.CategoryAuth), audit.EventLoginFailed)
	assert.NotContains(t, eventTypesForCategory(audit.CategoryAuth), audit.EventAssigned)
	assert.Equal(t, []string{audit.EventAccepted, audit.EventUpdated}, eventTypesForCategory(audit.CategoryWork))
	assert.Nil(t, eventTypesForCategory("bogus"))

	all := eventTypesForCategory("")
	seen := map[string]bool{}
	for _, e := range all {
		assert.False(t, seen[e], "duplicate %s", e)
		seen[e] = true
	}
	assert.True(t, seen[audit.EventAccepted])
}

func TestSelectOptions_MarksSelected(t *testing.T) {
	opts := categoryOptions(audit.CategoryWork)
	require.Len(t, opts, 4)
	assert.Equal(t, "All", opts[0].Label)
	assert.False(t, opts[0].Selected)
	assert.True(t, opts[3].Selected)
	assert.Equal(t, "Ticket work", opts[3].Label)
}

func TestToItem(t *testing.T) {
	it := toItem(audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAssigned,
		Entity:    audit.EntityTicket,
		EntityID:  42,
		Parent:    audit.EntityTeam,
		ParentID:  1,
		Relation:  "team-tickets",
		Success:   true,
	})
	assert.Equal(t, "ticket #42", it.Target)
	assert.Equal(t, "team #1", it.Parent)

	it = toItem(audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout})
	assert.Empty(t, it.Target)
	assert.Empty(t, it.Parent)
}
