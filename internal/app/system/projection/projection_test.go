package projection_test

import (
	"net/url"
	"testing"

	"github.com/dalemusser/deskhub/internal/app/system/projection"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(ts []models.Ticket) []int64 {
	out := make([]int64, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func ticket(id int64, prio string, st models.TicketStatus, due string) models.Ticket {
	return models.Ticket{ID: id, NumTicket: id, Priorite: prio, Status: st, Echeance: due}
}

func TestProject_NoPredicatesIsIdentity(t *testing.T) {
	items := []int{3, 1, 2}
	assert.Equal(t, items, projection.Project(items))
	assert.Equal(t, items, projection.Project(items, nil, projection.Equals(func(int) string { return "" }, projection.AllOption)))
}

func TestProject_ANDSemantics(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	even := projection.Predicate[int](func(n int) bool { return n%2 == 0 })
	big := projection.Predicate[int](func(n int) bool { return n > 5 })

	got := projection.Project(items, even, big)
	assert.Equal(t, []int{6, 8, 10}, got)

	for _, n := range items {
		want := even(n) && big(n)
		assert.Equal(t, want, contains(got, n), "n=%d", n)
	}
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	items := []int{1, 2, 3}
	_ = projection.Project(items, func(n int) bool { return n != 2 })
	assert.Equal(t, []int{1, 2, 3}, items)
}

// Scenario C: priority Haute, status All over 3 Haute and 2 Basse tickets
// yields the 3 Haute tickets ascending by due date.
func TestTicketFilter_PriorityScenario(t *testing.T) {
	tickets := []models.Ticket{
		ticket(1, "Haute", models.StatusPending, "2025-03-10"),
		ticket(2, "Basse", models.StatusPending, "2025-01-01"),
		ticket(3, "Haute", models.StatusAccepted, "2025-01-15"),
		ticket(4, "Basse", models.StatusRefused, "2025-02-01"),
		ticket(5, "Haute", models.StatusRefused, "2025-02-20"),
	}
	f := projection.TicketFilter{Priority: "Haute", Status: projection.AllOption}

	assert.Equal(t, []int64{3, 5, 1}, ids(f.Apply(tickets)))
}

func TestTicketFilter_AllDimensions(t *testing.T) {
	alpha := &models.Ref{ID: 1, Name: "Alpha"}
	beta := &models.Ref{ID: 2, Name: "Beta"}
	web := &models.Ref{ID: 9, Name: "Web"}
	tickets := []models.Ticket{
		{ID: 1, NumTicket: 101, Designation: "Printer jam", Priorite: "Haute", Status: models.StatusPending, IdEquip: alpha, IdModule: web, Collaborateur: "bob"},
		{ID: 2, NumTicket: 102, Designation: "VPN down", Priorite: "Haute", Status: models.StatusPending, IdEquip: beta, IdModule: web},
		{ID: 3, NumTicket: 103, Designation: "printer toner", Priorite: "Basse", Status: models.StatusAccepted, IdEquip: alpha},
	}

	tests := []struct {
		name string
		f    projection.TicketFilter
		want []int64
	}{
		{"none", projection.TicketFilter{}, []int64{1, 2, 3}},
		{"team", projection.TicketFilter{Team: "Alpha"}, []int64{1, 3}},
		{"module", projection.TicketFilter{Module: "Web"}, []int64{1, 2}},
		{"status", projection.TicketFilter{Status: "Accepte"}, []int64{3}},
		{"search folds case", projection.TicketFilter{Search: "PRINTER"}, []int64{1, 3}},
		{"search by number", projection.TicketFilter{Search: "102"}, []int64{2}},
		{"collaborator", projection.TicketFilter{Collaborator: "bob"}, []int64{1}},
		{"combined", projection.TicketFilter{Team: "Alpha", Priority: "Haute", Search: "printer"}, []int64{1}},
		{"no match", projection.TicketFilter{Team: "Gamma"}, []int64{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(projection.Project(tickets, tc.f.Predicates()...)))
		})
	}
}

func TestSortByDueDate_StableAndInvalidLast(t *testing.T) {
	tickets := []models.Ticket{
		ticket(1, "", "", ""),
		ticket(2, "", "", "2025-02-01"),
		ticket(3, "", "", "garbage"),
		ticket(4, "", "", "2025-01-01"),
		ticket(5, "", "", "2025-02-01"),
	}
	got := projection.SortByDueDate(tickets)
	assert.Equal(t, []int64{4, 2, 5, 1, 3}, ids(got))
	assert.Equal(t, int64(1), tickets[0].ID, "input untouched")
}

func TestOptions_UnionWithSentinel(t *testing.T) {
	tickets := []models.Ticket{
		{Priorite: "Haute"}, {Priorite: "Basse"}, {Priorite: "Haute"}, {Priorite: ""},
	}
	assert.Equal(t, []string{"All", "Haute", "Basse"}, projection.Options(tickets, projection.TicketPriority))
	assert.Equal(t, []string{"All"}, projection.Options([]models.Ticket(nil), projection.TicketPriority))

	opts := projection.OptionsForTickets(tickets)
	assert.Equal(t, []string{"All", "En_Attende", "Accepte", "Refuse"}, opts.Statuses)
}

func TestTicketFilterFromQuery_RoundTrip(t *testing.T) {
	v := url.Values{"priority": {"Haute"}, "status": {"All"}, "q": {" jam "}}
	f := projection.TicketFilterFromQuery(v)
	assert.Equal(t, "Haute", f.Priority)
	assert.Equal(t, "jam", f.Search)
	assert.True(t, f.Active())
	assert.Equal(t, "priority=Haute&q=jam", f.Values().Encode())
	assert.False(t, projection.TicketFilter{Status: "All"}.Active())
}

func TestListFilters(t *testing.T) {
	teams := []models.Team{
		{ID: 1, NomEquipe: "Alpha", TicketList: []models.Ticket{{ID: 9}}},
		{ID: 2, NomEquipe: "Beta"},
		{ID: 3, NomEquipe: "alphabet"},
	}
	got := projection.Teams(teams, projection.ListFilter{Search: "alpha"})
	require.Len(t, got, 2)

	got = projection.Teams(teams, projection.ListFilter{Search: "alpha", HasAssignments: true})
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	users := []models.User{
		{Login: "bob", Actif: true, Role: models.RoleAdmin, IdEquip: models.NewRef(1)},
		{Login: "alice", Actif: false, Role: models.RoleUser},
	}
	assert.Len(t, projection.Users(users, projection.ListFilter{HasAssignments: true}), 1)
	assert.Equal(t, projection.UserStats{Total: 2, Active: 1, Admins: 1}, projection.StatsForUsers(users))

	f := projection.ListFilterFromQuery(url.Values{"q": {"x"}, "assigned": {"on"}})
	assert.Equal(t, projection.ListFilter{Search: "x", HasAssignments: true}, f)
}

func TestStatsForTickets(t *testing.T) {
	s := projection.StatsForTickets([]models.Ticket{
		{Status: models.StatusPending}, {Status: models.StatusPending}, {Status: models.StatusAccepted},
	})
	assert.Equal(t, projection.TicketStats{Total: 3, Pending: 2, Accepted: 1}, s)
}
