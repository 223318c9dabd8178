package projection

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/dalemusser/deskhub/internal/domain/models"
)

// TicketFilter is the filter state of a ticket list. Empty or AllOption
// fields are unconstrained.
type TicketFilter struct {
	Priority     string
	Status       string
	Team         string // team display name
	Module       string // module display name
	Search       string // over designation and ticket number
	Collaborator string // assignee login
}

// TicketFilterFromQuery reads a TicketFilter from query parameters:
// priority, status, team, module, q, collaborator.
func TicketFilterFromQuery(v url.Values) TicketFilter {
	get := func(k string) string { return strings.TrimSpace(v.Get(k)) }
	return TicketFilter{
		Priority:     get("priority"),
		Status:       get("status"),
		Team:         get("team"),
		Module:       get("module"),
		Search:       get("q"),
		Collaborator: get("collaborator"),
	}
}

// Values encodes the filter back into query parameters, omitting
// unconstrained fields.
func (f TicketFilter) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if !Unconstrained(val) {
			v.Set(k, val)
		}
	}
	set("priority", f.Priority)
	set("status", f.Status)
	set("team", f.Team)
	set("module", f.Module)
	set("q", f.Search)
	set("collaborator", f.Collaborator)
	return v
}

// Active reports whether any dimension is constrained.
func (f TicketFilter) Active() bool {
	return len(f.Values()) > 0
}

// Predicates returns one predicate per constrained dimension.
func (f TicketFilter) Predicates() []Predicate[models.Ticket] {
	return []Predicate[models.Ticket]{
		Equals(TicketPriority, f.Priority),
		Equals(TicketStatus, f.Status),
		Equals(TicketTeam, f.Team),
		Equals(TicketModule, f.Module),
		Equals(func(t models.Ticket) string { return t.Collaborateur }, f.Collaborator),
		Contains(f.Search, TicketDesignation, TicketNumber),
	}
}

// Apply filters tickets and sorts the result by due date.
func (f TicketFilter) Apply(tickets []models.Ticket) []models.Ticket {
	return SortByDueDate(Project(tickets, f.Predicates()...))
}

// Ticket key functions.

func TicketPriority(t models.Ticket) string    { return strings.TrimSpace(t.Priorite) }
func TicketStatus(t models.Ticket) string      { return string(t.Status) }
func TicketTeam(t models.Ticket) string        { return models.RefName(t.IdEquip) }
func TicketModule(t models.Ticket) string      { return models.RefName(t.IdModule) }
func TicketDesignation(t models.Ticket) string { return t.Designation }
func TicketNumber(t models.Ticket) string      { return strconv.FormatInt(t.NumTicket, 10) }

// SortByDueDate returns tickets ordered by ascending due date. Tickets with
// an empty or unparsable due date go last. Ties keep their fetch order.
func SortByDueDate(tickets []models.Ticket) []models.Ticket {
	return SortStable(tickets, func(a, b models.Ticket) bool {
		da, okA := a.DueDate()
		db, okB := b.DueDate()
		switch {
		case okA && okB:
			return da.Before(db)
		case okA:
			return true
		default:
			return false
		}
	})
}

// TicketOptions holds the option lists of the ticket filter selects.
type TicketOptions struct {
	Priorities []string
	Statuses   []string
	Teams      []string
	Modules    []string
}

// OptionsForTickets derives the select options from the loaded tickets.
// Statuses always list every known status.
func OptionsForTickets(tickets []models.Ticket) TicketOptions {
	statuses := []string{AllOption}
	for _, s := range models.TicketStatuses {
		statuses = append(statuses, string(s))
	}
	return TicketOptions{
		Priorities: Options(tickets, TicketPriority),
		Statuses:   statuses,
		Teams:      Options(tickets, TicketTeam),
		Modules:    Options(tickets, TicketModule),
	}
}
