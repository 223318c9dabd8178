package projection

import (
	"net/url"
	"strings"

	"github.com/dalemusser/deskhub/internal/domain/models"
)

// ListFilter is the filter state shared by the team, poste, module and user
// lists: a search over the name field and an "assigned only" switch.
type ListFilter struct {
	Search         string
	HasAssignments bool
}

// ListFilterFromQuery reads q and assigned=1 from query parameters.
func ListFilterFromQuery(v url.Values) ListFilter {
	a := strings.TrimSpace(v.Get("assigned"))
	return ListFilter{
		Search:         strings.TrimSpace(v.Get("q")),
		HasAssignments: a == "1" || a == "on" || a == "true",
	}
}

// Teams filters by team name; assigned means the team has tickets or users.
func Teams(items []models.Team, f ListFilter) []models.Team {
	return Project(items,
		Contains(f.Search, func(t models.Team) string { return t.NomEquipe }),
		Has(func(t models.Team) int { return len(t.TicketList) + len(t.UtilisateurList) }, f.HasAssignments),
	)
}

// Postes filters by designation or code; assigned means the poste has users.
func Postes(items []models.Poste, f ListFilter) []models.Poste {
	return Project(items,
		Contains(f.Search,
			func(p models.Poste) string { return p.Designation },
			func(p models.Poste) string { return p.Code }),
		Has(func(p models.Poste) int { return len(p.UtilisateurList) }, f.HasAssignments),
	)
}

// Modules filters by designation or code; assigned means the module has tickets.
func Modules(items []models.Module, f ListFilter) []models.Module {
	return Project(items,
		Contains(f.Search,
			func(m models.Module) string { return m.Designation },
			func(m models.Module) string { return m.Code }),
		Has(func(m models.Module) int { return len(m.TicketList) }, f.HasAssignments),
	)
}

// Users filters by login; assigned means the user belongs to a team.
func Users(items []models.User, f ListFilter) []models.User {
	return Project(items,
		Contains(f.Search, func(u models.User) string { return u.Login }),
		Has(func(u models.User) int {
			if u.IdEquip != nil {
				return 1
			}
			return 0
		}, f.HasAssignments),
	)
}

// UserStats summarizes a user list.
type UserStats struct {
	Total  int
	Active int
	Admins int
}

// StatsForUsers counts users, active users and admins.
func StatsForUsers(users []models.User) UserStats {
	s := UserStats{Total: len(users)}
	for _, u := range users {
		if u.Actif {
			s.Active++
		}
		if u.Role.IsAdmin() {
			s.Admins++
		}
	}
	return s
}

// TicketStats counts tickets per status.
type TicketStats struct {
	Total    int
	Pending  int
	Accepted int
	Refused  int
}

// StatsForTickets counts tickets per status.
func StatsForTickets(tickets []models.Ticket) TicketStats {
	s := TicketStats{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusAccepted:
			s.Accepted++
		case models.StatusRefused:
			s.Refused++
		}
	}
	return s
}
