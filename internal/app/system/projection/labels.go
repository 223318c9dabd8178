package projection

import "github.com/dalemusser/deskhub/internal/domain/models"

// Labels resolves reference display names by id against collections loaded
// in the same request. References the collections don't cover keep the name
// the backend embedded, if any.
type Labels struct {
	teams   map[int64]string
	modules map[int64]string
	postes  map[int64]string
	clients map[int64]string
}

// NewLabels indexes the given collections. Any of them may be nil.
func NewLabels(teams []models.Team, modules []models.Module, postes []models.Poste, clients []models.Client) Labels {
	l := Labels{
		teams:   make(map[int64]string, len(teams)),
		modules: make(map[int64]string, len(modules)),
		postes:  make(map[int64]string, len(postes)),
		clients: make(map[int64]string, len(clients)),
	}
	for _, t := range teams {
		l.teams[t.ID] = t.NomEquipe
	}
	for _, m := range modules {
		l.modules[m.ID] = m.Designation
	}
	for _, p := range postes {
		l.postes[p.ID] = p.Designation
	}
	for _, c := range clients {
		l.clients[c.ID] = c.FullName()
	}
	return l
}

// resolve returns a copy of r named from names, or r itself when nil or
// not covered.
func resolve(r *models.Ref, names map[int64]string) *models.Ref {
	if r == nil {
		return nil
	}
	name, ok := names[r.ID]
	if !ok || name == "" {
		return r
	}
	return &models.Ref{ID: r.ID, Name: name}
}

// Tickets returns copies of tickets with team, module and client names
// resolved. The input is not modified.
func (l Labels) Tickets(tickets []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, len(tickets))
	for i, t := range tickets {
		t.IdEquip = resolve(t.IdEquip, l.teams)
		t.IdModule = resolve(t.IdModule, l.modules)
		t.IdClient = resolve(t.IdClient, l.clients)
		out[i] = t
	}
	return out
}

// Users returns copies of users with team and poste names resolved.
func (l Labels) Users(users []models.User) []models.User {
	out := make([]models.User, len(users))
	for i, u := range users {
		u.IdEquip = resolve(u.IdEquip, l.teams)
		u.IdPoste = resolve(u.IdPoste, l.postes)
		out[i] = u
	}
	return out
}
