package directory

import (
	"fmt"

	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/projection"
	"github.com/dalemusser/deskhub/internal/domain/models"
)

// ForClient registers the named backend collections on d, fetched through c.
// Unknown names are an error.
func ForClient(c *apiclient.Client, d *Directory, names ...string) error {
	for _, n := range names {
		switch n {
		case Users:
			Add(d, n, c.ListUsers)
		case Tickets:
			Add(d, n, c.ListTickets)
		case Teams:
			Add(d, n, c.ListTeams)
		case Modules:
			Add(d, n, c.ListModules)
		case Postes:
			Add(d, n, c.ListPostes)
		case Clients:
			Add(d, n, c.ListClients)
		default:
			return fmt.Errorf("directory: no backend collection %q", n)
		}
	}
	return nil
}

// Typed accessors for the backend collections.

func UsersOf(d *Directory) []models.User     { return Get[models.User](d, Users) }
func TicketsOf(d *Directory) []models.Ticket { return Get[models.Ticket](d, Tickets) }
func TeamsOf(d *Directory) []models.Team     { return Get[models.Team](d, Teams) }
func ModulesOf(d *Directory) []models.Module { return Get[models.Module](d, Modules) }
func PostesOf(d *Directory) []models.Poste   { return Get[models.Poste](d, Postes) }
func ClientsOf(d *Directory) []models.Client { return Get[models.Client](d, Clients) }

// Find returns the first item whose id matches.
func Find[T any](items []T, id int64, idOf func(T) int64) (T, bool) {
	for _, it := range items {
		if idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// LabelsOf resolves reference names against whichever of the teams, modules,
// postes and clients collections d has loaded.
func LabelsOf(d *Directory) projection.Labels {
	return projection.NewLabels(TeamsOf(d), ModulesOf(d), PostesOf(d), ClientsOf(d))
}
