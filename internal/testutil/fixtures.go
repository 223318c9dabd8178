package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Client returns an API client pointed at be with no session attached.
func Client(t testing.TB, be *Backend) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(apiclient.Config{BaseURL: be.URL(), Timeout: 5 * time.Second}, zap.NewNop())
	require.NoError(t, err)
	return c
}

// Directory returns an empty directory with the named collections
// registered against c.
func Directory(t testing.TB, c *apiclient.Client, names ...string) *directory.Directory {
	t.Helper()
	d := directory.New(zap.NewNop())
	require.NoError(t, directory.ForClient(c, d, names...))
	return d
}

// Fixtures is a small, consistent data set seeded into a Backend.
type Fixtures struct {
	Admin  models.User
	Bob    models.User
	Alice  models.User
	Alpha  models.Team
	Beta   models.Team
	Web    models.Module
	Desk   models.Poste
	Acme   models.Client
	Open   models.Ticket // pending, team Alpha, module Web, collaborator bob
	Done   models.Ticket // accepted, team Beta, collaborator alice
	Orphan models.Ticket // pending, unassigned
}

// Seed fills be with Fixtures and registers tokens for every login.
func Seed(be *Backend) Fixtures {
	var f Fixtures
	f.Alpha = be.AddTeam(models.Team{NomEquipe: "Alpha"})
	f.Beta = be.AddTeam(models.Team{NomEquipe: "Beta"})
	f.Web = be.AddModule(models.Module{Designation: "Web", Code: "WEB", CreationUser: "admin"})
	f.Desk = be.AddPoste(models.Poste{Designation: "Help desk", Code: "HD"})
	f.Acme = be.AddClient(models.Client{Nom: "Acme", Prenom: "Corp"})

	f.Admin = be.AddUser(models.User{Login: "admin", Password: "admin-pw", Role: models.RoleAdmin, Actif: true})
	f.Bob = be.AddUser(models.User{Login: "bob", Password: "bob-pw", Role: models.RoleUser, Actif: true,
		IdEquip: models.NewRef(f.Alpha.ID), IdPoste: models.NewRef(f.Desk.ID)})
	f.Alice = be.AddUser(models.User{Login: "alice", Password: "alice-pw", Role: models.RoleUser, Actif: false})

	f.Open = be.AddTicket(models.Ticket{NumTicket: 1, Designation: "Printer jam", Priorite: "Haute",
		Status: models.StatusPending, Echeance: "2024-05-10", Collaborateur: "bob",
		IdEquip: models.NewRef(f.Alpha.ID), IdModule: models.NewRef(f.Web.ID), IdClient: models.NewRef(f.Acme.ID)})
	f.Done = be.AddTicket(models.Ticket{NumTicket: 2, Designation: "VPN access", Priorite: "Basse",
		Status: models.StatusAccepted, Echeance: "2024-04-01", Collaborateur: "alice",
		IdEquip: models.NewRef(f.Beta.ID), IdClient: models.NewRef(f.Acme.ID)})
	f.Orphan = be.AddTicket(models.Ticket{NumTicket: 3, Designation: "Mail bounce", Priorite: "Moyenne",
		Status: models.StatusPending, Echeance: "2024-06-01", IdClient: models.NewRef(f.Acme.ID)})

	for _, login := range []string{"admin", "bob", "alice"} {
		be.Issue(login)
	}
	return f
}
