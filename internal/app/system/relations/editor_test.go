package relations_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/identity"
	"github.com/dalemusser/deskhub/internal/app/system/relations"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/dalemusser/deskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	be  *testutil.Backend
	c   *apiclient.Client
	dir *directory.Directory
}

func setup(t *testing.T, collections ...string) *env {
	t.Helper()
	be := testutil.NewBackend(t)
	c, err := apiclient.New(apiclient.Config{BaseURL: be.URL(), Timeout: 5 * time.Second}, zap.NewNop())
	require.NoError(t, err)
	c = c.WithSession(identity.Session{Token: be.Issue("admin"), Role: models.RoleAdmin, Subject: "admin"})
	d := directory.New(zap.NewNop())
	require.NoError(t, directory.ForClient(c, d, collections...))
	return &env{be: be, c: c, dir: d}
}

func ticketIDs(ts []models.Ticket) []int64 {
	out := []int64{}
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func userIDs(us []models.User) []int64 {
	out := []int64{}
	for _, u := range us {
		out = append(out, u.ID)
	}
	return out
}

func TestCandidates_ExcludesExactlyLinkedChildren(t *testing.T) {
	ed := relations.TeamUsers(nil)
	users := []models.User{
		{ID: 1, IdEquip: models.NewRef(5)},
		{ID: 2},
		{ID: 3, IdEquip: models.NewRef(6)},
		{ID: 4, IdEquip: models.NewRef(5)},
	}
	assert.Equal(t, []int64{2, 3}, userIDs(ed.Candidates(5, users)))
	assert.Equal(t, []int64{1, 4}, userIDs(ed.Assigned(5, users)))
	assert.Equal(t, []int64{1, 2, 4}, userIDs(ed.Candidates(6, users)))
}

func TestCandidates_EligibleRestricts(t *testing.T) {
	ed := relations.TeamTickets(nil)
	tickets := []models.Ticket{
		{ID: 1, Status: models.StatusPending},
		{ID: 2, Status: models.StatusAccepted},
		{ID: 3, Status: models.StatusPending, IdEquip: models.NewRef(9)},
		{ID: 4, Status: models.StatusPending, IdEquip: models.NewRef(1)},
	}
	assert.Equal(t, []int64{1, 3}, ticketIDs(ed.Candidates(1, tickets)))
}

// Scenario A: assigning pending ticket 42 to team Alpha shows it in Alpha's
// ticket list and removes it from Alpha's candidates.
func TestAssign_TicketToTeam(t *testing.T) {
	e := setup(t, directory.Teams, directory.Tickets)
	alpha := e.be.AddTeam(models.Team{ID: 1, NomEquipe: "Alpha"})
	e.be.AddTicket(models.Ticket{ID: 42, NumTicket: 42, Designation: "Printer", Status: models.StatusPending, Priorite: "Haute"})
	ctx := context.Background()
	require.NoError(t, e.dir.Load(ctx))

	ed := relations.TeamTickets(e.c)
	require.Contains(t, ticketIDs(ed.Candidates(alpha.ID, directory.TicketsOf(e.dir))), int64(42))

	require.NoError(t, ed.Assign(ctx, e.dir, alpha.ID, 42))

	teams := directory.TeamsOf(e.dir)
	require.Len(t, teams, 1)
	assert.Equal(t, []int64{42}, ticketIDs(teams[0].TicketList))
	assert.NotContains(t, ticketIDs(ed.Candidates(alpha.ID, directory.TicketsOf(e.dir))), int64(42))

	stored, _ := e.be.Ticket(42)
	assert.Equal(t, "Printer", stored.Designation, "unrelated fields survive")
	assert.Equal(t, "Haute", stored.Priorite)
}

// Scenario B: assigning bob to Alpha sets his team reference and removes him
// from Alpha's available users.
func TestAssign_UserToTeam(t *testing.T) {
	e := setup(t, directory.Teams, directory.Users)
	alpha := e.be.AddTeam(models.Team{ID: 1, NomEquipe: "Alpha"})
	e.be.AddUser(models.User{ID: 7, Login: "bob", Role: models.RoleUser, Actif: true})
	ctx := context.Background()
	require.NoError(t, e.dir.Load(ctx))

	ed := relations.TeamUsers(e.c)
	require.NoError(t, ed.Assign(ctx, e.dir, alpha.ID, 7))

	bob, ok := directory.Find(directory.UsersOf(e.dir), 7, func(u models.User) int64 { return u.ID })
	require.True(t, ok)
	require.NotNil(t, bob.IdEquip)
	assert.Equal(t, int64(1), bob.IdEquip.ID)
	assert.NotContains(t, userIDs(ed.Candidates(alpha.ID, directory.UsersOf(e.dir))), int64(7))
	assert.Equal(t, []int64{7}, userIDs(directory.TeamsOf(e.dir)[0].UtilisateurList))
}

func TestUnassign_ClearsReference(t *testing.T) {
	e := setup(t, directory.Postes, directory.Users)
	p := e.be.AddPoste(models.Poste{Designation: "Support", Code: "SUP"})
	u := e.be.AddUser(models.User{Login: "carol", IdPoste: models.NewRef(p.ID)})
	ctx := context.Background()
	require.NoError(t, e.dir.Load(ctx))

	ed := relations.PosteUsers(e.c)
	require.NoError(t, ed.Unassign(ctx, e.dir, u.ID, true))

	got, _ := directory.Find(directory.UsersOf(e.dir), u.ID, func(u models.User) int64 { return u.ID })
	assert.Nil(t, got.IdPoste)
	assert.Empty(t, directory.PostesOf(e.dir)[0].UtilisateurList)
}

func TestUnassign_TwiceIsHarmless(t *testing.T) {
	e := setup(t, directory.Modules, directory.Tickets)
	m := e.be.AddModule(models.Module{Designation: "Web", Code: "WEB"})
	tk := e.be.AddTicket(models.Ticket{Status: models.StatusPending, IdModule: models.NewRef(m.ID)})
	ctx := context.Background()
	require.NoError(t, e.dir.Load(ctx))

	ed := relations.ModuleTickets(e.c)
	require.NoError(t, ed.Unassign(ctx, e.dir, tk.ID, true))
	require.NotPanics(t, func() {
		_ = ed.Unassign(ctx, e.dir, tk.ID, true)
	})

	got, _ := directory.Find(directory.TicketsOf(e.dir), tk.ID, func(t models.Ticket) int64 { return t.ID })
	assert.Nil(t, got.IdModule)
	assert.Contains(t, ticketIDs(ed.Candidates(m.ID, directory.TicketsOf(e.dir))), tk.ID)
}

func TestAssign_ValidationMakesNoRequest(t *testing.T) {
	e := setup(t, directory.Teams, directory.Tickets)
	e.be.ResetCalls()

	err := relations.TeamTickets(e.c).Assign(context.Background(), e.dir, 1, 0)
	var ve *relations.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Choose a ticket.", ve.Message)
	assert.Empty(t, e.be.Calls())
}

func TestUnassign_RequiresConfirmation(t *testing.T) {
	e := setup(t, directory.Teams, directory.Users)
	e.be.ResetCalls()

	err := relations.TeamUsers(e.c).Unassign(context.Background(), e.dir, 7, false)
	assert.ErrorIs(t, err, relations.ErrConfirmationRequired)
	var ce *relations.ConfirmationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Remove this user from the team?", ce.Prompt())
	assert.Empty(t, e.be.Calls())
}

func TestAssign_BackendRejects(t *testing.T) {
	e := setup(t, directory.Teams, directory.Tickets)
	tk := e.be.AddTicket(models.Ticket{Status: models.StatusPending})
	ctx := context.Background()
	require.NoError(t, e.dir.Load(ctx))

	// Team 999 does not exist: the backend refuses the update.
	err := relations.TeamTickets(e.c).Assign(ctx, e.dir, 999, tk.ID)
	require.Error(t, err)
	assert.True(t, apiclient.IsConflictOrNotFound(err))

	// Missing child.
	err = relations.TeamTickets(e.c).Assign(ctx, e.dir, 999, 123456)
	assert.True(t, apiclient.IsNotFound(err))
}

func TestAssign_ReloadFailureKeepsSnapshot(t *testing.T) {
	e := setup(t, directory.Teams, directory.Tickets)
	team := e.be.AddTeam(models.Team{NomEquipe: "Alpha"})
	tk := e.be.AddTicket(models.Ticket{Status: models.StatusPending})
	ctx := context.Background()
	require.NoError(t, e.dir.Load(ctx))

	e.be.FailNext("GET /equipes", http.StatusServiceUnavailable)
	err := relations.TeamTickets(e.c).Assign(ctx, e.dir, team.ID, tk.ID)

	var re *relations.ReloadError
	require.True(t, errors.As(err, &re))
	assert.True(t, apiclient.IsTransient(err))
	assert.Empty(t, directory.TeamsOf(e.dir)[0].TicketList, "previous snapshot kept")

	stored, _ := e.be.Ticket(tk.ID)
	assert.True(t, stored.IdEquip.Points(team.ID), "mutation itself went through")
}

func TestSaved(t *testing.T) {
	assert.True(t, relations.Saved(nil))
	assert.True(t, relations.Saved(&relations.ReloadError{Collections: []string{directory.Teams}, Err: errors.New("down")}))
	assert.False(t, relations.Saved(&relations.ValidationError{Field: "child", Message: "Choose a ticket."}))
	assert.False(t, relations.Saved(relations.ErrConfirmationRequired))
	assert.False(t, relations.Saved(&apiclient.Error{Status: http.StatusConflict, Kind: apiclient.KindConflictOrNotFound}))
}

func TestAssign_KeepsUndeclaredTicketFields(t *testing.T) {
	e := setup(t)
	e.be.SetIDOnlyRefs(true)
	e.be.AddTeam(models.Team{ID: 1, NomEquipe: "Alpha"})
	e.be.AddClient(models.Client{ID: 3, Nom: "Durand"})
	e.be.AddTicket(models.Ticket{
		ID: 5, NumTicket: 42, Status: models.StatusPending, Priorite: "Haute", Echeance: "2024-05-01",
		IdClient: models.NewRef(3),
		Extra: models.Extra{
			"dateEffectationEquip": json.RawMessage(`1700000000000`),
			"description":          json.RawMessage(`"keep me"`),
		},
	})

	require.NoError(t, relations.TeamTickets(e.c).Assign(context.Background(), nil, 1, 5))

	body := e.be.LastBody("PUT /tickets/5")
	require.NotNil(t, body)
	assert.Equal(t, float64(1700000000000), body["dateEffectationEquip"])
	assert.Equal(t, "keep me", body["description"])
	assert.Equal(t, map[string]any{"id": float64(1)}, body["idEquip"])
	assert.Equal(t, map[string]any{"id": float64(3)}, body["idClient"])
}

func TestUnassign_KeepsUndeclaredUserFields(t *testing.T) {
	e := setup(t)
	e.be.AddPoste(models.Poste{ID: 2, Designation: "Desk 2"})
	e.be.AddUser(models.User{
		ID: 7, Login: "bob", Role: models.RoleUser, Actif: true, IdPoste: models.NewRef(2),
		Extra: models.Extra{"email": json.RawMessage(`"bob@example.com"`)},
	})

	require.NoError(t, relations.PosteUsers(e.c).Unassign(context.Background(), nil, 7, true))

	body := e.be.LastBody("PUT /utilisateurs/7")
	require.NotNil(t, body)
	assert.Equal(t, "bob@example.com", body["email"])
	assert.Nil(t, body["idPoste"])
}
