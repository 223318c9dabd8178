package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Backend is an in-memory stand-in for the ticketing REST API.
//
// It serves the same paths as the real backend, requires a bearer token
// issued by /authenticate or Issue, embeds parent records in child
// references (unless SetIDOnlyRefs is on), and materializes each parent's
// assigned lists from the children on every read. Fields seeded through a
// model's Extra are stored and served like any other field.
type Backend struct {
	Server *httptest.Server

	mu      sync.Mutex
	nextID  int64
	users   map[int64]models.User
	tickets map[int64]models.Ticket
	teams   map[int64]models.Team
	modules map[int64]models.Module
	postes  map[int64]models.Poste
	clients map[int64]models.Client
	tokens  map[string]string // token -> login
	calls   []string
	bodies  map[string][]byte // "METHOD /path" -> last request body
	fail    map[string][]int  // "METHOD /path" -> queued statuses
	idOnly  bool

	// TokenIssuer, when set, builds the token returned by /authenticate.
	TokenIssuer func(u models.User) string
}

// NewBackend starts a fake backend that is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		nextID:  1000,
		users:   map[int64]models.User{},
		tickets: map[int64]models.Ticket{},
		teams:   map[int64]models.Team{},
		modules: map[int64]models.Module{},
		postes:  map[int64]models.Poste{},
		clients: map[int64]models.Client{},
		tokens:  map[string]string{},
		bodies:  map[string][]byte{},
		fail:    map[string][]int{},
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL to configure an API client with.
func (b *Backend) URL() string { return b.Server.URL }

// Issue registers and returns a token for login.
func (b *Backend) Issue(login string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	tok := "tok-" + login
	b.tokens[tok] = login
	return tok
}

// FailNext makes the next request matching op (e.g. "PUT /tickets/7" or
// "GET /equipes") answer with status.
func (b *Backend) FailNext(op string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[op] = append(b.fail[op], status)
}

// Calls returns every request received, in order, as "METHOD /path".
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// CountCalls returns how many requests started with prefix.
func (b *Backend) CountCalls(prefix string) int {
	n := 0
	for _, c := range b.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// SetIDOnlyRefs makes child references go out as a bare {"id": n}, with
// no embedded parent record.
func (b *Backend) SetIDOnlyRefs(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.idOnly = on
}

// LastBody returns the decoded body of the last request matching op, or nil.
func (b *Backend) LastBody(op string) map[string]any {
	b.mu.Lock()
	raw, ok := b.bodies[op]
	b.mu.Unlock()
	if !ok {
		return nil
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// ResetCalls clears the call log.
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

// ─── Seeding and inspection ──────────────────────────────────────────────────

func (b *Backend) AddUser(u models.User) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u.ID == 0 {
		u.ID = b.id()
	}
	b.users[u.ID] = u
	return u
}

func (b *Backend) AddTicket(t models.Ticket) models.Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t.ID == 0 {
		t.ID = b.id()
	}
	b.tickets[t.ID] = t
	return t
}

func (b *Backend) AddTeam(t models.Team) models.Team {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t.ID == 0 {
		t.ID = b.id()
	}
	b.teams[t.ID] = t
	return t
}

func (b *Backend) AddModule(m models.Module) models.Module {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m.ID == 0 {
		m.ID = b.id()
	}
	b.modules[m.ID] = m
	return m
}

func (b *Backend) AddPoste(p models.Poste) models.Poste {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == 0 {
		p.ID = b.id()
	}
	b.postes[p.ID] = p
	return p
}

func (b *Backend) AddClient(c models.Client) models.Client {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c.ID == 0 {
		c.ID = b.id()
	}
	b.clients[c.ID] = c
	return c
}

// Ticket returns the stored ticket.
func (b *Backend) Ticket(id int64) (models.Ticket, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tickets[id]
	return t, ok
}

// User returns the stored user.
func (b *Backend) User(id int64) (models.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	return u, ok
}

// UserByLogin returns the stored user with login.
func (b *Backend) UserByLogin(login string) (models.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Login == login {
			return u, true
		}
	}
	return models.User{}, false
}

// TicketByNum returns the stored ticket with numTicket num.
func (b *Backend) TicketByNum(num int64) (models.Ticket, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tickets {
		if t.NumTicket == num {
			return t, true
		}
	}
	return models.Ticket{}, false
}

// Team returns the stored team.
func (b *Backend) Team(id int64) (models.Team, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.teams[id]
	return t, ok
}

// Module returns the stored module.
func (b *Backend) Module(id int64) (models.Module, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.modules[id]
	return m, ok
}

// Poste returns the stored poste.
func (b *Backend) Poste(id int64) (models.Poste, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.postes[id]
	return p, ok
}

func (b *Backend) id() int64 {
	b.nextID++
	return b.nextID
}

// ─── HTTP ────────────────────────────────────────────────────────────────────

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)

	r.Post("/authenticate", b.authenticate)
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Group(func(pr chi.Router) {
		pr.Use(b.requireToken)

		pr.Get("/me", b.me)
		pr.Post("/verify-password", b.verifyPassword)
		pr.Post("/save", b.createUser)
		pr.Get("/clients", func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			writeJSON(w, http.StatusOK, sorted(b.clients))
		})

		pr.Get("/utilisateurs", b.listUsers)
		pr.Get("/utilisateurs/{id}", b.getUser)
		pr.Put("/utilisateurs/{id}", b.putUser)
		pr.Delete("/utilisateurs/{id}", b.deleteUser)

		pr.Get("/tickets", b.listTickets)
		pr.Post("/tickets", b.createTicket)
		pr.Get("/tickets/{id}", b.getTicket)
		pr.Put("/tickets/{id}", b.putTicket)
		pr.Delete("/tickets/{id}", b.deleteTicket)

		pr.Get("/equipes", b.listTeams)
		pr.Post("/equipes", b.createTeam)
		pr.Get("/equipes/{id}", b.getTeam)
		pr.Put("/equipes/{id}", b.putTeam)
		pr.Delete("/equipes/{id}", b.deleteTeam)

		pr.Get("/modules", b.listModules)
		pr.Post("/modules", b.createModule)
		pr.Get("/modules/{id}", b.getModule)
		pr.Put("/modules/{id}", b.putModule)
		pr.Delete("/modules/{id}", b.deleteModule)

		pr.Get("/postes", b.listPostes)
		pr.Post("/postes", b.createPoste)
		pr.Get("/postes/{id}", b.getPoste)
		pr.Put("/postes/{id}", b.putPoste)
		pr.Delete("/postes/{id}", b.deletePoste)
	})
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op := r.Method + " " + r.URL.Path
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		b.mu.Lock()
		b.calls = append(b.calls, op)
		if len(body) > 0 {
			b.bodies[op] = body
		}
		var status int
		if q := b.fail[op]; len(q) > 0 {
			status, b.fail[op] = q[0], q[1:]
		}
		b.mu.Unlock()
		if status != 0 {
			http.Error(w, "injected failure", status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		_, ok := b.tokens[tok]
		b.mu.Unlock()
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Login == creds.Login && u.Password == creds.Password {
			tok := "tok-" + u.Login
			if b.TokenIssuer != nil {
				tok = b.TokenIssuer(u)
			}
			b.tokens[tok] = u.Login
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(tok))
			return
		}
	}
	http.Error(w, "bad credentials", http.StatusUnauthorized)
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	defer b.mu.Unlock()
	login := b.tokens[tok]
	for _, u := range b.users {
		if u.Login == login {
			writeJSON(w, http.StatusOK, b.userWire(u))
			return
		}
	}
	http.Error(w, "no such user", http.StatusNotFound)
}

func (b *Backend) verifyPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID       int64  `json:"id"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[body.ID]
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok && u.Password == body.Password})
}

// ─── Users ───────────────────────────────────────────────────────────────────

func (b *Backend) listUsers(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, 0, len(b.users))
	for _, u := range sorted(b.users) {
		out = append(out, b.userWire(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[pathID(r)]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b.userWire(u))
}

func (b *Backend) createUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if !decode(w, r, &u) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg := b.checkUserRefs(u); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	u.ID = b.id()
	b.users[u.ID] = u
	writeJSON(w, http.StatusOK, b.userWire(u))
}

func (b *Backend) putUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if !decode(w, r, &u) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	old, ok := b.users[id]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if msg := b.checkUserRefs(u); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	u.ID = id
	if u.Password == "" {
		u.Password = old.Password
	}
	b.users[id] = u
	writeJSON(w, http.StatusOK, b.userWire(u))
}

func (b *Backend) deleteUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.users[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	delete(b.users, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) checkUserRefs(u models.User) string {
	if u.IdEquip != nil {
		if _, ok := b.teams[u.IdEquip.ID]; !ok {
			return "unknown equipe"
		}
	}
	if u.IdPoste != nil {
		if _, ok := b.postes[u.IdPoste.ID]; !ok {
			return "unknown poste"
		}
	}
	return ""
}

// ─── Tickets ─────────────────────────────────────────────────────────────────

func (b *Backend) listTickets(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, 0, len(b.tickets))
	for _, t := range sorted(b.tickets) {
		out = append(out, b.ticketWire(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getTicket(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tickets[pathID(r)]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b.ticketWire(t))
}

func (b *Backend) createTicket(w http.ResponseWriter, r *http.Request) {
	var t models.Ticket
	if !decode(w, r, &t) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg := b.checkTicketRefs(t); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	t.ID = b.id()
	if t.NumTicket == 0 {
		t.NumTicket = t.ID
	}
	if t.Status == "" {
		t.Status = models.StatusPending
	}
	b.tickets[t.ID] = t
	writeJSON(w, http.StatusOK, b.ticketWire(t))
}

func (b *Backend) putTicket(w http.ResponseWriter, r *http.Request) {
	var t models.Ticket
	if !decode(w, r, &t) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.tickets[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if msg := b.checkTicketRefs(t); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	t.ID = id
	b.tickets[id] = t
	writeJSON(w, http.StatusOK, b.ticketWire(t))
}

func (b *Backend) deleteTicket(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.tickets[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	delete(b.tickets, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) checkTicketRefs(t models.Ticket) string {
	if t.IdEquip != nil {
		if _, ok := b.teams[t.IdEquip.ID]; !ok {
			return "unknown equipe"
		}
	}
	if t.IdModule != nil {
		if _, ok := b.modules[t.IdModule.ID]; !ok {
			return "unknown module"
		}
	}
	if t.IdClient != nil {
		if _, ok := b.clients[t.IdClient.ID]; !ok {
			return "unknown client"
		}
	}
	return ""
}

// ─── Teams ───────────────────────────────────────────────────────────────────

func (b *Backend) listTeams(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Team, 0, len(b.teams))
	for _, t := range sorted(b.teams) {
		out = append(out, b.materializeTeam(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getTeam(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.teams[pathID(r)]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b.materializeTeam(t))
}

func (b *Backend) createTeam(w http.ResponseWriter, r *http.Request) {
	var t models.Team
	if !decode(w, r, &t) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	t.ID = b.id()
	t.TicketList, t.UtilisateurList = nil, nil
	b.teams[t.ID] = t
	writeJSON(w, http.StatusOK, b.materializeTeam(t))
}

func (b *Backend) putTeam(w http.ResponseWriter, r *http.Request) {
	var t models.Team
	if !decode(w, r, &t) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.teams[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	t.ID = id
	t.TicketList, t.UtilisateurList = nil, nil
	b.teams[id] = t
	writeJSON(w, http.StatusOK, b.materializeTeam(t))
}

func (b *Backend) deleteTeam(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.teams[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	for _, t := range b.tickets {
		if t.IdEquip.Points(id) {
			http.Error(w, "equipe still has tickets", http.StatusConflict)
			return
		}
	}
	delete(b.teams, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) materializeTeam(t models.Team) models.Team {
	t.TicketList, t.UtilisateurList = nil, nil
	for _, tk := range sorted(b.tickets) {
		if tk.IdEquip.Points(t.ID) {
			t.TicketList = append(t.TicketList, tk)
		}
	}
	for _, u := range sorted(b.users) {
		if u.IdEquip.Points(t.ID) {
			u.Password = ""
			t.UtilisateurList = append(t.UtilisateurList, u)
		}
	}
	return t
}

// ─── Modules ─────────────────────────────────────────────────────────────────

func (b *Backend) listModules(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Module, 0, len(b.modules))
	for _, m := range sorted(b.modules) {
		out = append(out, b.materializeModule(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getModule(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.modules[pathID(r)]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b.materializeModule(m))
}

func (b *Backend) createModule(w http.ResponseWriter, r *http.Request) {
	var m models.Module
	if !decode(w, r, &m) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	m.ID = b.id()
	m.TicketList = nil
	b.modules[m.ID] = m
	writeJSON(w, http.StatusOK, b.materializeModule(m))
}

func (b *Backend) putModule(w http.ResponseWriter, r *http.Request) {
	var m models.Module
	if !decode(w, r, &m) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.modules[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	m.ID = id
	m.TicketList = nil
	b.modules[id] = m
	writeJSON(w, http.StatusOK, b.materializeModule(m))
}

func (b *Backend) deleteModule(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.modules[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	delete(b.modules, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) materializeModule(m models.Module) models.Module {
	m.TicketList = nil
	for _, tk := range sorted(b.tickets) {
		if tk.IdModule.Points(m.ID) {
			m.TicketList = append(m.TicketList, tk)
		}
	}
	return m
}

// ─── Postes ──────────────────────────────────────────────────────────────────

func (b *Backend) listPostes(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Poste, 0, len(b.postes))
	for _, p := range sorted(b.postes) {
		out = append(out, b.materializePoste(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getPoste(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.postes[pathID(r)]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b.materializePoste(p))
}

func (b *Backend) createPoste(w http.ResponseWriter, r *http.Request) {
	var p models.Poste
	if !decode(w, r, &p) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p.ID = b.id()
	p.UtilisateurList = nil
	b.postes[p.ID] = p
	writeJSON(w, http.StatusOK, b.materializePoste(p))
}

func (b *Backend) putPoste(w http.ResponseWriter, r *http.Request) {
	var p models.Poste
	if !decode(w, r, &p) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.postes[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	p.ID = id
	p.UtilisateurList = nil
	b.postes[id] = p
	writeJSON(w, http.StatusOK, b.materializePoste(p))
}

func (b *Backend) deletePoste(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.postes[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	delete(b.postes, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) materializePoste(p models.Poste) models.Poste {
	p.UtilisateurList = nil
	for _, u := range sorted(b.users) {
		if u.IdPoste.Points(p.ID) {
			u.Password = ""
			p.UtilisateurList = append(p.UtilisateurList, u)
		}
	}
	return p
}

// ─── Wire helpers ────────────────────────────────────────────────────────────

// userWire encodes u with its parents embedded, the way the backend does.
func (b *Backend) userWire(u models.User) map[string]any {
	u.Password = ""
	m := toMap(u)
	if b.idOnly {
		return m
	}
	if u.IdEquip != nil {
		if t, ok := b.teams[u.IdEquip.ID]; ok {
			m["idEquip"] = map[string]any{"id": t.ID, "nomEquipe": t.NomEquipe}
		}
	}
	if u.IdPoste != nil {
		if p, ok := b.postes[u.IdPoste.ID]; ok {
			m["idPoste"] = map[string]any{"id": p.ID, "designation": p.Designation, "code": p.Code}
		}
	}
	return m
}

func (b *Backend) ticketWire(t models.Ticket) map[string]any {
	m := toMap(t)
	if b.idOnly {
		return m
	}
	if t.IdEquip != nil {
		if tm, ok := b.teams[t.IdEquip.ID]; ok {
			m["idEquip"] = map[string]any{"id": tm.ID, "nomEquipe": tm.NomEquipe}
		}
	}
	if t.IdModule != nil {
		if md, ok := b.modules[t.IdModule.ID]; ok {
			m["idModule"] = map[string]any{"id": md.ID, "designation": md.Designation, "code": md.Code}
		}
	}
	if t.IdClient != nil {
		if c, ok := b.clients[t.IdClient.ID]; ok {
			m["idClient"] = map[string]any{"id": c.ID, "nom": c.Nom, "prenom": c.Prenom}
		}
	}
	return m
}

func toMap(v any) map[string]any {
	raw, _ := json.Marshal(v)
	m := map[string]any{}
	_ = json.Unmarshal(raw, &m)
	return m
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("bad body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

// sorted returns the map's values ordered by id.
func sorted[T any](m map[int64]T) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}
