package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/deskhub/internal/domain/models"
)

// Backend collection paths.
const (
	pathUsers      = "/utilisateurs"
	pathSaveUser   = "/save"
	pathTickets    = "/tickets"
	pathTeams      = "/equipes"
	pathModules    = "/modules"
	pathPostes     = "/postes"
	pathClients    = "/clients"
	pathAuth       = "/authenticate"
	pathMe         = "/me"
	pathVerifyPass = "/verify-password"
)

func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func write[T any](ctx context.Context, c *Client, method, path string, in T) (T, error) {
	var out T
	if err := c.do(ctx, method, path, in, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// ─── Authentication ──────────────────────────────────────────────────────────

// Credentials is the body of POST /authenticate.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Authenticate exchanges credentials for a bearer token. It needs no bound
// session. The backend answers with the raw token, possibly JSON-quoted, or
// with an object carrying a "token" field.
func (c *Client) Authenticate(ctx context.Context, creds Credentials) (string, error) {
	var token string
	err := c.send(ctx, http.MethodPost, pathAuth, false, creds, func(b []byte) error {
		token = parseToken(b)
		if token == "" {
			return errors.New("empty token")
		}
		return nil
	})
	return token, err
}

func parseToken(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ""
	}
	switch b[0] {
	case '"':
		var s string
		if json.Unmarshal(b, &s) == nil {
			return strings.TrimSpace(s)
		}
		return ""
	case '{':
		var obj struct {
			Token       string `json:"token"`
			AccessToken string `json:"access_token"`
		}
		if json.Unmarshal(b, &obj) != nil {
			return ""
		}
		if obj.Token != "" {
			return obj.Token
		}
		return obj.AccessToken
	default:
		return string(b)
	}
}

// Me returns the user record of the bound session.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	return get[models.User](ctx, c, pathMe)
}

// VerifyPassword asks the backend whether password is the user's current one.
func (c *Client) VerifyPassword(ctx context.Context, userID int64, password string) (bool, error) {
	var out struct {
		Success bool `json:"success"`
	}
	body := struct {
		ID       int64  `json:"id"`
		Password string `json:"password"`
	}{userID, password}
	if err := c.do(ctx, http.MethodPost, pathVerifyPass, body, &out); err != nil {
		return false, err
	}
	return out.Success, nil
}

// ─── Users ───────────────────────────────────────────────────────────────────

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	return list[models.User](ctx, c, pathUsers)
}

func (c *Client) GetUser(ctx context.Context, id int64) (models.User, error) {
	return get[models.User](ctx, c, idPath(pathUsers, id))
}

// CreateUser posts to /save, the backend's user registration endpoint.
func (c *Client) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	return write(ctx, c, http.MethodPost, pathSaveUser, u)
}

func (c *Client) UpdateUser(ctx context.Context, id int64, u models.User) (models.User, error) {
	return write(ctx, c, http.MethodPut, idPath(pathUsers, id), u)
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath(pathUsers, id), nil, nil)
}

// ─── Tickets ─────────────────────────────────────────────────────────────────

func (c *Client) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	return list[models.Ticket](ctx, c, pathTickets)
}

func (c *Client) GetTicket(ctx context.Context, id int64) (models.Ticket, error) {
	return get[models.Ticket](ctx, c, idPath(pathTickets, id))
}

func (c *Client) CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	return write(ctx, c, http.MethodPost, pathTickets, t)
}

func (c *Client) UpdateTicket(ctx context.Context, id int64, t models.Ticket) (models.Ticket, error) {
	return write(ctx, c, http.MethodPut, idPath(pathTickets, id), t)
}

func (c *Client) DeleteTicket(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath(pathTickets, id), nil, nil)
}

// ─── Teams ───────────────────────────────────────────────────────────────────

func (c *Client) ListTeams(ctx context.Context) ([]models.Team, error) {
	return list[models.Team](ctx, c, pathTeams)
}

func (c *Client) GetTeam(ctx context.Context, id int64) (models.Team, error) {
	return get[models.Team](ctx, c, idPath(pathTeams, id))
}

func (c *Client) CreateTeam(ctx context.Context, t models.Team) (models.Team, error) {
	return write(ctx, c, http.MethodPost, pathTeams, t)
}

func (c *Client) UpdateTeam(ctx context.Context, id int64, t models.Team) (models.Team, error) {
	return write(ctx, c, http.MethodPut, idPath(pathTeams, id), t)
}

func (c *Client) DeleteTeam(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath(pathTeams, id), nil, nil)
}

// ─── Modules ─────────────────────────────────────────────────────────────────

func (c *Client) ListModules(ctx context.Context) ([]models.Module, error) {
	return list[models.Module](ctx, c, pathModules)
}

func (c *Client) GetModule(ctx context.Context, id int64) (models.Module, error) {
	return get[models.Module](ctx, c, idPath(pathModules, id))
}

func (c *Client) CreateModule(ctx context.Context, m models.Module) (models.Module, error) {
	return write(ctx, c, http.MethodPost, pathModules, m)
}

func (c *Client) UpdateModule(ctx context.Context, id int64, m models.Module) (models.Module, error) {
	return write(ctx, c, http.MethodPut, idPath(pathModules, id), m)
}

func (c *Client) DeleteModule(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath(pathModules, id), nil, nil)
}

// ─── Postes ──────────────────────────────────────────────────────────────────

func (c *Client) ListPostes(ctx context.Context) ([]models.Poste, error) {
	return list[models.Poste](ctx, c, pathPostes)
}

func (c *Client) GetPoste(ctx context.Context, id int64) (models.Poste, error) {
	return get[models.Poste](ctx, c, idPath(pathPostes, id))
}

func (c *Client) CreatePoste(ctx context.Context, p models.Poste) (models.Poste, error) {
	return write(ctx, c, http.MethodPost, pathPostes, p)
}

func (c *Client) UpdatePoste(ctx context.Context, id int64, p models.Poste) (models.Poste, error) {
	return write(ctx, c, http.MethodPut, idPath(pathPostes, id), p)
}

func (c *Client) DeletePoste(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath(pathPostes, id), nil, nil)
}

// ─── Clients ─────────────────────────────────────────────────────────────────

// ListClients returns the backend's customers. Clients are read-only here.
func (c *Client) ListClients(ctx context.Context) ([]models.Client, error) {
	return list[models.Client](ctx, c, pathClients)
}
