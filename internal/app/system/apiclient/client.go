// Package apiclient talks to the ticketing backend's REST API.
//
// A Client is built once at startup. Per request, handlers derive a copy
// bound to the operator's session with WithSession; the copy carries the
// bearer token on every call.
//
// All failures are *Error values classified by Kind.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/deskhub/internal/app/system/identity"
	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"
)

// DefaultBaseURL is the backend's local development address.
const DefaultBaseURL = "http://localhost:9000/template-core/api"

// maxErrBody bounds how much of an error response is kept.
const maxErrBody = 512

// ErrNoSession is returned by calls that need a token when none is bound.
var ErrNoSession = errors.New("apiclient: no session bound")

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a backend API client. The zero value is not usable; use New.
type Client struct {
	base    *url.URL
	http    *http.Client
	log     *zap.Logger
	session identity.Session
}

// New returns a Client using a pooled go-cleanhttp transport.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: base url %q must be http or https", raw)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = cfg.Timeout
	return &Client{base: u, http: hc, log: logger}, nil
}

// WithSession returns a copy of c that authenticates as s.
func (c *Client) WithSession(s identity.Session) *Client {
	cp := *c
	cp.session = s
	return &cp
}

// Session returns the bound session.
func (c *Client) Session() identity.Session {
	return c.session
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Ping performs an unauthenticated GET on the base URL. Any HTTP response,
// whatever its status, means the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: "GET /", Kind: KindTransient, Err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// do performs one request. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded JSON response.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.send(ctx, method, path, true, body, func(b []byte) error {
		if out == nil || len(bytes.TrimSpace(b)) == 0 {
			return nil
		}
		return json.Unmarshal(b, out)
	})
}

func (c *Client) send(ctx context.Context, method, path string, authed bool, body any, decode func([]byte) error) error {
	op := method + " " + path
	reqID := uuid.NewString()

	if authed && c.session.IsZero() {
		return &Error{Op: op, Kind: KindAuth, RequestID: reqID, Err: ErrNoSession}
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: %s: encode: %w", op, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rdr)
	if err != nil {
		return fmt.Errorf("apiclient: %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("upstream request failed",
			zap.String("op", op),
			zap.String("request_id", reqID),
			zap.Error(err))
		return &Error{Op: op, Kind: KindTransient, RequestID: reqID, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Kind: KindTransient, RequestID: reqID, Err: err}
	}

	c.log.Debug("upstream request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", reqID),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Op:        op,
			Status:    resp.StatusCode,
			Body:      truncate(string(respBody), maxErrBody),
			Kind:      kindForStatus(resp.StatusCode),
			RequestID: reqID,
		}
	}

	if err := decode(respBody); err != nil {
		c.log.Error("upstream response could not be decoded",
			zap.String("op", op),
			zap.String("request_id", reqID),
			zap.Error(err))
		return &Error{Op: op, Status: resp.StatusCode, Kind: KindDecode, RequestID: reqID, Err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func idPath(collection string, id int64) string {
	return fmt.Sprintf("%s/%d", collection, id)
}
