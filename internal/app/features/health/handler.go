package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger reports whether the ticketing backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client   *mongo.Client
	Upstream Pinger
	Log      *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client, the backend
// pinger and logger.
func NewHandler(client *mongo.Client, upstream Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		Client:   client,
		Upstream: upstream,
		Log:      logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Upstream string            `json:"upstream"`
	Message  string            `json:"message,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// Serve handles GET /health.
//
// When both dependencies answer: 200 and
//
//	{ "status":"ok", "database":"connected", "upstream":"reachable" }
//
// Otherwise 503 with status "error" and the failing checks under "errors".
// The two pings run one after the other, each under the ping timeout.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Upstream: "reachable",
	}
	fail := func(check string, err error) {
		if resp.Errors == nil {
			resp.Errors = map[string]string{}
		}
		resp.Errors[check] = err.Error()
	}

	if err := h.pingMongo(r.Context()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Database = "disconnected"
		fail("database", err)
	}
	if err := h.pingUpstream(r.Context()); err != nil {
		h.Log.Error("health-check: backend ping failed", zap.Error(err))
		resp.Upstream = "unreachable"
		fail("upstream", err)
	}

	if resp.Errors != nil {
		resp.Status = "error"
		resp.Message = "Dependency unavailable"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) pingMongo(parent context.Context) error {
	if h.Client == nil {
		return errNotConfigured
	}
	ctx, cancel := context.WithTimeout(parent, timeouts.Ping())
	defer cancel()
	return h.Client.Ping(ctx, readpref.Primary())
}

func (h *Handler) pingUpstream(parent context.Context) error {
	if h.Upstream == nil {
		return errNotConfigured
	}
	ctx, cancel := context.WithTimeout(parent, timeouts.Ping())
	defer cancel()
	return h.Upstream.Ping(ctx)
}
