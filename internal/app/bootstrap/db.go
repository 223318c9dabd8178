// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// connectTimeout bounds the initial Mongo connect and ping.
const connectTimeout = 10 * time.Second

// ConnectDB connects to MongoDB and builds the backend API client.
//
// Mongo must answer a ping before startup continues. The ticketing backend
// is not contacted here; its reachability is tracked by the upstream probe
// so the console can start while the backend is down.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	api, err := apiclient.New(apiclient.Config{BaseURL: appCfg.APIBaseURL, Timeout: appCfg.APITimeout}, logger)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}

	store := audit.New(db)
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		AuditStore:    store,
		API:           api,
		Retention:     workers.NewAuditRetention(store, logger, appCfg.AuditCleanupInterval, appCfg.AuditRetention),
		Probe:         workers.NewUpstreamProbe(api, logger, appCfg.UpstreamProbeInterval, appCfg.TimeoutPing),
	}, nil
}

// EnsureSchema creates the audit trail indexes. It is idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.AuditStore == nil {
		return nil
	}
	if err := deps.AuditStore.EnsureIndexes(ctx); err != nil {
		logger.Error("failed to ensure audit indexes", zap.Error(err))
		return fmt.Errorf("ensure audit indexes: %w", err)
	}
	logger.Info("audit indexes ensured")
	return nil
}
