// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	_ "github.com/dalemusser/deskhub/internal/app/features/shared/views"
	"github.com/dalemusser/deskhub/internal/app/system/timeouts"
	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after Mongo is connected and the
// audit indexes exist, but before the HTTP handler is built.
//
// It applies the configured deadlines, sets the site name, hooks the
// upstream probe into the outage banner and starts the background workers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	cur := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("ping", cur.Ping),
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium),
		zap.Duration("long", cur.Long))

	viewdata.Init(appCfg.SiteName)

	if deps.Probe != nil {
		deps.Probe.Start()
		viewdata.SetBackendStatus(backendUp(deps))
	}
	if deps.Retention != nil {
		deps.Retention.Start()
	}
	return nil
}

// backendUp reports the backend as up until a probe has said otherwise.
func backendUp(deps DBDeps) viewdata.BackendStatus {
	return func() bool {
		s := deps.Probe.Status()
		return s.CheckedAt.IsZero() || s.Up
	}
}
