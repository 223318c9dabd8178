// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// minSessionKeyLen is the shortest session key ValidateConfig accepts.
const minSessionKeyLen = 32

// appConfigKeys defines the configuration keys for DeskHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: api_base_url, mongo_uri, session_name, etc.
//   - Environment variables: DESKHUB_API_BASE_URL, DESKHUB_MONGO_URI, etc.
//   - Command-line flags: --api_base_url, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	{Name: "site_name", Default: "DeskHub", Desc: "Name shown in the page header"},

	// Ticketing backend
	{Name: "api_base_url", Default: apiclient.DefaultBaseURL, Desc: "Ticketing backend REST base URL"},
	{Name: "api_timeout", Default: "15s", Desc: "HTTP timeout for backend requests"},
	{Name: "upstream_probe_interval", Default: "30s", Desc: "How often the backend is pinged for the outage banner"},

	// MongoDB
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "deskhub", Desc: "MongoDB database name"},

	// Sessions
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "deskhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Session cookie lifetime"},
	{Name: "jwt_secret", Default: "", Desc: "Backend JWT signing secret; blank decodes tokens without verifying"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_work", Default: "all", Desc: "Ticket work event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "How long audit events are kept (default 90 days)"},
	{Name: "audit_cleanup_interval", Default: "1h", Desc: "How often expired audit events are pruned"},

	// Timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Deadline for health pings"},
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-record operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for screen loads and mutations"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for multi-step flows"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, DESKHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "DESKHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		SiteName: appValues.String("site_name"),

		APIBaseURL:            appValues.String("api_base_url"),
		APITimeout:            appValues.Duration("api_timeout", 15*time.Second),
		UpstreamProbeInterval: appValues.Duration("upstream_probe_interval", 30*time.Second),

		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 12*time.Hour),
		JWTSecret:     appValues.String("jwt_secret"),

		AuditLogAuth:         appValues.String("audit_log_auth"),
		AuditLogAdmin:        appValues.String("audit_log_admin"),
		AuditLogWork:         appValues.String("audit_log_work"),
		AuditRetention:       appValues.Duration("audit_retention", 90*24*time.Hour),
		AuditCleanupInterval: appValues.Duration("audit_cleanup_interval", time.Hour),

		TimeoutPing:   appValues.Duration("timeout_ping", 2*time.Second),
		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Every problem is collected, so one failed start reports all of them.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	var result *multierror.Error

	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid MongoDB URI: %w", err))
	}
	if appCfg.MongoDatabase == "" {
		result = multierror.Append(result, fmt.Errorf("mongo_database is required"))
	}

	if u, err := url.Parse(appCfg.APIBaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		result = multierror.Append(result, fmt.Errorf("api_base_url must be an absolute http(s) URL, got %q", appCfg.APIBaseURL))
	}

	if len(appCfg.SessionKey) < minSessionKeyLen {
		result = multierror.Append(result, fmt.Errorf("session_key must be at least %d characters", minSessionKeyLen))
	}

	for name, mode := range map[string]string{
		"audit_log_auth":  appCfg.AuditLogAuth,
		"audit_log_admin": appCfg.AuditLogAdmin,
		"audit_log_work":  appCfg.AuditLogWork,
	} {
		if !auditlog.ValidMode(mode) {
			result = multierror.Append(result, fmt.Errorf("%s must be one of all, db, log, off; got %q", name, mode))
		}
	}

	for name, d := range map[string]time.Duration{
		"api_timeout":             appCfg.APITimeout,
		"upstream_probe_interval": appCfg.UpstreamProbeInterval,
		"session_max_age":         appCfg.SessionMaxAge,
		"audit_retention":         appCfg.AuditRetention,
		"audit_cleanup_interval":  appCfg.AuditCleanupInterval,
		"timeout_ping":            appCfg.TimeoutPing,
		"timeout_short":           appCfg.TimeoutShort,
		"timeout_medium":          appCfg.TimeoutMedium,
		"timeout_long":            appCfg.TimeoutLong,
	} {
		if d <= 0 {
			result = multierror.Append(result, fmt.Errorf("%s must be a positive duration", name))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	return nil
}
