// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level, body limits); everything
// specific to the helpdesk console lives here.
type AppConfig struct {
	SiteName string // shown in the layout and page titles

	// Ticketing backend
	APIBaseURL            string        // REST root, e.g. http://localhost:9000/template-core/api
	APITimeout            time.Duration // per-request HTTP client timeout
	UpstreamProbeInterval time.Duration // how often the backend is pinged for the outage banner

	// MongoDB (audit trail only)
	MongoURI      string
	MongoDatabase string

	// Session management
	SessionKey    string        // secret for signing session cookies (32+ chars)
	SessionName   string        // cookie name (default: deskhub-session)
	SessionDomain string        // cookie domain (blank means current host)
	SessionMaxAge time.Duration // cookie lifetime; the token's own expiry still applies

	// JWTSecret, when set, makes the console verify backend token
	// signatures. Empty means tokens are decoded without verification.
	JWTSecret string

	// Audit trail
	AuditLogAuth         string // "all", "db", "log" or "off"
	AuditLogAdmin        string
	AuditLogWork         string
	AuditRetention       time.Duration
	AuditCleanupInterval time.Duration

	// Handler deadlines on backend and Mongo calls
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
