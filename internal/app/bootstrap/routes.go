// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	auditlogfeature "github.com/dalemusser/deskhub/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/deskhub/internal/app/features/dashboard"
	_ "github.com/dalemusser/deskhub/internal/app/features/dashboard/views"
	errorsfeature "github.com/dalemusser/deskhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/deskhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/deskhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/deskhub/internal/app/features/logout"
	modulesfeature "github.com/dalemusser/deskhub/internal/app/features/modules"
	myticketsfeature "github.com/dalemusser/deskhub/internal/app/features/mytickets"
	postesfeature "github.com/dalemusser/deskhub/internal/app/features/postes"
	settingsfeature "github.com/dalemusser/deskhub/internal/app/features/settings"
	teamsfeature "github.com/dalemusser/deskhub/internal/app/features/teams"
	ticketsfeature "github.com/dalemusser/deskhub/internal/app/features/tickets"
	usersfeature "github.com/dalemusser/deskhub/internal/app/features/users"
	"github.com/dalemusser/deskhub/internal/app/system/auditlog"
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/deskhub/internal/app/system/identity"
	"github.com/dalemusser/deskhub/internal/app/system/ratelimit"
	"github.com/dalemusser/deskhub/internal/app/system/screen"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, the Mongo connection, schema setup
// and Startup have completed. It boots the template engine, builds the
// session, audit and error plumbing shared by every feature, and mounts the
// feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	flash.Init(derivedKey(appCfg.SessionKey, "flash"), secure)

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	audit := auditlog.New(deps.AuditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
		Work:  appCfg.AuditLogWork,
	})

	// A backend 401/403 ends the session; record why before it goes.
	errLog := errorsfeature.NewErrorLogger(logger)
	errLog.Sessions = sessionMgr
	errLog.OnExpire = func(r *http.Request, op string) {
		audit.SessionExpired(r.Context(), r, op)
	}

	tokens := identity.NewDecoder(appCfg.JWTSecret)
	if !tokens.Verifies() {
		logger.Warn("jwt_secret not set; backend tokens are decoded without signature checks")
	}
	screens := screen.NewOpener(deps.API, logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(errorsfeature.Recoverer(logger))
	if !secure {
		r.Use(plaintextCSRF)
	}
	r.Use(csrf.Protect(derivedKey(appCfg.SessionKey, "csrf"),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(errorsHandler.Forbidden)),
	))
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.API, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.API, tokens, sessionMgr, errLog, audit, logger)
	loginHandler.Limiter = ratelimit.NewLoginLimiter()
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Error pages
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)

	// Role-based dashboards
	dashboardHandler := dashboardfeature.NewHandler(screens, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Directory administration
	usersHandler := usersfeature.NewHandler(screens, errLog, audit, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	settingsHandler := settingsfeature.NewHandler(screens, sessionMgr, errLog, audit, logger)
	r.Mount("/settings", settingsfeature.Routes(settingsHandler, sessionMgr))

	teamsHandler := teamsfeature.NewHandler(screens, errLog, audit, logger)
	r.Mount("/teams", teamsfeature.Routes(teamsHandler, sessionMgr))

	postesHandler := postesfeature.NewHandler(screens, errLog, audit, logger)
	r.Mount("/postes", postesfeature.Routes(postesHandler, sessionMgr))

	modulesHandler := modulesfeature.NewHandler(screens, errLog, audit, logger)
	r.Mount("/modules", modulesfeature.Routes(modulesHandler, sessionMgr))

	// Tickets
	ticketsHandler := ticketsfeature.NewHandler(screens, errLog, audit, logger)
	r.Mount("/tickets", ticketsfeature.Routes(ticketsHandler, sessionMgr))

	myTicketsHandler := myticketsfeature.NewHandler(screens, errLog, audit, logger)
	r.Mount("/my/tickets", myticketsfeature.Routes(myTicketsHandler, sessionMgr))

	// Audit trail
	auditHandler := auditlogfeature.NewHandler(deps.AuditStore, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}

// derivedKey returns a 32-byte key for purpose, derived from the session key.
func derivedKey(secret, purpose string) []byte {
	sum := sha256.Sum256([]byte(purpose + ":" + secret))
	return sum[:]
}

// plaintextCSRF marks requests as plain HTTP for gorilla/csrf's origin
// checks. Development only.
func plaintextCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
