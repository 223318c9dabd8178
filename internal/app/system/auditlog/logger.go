// internal/app/system/auditlog/logger.go
package auditlog

// Terminology:
//   - Actor: the login of the signed-in operator who performed the action
//   - Entity / EntityID: the backend record acted on (user, ticket, team, module, poste)
//   - Parent / ParentID: for assignments, the record the child was linked to

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Logging modes accepted by each Config field.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for sign-in, sign-out, and account events.
	Auth string
	// Admin controls logging for directory mutations made by admins.
	Admin string
	// Work controls logging for actions users take on their own tickets.
	Work string
}

// ValidMode reports whether m is one of the accepted modes.
func ValidMode(m string) bool {
	switch m {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Logger records audit events to MongoDB (via audit.Store) and to zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil, in which case "db"
// destinations are skipped.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// fromRequest fills the request-derived fields of an event.
func fromRequest(r *http.Request, e audit.Event) audit.Event {
	if r == nil {
		return e
	}
	e.IP = getClientIP(r)
	e.UserAgent = r.UserAgent()
	e.RequestID = middleware.GetReqID(r.Context())
	if u, ok := auth.CurrentUser(r); ok {
		if e.Actor == "" {
			e.Actor = u.Login
		}
		if e.ActorRole == "" {
			e.ActorRole = u.Role.String()
		}
	}
	return e
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor), zap.String("actor_role", event.ActorRole))
	}
	if event.Entity != "" {
		fields = append(fields, zap.String("entity", event.Entity), zap.Int64("entity_id", event.EntityID))
	}
	if event.Parent != "" {
		fields = append(fields, zap.String("parent", event.Parent), zap.Int64("parent_id", event.ParentID))
	}
	if event.Relation != "" {
		fields = append(fields, zap.String("relation", event.Relation))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op, so handlers in tests can run without one.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	case audit.CategoryWork:
		setting = l.config.Work
	}
	if setting == "" {
		setting = ModeAll
	}

	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}

	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, login, role string, userID int64) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		Actor:     login,
		ActorRole: role,
		Entity:    audit.EntityUser,
		EntityID:  userID,
		Success:   true,
	}))
}

// LoginFailed logs a sign-in the backend refused or that could not reach it.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, attemptedLogin, reason string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"attempted_login": attemptedLogin},
	}))
}

// LoginRejectedRole logs a token whose role the console does not accept.
func (l *Logger) LoginRejectedRole(ctx context.Context, r *http.Request, login, reason string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginRejectedRole,
		Actor:         login,
		Success:       false,
		FailureReason: reason,
	}))
}

// Logout logs a sign-out. Call it before the session is cleared so the
// actor is still known.
func (l *Logger) Logout(ctx context.Context, r *http.Request) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		Success:   true,
	}))
}

// SessionExpired logs a session dropped because the backend rejected its token.
func (l *Logger) SessionExpired(ctx context.Context, r *http.Request, op string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventSessionExpired,
		Success:       false,
		FailureReason: "token rejected by backend",
		Details:       map[string]string{"op": op},
	}))
}

// PasswordChanged logs a password change on the operator's own profile.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID int64) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventPasswordChanged,
		Entity:    audit.EntityUser,
		EntityID:  userID,
		Success:   true,
	}))
}

// PasswordCheckFailed logs a settings action refused because the current
// password did not verify.
func (l *Logger) PasswordCheckFailed(ctx context.Context, r *http.Request, userID int64, action string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventPasswordChanged,
		Entity:        audit.EntityUser,
		EntityID:      userID,
		Success:       false,
		FailureReason: "current password did not verify",
		Details:       map[string]string{"action": action},
	}))
}

// AccountToggled logs an admin enabling or disabling a user account.
func (l *Logger) AccountToggled(ctx context.Context, r *http.Request, userID int64, actif bool) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventAccountToggled,
		Entity:    audit.EntityUser,
		EntityID:  userID,
		Success:   true,
		Details:   map[string]string{"actif": strconv.FormatBool(actif)},
	}))
}

// AdminRoleTransferred logs the admin role moving from the actor to another user.
func (l *Logger) AdminRoleTransferred(ctx context.Context, r *http.Request, fromID, toID int64, toLogin string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAdminRoleTransfer,
		Entity:    audit.EntityUser,
		EntityID:  toID,
		Success:   true,
		Details: map[string]string{
			"from_user_id": strconv.FormatInt(fromID, 10),
			"to_login":     toLogin,
		},
	}))
}

// --- Directory Events ---

// EntityCreated logs a new backend record.
func (l *Logger) EntityCreated(ctx context.Context, r *http.Request, entity string, id int64, label string) {
	l.entity(ctx, r, audit.EventCreated, entity, id, label)
}

// EntityUpdated logs an edited backend record.
func (l *Logger) EntityUpdated(ctx context.Context, r *http.Request, entity string, id int64, label string) {
	l.entity(ctx, r, audit.EventUpdated, entity, id, label)
}

// EntityDeleted logs a removed backend record.
func (l *Logger) EntityDeleted(ctx context.Context, r *http.Request, entity string, id int64, label string) {
	l.entity(ctx, r, audit.EventDeleted, entity, id, label)
}

func (l *Logger) entity(ctx context.Context, r *http.Request, eventType, entity string, id int64, label string) {
	e := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		Entity:    entity,
		EntityID:  id,
		Success:   true,
	}
	if label != "" {
		e.Details = map[string]string{"label": label}
	}
	l.Log(ctx, fromRequest(r, e))
}

// Assigned logs a child linked to a parent through the relation named rel.
func (l *Logger) Assigned(ctx context.Context, r *http.Request, rel, child string, childID int64, parent string, parentID int64) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAssigned,
		Entity:    child,
		EntityID:  childID,
		Parent:    parent,
		ParentID:  parentID,
		Relation:  rel,
		Success:   true,
	}))
}

// Unassigned logs a child unlinked from its parent.
func (l *Logger) Unassigned(ctx context.Context, r *http.Request, rel, child string, childID int64, parent string, parentID int64) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUnassigned,
		Entity:    child,
		EntityID:  childID,
		Parent:    parent,
		ParentID:  parentID,
		Relation:  rel,
		Success:   true,
	}))
}

// --- Work Events ---

// TicketAccepted logs a user accepting a ticket assigned to them.
func (l *Logger) TicketAccepted(ctx context.Context, r *http.Request, ticketID int64) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryWork,
		EventType: audit.EventAccepted,
		Entity:    audit.EntityTicket,
		EntityID:  ticketID,
		Success:   true,
	}))
}

// TicketUpdated logs a user editing one of their own tickets.
func (l *Logger) TicketUpdated(ctx context.Context, r *http.Request, ticketID int64, fields string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryWork,
		EventType: audit.EventUpdated,
		Entity:    audit.EntityTicket,
		EntityID:  ticketID,
		Success:   true,
		Details:   map[string]string{"fields_changed": fields},
	}))
}
