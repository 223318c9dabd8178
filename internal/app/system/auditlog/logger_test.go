package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/auditlog"
	"github.com/dalemusser/deskhub/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, "bob", "User", 7)
	logger.Logout(ctx, req)
	logger.Assigned(ctx, req, "team-tickets", audit.EntityTicket, 42, audit.EntityTeam, 1)
}

func TestLogger_ZapOnly(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: auditlog.ModeLog, Admin: auditlog.ModeOff})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewAuthenticatedRequest("POST", "/teams/1/tickets", testutil.AdminUser())
	req.Header.Set("X-Forwarded-For", "10.0.0.9")

	logger.LoginFailed(ctx, req, "mallory", "bad credentials")
	logger.Assigned(ctx, req, "team-tickets", audit.EntityTicket, 42, audit.EntityTeam, 1)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 zap entry (admin is off), got %d", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.WarnLevel {
		t.Errorf("failed events log at warn, got %v", e.Level)
	}
	fields := e.ContextMap()
	if fields["event_type"] != audit.EventLoginFailed {
		t.Errorf("event_type = %v", fields["event_type"])
	}
	if fields["ip"] != "10.0.0.9" {
		t.Errorf("ip = %v", fields["ip"])
	}
	if fields["detail_attempted_login"] != "mallory" {
		t.Errorf("detail_attempted_login = %v", fields["detail_attempted_login"])
	}
}

func TestLogger_ActorFromSession(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Work: auditlog.ModeLog})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewAuthenticatedRequest("POST", "/my/tickets/5/accept", testutil.RegularUser(7, "bob"))
	logger.TicketAccepted(ctx, req, 5)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["actor"] != "bob" || fields["actor_role"] != "User" {
		t.Errorf("actor fields = %v / %v", fields["actor"], fields["actor_role"])
	}
	if fields["entity_id"] != int64(5) {
		t.Errorf("entity_id = %v", fields["entity_id"])
	}
}

func TestLogger_UnsetModeDefaultsToAll(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.EntityDeleted(ctx, httptest.NewRequest("POST", "/", nil), audit.EntityTeam, 3, "Alpha")
	if logs.Len() != 1 {
		t.Errorf("expected the event to be logged, got %d entries", logs.Len())
	}
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth:  auditlog.ModeOff,
		Admin: auditlog.ModeOff,
		Work:  auditlog.ModeOff,
	})

	req := httptest.NewRequest("POST", "/login", nil)
	logger.LoginSuccess(ctx, req, "bob", "User", 7)
	logger.EntityCreated(ctx, req, audit.EntityTeam, 1, "Alpha")
	logger.TicketAccepted(ctx, req, 5)

	count, err := store.CountByFilter(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no events when config is 'off', got %d", count)
	}
}

func TestLogger_Log_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := auditlog.New(store, zap.New(core), auditlog.Config{
		Auth:  auditlog.ModeDB,
		Admin: auditlog.ModeDB,
	})

	req := testutil.NewAuthenticatedRequest("POST", "/teams/1/tickets", testutil.AdminUser())
	logger.Assigned(ctx, req, "team-tickets", audit.EntityTicket, 42, audit.EntityTeam, 1)

	events, err := store.History(ctx, audit.EntityTicket, 42, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Parent != audit.EntityTeam || e.ParentID != 1 || e.Relation != "team-tickets" {
		t.Errorf("unexpected assignment fields: %+v", e)
	}
	if e.Actor != "admin" {
		t.Errorf("expected actor admin, got %q", e.Actor)
	}
	if logs.Len() != 0 {
		t.Errorf("db mode should not write to zap, got %d entries", logs.Len())
	}
}

func TestValidMode(t *testing.T) {
	for _, m := range []string{"all", "db", "log", "off"} {
		if !auditlog.ValidMode(m) {
			t.Errorf("ValidMode(%q) = false", m)
		}
	}
	for _, m := range []string{"", "ALL", "both"} {
		if auditlog.ValidMode(m) {
			t.Errorf("ValidMode(%q) = true", m)
		}
	}
}
