package dashboard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/deskhub/internal/app/features/dashboard"
	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/dalemusser/deskhub/internal/app/system/screen"
	"github.com/dalemusser/deskhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*dashboard.Handler, *testutil.Backend) {
	t.Helper()
	be := testutil.NewBackend(t)
	testutil.Seed(be)
	logger := zap.NewNop()
	h := dashboard.NewHandler(screen.NewOpener(testutil.Client(t, be), logger), uierrors.NewErrorLogger(logger), logger)
	return h, be
}

func serve(h *dashboard.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	// Rendering panics without booted templates.
	func() {
		defer func() { recover() }()
		h.ServeDashboard(rec, req)
	}()
	return rec
}

func TestServeDashboard_Unauthenticated(t *testing.T) {
	h, be := newTestHandler(t)

	rec := serve(h, httptest.NewRequest("GET", "/dashboard", nil))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location: got %q, want %q", loc, "/login")
	}
	if len(be.Calls()) != 0 {
		t.Errorf("expected no backend calls, got %v", be.Calls())
	}
}

func TestServeDashboard_AdminLoadsEverything(t *testing.T) {
	h, be := newTestHandler(t)

	serve(h, testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.AdminUser()))

	for _, op := range []string{"GET /utilisateurs", "GET /tickets", "GET /equipes", "GET /modules", "GET /postes"} {
		if be.CountCalls(op) != 1 {
			t.Errorf("expected one %s, calls: %v", op, be.Calls())
		}
	}
}

func TestServeDashboard_UserLoadsTicketsAndClients(t *testing.T) {
	h, be := newTestHandler(t)

	serve(h, testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.RegularUser(7, "bob")))

	if be.CountCalls("GET /tickets") != 1 || be.CountCalls("GET /clients") != 1 {
		t.Errorf("unexpected calls: %v", be.Calls())
	}
	if be.CountCalls("GET /utilisateurs") != 0 {
		t.Error("user dashboard should not list users")
	}
}

func TestServeDashboard_UnknownRoleForbidden(t *testing.T) {
	h, _ := newTestHandler(t)

	req := auth.WithTestUser(httptest.NewRequest("GET", "/dashboard", nil), &auth.SessionUser{Login: "x", Token: "t"})
	rec := serve(h, req)

	if loc := rec.Header().Get("Location"); loc != "/forbidden" {
		t.Errorf("Location: got %q, want /forbidden", loc)
	}
}

func TestServeDashboard_ExpiredTokenSignsOut(t *testing.T) {
	h, _ := newTestHandler(t)
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 0, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	h.ErrLog.Sessions = sm

	u := testutil.AdminUser()
	u.Token = "revoked"
	req := testutil.NewAuthenticatedRequest("GET", "/dashboard", u)
	req.Header.Set("Accept", "text/html")
	rec := serve(h, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?return=%2Fdashboard" {
		t.Errorf("Location: got %q", loc)
	}
}
