package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/features/login"
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/dalemusser/deskhub/internal/app/system/identity"
	"github.com/dalemusser/deskhub/internal/app/system/ratelimit"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/dalemusser/deskhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *testutil.Backend, testutil.Fixtures) {
	t.Helper()
	logger := zap.NewNop()
	be := testutil.NewBackend(t)
	testutil.UseJWT(be)
	fx := testutil.Seed(be)

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	h := login.NewHandler(
		testutil.Client(t, be),
		identity.NewDecoder(testutil.TestJWTSecret),
		sessionMgr,
		uierrors.NewErrorLogger(logger),
		nil,
		logger,
	)
	return h, be, fx
}

func postLogin(h *login.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	// Failure paths render the form, which panics without booted templates.
	func() {
		defer func() { recover() }()
		h.HandleLoginPost(rec, req)
	}()
	return rec
}

func hasSessionCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.Value != "" {
			return true
		}
	}
	return false
}

func TestHandleLoginPost_Success(t *testing.T) {
	h, be, _ := newTestHandler(t)

	rec := postLogin(h, url.Values{"login": {"admin"}, "password": {"admin-pw"}})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location: got %q, want %q", loc, "/dashboard")
	}
	if !hasSessionCookie(rec) {
		t.Error("expected session cookie to be set")
	}
	if be.CountCalls("GET /me") != 1 {
		t.Errorf("expected one /me lookup, calls: %v", be.Calls())
	}
}

func TestHandleLoginPost_SessionCarriesIdentity(t *testing.T) {
	h, _, fx := newTestHandler(t)

	rec := postLogin(h, url.Values{"login": {"bob"}, "password": {"bob-pw"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	// Replay the cookie through LoadSessionUser and read back the user.
	req := httptest.NewRequest("GET", "/dashboard", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	var got *auth.SessionUser
	h.SessionMgr.LoadSessionUser(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected a signed-in user")
	}
	if got.Login != "bob" || got.Role != models.RoleUser || got.UserID != fx.Bob.ID {
		t.Errorf("unexpected session user: %+v", got)
	}
	if got.Token == "" {
		t.Error("expected the backend token in the session")
	}
}

func TestHandleLoginPost_WithReturnURL(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := postLogin(h, url.Values{"login": {"admin"}, "password": {"admin-pw"}, "return": {"/teams"}})

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/teams" {
		t.Errorf("Location: got %q, want %q", loc, "/teams")
	}
}

func TestHandleLoginPost_BadPassword(t *testing.T) {
	h, be, _ := newTestHandler(t)

	rec := postLogin(h, url.Values{"login": {"admin"}, "password": {"wrong"}})

	if hasSessionCookie(rec) {
		t.Error("session cookie should not be set for bad credentials")
	}
	if be.CountCalls("GET /me") != 0 {
		t.Error("no /me lookup expected after a refused sign-in")
	}
}

func TestHandleLoginPost_EmptyFields(t *testing.T) {
	h, be, _ := newTestHandler(t)

	rec := postLogin(h, url.Values{"login": {"admin"}})

	if hasSessionCookie(rec) {
		t.Error("session cookie should not be set for empty password")
	}
	if len(be.Calls()) != 0 {
		t.Errorf("expected no backend calls, got %v", be.Calls())
	}
}

func TestHandleLoginPost_DisabledUser(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := postLogin(h, url.Values{"login": {"alice"}, "password": {"alice-pw"}})

	if hasSessionCookie(rec) {
		t.Error("session cookie should not be set for a disabled user")
	}
}

func TestHandleLoginPost_UnknownRole(t *testing.T) {
	h, be, _ := newTestHandler(t)
	be.AddUser(models.User{Login: "guest", Password: "guest-pw", Role: models.Role("Guest"), Actif: true})

	rec := postLogin(h, url.Values{"login": {"guest"}, "password": {"guest-pw"}})

	if hasSessionCookie(rec) {
		t.Error("session cookie should not be set for an unknown role")
	}
}

func TestHandleLoginPost_BackendDown(t *testing.T) {
	h, be, _ := newTestHandler(t)
	be.FailNext("POST /authenticate", http.StatusServiceUnavailable)

	rec := postLogin(h, url.Values{"login": {"admin"}, "password": {"admin-pw"}})

	if hasSessionCookie(rec) {
		t.Error("session cookie should not be set when the backend is down")
	}
}

func TestServeLogin_SignedInRedirects(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/login", testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.ServeLogin(rec, req)

	rec.AssertRedirect(t, "/dashboard")
}

func TestHandleLoginPost_RateLimited(t *testing.T) {
	h, be, _ := newTestHandler(t)
	h.Limiter = ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 1, time.Minute)
	t.Cleanup(h.Limiter.Stop)

	postLogin(h, url.Values{"login": {"admin"}, "password": {"wrong"}})
	be.ResetCalls()

	rec := postLogin(h, url.Values{"login": {"admin"}, "password": {"admin-pw"}})

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
	if hasSessionCookie(rec) {
		t.Error("a throttled attempt must not sign in")
	}
	if n := be.CountCalls("POST /authenticate"); n != 0 {
		t.Errorf("throttled attempt reached the backend %d times", n)
	}
}

func TestHandleLoginPost_SuccessResetsLoginLimit(t *testing.T) {
	h, _, _ := newTestHandler(t)
	h.Limiter = ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	t.Cleanup(h.Limiter.Stop)

	postLogin(h, url.Values{"login": {"admin"}, "password": {"wrong"}})
	if rec := postLogin(h, url.Values{"login": {"admin"}, "password": {"admin-pw"}}); !hasSessionCookie(rec) {
		t.Fatal("second attempt should sign in")
	}
	if rec := postLogin(h, url.Values{"login": {"admin"}, "password": {"admin-pw"}}); !hasSessionCookie(rec) {
		t.Error("a successful sign-in clears the per-login window")
	}
}
