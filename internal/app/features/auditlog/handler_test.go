package auditlog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/deskhub/internal/app/features/auditlog"
	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*auditlog.Handler, *audit.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	store := audit.New(db)
	return auditlog.NewHandler(store, uierrors.NewErrorLogger(logger), logger), store
}

func call(fn http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }()
		fn(rec, req)
	}()
	return rec
}

func TestNewHandler(t *testing.T) {
	h, _ := newTestHandler(t)
	require.NotNil(t, h)
	assert.NotNil(t, h.Store)
}

func TestServeList(t *testing.T) {
	h, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Log(ctx, audit.Event{
			Timestamp: now.Add(-time.Duration(i) * time.Minute),
			Category:  audit.CategoryAdmin,
			EventType: audit.EventAssigned,
			Actor:     "admin",
			Entity:    audit.EntityTicket,
			EntityID:  int64(i + 1),
			Success:   true,
		}))
	}

	for name, target := range map[string]string{
		"no filters":   "/audit",
		"filtered":     "/audit?category=admin&actor=admin&entity=ticket&start_date=2020-01-01",
		"past the end": "/audit?start=500",
		"bad params":   "/audit?start=abc&entity_id=x&end_date=yesterday",
	} {
		t.Run(name, func(t *testing.T) {
			req := testutil.NewAuthenticatedRequest("GET", target, testutil.AdminUser())
			req.Header.Set("HX-Target", "audit-table-wrap")
			rec := call(h.ServeList, req)
			assert.NotEqual(t, http.StatusInternalServerError, rec.Code)
		})
	}
}

func TestServeList_StoreUnavailable(t *testing.T) {
	h, _ := newTestHandler(t)

	ctx, cancel := testutil.TestContext()
	cancel()
	req := testutil.NewAuthenticatedRequest("GET", "/audit", testutil.AdminUser()).WithContext(ctx)
	rec := call(h.ServeList, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
