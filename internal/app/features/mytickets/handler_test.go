package mytickets_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/features/mytickets"
	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/auditlog"
	"github.com/dalemusser/deskhub/internal/app/system/screen"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/dalemusser/deskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setup(t *testing.T) (*mytickets.Handler, *testutil.Backend, testutil.Fixtures, *observer.ObservedLogs) {
	t.Helper()
	be := testutil.NewBackend(t)
	f := testutil.Seed(be)
	logger := zap.NewNop()
	core, logs := observer.New(zapcore.InfoLevel)
	h := mytickets.NewHandler(screen.NewOpener(testutil.Client(t, be), logger), uierrors.NewErrorLogger(logger),
		auditlog.New(nil, zap.New(core), auditlog.Config{}), logger)
	return h, be, f, logs
}

func call(fn http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }()
		fn(rec, req)
	}()
	return rec
}

func accept(id int64, user testutil.TestUser) *http.Request {
	req := testutil.NewFormRequest("POST", "/my/tickets/x/accept", url.Values{}, user)
	return testutil.WithChiURLParam(req, "id", strconv.FormatInt(id, 10))
}

func TestHandleAccept(t *testing.T) {
	h, be, f, logs := setup(t)
	bob := testutil.RegularUser(f.Bob.ID, "bob")

	rec := call(h.HandleAccept, accept(f.Open.ID, bob))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/my/tickets", rec.Header().Get("Location"))
	tk, _ := be.Ticket(f.Open.ID)
	assert.Equal(t, models.StatusAccepted, tk.Status)
	require.NotNil(t, tk.IdEquip, "the update carries the full record")
	assert.Equal(t, f.Alpha.ID, tk.IdEquip.ID)

	entries := logs.FilterField(zap.String("event_type", audit.EventAccepted)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bob", entries[0].ContextMap()["actor"])
}

func TestHandleAccept_KeepsUndeclaredFields(t *testing.T) {
	h, be, f, _ := setup(t)
	tk := be.AddTicket(models.Ticket{
		NumTicket: 9, Status: models.StatusPending, Collaborateur: "bob",
		Extra: models.Extra{"description": json.RawMessage(`"keep me"`)},
	})

	rec := call(h.HandleAccept, accept(tk.ID, testutil.RegularUser(f.Bob.ID, "bob")))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := be.LastBody("PUT /tickets/" + strconv.FormatInt(tk.ID, 10))
	require.NotNil(t, body)
	assert.Equal(t, "keep me", body["description"])
	assert.Equal(t, string(models.StatusAccepted), body["status"])
}

func TestHandleAccept_NotMine(t *testing.T) {
	h, be, f, _ := setup(t)

	rec := call(h.HandleAccept, accept(f.Open.ID, testutil.RegularUser(f.Alice.ID, "alice")))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, be.CountCalls("PUT "))
}

func TestHandleAccept_AlreadyAccepted(t *testing.T) {
	h, be, f, _ := setup(t)

	rec := call(h.HandleAccept, accept(f.Done.ID, testutil.RegularUser(f.Alice.ID, "alice")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, be.CountCalls("PUT "))
}

func TestHandleAccept_Missing(t *testing.T) {
	h, _, f, _ := setup(t)

	rec := call(h.HandleAccept, accept(99999, testutil.RegularUser(f.Bob.ID, "bob")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeMine_LoadsTicketsWithParents(t *testing.T) {
	h, be, f, _ := setup(t)

	call(h.ServeMine, testutil.NewAuthenticatedRequest("GET", "/my/tickets", testutil.RegularUser(f.Bob.ID, "bob")))

	assert.ElementsMatch(t, []string{"GET /tickets", "GET /equipes", "GET /modules", "GET /clients"}, be.Calls())
}
