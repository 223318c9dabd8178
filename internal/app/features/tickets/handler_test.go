package tickets_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/features/tickets"
	"github.com/dalemusser/deskhub/internal/app/system/screen"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/dalemusser/deskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	h  *tickets.Handler
	be *testutil.Backend
	f  testutil.Fixtures
}

func newEnv(t *testing.T) env {
	t.Helper()
	be := testutil.NewBackend(t)
	f := testutil.Seed(be)
	logger := zap.NewNop()
	h := tickets.NewHandler(screen.NewOpener(testutil.Client(t, be), logger), uierrors.NewErrorLogger(logger), nil, logger)
	return env{h: h, be: be, f: f}
}

func call(fn http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }()
		fn(rec, req)
	}()
	return rec
}

func str(n int64) string { return strconv.FormatInt(n, 10) }

func (e env) validForm() url.Values {
	return url.Values{
		"numTicket":     {"42"},
		"designation":   {"Broken <b>screen</b>"},
		"status":        {string(models.StatusPending)},
		"priorite":      {"Haute"},
		"echeance":      {"2024-07-01"},
		"collaborateur": {"bob"},
		"client":        {str(e.f.Acme.ID)},
		"team":          {"0"},
		"module":        {str(e.f.Web.ID)},
	}
}

func TestServeList_UserCanBrowse(t *testing.T) {
	e := newEnv(t)

	rec := call(e.h.ServeList, testutil.NewAuthenticatedRequest("GET", "/tickets?priority=Haute", testutil.RegularUser(e.f.Bob.ID, "bob")))

	assert.NotEqual(t, http.StatusBadGateway, rec.Code)
	assert.ElementsMatch(t, []string{"GET /tickets", "GET /equipes", "GET /modules", "GET /clients"}, e.be.Calls())
}

func TestHandleCreate(t *testing.T) {
	e := newEnv(t)

	rec := call(e.h.HandleCreate, testutil.NewFormRequest("POST", "/tickets", e.validForm(), testutil.AdminUser()))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/tickets", rec.Header().Get("Location"))

	tk, ok := e.be.TicketByNum(42)
	require.True(t, ok)
	assert.Equal(t, "Broken screen", tk.Designation, "markup is stripped")
	assert.Equal(t, "admin", tk.CreationUser)
	assert.False(t, tk.DateCreation.IsZero())
	assert.Nil(t, tk.IdEquip, "None team is sent as null")
	require.NotNil(t, tk.IdModule)
	assert.Equal(t, e.f.Web.ID, tk.IdModule.ID)
	require.NotNil(t, tk.IdClient)
	assert.Equal(t, e.f.Acme.ID, tk.IdClient.ID)
}

func TestHandleCreate_Validation(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"missing client", "client", ""},
		{"bad number", "numTicket", "abc"},
		{"missing number", "numTicket", ""},
		{"unknown status", "status", "Closed"},
		{"missing priority", "priorite", ""},
		{"bad due date", "echeance", "01/07/2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			form := e.validForm()
			form.Set(tt.field, tt.value)

			rec := call(e.h.HandleCreate, testutil.NewFormRequest("POST", "/tickets", form, testutil.AdminUser()))

			assert.NotEqual(t, http.StatusSeeOther, rec.Code)
			assert.Zero(t, e.be.CountCalls("POST /tickets"))
		})
	}
}

func TestHandleCreate_BackendRejectsReference(t *testing.T) {
	e := newEnv(t)
	form := e.validForm()
	form.Set("team", "99999")

	rec := call(e.h.HandleCreate, testutil.NewFormRequest("POST", "/tickets", form, testutil.AdminUser()))

	assert.Equal(t, 1, e.be.CountCalls("POST /tickets"))
	assert.Empty(t, rec.Header().Get("Location"), "form is re-rendered")
}

func TestHandleEdit_KeepsCreationStamp(t *testing.T) {
	e := newEnv(t)
	before, _ := e.be.Ticket(e.f.Open.ID)

	form := e.validForm()
	form.Set("numTicket", "1")
	form.Set("status", string(models.StatusAccepted))
	form.Set("team", str(e.f.Beta.ID))
	form.Set("module", "0")
	req := testutil.WithChiURLParam(testutil.NewFormRequest("POST", "/tickets/x/edit", form, testutil.AdminUser()), "id", str(e.f.Open.ID))
	rec := call(e.h.HandleEdit, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	tk, _ := e.be.Ticket(e.f.Open.ID)
	assert.Equal(t, models.StatusAccepted, tk.Status)
	assert.Equal(t, before.CreationUser, tk.CreationUser)
	assert.Equal(t, before.DateCreation, tk.DateCreation)
	require.NotNil(t, tk.IdEquip)
	assert.Equal(t, e.f.Beta.ID, tk.IdEquip.ID)
	assert.Nil(t, tk.IdModule)
}

func TestHandleEdit_KeepsUndeclaredFields(t *testing.T) {
	e := newEnv(t)
	tk := e.be.AddTicket(models.Ticket{
		NumTicket: 77, Status: models.StatusPending, Priorite: "Basse", IdClient: models.NewRef(e.f.Acme.ID),
		Extra: models.Extra{"dateEffectationEquip": json.RawMessage(`1700000000000`)},
	})

	form := e.validForm()
	form.Set("numTicket", "77")
	req := testutil.WithChiURLParam(testutil.NewFormRequest("POST", "/tickets/x/edit", form, testutil.AdminUser()), "id", str(tk.ID))
	rec := call(e.h.HandleEdit, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := e.be.LastBody("PUT /tickets/" + str(tk.ID))
	require.NotNil(t, body)
	assert.Equal(t, float64(1700000000000), body["dateEffectationEquip"])
	assert.Equal(t, "Haute", body["priorite"])
}

func TestHandleEdit_InvalidID(t *testing.T) {
	e := newEnv(t)

	req := testutil.WithChiURLParam(testutil.NewFormRequest("POST", "/tickets/x/edit", e.validForm(), testutil.AdminUser()), "id", "-3")
	rec := call(e.h.HandleEdit, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, e.be.Calls())
}

func TestHandleDelete(t *testing.T) {
	e := newEnv(t)

	req := testutil.WithChiURLParam(testutil.NewFormRequest("POST", "/tickets/x/delete", url.Values{}, testutil.AdminUser()), "id", str(e.f.Done.ID))
	req.Header.Set("HX-Request", "true")
	rec := call(e.h.HandleDelete, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/tickets", rec.Header().Get("HX-Redirect"))
	_, ok := e.be.Ticket(e.f.Done.ID)
	assert.False(t, ok)
}
