package users_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	uierrors "github.com/dalemusser/deskhub/internal/app/features/errors"
	"github.com/dalemusser/deskhub/internal/app/features/users"
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/dalemusser/deskhub/internal/app/system/screen"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/dalemusser/deskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	h  *users.Handler
	be *testutil.Backend
	f  testutil.Fixtures
}

func newEnv(t *testing.T) env {
	t.Helper()
	be := testutil.NewBackend(t)
	f := testutil.Seed(be)
	logger := zap.NewNop()
	h := users.NewHandler(screen.NewOpener(testutil.Client(t, be), logger), uierrors.NewErrorLogger(logger), nil, logger)
	return env{h: h, be: be, f: f}
}

// call runs fn and swallows the panic rendering raises without booted templates.
func call(fn http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }()
		fn(rec, req)
	}()
	return rec
}

func idPath(req *http.Request, id int64) *http.Request {
	return testutil.WithChiURLParam(req, "id", strconv.FormatInt(id, 10))
}

func TestServeList_LoadsUsersOnce(t *testing.T) {
	e := newEnv(t)

	call(e.h.ServeList, testutil.NewAuthenticatedRequest("GET", "/users?q=bo", testutil.AdminUser()))

	assert.Equal(t, 1, e.be.CountCalls("GET /utilisateurs"), "calls: %v", e.be.Calls())
}

func TestHandleCreate_Success(t *testing.T) {
	e := newEnv(t)

	form := url.Values{
		"login":    {"carol"},
		"password": {"carol-pw"},
		"role":     {"User"},
		"actif":    {"1"},
		"team":     {strconv.FormatInt(e.f.Alpha.ID, 10)},
		"poste":    {"0"},
	}
	rec := call(e.h.HandleCreate, testutil.NewFormRequest("POST", "/users", form, testutil.AdminUser()))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users", rec.Header().Get("Location"))

	u, ok := e.be.UserByLogin("carol")
	require.True(t, ok, "user should be created")
	assert.Equal(t, models.RoleUser, u.Role)
	assert.True(t, u.Actif)
	assert.Equal(t, "admin", u.CreationUser)
	assert.False(t, u.CreationDate.IsZero())
	require.NotNil(t, u.IdEquip)
	assert.Equal(t, e.f.Alpha.ID, u.IdEquip.ID)
	assert.Nil(t, u.IdPoste, "None should be sent as null")
}

func TestHandleCreate_HTMXUsesHXRedirect(t *testing.T) {
	e := newEnv(t)

	form := url.Values{"login": {"carol"}, "password": {"pw"}, "role": {"Admin"}}
	req := testutil.NewFormRequest("POST", "/users", form, testutil.AdminUser())
	req.Header.Set("HX-Request", "true")
	rec := call(e.h.HandleCreate, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/users", rec.Header().Get("HX-Redirect"))
}

func TestHandleCreate_ValidationSkipsBackend(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing login", url.Values{"password": {"pw"}, "role": {"User"}}},
		{"missing password", url.Values{"login": {"carol"}, "role": {"User"}}},
		{"bad role", url.Values{"login": {"carol"}, "password": {"pw"}, "role": {"Root"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			rec := call(e.h.HandleCreate, testutil.NewFormRequest("POST", "/users", tt.form, testutil.AdminUser()))

			assert.NotEqual(t, http.StatusSeeOther, rec.Code)
			assert.Zero(t, e.be.CountCalls("POST /save"))
		})
	}
}

func TestHandleCreate_BackendRejectsUnknownTeam(t *testing.T) {
	e := newEnv(t)

	form := url.Values{"login": {"carol"}, "password": {"pw"}, "role": {"User"}, "team": {"99999"}}
	rec := call(e.h.HandleCreate, testutil.NewFormRequest("POST", "/users", form, testutil.AdminUser()))

	assert.Equal(t, 1, e.be.CountCalls("POST /save"))
	assert.Empty(t, rec.Header().Get("Location"), "form should be re-rendered, not redirected")
	_, ok := e.be.UserByLogin("carol")
	assert.False(t, ok)
}

func TestHandleEdit_KeepsPasswordUnlessChanged(t *testing.T) {
	e := newEnv(t)

	form := url.Values{
		"login":    {"bob"},
		"password": {"ignored"},
		"role":     {"User"},
		"actif":    {"1"},
		"team":     {strconv.FormatInt(e.f.Beta.ID, 10)},
	}
	req := idPath(testutil.NewFormRequest("POST", "/users/x/edit", form, testutil.AdminUser()), e.f.Bob.ID)
	rec := call(e.h.HandleEdit, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	u, _ := e.be.User(e.f.Bob.ID)
	assert.Equal(t, "bob-pw", u.Password)
	require.NotNil(t, u.IdEquip)
	assert.Equal(t, e.f.Beta.ID, u.IdEquip.ID)
	assert.Nil(t, u.IdPoste)

	form.Set("change_password", "1")
	form.Set("password", "new-pw")
	req = idPath(testutil.NewFormRequest("POST", "/users/x/edit", form, testutil.AdminUser()), e.f.Bob.ID)
	call(e.h.HandleEdit, req)

	u, _ = e.be.User(e.f.Bob.ID)
	assert.Equal(t, "new-pw", u.Password)
}

func TestHandleEdit_KeepsUndeclaredFields(t *testing.T) {
	e := newEnv(t)
	carol := e.be.AddUser(models.User{
		Login: "carol", Password: "carol-pw", Role: models.RoleUser, Actif: true,
		Extra: models.Extra{"email": json.RawMessage(`"carol@example.com"`)},
	})

	form := url.Values{"login": {"caroline"}, "role": {"User"}, "actif": {"1"}}
	req := idPath(testutil.NewFormRequest("POST", "/users/x/edit", form, testutil.AdminUser()), carol.ID)
	rec := call(e.h.HandleEdit, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := e.be.LastBody("PUT /utilisateurs/" + strconv.FormatInt(carol.ID, 10))
	require.NotNil(t, body)
	assert.Equal(t, "carol@example.com", body["email"])
	assert.Equal(t, "caroline", body["login"])
	_, sent := body["password"]
	assert.False(t, sent, "password is only sent when changed")
}

func TestHandleEdit_ChangePasswordRequiresValue(t *testing.T) {
	e := newEnv(t)

	form := url.Values{"login": {"bob"}, "role": {"User"}, "actif": {"1"}, "change_password": {"1"}}
	req := idPath(testutil.NewFormRequest("POST", "/users/x/edit", form, testutil.AdminUser()), e.f.Bob.ID)
	call(e.h.HandleEdit, req)

	assert.Zero(t, e.be.CountCalls("PUT /utilisateurs"))
}

func TestHandleEdit_CannotDemoteSelf(t *testing.T) {
	e := newEnv(t)

	form := url.Values{"login": {"admin"}, "role": {"User"}, "actif": {"1"}}
	req := idPath(testutil.NewFormRequest("POST", "/users/x/edit", form, testutil.AdminUser()), e.f.Admin.ID)
	rec := call(e.h.HandleEdit, req)

	assert.NotEqual(t, http.StatusSeeOther, rec.Code)
	assert.Zero(t, e.be.CountCalls("PUT /utilisateurs"))
	u, _ := e.be.User(e.f.Admin.ID)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestHandleEdit_InvalidID(t *testing.T) {
	e := newEnv(t)

	req := testutil.WithChiURLParam(testutil.NewFormRequest("POST", "/users/abc/edit", url.Values{}, testutil.AdminUser()), "id", "abc")
	rec := call(e.h.HandleEdit, req)

	assert.Empty(t, e.be.Calls())
	assert.NotEqual(t, http.StatusSeeOther, rec.Code)
}

func TestHandleDelete(t *testing.T) {
	e := newEnv(t)

	req := idPath(testutil.NewFormRequest("POST", "/users/x/delete", url.Values{}, testutil.AdminUser()), e.f.Alice.ID)
	rec := call(e.h.HandleDelete, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, ok := e.be.User(e.f.Alice.ID)
	assert.False(t, ok)
}

func TestHandleDelete_Self(t *testing.T) {
	e := newEnv(t)

	req := idPath(testutil.NewFormRequest("POST", "/users/x/delete", url.Values{}, testutil.AdminUser()), e.f.Admin.ID)
	req.Header.Set("HX-Request", "true")
	rec := call(e.h.HandleDelete, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, e.be.CountCalls("DELETE /utilisateurs"))
}

func TestHandleDelete_ExpiredTokenSignsOut(t *testing.T) {
	e := newEnv(t)

	user := testutil.AdminUser()
	user.Token = "stale"
	req := idPath(testutil.NewFormRequest("POST", "/users/x/delete", url.Values{}, user), e.f.Alice.ID)
	rec := call(e.h.HandleDelete, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, ok := e.be.User(e.f.Alice.ID)
	assert.True(t, ok)
}

func TestRoutes_AdminOnly(t *testing.T) {
	e := newEnv(t)
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, zap.NewNop())
	require.NoError(t, err)
	r := users.Routes(e.h, sm)

	req := testutil.NewAuthenticatedRequest("GET", "/", testutil.RegularUser(7, "bob"))
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }()
		r.ServeHTTP(rec, req)
	}()

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, e.be.Calls())
}
