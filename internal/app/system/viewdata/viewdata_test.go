package viewdata_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/deskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseVM_SignedOut(t *testing.T) {
	vm := viewdata.NewBaseVM(httptest.NewRecorder(), httptest.NewRequest("GET", "/login", nil), "Sign in", "/")
	assert.False(t, vm.IsLoggedIn)
	assert.False(t, vm.IsAdmin)
	assert.Equal(t, "Sign in", vm.Title)
	assert.NotEmpty(t, vm.SiteName)
}

func TestNewBaseVM_AdminAndBanner(t *testing.T) {
	viewdata.SetBackendStatus(func() bool { return false })
	t.Cleanup(func() { viewdata.SetBackendStatus(nil) })

	req := testutil.NewAuthenticatedRequest("GET", "/teams", testutil.AdminUser())
	vm := viewdata.NewBaseVM(httptest.NewRecorder(), req, "Teams", "/dashboard")
	assert.True(t, vm.IsLoggedIn)
	assert.True(t, vm.IsAdmin)
	assert.Equal(t, "admin", vm.UserName)
	assert.Equal(t, "/teams", vm.CurrentPath)
	assert.True(t, vm.BackendDown)
}
