package screen_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/app/system/screen"
	"github.com/dalemusser/deskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen_LoadsWithCallerSession(t *testing.T) {
	be := testutil.NewBackend(t)
	f := testutil.Seed(be)
	o := screen.NewOpener(testutil.Client(t, be), zap.NewNop())

	req := testutil.NewAuthenticatedRequest("GET", "/teams", testutil.AdminUser())
	s, err := o.Open(context.Background(), req, directory.Teams, directory.Tickets)
	require.NoError(t, err)
	assert.True(t, s.Dir.Loaded())
	assert.Len(t, directory.TeamsOf(s.Dir), 2)
	assert.Equal(t, "admin", s.Client.Session().Subject)
	_ = f
}

func TestOpen_NoSessionIsAuthError(t *testing.T) {
	be := testutil.NewBackend(t)
	o := screen.NewOpener(testutil.Client(t, be), zap.NewNop())

	req := testutil.NewRequest("GET", "/teams")
	_, err := o.Open(context.Background(), req, directory.Teams)
	require.Error(t, err)
	assert.True(t, apiclient.IsAuth(err))
	assert.Zero(t, be.CountCalls("GET"))
}

func TestOpen_UpstreamFailure(t *testing.T) {
	be := testutil.NewBackend(t)
	testutil.Seed(be)
	be.FailNext("GET /postes", http.StatusInternalServerError)
	o := screen.NewOpener(testutil.Client(t, be), zap.NewNop())

	req := testutil.NewAuthenticatedRequest("GET", "/postes", testutil.AdminUser())
	s, err := o.Open(context.Background(), req, directory.Postes, directory.Users)
	require.Error(t, err)
	assert.True(t, apiclient.IsTransient(err))
	assert.False(t, s.Dir.Loaded())
}
