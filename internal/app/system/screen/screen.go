// Package screen opens the per-request view of the backend a handler works
// against: an API client carrying the caller's session and a directory of
// the collections the page shows.
//
// A Screen lives for one request. Nothing is shared between requests, so a
// reload triggered by one operator never races another's page.
package screen

import (
	"context"
	"net/http"

	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/auth"
	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"go.uber.org/zap"
)

// Opener builds Screens from a session-less base client.
type Opener struct {
	API *apiclient.Client
	Log *zap.Logger
}

// NewOpener returns an Opener over api.
func NewOpener(api *apiclient.Client, logger *zap.Logger) *Opener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opener{API: api, Log: logger}
}

// Screen is one request's client and directory.
type Screen struct {
	Client *apiclient.Client
	Dir    *directory.Directory
}

// Client returns the base client bound to the request's session.
func (o *Opener) Client(r *http.Request) *apiclient.Client {
	return o.API.WithSession(auth.Identity(r))
}

// Open binds the request's session and loads names. When names is empty the
// directory is registered but not loaded.
func (o *Opener) Open(ctx context.Context, r *http.Request, names ...string) (*Screen, error) {
	c := o.Client(r)
	d := directory.New(o.Log)
	if err := directory.ForClient(c, d, names...); err != nil {
		return nil, err
	}
	s := &Screen{Client: c, Dir: d}
	if len(names) == 0 {
		return s, nil
	}
	if err := d.Load(ctx); err != nil {
		return s, err
	}
	return s, nil
}
