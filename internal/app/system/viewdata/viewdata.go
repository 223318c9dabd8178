// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"sync"

	"github.com/dalemusser/deskhub/internal/app/system/authz"
	"github.com/dalemusser/deskhub/internal/app/system/flash"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown when no site name is configured.
const DefaultSiteName = "DeskHub"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	IsAdmin    bool
	Role       string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	// One-shot notices queued before a redirect
	Flash []flash.Message

	// BackendDown is set when the last upstream probe failed
	BackendDown bool
}

// BackendStatus reports whether the ticketing backend answered its last probe.
type BackendStatus func() bool

var (
	mu       sync.RWMutex
	siteName = DefaultSiteName
	backend  BackendStatus
)

// Init sets the site name shown in the layout. Call once at startup.
func Init(name string) {
	mu.Lock()
	defer mu.Unlock()
	if name != "" {
		siteName = name
	}
}

// SetBackendStatus installs the probe used for the outage banner.
func SetBackendStatus(fn BackendStatus) {
	mu.Lock()
	defer mu.Unlock()
	backend = fn
}

// NewBaseVM creates a fully populated BaseVM for a page. It consumes any
// queued flash messages, so call it once per rendered page.
func NewBaseVM(w http.ResponseWriter, r *http.Request, title, backDefault string) BaseVM {
	role, login, _, signedIn := authz.UserCtx(r)

	mu.RLock()
	name, probe := siteName, backend
	mu.RUnlock()

	vm := BaseVM{
		SiteName:    name,
		IsLoggedIn:  signedIn,
		IsAdmin:     signedIn && role.IsAdmin(),
		Role:        role.String(),
		UserName:    login,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
	if w != nil {
		vm.Flash = flash.Pop(w, r)
	}
	if probe != nil {
		vm.BackendDown = !probe()
	}
	return vm
}
