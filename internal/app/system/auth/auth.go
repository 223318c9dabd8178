// Package auth keeps the operator's backend identity in a signed session
// cookie and guards routes by sign-in state and role.
//
// The session holds the bearer token issued by the backend together with
// the role and subject decoded from it. Nothing else reads the token: each
// request gets the identity injected into its context by LoadSessionUser,
// and handlers pass it on explicitly to the API client.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/deskhub/internal/app/system/identity"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// sessionMaxLength bounds the encoded session cookie.
const sessionMaxLength = 8192

const (
	tokenKey   = "token"
	roleKey    = "role"
	subjectKey = "subject"
	userIDKey  = "user_id"
	expiresKey = "expires_at"
)

// SessionUser is the signed-in operator as seen by handlers.
type SessionUser struct {
	UserID int64 // backend user id, 0 when unknown
	Login  string
	Role   models.Role
	Token  string
}

// Identity returns the explicit session value handed to the API client.
func (u *SessionUser) Identity() identity.Session {
	return identity.Session{Token: u.Token, Role: u.Role, Subject: u.Login}
}

// IsAdmin reports whether the user has the admin role.
func (u *SessionUser) IsAdmin() bool {
	return u.Role.IsAdmin()
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// Identity returns the current request's identity, or the zero Session.
func Identity(r *http.Request) identity.Session {
	if u, ok := CurrentUser(r); ok {
		return u.Identity()
	}
	return identity.Session{}
}

// WithTestUser injects u into the request context, bypassing the cookie.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// SessionManager reads and writes the session cookie.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure with SameSite=Lax; over
// plain http in development use secure=false so the browser keeps them.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide 32+ random chars")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "deskhub-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	// Tokens are long; lift the default 4096-byte codec limit.
	for _, c := range store.Codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxLength(sessionMaxLength)
		}
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// LoadSessionUser injects the user into the context when the session holds
// an unexpired identity.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			// Tampered or rotated-key cookie: treat as signed out.
			next.ServeHTTP(w, r)
			return
		}
		tok, _ := sess.Values[tokenKey].(string)
		if tok == "" {
			next.ServeHTTP(w, r)
			return
		}
		if exp, _ := sess.Values[expiresKey].(int64); exp > 0 && time.Now().Unix() >= exp {
			next.ServeHTTP(w, r)
			return
		}
		role, _ := sess.Values[roleKey].(string)
		u := &SessionUser{
			Login: getString(sess, subjectKey),
			Role:  models.ParseRole(role),
			Token: tok,
		}
		u.UserID, _ = sess.Values[userIDKey].(int64)
		next.ServeHTTP(w, withUser(r, u))
	})
}

// SignIn stores s in the session. userID may be 0 when the backend did not
// return the operator's record. A zero expires means the cookie's MaxAge.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, s identity.Session, userID int64, expires time.Time) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[tokenKey] = s.Token
	sess.Values[roleKey] = s.Role.String()
	sess.Values[subjectKey] = s.Subject
	sess.Values[userIDKey] = userID
	if !expires.IsZero() {
		sess.Values[expiresKey] = expires.Unix()
	} else {
		delete(sess.Values, expiresKey)
	}
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// Expire clears the session and sends the caller to the login page. It is
// used when the backend rejects the stored token.
func (sm *SessionManager) Expire(w http.ResponseWriter, r *http.Request) {
	if err := sm.SignOut(w, r); err != nil {
		sm.log.Warn("failed to clear session", zap.Error(err))
	}
	sendToLogin(w, r)
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		sendToLogin(w, r)
	})
}

// RequireRole admits users holding one of the allowed roles. Role strings
// are canonicalized, so "admin" and "ROLE_Admin" both mean Admin.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[models.Role]struct{}, len(allowed))
	for _, a := range allowed {
		if r := models.ParseRole(a); r.Valid() {
			set[r] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)

			// 1) Not signed in → 401 semantics
			if !ok {
				sendToLogin(w, r)
				return
			}

			// 2) Signed in but wrong role → 403 semantics
			if _, has := set[u.Role]; !has {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is RequireRole(Admin).
func (sm *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return sm.RequireRole(string(models.RoleAdmin))(next)
}

// helpers

func sendToLogin(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	// Browser/HTML: go to login and preserve return
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}

	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	if r.Method != http.MethodGet {
		return "/dashboard"
	}
	u := *r.URL
	return u.RequestURI()
}
