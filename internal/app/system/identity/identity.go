// Package identity turns a backend-issued bearer token into the explicit
// session value the console passes around: token, role and subject.
//
// The backend signs its tokens; the console only needs the claims. When a
// secret is configured the signature is verified, otherwise the token is
// decoded without verification.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned for an empty token.
var ErrNoToken = errors.New("identity: empty token")

// ErrNoRole is returned when the token carries no role the console knows.
var ErrNoRole = errors.New("identity: token carries no usable role")

// Session is the authenticated identity for one signed-in operator.
type Session struct {
	Token   string
	Role    models.Role
	Subject string
}

// IsZero reports whether s holds no identity.
func (s Session) IsZero() bool {
	return s.Token == ""
}

// IsAdmin reports whether the session has the admin role.
func (s Session) IsAdmin() bool {
	return s.Role.IsAdmin()
}

// Authority is one entry of the token's "roles" claim.
type Authority struct {
	Authority string `json:"authority"`
}

// Claims is the backend's token payload. Roles follows the Spring layout
// ([{"authority":"ROLE_Admin"}]); Role is accepted as a fallback.
type Claims struct {
	Roles []Authority `json:"roles,omitempty"`
	Role  string      `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// PrimaryRole returns the canonical role of the first recognizable entry.
func (c *Claims) PrimaryRole() models.Role {
	for _, a := range c.Roles {
		if r := models.ParseRole(a.Authority); r.Valid() {
			return r
		}
	}
	return models.ParseRole(c.Role)
}

// Decoder builds sessions from raw tokens.
type Decoder struct {
	secret []byte
}

// NewDecoder returns a Decoder. An empty secret disables signature checks.
func NewDecoder(secret string) *Decoder {
	d := &Decoder{}
	if secret != "" {
		d.secret = []byte(secret)
	}
	return d
}

// Verifies reports whether the decoder checks signatures.
func (d *Decoder) Verifies() bool {
	return len(d.secret) > 0
}

// FromToken decodes tok into a Session.
//
// The token may arrive JSON-quoted and may carry a "Bearer " prefix; both
// are stripped. Expired tokens are rejected in either mode.
func (d *Decoder) FromToken(tok string) (Session, error) {
	tok = normalize(tok)
	if tok == "" {
		return Session{}, ErrNoToken
	}

	claims := &Claims{}
	if d.Verifies() {
		t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return d.secret, nil
		})
		if err != nil {
			return Session{}, fmt.Errorf("identity: %w", err)
		}
		if !t.Valid {
			return Session{}, jwt.ErrTokenInvalidClaims
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
			return Session{}, fmt.Errorf("identity: %w", err)
		}
		if err := jwt.NewValidator().Validate(claims); err != nil {
			return Session{}, fmt.Errorf("identity: %w", err)
		}
	}

	role := claims.PrimaryRole()
	if !role.Valid() {
		return Session{}, ErrNoRole
	}
	return Session{Token: tok, Role: role, Subject: claims.Subject}, nil
}

func normalize(tok string) string {
	tok = strings.TrimSpace(tok)
	tok = strings.Trim(tok, `"`)
	if len(tok) > 7 && strings.EqualFold(tok[:7], "bearer ") {
		tok = strings.TrimSpace(tok[7:])
	}
	return tok
}
