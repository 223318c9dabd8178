// internal/domain/models/role.go
package models

import (
	"encoding/json"
	"strings"
)

// Role is a console role. Admin and User are the only canonical values.
//
// The backend and its tokens are inconsistent about spelling: the token
// carries "ROLE_Admin" while user records carry "Admin". ParseRole folds
// both to the canonical form so every guard compares one representation.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleUser    Role = "User"
	RoleUnknown Role = ""
)

// ParseRole maps a raw role string to its canonical Role. Case and a leading
// "ROLE_" are ignored. Anything else is RoleUnknown.
func ParseRole(s string) Role {
	s = strings.TrimSpace(s)
	if len(s) >= 5 && strings.EqualFold(s[:5], "ROLE_") {
		s = s[5:]
	}
	switch strings.ToLower(s) {
	case "admin":
		return RoleAdmin
	case "user":
		return RoleUser
	default:
		return RoleUnknown
	}
}

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// IsAdmin reports whether r is the admin role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// UnmarshalJSON canonicalizes known spellings and keeps unknown values as-is
// so they still display; Valid reports false for them.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if p := ParseRole(s); p.Valid() {
		*r = p
		return nil
	}
	*r = Role(s)
	return nil
}
