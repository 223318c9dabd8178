// internal/domain/models/user.go
package models

import (
	"encoding/json"
	"reflect"
)

// User is a console account as exposed by the backend's /utilisateurs API.
//
// NOTE:
//   - Team and poste membership live on the user (IdEquip, IdPoste); the
//     parent-side lists on Team and Poste are materialized by the backend.
//   - Password is write-only: it is sent on create, and on update only when
//     the operator explicitly changes it.
type User struct {
	ID           int64  `json:"id,omitempty"`
	Login        string `json:"login"`
	Password     string `json:"password,omitempty"`
	Role         Role   `json:"role"`
	Actif        bool   `json:"actif"`
	CreationDate Millis `json:"creationDate,omitempty"`
	CreationUser string `json:"creationUser,omitempty"`
	IdEquip      *Ref   `json:"idEquip"`
	IdPoste      *Ref   `json:"idPoste"`

	// Extra keeps undeclared backend fields such as email.
	Extra Extra `json:"-"`
}

var userKeys = jsonKeys(reflect.TypeOf(User{}))

// UnmarshalJSON decodes the declared fields and keeps the rest in Extra.
func (u *User) UnmarshalJSON(data []byte) error {
	type wire User
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	extra, err := splitExtra(data, userKeys)
	if err != nil {
		return err
	}
	w.Extra = extra
	*u = User(w)
	return nil
}

// MarshalJSON encodes the declared fields followed by Extra.
func (u User) MarshalJSON() ([]byte, error) {
	type wire User
	data, err := json.Marshal(wire(u))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, u.Extra)
}
