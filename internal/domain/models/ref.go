// internal/domain/models/ref.go
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrBadReference is returned when a relationship field arrives in any shape
// other than null or an object carrying an integer "id".
var ErrBadReference = errors.New("models: relationship must be null or an object with an integer id")

// Ref is a nullable pointer from a child entity to its current parent.
//
// On the wire a reference is always null (unassigned) or {"id": n}. Fields
// are declared as *Ref so that a nil pointer means "unassigned". The backend
// often embeds the whole parent record; Name keeps a display label resolved
// from it, but only ID is ever sent back.
type Ref struct {
	ID   int64
	Name string
}

// NewRef returns a reference to the entity with the given id.
func NewRef(id int64) *Ref {
	return &Ref{ID: id}
}

// RefID returns the referenced id, or 0 when the reference is nil.
func RefID(r *Ref) int64 {
	if r == nil {
		return 0
	}
	return r.ID
}

// RefName returns the display label of the reference, or "" when nil.
func RefName(r *Ref) string {
	if r == nil {
		return ""
	}
	return r.Name
}

// Points reports whether r is non-nil and points at id.
func (r *Ref) Points(id int64) bool {
	return r != nil && r.ID == id
}

// MarshalJSON emits {"id": n}.
func (r Ref) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"id":%d}`, r.ID)), nil
}

// labelKeys lists the embedded fields used to build a display label, in
// priority order. nom/prenom are joined for clients.
var labelKeys = []string{"nomEquipe", "designation", "login"}

// UnmarshalJSON accepts only an object with an integer id.
// A JSON null never reaches here when the field is a *Ref.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return fmt.Errorf("%w: got %s", ErrBadReference, abbreviate(data))
	}

	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrBadReference, err)
	}

	idRaw, ok := raw["id"]
	if !ok {
		return fmt.Errorf("%w: missing id", ErrBadReference)
	}
	var n json.Number
	if err := json.Unmarshal(idRaw, &n); err != nil {
		return fmt.Errorf("%w: id is not a number", ErrBadReference)
	}
	id, err := n.Int64()
	if err != nil {
		return fmt.Errorf("%w: id is not an integer", ErrBadReference)
	}

	r.ID = id
	r.Name = refLabel(raw)
	return nil
}

func refLabel(raw map[string]json.RawMessage) string {
	for _, k := range labelKeys {
		if s := rawString(raw[k]); s != "" {
			return s
		}
	}
	nom, prenom := rawString(raw["nom"]), rawString(raw["prenom"])
	return strings.TrimSpace(nom + " " + prenom)
}

func rawString(b json.RawMessage) string {
	if len(b) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ""
	}
	return s
}

func abbreviate(b []byte) string {
	if len(b) > 32 {
		return string(b[:32]) + "…"
	}
	return string(b)
}
