// Package relations assigns and unassigns a child entity (ticket, user) to
// and from a parent (team, module, poste).
//
// The backend owns every relationship. An Editor changes exactly one
// reference field on one child through a full-record update, then reloads
// the directory collections the change invalidates; it never patches the
// parent's assigned list itself.
package relations

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/deskhub/internal/app/system/directory"
	"github.com/dalemusser/deskhub/internal/domain/models"
)

// ErrConfirmationRequired is matched by the *ConfirmationError Unassign
// returns when the editor requires confirmation and none was given. No
// request was made.
var ErrConfirmationRequired = errors.New("relations: confirmation required")

// ConfirmationError is the ErrConfirmationRequired of one editor. It names
// the child and parent so the caller can word the prompt.
type ConfirmationError struct {
	Child  string
	Parent string
}

func (e *ConfirmationError) Error() string { return ErrConfirmationRequired.Error() }

// Is makes errors.Is(err, ErrConfirmationRequired) hold.
func (e *ConfirmationError) Is(target error) bool { return target == ErrConfirmationRequired }

// Prompt is the question to put to the operator.
func (e *ConfirmationError) Prompt() string {
	return fmt.Sprintf("Remove this %s from the %s?", e.Child, e.Parent)
}

// ValidationError is a local input problem detected before any request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ReloadError reports that the mutation succeeded but the follow-up reload
// failed. The directory keeps its previous snapshot.
type ReloadError struct {
	Collections []string
	Err         error
}

func (e *ReloadError) Error() string {
	return fmt.Sprintf("relations: change saved but reload of %v failed: %v", e.Collections, e.Err)
}

func (e *ReloadError) Unwrap() error { return e.Err }

// Editor edits one parent reference field of child type C.
type Editor[C any] struct {
	// Name identifies the relationship in logs and audit records,
	// e.g. "team-tickets".
	Name string
	// ChildLabel and ParentLabel name the two sides in messages,
	// e.g. "ticket" and "team".
	ChildLabel  string
	ParentLabel string

	ChildID      func(C) int64
	ParentRef    func(C) *models.Ref
	SetParentRef func(*C, *models.Ref)

	// Eligible, when set, further restricts Candidates.
	Eligible func(C) bool

	Fetch  func(ctx context.Context, id int64) (C, error)
	Update func(ctx context.Context, id int64, c C) (C, error)

	// Invalidates lists the directory collections reloaded after a change.
	Invalidates []string
	// RequireConfirm makes Unassign refuse to run unconfirmed.
	RequireConfirm bool
}

// Candidates returns, in order, the children not linked to parentID that
// pass Eligible.
func (e *Editor[C]) Candidates(parentID int64, children []C) []C {
	out := make([]C, 0, len(children))
	for _, c := range children {
		if e.ParentRef(c).Points(parentID) {
			continue
		}
		if e.Eligible != nil && !e.Eligible(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Assigned returns, in order, the children linked to parentID.
func (e *Editor[C]) Assigned(parentID int64, children []C) []C {
	out := make([]C, 0)
	for _, c := range children {
		if e.ParentRef(c).Points(parentID) {
			out = append(out, c)
		}
	}
	return out
}

// Assign links the child to parentID and reloads the invalidated
// collections of dir. A zero childID is a ValidationError.
func (e *Editor[C]) Assign(ctx context.Context, dir *directory.Directory, parentID, childID int64) error {
	if childID <= 0 {
		return &ValidationError{Field: "child", Message: fmt.Sprintf("Choose a %s.", e.ChildLabel)}
	}
	if parentID <= 0 {
		return &ValidationError{Field: "parent", Message: "Unknown parent."}
	}
	return e.set(ctx, dir, childID, models.NewRef(parentID))
}

// Unassign clears the child's reference and reloads the invalidated
// collections of dir. Clearing an already clear reference still runs the
// full cycle; the backend decides the outcome.
func (e *Editor[C]) Unassign(ctx context.Context, dir *directory.Directory, childID int64, confirmed bool) error {
	if e.RequireConfirm && !confirmed {
		return &ConfirmationError{Child: e.ChildLabel, Parent: e.ParentLabel}
	}
	if childID <= 0 {
		return &ValidationError{Field: "child", Message: fmt.Sprintf("Choose a %s.", e.ChildLabel)}
	}
	return e.set(ctx, dir, childID, nil)
}

// set fetches the full child so unrelated fields survive the update.
func (e *Editor[C]) set(ctx context.Context, dir *directory.Directory, childID int64, ref *models.Ref) error {
	child, err := e.Fetch(ctx, childID)
	if err != nil {
		return err
	}
	e.SetParentRef(&child, ref)
	if _, err := e.Update(ctx, childID, child); err != nil {
		return err
	}
	if dir == nil || len(e.Invalidates) == 0 {
		return nil
	}
	if err := dir.Reload(ctx, e.Invalidates...); err != nil {
		return &ReloadError{Collections: e.Invalidates, Err: err}
	}
	return nil
}

// Saved reports whether the mutation behind err reached the backend: err is
// nil or only the follow-up reload failed.
func Saved(err error) bool {
	var re *ReloadError
	return err == nil || errors.As(err, &re)
}
