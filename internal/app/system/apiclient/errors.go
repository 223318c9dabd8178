package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an upstream failure by how the console reacts to it.
type Kind int

const (
	// KindTransient covers transport failures and 5xx responses.
	KindTransient Kind = iota
	// KindAuth is a 401 or 403: the session is no longer usable.
	KindAuth
	// KindConflictOrNotFound is any other 4xx: the backend rejected the change.
	KindConflictOrNotFound
	// KindDecode means the response body could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindConflictOrNotFound:
		return "conflict_or_not_found"
	case KindDecode:
		return "decode"
	default:
		return "transient"
	}
}

// Error is returned by every Client call that fails.
type Error struct {
	Op        string // e.g. "PUT /tickets/7"
	Status    int    // 0 when no response was received
	Body      string // truncated response body
	Kind      Kind
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("apiclient: %s: %v", e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("apiclient: %s: %d %s: %v", e.Op, e.Status, http.StatusText(e.Status), e.Err)
	case e.Body != "":
		return fmt.Sprintf("apiclient: %s: %d %s: %s", e.Op, e.Status, http.StatusText(e.Status), e.Body)
	default:
		return fmt.Sprintf("apiclient: %s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
	}
}

func (e *Error) Unwrap() error { return e.Err }

// kindForStatus maps a non-2xx status to its Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status >= 400 && status < 500:
		return KindConflictOrNotFound
	default:
		return KindTransient
	}
}

// KindOf returns the Kind of err, and false when err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsAuth reports whether err is an authentication or authorization failure.
func IsAuth(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindAuth
}

// IsConflictOrNotFound reports whether the backend rejected the request.
func IsConflictOrNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindConflictOrNotFound
}

// IsTransient reports whether err is a transport, 5xx or decode failure.
// Decode failures are grouped here because the operator can only retry.
func IsTransient(err error) bool {
	k, ok := KindOf(err)
	return ok && (k == KindTransient || k == KindDecode)
}

// IsNotFound reports whether err is specifically a 404.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}
