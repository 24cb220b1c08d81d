package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to clients
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	// ErrConflict covers domain rule violations such as re-converting a lead
	ErrConflict = errors.New("conflict")
)

// Error carries a client-facing message along with its kind
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NotFound reports a missing entity, e.g. NotFound("Lead") -> "Lead not found"
func NotFound(entity string) error {
	return &Error{Kind: ErrNotFound, Message: entity + " not found"}
}

// BadRequest reports malformed or invalid input
func BadRequest(format string, args ...any) error {
	return &Error{Kind: ErrBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a request that is well formed but violates a lifecycle rule
func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// Message extracts the client-facing message of err, if it has one
func Message(err error) (string, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Message, true
	}
	return "", false
}
