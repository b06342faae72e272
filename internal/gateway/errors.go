package gateway

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTable    = errors.New("unknown table")
	ErrUnknownBucket   = errors.New("unknown bucket")
	ErrUnknownFunction = errors.New("unknown function")
	ErrInvalidPath     = errors.New("invalid object path")
	ErrUnauthenticated = errors.New("not signed in")
)

// Error is the single failure type every gateway operation returns.
// Message is safe to show to the user; Err keeps the cause for errors.Is.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the human-readable message of a gateway error, or fallback.
func Message(err error, fallback string) string {
	var gerr *Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return gerr.Message
	}
	return fallback
}

func fail(op, message string, err error) error {
	return &Error{Op: op, Message: message, Err: err}
}
