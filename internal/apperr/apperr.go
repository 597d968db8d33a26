// Package apperr defines the error taxonomy shared by the domain services
// and the HTTP layer. Handlers translate these into response codes; the
// services themselves never touch HTTP.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrUpstream     = errors.New("upstream unavailable")
)

// Error carries one of the sentinel kinds plus a caller-facing message.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.kind.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.kind }

func NotFound(format string, args ...any) error {
	return &Error{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &Error{kind: ErrForbidden, msg: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) error {
	return &Error{kind: ErrInvalidState, msg: fmt.Sprintf(format, args...)}
}

func Upstream(format string, args ...any) error {
	return &Error{kind: ErrUpstream, msg: fmt.Sprintf(format, args...)}
}
