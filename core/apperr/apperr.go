// Package apperr defines the error taxonomy shared by the service layer and
// its callers. Every error produced here carries a machine-checkable kind
// (matched with errors.Is against the sentinel values) plus a human message.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Callers branch on these with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrConflict    = errors.New("conflict")
	ErrPersistence = errors.New("persistence failure")
)

// Error pairs a kind sentinel with a human-readable message and, optionally,
// the underlying cause.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap reports both the kind sentinel and the cause so that
// errors.Is(err, ErrNotFound) and errors.Is(err, pgx.ErrNoRows) both work.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Message returns the human message without the cause chain.
func (e *Error) Message() string { return e.msg }

func Validation(format string, args ...any) error {
	return &Error{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func ValidationWrap(cause error, format string, args ...any) error {
	return &Error{kind: ErrValidation, msg: fmt.Sprintf(format, args...), cause: cause}
}

// NotFound names the missing resource kind, e.g. NotFound("task").
func NotFound(resource string) error {
	return &Error{kind: ErrNotFound, msg: resource + " not found"}
}

// Forbidden produces the uniform denial message naming the action and the
// resource kind. Role internals are deliberately not leaked.
func Forbidden(action, resource string) error {
	return &Error{kind: ErrForbidden, msg: fmt.Sprintf("not allowed to %s this %s", action, resource)}
}

func Conflict(format string, args ...any) error {
	return &Error{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

func Persistence(cause error, format string, args ...any) error {
	return &Error{kind: ErrPersistence, msg: fmt.Sprintf(format, args...), cause: cause}
}
