// Package apperr defines the closed set of error kinds the service
// distinguishes. Kinds are attached where an error originates and
// translated into transport status codes exactly once, at the HTTP
// boundary.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for boundary translation.
type Kind string

const (
	// KindConflict means an import already exists for the requested month.
	KindConflict Kind = "CONFLICT"
	// KindNotFound means the requested job does not exist.
	KindNotFound Kind = "NOT_FOUND"
	// KindFileInvalid means the uploaded bytes are absent, undecodable or
	// structurally malformed CSV.
	KindFileInvalid Kind = "FILE_INVALID"
	// KindTooLarge means the uploaded file exceeds the configured cap.
	KindTooLarge Kind = "TOO_LARGE"
	// KindBadRequest means a request parameter failed validation.
	KindBadRequest Kind = "BAD_REQUEST"
	// KindInternal covers everything else. It is the fallback kind.
	KindInternal Kind = "INTERNAL"
)

// Error carries a kind alongside a message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind wrapping a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Conflict builds a KindConflict error.
func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

// FileInvalid builds a KindFileInvalid error.
func FileInvalid(format string, args ...any) *Error {
	return New(KindFileInvalid, fmt.Sprintf(format, args...))
}

// BadRequest builds a KindBadRequest error.
func BadRequest(format string, args ...any) *Error {
	return New(KindBadRequest, fmt.Sprintf(format, args...))
}

// KindOf extracts the kind from err, walking the wrap chain.
// Errors without a kind are KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
