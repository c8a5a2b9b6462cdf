// Package corerr defines the typed error kinds returned across the core:
// validation failures, state-consistency conflicts, transient conditions
// worth retrying, and fatal conditions that should stop a node.
package corerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to branch on it (retry a
// transient failure, surface a validation failure to a submitter, abort on
// fatal).
type Kind int

const (
	// Validation marks a malformed or rule-violating input rejected before
	// any state change — the caller's data was bad.
	Validation Kind = iota
	// Consistency marks a conflict with current state discovered while
	// applying an otherwise well-formed input — e.g. insufficient balance.
	Consistency
	// Transient marks a condition expected to resolve on retry, such as a
	// mining round exhausting its nonce space.
	Transient
	// Fatal marks a condition the caller should not attempt to recover
	// from, such as a corrupted persisted snapshot.
	Fatal
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Consistency:
		return "consistency"
	case Transient:
		return "transient"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is a typed, wrapped error. Wrap it with fmt.Errorf("%w", ...) as
// usual; errors.As still recovers the Kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a typed error for op, wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validationf builds a Validation-kind error.
func Validationf(op, format string, args ...any) *Error {
	return &Error{Kind: Validation, Op: op, Err: fmt.Errorf(format, args...)}
}

// Consistencyf builds a Consistency-kind error.
func Consistencyf(op, format string, args ...any) *Error {
	return &Error{Kind: Consistency, Op: op, Err: fmt.Errorf(format, args...)}
}

// Transientf builds a Transient-kind error.
func Transientf(op, format string, args ...any) *Error {
	return &Error{Kind: Transient, Op: op, Err: fmt.Errorf(format, args...)}
}

// Fatalf builds a Fatal-kind error.
func Fatalf(op, format string, args ...any) *Error {
	return &Error{Kind: Fatal, Op: op, Err: fmt.Errorf(format, args...)}
}

// Is reports whether err carries kind somewhere in its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
