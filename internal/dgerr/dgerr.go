// Package dgerr defines the error taxonomy shared across the toolkit.
//
// Every error that leaves the library is an *Error carrying one of six
// kinds, so callers can branch on failure class without string matching:
//
//   - Source: input file missing, unreadable, or corrupt compression
//   - Parse: malformed XML or an element that cannot become a record
//   - Validation: strict mode found unmapped source content
//   - FilterConfig: malformed drop-if or unset expression
//   - Writer: output target failed mid-write
//   - TargetConflict: output target already exists and overwrite is off
//
// The wrapped cause stays reachable through errors.Is / errors.As.
package dgerr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind uint8

const (
	Source Kind = iota + 1
	Parse
	Validation
	FilterConfig
	Writer
	TargetConflict
)

// String returns the kind label used in rendered errors.
func (k Kind) String() string {
	switch k {
	case Source:
		return "source"
	case Parse:
		return "parse"
	case Validation:
		return "validation"
	case FilterConfig:
		return "filter config"
	case Writer:
		return "writer"
	case TargetConflict:
		return "target conflict"
	}
	return "unknown"
}

// Error is the canonical error type for the toolkit.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Msg is the human-readable description.
	Msg string
	// Entity and EntityID identify the offending record when known.
	Entity   string
	EntityID int64
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	s := e.Msg
	if e.Entity != "" {
		s = fmt.Sprintf("%s id=%d: %s", e.Entity, e.EntityID, s)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, s, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, s)
}

// Unwrap lets errors.Is and errors.As traverse the cause chain.
func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around a cause. A nil cause
// returns nil so call sites can wrap unconditionally.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// ForEntity attaches the offending entity tag and id.
func (e *Error) ForEntity(entity string, id int64) *Error {
	e.Entity = entity
	e.EntityID = id
	return e
}

// KindOf returns the taxonomy kind of err, or 0 when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
