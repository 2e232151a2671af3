// Package wiierr defines the typed error taxonomy shared across the disc
// codec: every fallible operation in this module returns an error whose kind
// can be recovered with errors.Is against the exported sentinels below.
package wiierr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// MalformedInput covers sizes or offsets that fail a format invariant.
	MalformedInput Kind = iota
	// NotFound covers an FST path walk that fails to resolve a segment.
	NotFound
	// WrongNodeKind covers a path that resolved to a file where a directory
	// was expected, or vice versa.
	WrongNodeKind
	// OutOfRange covers a seek or read past a window's bounds.
	OutOfRange
	// Unsupported covers a key type or signature type outside the handled set.
	Unsupported
	// Io covers an underlying stream read/write failure.
	Io
)

func (k Kind) String() string {
	switch k {
	case MalformedInput:
		return "malformed input"
	case NotFound:
		return "not found"
	case WrongNodeKind:
		return "wrong node kind"
	case OutOfRange:
		return "out of range"
	case Unsupported:
		return "unsupported"
	case Io:
		return "io"
	default:
		return "unknown"
	}
}

// sentinels let callers write errors.Is(err, wiierr.ErrNotFound) without
// constructing a Kind value themselves.
var (
	ErrMalformedInput = errors.New(MalformedInput.String())
	ErrNotFound       = errors.New(NotFound.String())
	ErrWrongNodeKind  = errors.New(WrongNodeKind.String())
	ErrOutOfRange     = errors.New(OutOfRange.String())
	ErrUnsupported    = errors.New(Unsupported.String())
	ErrIo             = errors.New(Io.String())
)

func sentinel(k Kind) error {
	switch k {
	case MalformedInput:
		return ErrMalformedInput
	case NotFound:
		return ErrNotFound
	case WrongNodeKind:
		return ErrWrongNodeKind
	case OutOfRange:
		return ErrOutOfRange
	case Unsupported:
		return ErrUnsupported
	case Io:
		return ErrIo
	default:
		return ErrMalformedInput
	}
}

// Error is a taxonomy-tagged error carrying the failing operation name and,
// for Io-kind errors, the wrapped underlying cause.
type Error struct {
	kind Kind
	op   string
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.op, e.kind, e.err)
	}
	return fmt.Sprintf("%s: %s: %s", e.op, e.kind, e.msg)
}

// Kind returns the taxonomy classification of this error.
func (e *Error) Kind() Kind { return e.kind }

// Unwrap lets errors.Is/errors.As reach both the sentinel and any wrapped cause.
func (e *Error) Unwrap() error {
	if e.err != nil {
		return e.err
	}
	return sentinel(e.kind)
}

// Is reports whether target is the sentinel for this error's kind, so
// errors.Is(err, wiierr.ErrOutOfRange) works without unwrapping a wrapped cause.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.kind)
}

// New constructs a taxonomy error with a static message.
func New(kind Kind, op, msg string) error {
	return &Error{kind: kind, op: op, msg: msg}
}

// Wrap constructs a taxonomy error around an underlying cause.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, op: op, err: err}
}

// KindOf extracts the Kind from err if it (or something it wraps) is a
// *Error, reporting ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.kind, true
	}
	return 0, false
}
