// Package naverr defines the error taxonomy shared by the navigator,
// patch engine, and retrieval pipeline: usage errors, auth/version
// mismatches, an unready index, parse failures, resolution failures,
// I/O failures, missing tools, and on-disk corruption.
package naverr

import (
	"errors"
	"fmt"
)

// Kind identifies which class of failure an error belongs to.
type Kind string

const (
	KindUsage             Kind = "usage"
	KindAuth              Kind = "auth"
	KindVersionMismatch   Kind = "version_mismatch"
	KindIndexNotReady     Kind = "index_not_ready"
	KindParse             Kind = "parse"
	KindResolutionFailure Kind = "resolution_failure"
	KindIOFailure         Kind = "io_failure"
	KindToolMissing       Kind = "tool_missing"
	KindCorruption        Kind = "corruption"
)

// Error is a typed navigator/patch-engine error carrying a Kind so
// callers can branch on failure class with errors.As/errors.Is.
type Error struct {
	kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.Message)
}

// Kind reports which failure class this error belongs to.
func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error with the same Kind, letting
// callers write errors.Is(err, naverr.New(naverr.KindUsage, "")).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.kind == e.kind
	}
	return false
}

// New constructs an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, Message: message}
}

// Wrap constructs an *Error of the given kind wrapping a lower-level cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err, or "" if err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return ""
}
