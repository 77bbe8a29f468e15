// Package errs provides the unified error type used across all of filedepot.
//
// Every subsystem (filestore backends, server, …) wraps its native errors
// into *errs.Error before returning them to callers. Callers use the Is*
// predicates to handle errors without importing backend-specific packages.
//
// Usage:
//
//	// In a backend — wrap native errors:
//	return errs.Wrap(errs.ErrKindIOFailed, "failed to write content", osErr)
//
//	// In a handler — check error kind:
//	if errs.IsNotFound(err) {
//	    http.Error(w, "not found", http.StatusNotFound)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing backend-specific codes.
// All backends (disk, MinIO, …) map their native errors to one of these
// kinds, giving callers a single consistent API.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no content stored under the key
	ErrKindIOFailed                 // read/write against the backend failed
	ErrKindInvalidInput             // bad arguments from the caller
	ErrKindPermissionDenied         // access denied by the OS or remote store
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindConnectionFailed         // cannot reach a remote backend
	ErrKindCorrupted                // stored record exists but cannot be decoded
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindIOFailed:
		return "io_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindCorrupted:
		return "corrupted"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all filedepot subsystems.
// Backends produce it; callers inspect it via the Is* predicates below.
type Error struct {
	Kind    ErrKind
	Message string
	Key     string // storage key the operation addressed, when one exists
	Cause   error  // original backend-level error, preserved for logging
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Key != "" {
		msg = fmt.Sprintf("%s %q", e.Message, e.Key)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// NotFound creates the error signalled when no content is stored under key.
// The key is carried on the error and can be recovered with Key.
func NotFound(key string, cause error) *Error {
	return &Error{Kind: ErrKindNotFound, Message: "no object stored under key", Key: key, Cause: cause}
}

// WithKey returns a copy of e annotated with the storage key the failing
// operation addressed.
func (e *Error) WithKey(key string) *Error {
	out := *e
	out.Key = key
	return &out
}

// --- Predicates ---

// IsNotFound reports whether err represents a "not found" result
// (missing content file, missing remote object, …).
func IsNotFound(err error) bool {
	return kindOf(err) == ErrKindNotFound
}

// IsIOFailed reports whether err is a backend read/write failure.
func IsIOFailed(err error) bool {
	return kindOf(err) == ErrKindIOFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return kindOf(err) == ErrKindPermissionDenied
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return kindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity or auth failure
// against a remote backend.
func IsConnectionFailed(err error) bool {
	return kindOf(err) == ErrKindConnectionFailed
}

// IsCorrupted reports whether err means a stored record could not be decoded.
func IsCorrupted(err error) bool {
	return kindOf(err) == ErrKindCorrupted
}

// Key extracts the storage key carried by err, or "" when the error does
// not address a specific key.
func Key(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Key
	}
	return ""
}

// kindOf extracts the ErrKind from any error in the chain.
func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
