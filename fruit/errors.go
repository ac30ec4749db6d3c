package fruit

import (
	"errors"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an error that did not come from this package.
	CodeUnknown Code = "UNKNOWN"
	// CodeInvalidArgument reports missing or malformed input.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeNotFound reports an absent fruit.
	CodeNotFound Code = "NOT_FOUND"
	// CodeConflict reports a fruit_id that already exists.
	CodeConflict Code = "CONFLICT"
	// CodeStoreUnavailable reports a failed document or graph store call.
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
)

// Error is the service error type.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface. The cause is appended so store
// failures stay visible to operators.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrInvalidArgument  = &Error{Code: CodeInvalidArgument}
	ErrNotFound         = &Error{Code: CodeNotFound}
	ErrConflict         = &Error{Code: CodeConflict}
	ErrStoreUnavailable = &Error{Code: CodeStoreUnavailable}
)

// CodeOf returns the code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

func invalidArgument(message string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: message}
}

func notFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func conflict(message string, cause error) *Error {
	return &Error{Code: CodeConflict, Message: message, Cause: cause}
}

func storeUnavailable(message string, cause error) *Error {
	return &Error{Code: CodeStoreUnavailable, Message: message, Cause: cause}
}
