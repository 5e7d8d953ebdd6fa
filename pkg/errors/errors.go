// Package errors provides structured error types for the pagepack
// application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Recovered outcomes
//
// Some outcomes look like errors to the call chain but are expected
// states for the user: a document with nothing to pack, a missing
// staging page, a staging page with nothing to unpack. These carry
// dedicated codes and [IsRecovered] reports true for them; callers
// surface them as notifications rather than failures, and they never
// leave a document partially modified.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDocument, "page %q has no id", name)
//	if errors.Is(err, errors.ErrCodeInvalidDocument) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStore, origErr, "load document %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Recovered outcomes: expected states, surfaced as notifications.
	ErrCodeNothingToPack   Code = "NOTHING_TO_PACK"
	ErrCodeStagingMissing  Code = "STAGING_AREA_MISSING"
	ErrCodeNothingToUnpack Code = "NOTHING_TO_UNPACK"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidMessage  Code = "INVALID_MESSAGE"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Persistence errors
	ErrCodeStore Code = "STORE_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsRecovered reports whether err is a recovered outcome: an expected
// state that aborts the operation cleanly, with no document mutation,
// and surfaces to the user as a notification rather than a failure.
func IsRecovered(err error) bool {
	switch GetCode(err) {
	case ErrCodeNothingToPack, ErrCodeStagingMissing, ErrCodeNothingToUnpack:
		return true
	}
	return false
}
