// Package errors provides structured error types for stackbom.
//
// Every failure surfaced by the term context, the node model, the chunk
// codec and the archive reader/writer carries a machine-readable [Code].
// Callers branch on the code rather than on message text:
//
//	if errors.Is(err, errors.ErrCodeUnknownTerm) {
//	    // the document used a term the reader's context does not know
//	}
//
// # Error Codes
//
// Codes are grouped by the layer that raises them:
//   - context: UNKNOWN_TERM, CONFLICT, INVALID_BASE
//   - node: MISSING_IDENTIFIER, MISSING_TYPE, IMMUTABLE, INVALID_VALUE
//   - codec: UNSUPPORTED_KIND
//   - archive: CORRUPT_ARCHIVE, MISSING_METADATA, CLOSED
//   - general: INVALID_*, FILE_NOT_FOUND, INTERNAL_ERROR, UNSUPPORTED
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownTerm, "unknown term %q", name)
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeCorruptArchive, origErr, "read entry %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Term context errors
	ErrCodeUnknownTerm Code = "UNKNOWN_TERM"
	ErrCodeConflict    Code = "CONFLICT"
	ErrCodeInvalidBase Code = "INVALID_BASE"

	// Node model errors
	ErrCodeMissingIdentifier Code = "MISSING_IDENTIFIER"
	ErrCodeMissingType       Code = "MISSING_TYPE"
	ErrCodeImmutable         Code = "IMMUTABLE"
	ErrCodeInvalidValue      Code = "INVALID_VALUE"

	// Codec errors
	ErrCodeUnsupportedKind Code = "UNSUPPORTED_KIND"

	// Archive errors
	ErrCodeCorruptArchive  Code = "CORRUPT_ARCHIVE"
	ErrCodeMissingMetadata Code = "MISSING_METADATA"
	ErrCodeClosed          Code = "CLOSED"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// It checks the outermost *Error in the chain; a CORRUPT_ARCHIVE wrapping an
// UNKNOWN_TERM answers true only for CORRUPT_ARCHIVE. Use [Has] to search the
// whole chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Has reports whether any *Error in err's chain carries code.
func Has(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
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
