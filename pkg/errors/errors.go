// Package errors provides structured error types for depscan.
//
// Every failure below the fatal tier is converted into a coded error, logged,
// and turned into a degraded result by the component that produced it. The
// codes let callers tell those classes apart without string matching:
//   - INVALID_*: bad input (missing scan root, malformed configuration)
//   - TOOL_*: an external package-manager invocation failed
//   - TIMEOUT: a subprocess or project exceeded its wall-clock budget
//   - PARSE: a manifest, lockfile or tool transcript could not be decoded
//   - SINK / CACHE: output or cache backend failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPath, "scan root %s does not exist", root)
//	if errors.Is(err, errors.ErrCodeInvalidPath) {
//	    // fatal
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeParse, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Filesystem and decoding errors
	ErrCodeIO          Code = "IO"
	ErrCodeParse       Code = "PARSE"
	ErrCodeFileMissing Code = "FILE_MISSING"

	// External tool errors
	ErrCodeToolNotFound Code = "TOOL_NOT_FOUND"
	ErrCodeToolFailed   Code = "TOOL_FAILED"
	ErrCodeTimeout      Code = "TIMEOUT"
	ErrCodeCanceled     Code = "CANCELED"

	// Backend errors
	ErrCodeSink  Code = "SINK"
	ErrCodeCache Code = "CACHE"

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
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
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

// GetCode extracts the outermost error code from an error, if available.
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

// ToolError describes a package-manager invocation that exited non-zero.
type ToolError struct {
	Tool     string // Executable name (e.g., "mvn")
	ExitCode int    // Process exit status
	Stderr   string // Tail of the captured stderr
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with status %d: %s", e.Tool, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
}

// Code returns the error code for this error type.
func (e *ToolError) Code() Code {
	return ErrCodeToolFailed
}
