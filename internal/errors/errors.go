package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a snip error code.
type ErrorCode string

const (
	ErrInvalidRequest          ErrorCode = "INVALID_REQUEST"           // 400
	ErrNotFound                ErrorCode = "NOT_FOUND"                 // 404
	ErrFileNotFound            ErrorCode = "FILE_NOT_FOUND"            // 404
	ErrNameAlreadyExists       ErrorCode = "NAME_ALREADY_EXISTS"       // 409
	ErrDangerousContentBlocked ErrorCode = "DANGEROUS_CONTENT_BLOCKED" // 403
	ErrRequiredVariableMissing ErrorCode = "REQUIRED_VARIABLE_MISSING" // 422
	ErrAborted                 ErrorCode = "ABORTED"                   // 499
	ErrInternal                ErrorCode = "INTERNAL"                  // 500
)

// Exit statuses surfaced by the CLI for error codes that are not plain failures.
const (
	ExitFailure     = 1
	ExitBlocked     = 2
	ExitInterrupted = 130
)

// SnipError represents a structured error with code, status, and details.
type SnipError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *SnipError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SnipError {
	return &SnipError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a snippet cannot be found.
func NewNotFound(identifier string) *SnipError {
	return &SnipError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("snippet not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *SnipError {
	return &SnipError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewNameAlreadyExists creates a 409 error for name collisions.
func NewNameAlreadyExists(name string) *SnipError {
	return &SnipError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("snippet with name %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// NewDangerousContentBlocked creates an error for flagged content the user did not confirm.
func NewDangerousContentBlocked(name string) *SnipError {
	return &SnipError{
		Code:    ErrDangerousContentBlocked,
		Status:  403,
		Message: fmt.Sprintf("snippet %q contains potentially dangerous commands and was not confirmed", name),
		Details: map[string]any{"name": name},
	}
}

// NewRequiredVariableMissing creates an error for a template variable left empty after a re-prompt.
func NewRequiredVariableMissing(variable string) *SnipError {
	return &SnipError{
		Code:    ErrRequiredVariableMissing,
		Status:  422,
		Message: fmt.Sprintf("required variable not provided: %s", variable),
		Details: map[string]any{"variable": variable},
	}
}

// NewAborted creates an error for an operation the user declined.
func NewAborted() *SnipError {
	return &SnipError{
		Code:    ErrAborted,
		Status:  499,
		Message: "aborted",
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SnipError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SnipError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// As returns the SnipError that err is or wraps.
func As(err error) (*SnipError, bool) {
	var sErr *SnipError
	if stderrors.As(err, &sErr) {
		return sErr, true
	}
	return nil, false
}

// Is checks if an error is (or wraps) a SnipError with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := As(err); ok {
		return sErr.Code == code
	}
	return false
}

// ExitStatus maps an error to the process exit status the CLI reports.
// Blocked dangerous content exits 2 and an interrupted prompt exits 130.
// Callers that treat an interrupt as a plain "no" must handle it before this.
func ExitStatus(err error) int {
	switch {
	case err == nil:
		return 0
	case Is(err, ErrDangerousContentBlocked):
		return ExitBlocked
	case Is(err, ErrAborted):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}
