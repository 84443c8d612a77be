package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes surfaced to tool callers
type ErrorCode string

const (
	// UnknownTool indicates a tools/call for a name that is not registered
	UnknownTool ErrorCode = "UNKNOWN_TOOL"
	// InvalidParameter indicates a missing, mistyped or out-of-range argument
	InvalidParameter ErrorCode = "INVALID_PARAMETER"
	// NotFound indicates a catalog lookup miss
	NotFound ErrorCode = "NOT_FOUND"
	// UnknownCategory indicates a category or filter outside the closed enumeration
	UnknownCategory ErrorCode = "UNKNOWN_CATEGORY"
	// InternalError indicates an unexpected handler failure
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Error is a typed failure with a stable code
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Field names the offending parameter for InvalidParameter (dotted for nested fields)
	Field string `json:"field,omitempty"`
	cause error
}

// New creates an Error
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error carrying an underlying cause
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// InvalidParam creates an InvalidParameter error for field
func InvalidParam(field, format string, args ...any) *Error {
	return &Error{
		Code:    InvalidParameter,
		Message: fmt.Sprintf("invalid parameter %q: %s", field, fmt.Sprintf(format, args...)),
		Field:   field,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code, so errors.Is(err, errors.New(NotFound, "")) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or InternalError
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return InternalError
}

// FieldOf returns the offending field of an InvalidParameter error, if any
func FieldOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Field
	}
	return ""
}
