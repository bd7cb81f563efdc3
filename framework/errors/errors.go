package errors

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable identifier for an error category.
type ErrorCode string

const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Container errors
	ErrUnknownDependency ErrorCode = "UNKNOWN_DEPENDENCY"
	ErrCyclicDependency  ErrorCode = "CYCLIC_DEPENDENCY"
	ErrFactoryFailed     ErrorCode = "FACTORY_FAILED"
	ErrTypeMismatch      ErrorCode = "TYPE_MISMATCH"

	// Application errors
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrBootFailed    ErrorCode = "BOOT_FAILED"
)

// Error is a structured error with a code and optional details.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Wrapped error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
}

// Newf creates a new Error with a formatted message
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error. It returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// coder is implemented by typed errors outside this package that still
// belong to a code category.
type coder interface {
	Code() ErrorCode
}

// IsErrorCode checks if an error (or anything it wraps) has a specific code
func IsErrorCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}

// GetErrorCode returns the code of the outermost coded error in err's chain,
// or ErrUnknown.
func GetErrorCode(err error) ErrorCode {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an *Error
func GetErrorDetails(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
