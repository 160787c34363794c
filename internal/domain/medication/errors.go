package medication

import (
	"errors"
	"fmt"
)

// Code classifies a failure for transport-level mapping.
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeAmbiguousQuery  Code = "AMBIGUOUS_QUERY"
	CodeInternal        Code = "INTERNAL"
)

// Error carries a failure code and a client-safe detail string.
type Error struct {
	Code   Code
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("medication: %s (%s)", e.Code, e.Detail)
	}
	return fmt.Sprintf("medication: %s (%s): %v", e.Code, e.Detail, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError creates a typed error with the given code and detail.
func NewError(code Code, detail string, err error) *Error {
	return &Error{Code: code, Detail: detail, Err: err}
}

// InvalidArgumentf builds an InvalidArgument error with a formatted detail.
func InvalidArgumentf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidArgument, Detail: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the error code, defaulting to CodeInternal for
// untyped errors so nothing internal leaks to the client verbatim.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// DetailOf extracts the client-safe detail string from an error.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return "internal error"
}
