package relay

import (
	"errors"
	"fmt"
)

// Code classifies a relay failure for transport-level mapping.
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUpstreamError   Code = "UPSTREAM_ERROR"
	CodeUpstreamTimeout Code = "UPSTREAM_TIMEOUT"
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
		return fmt.Sprintf("relay: %s (%s)", e.Code, e.Detail)
	}
	return fmt.Sprintf("relay: %s (%s): %v", e.Code, e.Detail, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code Code, detail string, err error) *Error {
	return &Error{Code: code, Detail: detail, Err: err}
}

// CodeOf extracts the error code, defaulting to CodeUpstreamError.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUpstreamError
}

// DetailOf extracts the client-safe detail string from an error.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return "chat provider request failed"
}
