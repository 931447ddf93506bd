// Package apperr defines the error taxonomy shared by every service.
//
// Errors carry a stable machine-readable code so that callers (the gateway,
// other services, tests) can branch on the kind of failure instead of
// matching message strings. The same codes travel over the RPC envelope and
// map onto HTTP statuses at the gateway.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure. Codes are part of the wire contract:
// renaming one is a breaking change.
type Code string

const (
	// CodeValidation marks a malformed request: empty cart, non-positive
	// quantity, unknown status value, items from more than one stall.
	CodeValidation Code = "VALIDATION"

	// CodeNotFound marks an unknown product, order or stall.
	CodeNotFound Code = "NOT_FOUND"

	// CodeUnavailable marks a sale that cannot proceed: insufficient stock
	// or the backing stall is not active.
	CodeUnavailable Code = "UNAVAILABLE"

	// CodeForbidden marks a role or ownership mismatch.
	CodeForbidden Code = "FORBIDDEN"

	// CodeIllegalTransition marks an attempt to move an order status
	// backwards.
	CodeIllegalTransition Code = "ILLEGAL_TRANSITION"

	// CodeTransport marks a collaborator that is unreachable or timed out.
	// Distinct from every domain code: "service down" is never "service
	// said no".
	CodeTransport Code = "TRANSPORT"

	// CodeInternal is the catch-all for unexpected failures.
	CodeInternal Code = "INTERNAL"
)

// Error is a domain error with a stable code and a user-visible message.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return New(CodeValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

func Unavailable(format string, args ...any) *Error {
	return New(CodeUnavailable, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(CodeForbidden, format, args...)
}

func IllegalTransition(format string, args ...any) *Error {
	return New(CodeIllegalTransition, format, args...)
}

func Transport(format string, args ...any) *Error {
	return New(CodeTransport, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(CodeInternal, format, args...)
}

// CodeOf extracts the code from err, unwrapping as needed.
// Unknown errors report CodeInternal.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
