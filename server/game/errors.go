package game

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	// CodeEmptyResource: removing an element from an empty container.
	CodeEmptyResource Code = "EMPTY_RESOURCE"
	// CodeInsufficientResources: a move needs more elements than its source holds.
	CodeInsufficientResources Code = "INSUFFICIENT_RESOURCES"
	// CodeInvalidMove: a move was rejected by Status.Validate.
	CodeInvalidMove Code = "INVALID_MOVE"
	// CodeShuffleFailure: the permutation provider failed or returned garbage.
	CodeShuffleFailure Code = "SHUFFLE_FAILURE"
	// CodeActConsumed: Effect was called twice on the same act.
	CodeActConsumed Code = "ACT_CONSUMED"
)

// Error is the domain error type shared by the engine and the turn loop.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates a domain error with a code and message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a domain error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Sentinels for errors.Is checks; any *Error with the same code matches.
var (
	ErrEmptyResource         = NewError(CodeEmptyResource, "empty resource")
	ErrInsufficientResources = NewError(CodeInsufficientResources, "insufficient resources")
	ErrInvalidMove           = NewError(CodeInvalidMove, "invalid move")
	ErrShuffleFailure        = NewError(CodeShuffleFailure, "shuffle failure")
	ErrActConsumed           = NewError(CodeActConsumed, "act already consumed")
)

// CodeOf extracts the domain code from err, or "" if err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
