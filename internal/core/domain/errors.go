package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is a machine-readable error class. Callers dispatch on the
// kind, never on the message text.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidInput
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInsufficientStock
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInsufficientStock:
		return "insufficient_stock"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes two domain errors match on kind, so tests and callers may use
// errors.Is with a bare kinded error as the target.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func WrapError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf reports the kind carried by err, or KindInternal if err is not a
// domain error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func NotFound(msg string) *Error      { return NewError(KindNotFound, msg) }
func InvalidInput(msg string) *Error  { return NewError(KindInvalidInput, msg) }
func Unauthorized(msg string) *Error  { return NewError(KindUnauthorized, msg) }
func Forbidden(msg string) *Error     { return NewError(KindForbidden, msg) }
func Conflict(msg string) *Error      { return NewError(KindConflict, msg) }
func InsufficientStock(msg string) *Error {
	return NewError(KindInsufficientStock, msg)
}
func Internal(msg string, err error) *Error {
	return WrapError(KindInternal, msg, err)
}
