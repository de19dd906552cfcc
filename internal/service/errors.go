package service

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindForbidden
	KindInvalidTransition
	KindFrozenField
	KindConflict
)

// Error is a domain failure carrying the product's five-digit business code.
// The handler layer maps Kind to an HTTP status.
type Error struct {
	Kind    ErrorKind
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%s", e.Code, e.Message)
}

func newError(kind ErrorKind, code int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) *Error {
	return newError(KindValidation, 40001, format, args...)
}

func InvalidTransitionf(format string, args ...interface{}) *Error {
	return newError(KindInvalidTransition, 40003, format, args...)
}

func FrozenFieldf(format string, args ...interface{}) *Error {
	return newError(KindFrozenField, 40004, format, args...)
}

func Conflictf(format string, args ...interface{}) *Error {
	return newError(KindConflict, 40005, format, args...)
}

func Forbiddenf(format string, args ...interface{}) *Error {
	return newError(KindForbidden, 40303, format, args...)
}

func NotFoundf(format string, args ...interface{}) *Error {
	return newError(KindNotFound, 40404, format, args...)
}

// AsError unwraps a domain error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}
