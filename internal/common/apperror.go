package common

import (
	"errors"
	"fmt"
)

// Kind classifies an application error for transport mapping.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindNotFound
	KindTransient
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	case KindConfig:
		return "config"
	default:
		return "internal"
	}
}

// AppError is an error with a stable machine-readable Code and a Message that
// may be shown to the caller. Cause is kept for logs and errors.Is/As only.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

// New builds an AppError without a cause.
func New(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same kind and code, so a
// sentinel still matches after WithCause or WithMessage.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithCause returns a copy of e wrapping cause.
func (e *AppError) WithCause(cause error) *AppError {
	c := *e
	c.Cause = cause
	return &c
}

// WithMessage returns a copy of e with a different caller-visible message.
func (e *AppError) WithMessage(msg string) *AppError {
	c := *e
	c.Message = msg
	return &c
}

// Validation reports malformed input caught before touching storage.
func Validation(msg string) *AppError {
	return ErrValidation.WithMessage(msg)
}

// Transient wraps a storage or delivery failure that is safe to retry.
func Transient(msg string, cause error) *AppError {
	return &AppError{Kind: KindTransient, Code: "unavailable", Message: msg, Cause: cause}
}

// Internal wraps an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{Kind: KindInternal, Code: "internal", Message: "Internal Server Error", Cause: cause}
}

// KindOf returns the Kind of the first AppError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// AsAppError returns the first AppError in err's chain, wrapping err as an
// internal error otherwise.
func AsAppError(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
