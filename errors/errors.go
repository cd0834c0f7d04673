package errors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfiguration  Kind = "Configuration"
	KindAuthentication Kind = "Authentication"
	KindFetch          Kind = "Fetch"
)

// Error is a run-ending failure tagged with the stage that produced it.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg != "" {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		} else {
			msg = e.Err.Error()
		}
	}
	if msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return string(e.Kind)
}

func (e Error) Unwrap() error {
	return e.Err
}

// Is matches any Error of the same kind, so callers can test against the
// sentinels below with errors.Is.
func (e Error) Is(target error) bool {
	var t Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func NewError(opts ...ErrOpt) Error {
	e := Error{}
	for _, o := range opts {
		o(&e)
	}

	return e
}

type ErrOpt = func(e *Error)

func WithKind(k Kind) ErrOpt {
	return func(e *Error) {
		e.Kind = k
	}
}

func WithMessage[S ~string](s S) ErrOpt {
	return func(e *Error) {
		e.Message = string(s)
	}
}

func WithError(err error) ErrOpt {
	return func(e *Error) {
		e.Err = err
	}
}

var (
	ErrConfiguration  = NewError(WithKind(KindConfiguration))
	ErrAuthentication = NewError(WithKind(KindAuthentication))
	ErrFetch          = NewError(WithKind(KindFetch))
)

var ConfigurationError = func(format string, args ...any) Error {
	return NewError(
		WithKind(KindConfiguration),
		WithMessage(fmt.Sprintf(format, args...)),
	)
}

var AuthenticationError = func(msg string, err error) Error {
	return NewError(
		WithKind(KindAuthentication),
		WithMessage(msg),
		WithError(err),
	)
}

var FetchError = func(msg string, err error) Error {
	return NewError(
		WithKind(KindFetch),
		WithMessage(msg),
		WithError(err),
	)
}
