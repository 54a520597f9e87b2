// Package csverr defines the error taxonomy the engine surfaces to callers.
// Every operation package returns one of these kinds (or a plain IOError
// wrapping the underlying filesystem error) rather than ad-hoc errors, so a
// caller can dispatch on kind with errors.As without parsing messages.
package csverr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the engine's error categories.
type Kind string

const (
	KindParseError          Kind = "ParseError"
	KindNotFound            Kind = "NotFound"
	KindAlreadyExists       Kind = "AlreadyExists"
	KindSchemaError         Kind = "SchemaError"
	KindTypeError           Kind = "TypeError"
	KindConstraintError     Kind = "ConstraintError"
	KindUnsupportedPredicate Kind = "UnsupportedPredicate"
	KindIOError             Kind = "IOError"
)

// Error is the concrete type behind every error the engine returns.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional wrapped cause, e.g. an *os.PathError
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, csverr.New(KindNotFound, "")) match any NotFound,
// regardless of message, the way sentinel errors are normally compared.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Parse(msg string) *Error              { return New(KindParseError, msg) }
func Parsef(format string, a ...any) *Error { return New(KindParseError, fmt.Sprintf(format, a...)) }

func NotFound(msg string) *Error              { return New(KindNotFound, msg) }
func NotFoundf(format string, a ...any) *Error { return New(KindNotFound, fmt.Sprintf(format, a...)) }

func AlreadyExists(msg string) *Error { return New(KindAlreadyExists, msg) }
func AlreadyExistsf(format string, a ...any) *Error {
	return New(KindAlreadyExists, fmt.Sprintf(format, a...))
}

func Schema(msg string) *Error              { return New(KindSchemaError, msg) }
func Schemaf(format string, a ...any) *Error { return New(KindSchemaError, fmt.Sprintf(format, a...)) }

func Type(msg string) *Error              { return New(KindTypeError, msg) }
func Typef(format string, a ...any) *Error { return New(KindTypeError, fmt.Sprintf(format, a...)) }

func Constraint(msg string) *Error { return New(KindConstraintError, msg) }
func Constraintf(format string, a ...any) *Error {
	return New(KindConstraintError, fmt.Sprintf(format, a...))
}

func UnsupportedPredicate(msg string) *Error { return New(KindUnsupportedPredicate, msg) }
func UnsupportedPredicatef(format string, a ...any) *Error {
	return New(KindUnsupportedPredicate, fmt.Sprintf(format, a...))
}

func IO(msg string, err error) *Error { return Wrap(KindIOError, msg, err) }

// Of reports the Kind of err if it is (or wraps) a *Error, and ok=false
// otherwise.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
