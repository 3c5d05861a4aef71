package vm

import (
	"errors"
	"fmt"

	"github.com/chazu/garnet/numeric"
)

// ErrorKind classifies a runtime failure.
type ErrorKind uint8

const (
	// SyntaxError reports malformed source.
	SyntaxError ErrorKind = iota + 1
	// InternalError reports a violated runtime invariant.
	InternalError
	// RuntimeError reports a dynamic type mismatch or a failed operation on a
	// well-formed value.
	RuntimeError
	// ApiError reports a violated built-in contract.
	ApiError
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case InternalError:
		return "InternalError"
	case RuntimeError:
		return "RuntimeError"
	case ApiError:
		return "ApiError"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Error is the error type for all runtime failures. Class optionally names
// the language-level exception class (ZeroDivisionError, NoMethodError); it
// defaults to the kind name.
type Error struct {
	Kind    ErrorKind
	Class   string
	Message string
	Cause   error
}

// Sentinels usable with errors.Is to test only the kind of an *Error.
var (
	ErrSyntax   = &Error{Kind: SyntaxError}
	ErrInternal = &Error{Kind: InternalError}
	ErrRuntime  = &Error{Kind: RuntimeError}
	ErrAPI      = &Error{Kind: ApiError}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	return e.ClassName() + ": " + msg
}

// ClassName returns the exception class name reported to the language.
func (e *Error) ClassName() string {
	if e.Class != "" {
		return e.Class
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches a kind sentinel (an *Error with no message) by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" || t.Class != "" || t.Cause != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Errorf builds an *Error of the given kind.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapNumeric converts numeric package errors into runtime errors.
func wrapNumeric(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, numeric.ErrZeroDivision):
		return &Error{Kind: RuntimeError, Class: "ZeroDivisionError", Message: "divided by 0", Cause: err}
	case errors.Is(err, numeric.ErrSyntax):
		return &Error{Kind: InternalError, Message: "malformed numeric literal", Cause: err}
	}
	return &Error{Kind: RuntimeError, Message: err.Error(), Cause: err}
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// UncaughtSignalError reports a control-flow signal that reached the top of
// evaluation without a frame consuming it. It is not an *Error.
type UncaughtSignalError struct {
	Signal Signal
}

func (e *UncaughtSignalError) Error() string {
	switch s := e.Signal.(type) {
	case *Throw:
		return "uncaught throw " + s.Tag.Inspect()
	case *LoopControl:
		return fmt.Sprintf("%s used outside of a loop", s.Loop)
	case *Return:
		return "unexpected return"
	}
	return "uncaught " + e.Signal.Inspect()
}
