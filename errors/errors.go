package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors. Codes below 100 belong to this package, extensions register
// their own codes above that.
var (
	// ErrInternal is the catch all for failures without a better kind.
	// Code 0 means success, so codes start at 1.
	ErrInternal = Register(1, "internal")

	// ErrUnauthorized is returned when the caller did not prove the
	// identity an operation requires.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = Register(3, "not found")

	// ErrMsg is returned for a message that cannot be handled.
	ErrMsg = Register(4, "invalid message")

	// ErrModel is returned for a model that cannot be stored.
	ErrModel = Register(5, "invalid model")

	// ErrDuplicate is returned when an entry that must be unique is
	// given twice.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman marks a code path that correct code never reaches.
	ErrHuman = Register(7, "coding error")

	// ErrEmpty is returned when a required value is empty.
	ErrEmpty = Register(9, "value is empty")

	// ErrState is returned when the stored state does not allow the
	// operation, for example initializing twice.
	ErrState = Register(10, "invalid state")

	// ErrType is returned when a value is not of the expected type.
	ErrType = Register(11, "invalid type")

	// ErrInput is returned for malformed or out of range input.
	ErrInput = Register(14, "invalid input")

	// ErrOverflow is returned when a result does not fit its type.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrDatabase is returned when the store fails to read or write.
	ErrDatabase = Register(17, "database")

	// ErrPanic wraps a recovered panic. Its message is redacted outside of
	// debug mode.
	ErrPanic = Register(111222, "panic")
)

// registered maps every code to its root error.
var registered = map[uint32]*Error{}

// Register declares a root error. It panics if the code is taken, so call
// it only from package level variable declarations.
func Register(code uint32, description string) *Error {
	if prev, ok := registered[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, prev.desc))
	}
	err := &Error{code: code, desc: description}
	registered[code] = err
	return err
}

// Error is a root error kind. Errors created at runtime wrap one of them,
// which gives them their ABCI code and lets callers test the kind with Is.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

func (e Error) ABCICode() uint32 {
	return e.code
}

// New is a shortcut for Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is New with formatting.
func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrap(e, fmt.Sprintf(format, args...))
}

// Is returns true if err is e or wraps e. A nil e matches only nil errors,
// including typed nil pointers.
func (e *Error) Is(err error) bool {
	if e == nil {
		return isNilErr(err)
	}
	for err != nil {
		if err == e {
			return true
		}
		err = unwrapOnce(err)
	}
	return false
}

func unwrapOnce(err error) error {
	switch e := err.(type) {
	case causer:
		return e.Cause()
	case interface{ Unwrap() error }:
		return e.Unwrap()
	}
	return nil
}

func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Wrap adds a description to err and returns nil if err is nil. The first
// wrap records the stack trace.
//
// Errors that wrap no root error are reported as ErrInternal.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf is Wrap with formatting.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Unwrap lets the standard library errors.Is and errors.As see through
// the wrap. The stack holder added by Wrap is skipped, it cannot be
// unwrapped by the standard library itself.
func (e *wrappedError) Unwrap() error {
	type stackHolder interface {
		causer
		StackTrace() errors.StackTrace
	}
	if h, ok := e.parent.(stackHolder); ok {
		return h.Cause()
	}
	return e.parent
}

// Recover turns a panic into an ErrPanic assigned to err. It must be called
// with defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType wraps err with the type name of obj.
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

// causer is implemented by pkg/errors wraps and by wrappedError.
type causer interface {
	Cause() error
}
