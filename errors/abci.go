package errors

import "fmt"

const (
	// SuccessABCICode is the code of a successful ABCI response.
	SuccessABCICode = 0

	// errors without a registered code are reported as internal, and
	// outside of debug mode their message is replaced as well
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo turns err into the code and log of an ABCI response. Only
// registered errors expose their message. Debug mode exposes every
// message, with a stack trace where one was recorded.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalABCICode:
		return code, internalABCILog
	default:
		return code, err.Error()
	}
}

// ABCIError rebuilds an error from a response code and log, so clients
// can match it with Is. Codes not registered here never match any
// registered error.
func ABCIError(code uint32, log string) error {
	if e, ok := registered[code]; ok {
		return Wrap(e, log)
	}
	return Wrap(&Error{code: code, desc: "unknown"}, log)
}

type coder interface {
	ABCICode() uint32
}

// abciCode is the code of the first error in the cause chain that has
// one, or the internal code.
func abciCode(err error) uint32 {
	if isNilErr(err) {
		return SuccessABCICode
	}
	for {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		cause, ok := err.(causer)
		if !ok {
			return internalABCICode
		}
		err = cause.Cause()
	}
}

// Redact replaces panics and errors without a registered code with
// ErrInternal, hiding details a client has no business seeing. Debug
// mode keeps err as is.
func Redact(err error, debug bool) error {
	if debug {
		return err
	}
	if ErrPanic.Is(err) || abciCode(err) == internalABCICode {
		return ErrInternal
	}
	return err
}
