package kernel

import (
	"errors"

	"omibyte.io/hilcore/hil"
)

var (
	ErrFail        = errors.New("generic failure")
	ErrBusy        = errors.New("busy")
	ErrAlready     = errors.New("already in that state")
	ErrOff         = errors.New("device off")
	ErrReserve     = errors.New("reservation required")
	ErrInvalid     = errors.New("invalid argument")
	ErrSize        = errors.New("invalid size")
	ErrCancel      = errors.New("operation cancelled")
	ErrNoMem       = errors.New("out of memory")
	ErrNoSupport   = errors.New("operation not supported")
	ErrNoDevice    = errors.New("no such device")
	ErrUninstalled = errors.New("device not installed")
	ErrNoAck       = errors.New("packet not acknowledged")
)

type codeError struct {
	code ReturnCode
	err  error
}

// codeOrder fixes which code wins when an error wraps several sentinels:
// the first match in this list.
var codeOrder = []codeError{
	{EBUSY, ErrBusy},
	{EALREADY, ErrAlready},
	{EOFF, ErrOff},
	{ERESERVE, ErrReserve},
	{EINVAL, ErrInvalid},
	{ESIZE, ErrSize},
	{ECANCEL, ErrCancel},
	{ENOMEM, ErrNoMem},
	{ENOSUPPORT, ErrNoSupport},
	{ENODEVICE, ErrNoDevice},
	{EUNINSTALLED, ErrUninstalled},
	{ENOACK, ErrNoAck},
	{FAIL, ErrFail},
}

var codeErrors = func() map[ReturnCode]error {
	m := make(map[ReturnCode]error, len(codeOrder))
	for _, c := range codeOrder {
		m[c.code] = c.err
	}
	return m
}()

// ResultFromError maps a driver error to the result returned to the process.
// Errors that match no known condition become FAIL.
func ResultFromError(err error) Result {
	if err == nil {
		return Success()
	}
	switch {
	case errors.Is(err, hil.ErrBusy):
		return Failure(EBUSY)
	case errors.Is(err, hil.ErrInvalidPin),
		errors.Is(err, hil.ErrInvalidReference),
		errors.Is(err, hil.ErrInvalidMode):
		return Failure(EINVAL)
	}
	for _, c := range codeOrder {
		if errors.Is(err, c.err) {
			return Failure(c.code)
		}
	}
	return Failure(FAIL)
}
