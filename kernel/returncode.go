package kernel

import "fmt"

// ReturnCode is the status a system call hands back to a process. Failures
// are negative.
type ReturnCode int32

const (
	SUCCESS      ReturnCode = 0
	FAIL         ReturnCode = -1
	EBUSY        ReturnCode = -2
	EALREADY     ReturnCode = -3
	EOFF         ReturnCode = -4
	ERESERVE     ReturnCode = -5
	EINVAL       ReturnCode = -6
	ESIZE        ReturnCode = -7
	ECANCEL      ReturnCode = -8
	ENOMEM       ReturnCode = -9
	ENOSUPPORT   ReturnCode = -10
	ENODEVICE    ReturnCode = -11
	EUNINSTALLED ReturnCode = -12
	ENOACK       ReturnCode = -13
)

var codeNames = map[ReturnCode]string{
	SUCCESS:      "SUCCESS",
	FAIL:         "FAIL",
	EBUSY:        "EBUSY",
	EALREADY:     "EALREADY",
	EOFF:         "EOFF",
	ERESERVE:     "ERESERVE",
	EINVAL:       "EINVAL",
	ESIZE:        "ESIZE",
	ECANCEL:      "ECANCEL",
	ENOMEM:       "ENOMEM",
	ENOSUPPORT:   "ENOSUPPORT",
	ENODEVICE:    "ENODEVICE",
	EUNINSTALLED: "EUNINSTALLED",
	ENOACK:       "ENOACK",
}

func (r ReturnCode) String() string {
	if s, ok := codeNames[r]; ok {
		return s
	}
	return fmt.Sprintf("ReturnCode(%d)", int32(r))
}

// Result is the outcome of a command, subscribe or allow call.
type Result struct {
	Code     ReturnCode
	Value    uint32
	HasValue bool
}

func Success() Result {
	return Result{Code: SUCCESS}
}

func SuccessWithValue(v uint32) Result {
	return Result{Code: SUCCESS, Value: v, HasValue: true}
}

func Failure(code ReturnCode) Result {
	return Result{Code: code}
}

func (r Result) IsSuccess() bool {
	return r.Code == SUCCESS
}

// Word is the value placed in the process's return register. A success with
// value returns the value itself, which must fit in 31 bits to stay
// distinguishable from a failure.
func (r Result) Word() int32 {
	if r.Code == SUCCESS && r.HasValue {
		return int32(r.Value)
	}
	return int32(r.Code)
}

// Err returns nil on success and the sentinel error of the code otherwise.
func (r Result) Err() error {
	if r.Code == SUCCESS {
		return nil
	}
	if err, ok := codeErrors[r.Code]; ok {
		return err
	}
	return fmt.Errorf("%w: %v", ErrFail, r.Code)
}

func (r Result) String() string {
	if r.Code == SUCCESS && r.HasValue {
		return fmt.Sprintf("SUCCESS(%d)", r.Value)
	}
	return r.Code.String()
}
