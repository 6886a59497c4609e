package kernel

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"omibyte.io/hilcore/hil"
	"omibyte.io/hilcore/trust"
)

type echoDriver struct {
	CommandOnly
	calls int
}

func (d *echoDriver) Command(cmd, arg1, arg2 uint32, app AppID) Result {
	d.calls++
	if cmd == 0 {
		return SuccessWithValue(arg1 + arg2)
	}
	return Failure(ENOSUPPORT)
}

// eventDriver keeps one callback per process and fires it on command 1.
type eventDriver struct {
	CommandOnly
	cb map[AppID]*Callback
}

func (d *eventDriver) Command(cmd, arg1, arg2 uint32, app AppID) Result {
	cb := d.cb[app]
	if cmd != 1 || cb == nil {
		return Failure(EINVAL)
	}
	if !cb.Schedule(arg1, arg2, 0) {
		return Failure(ENOMEM)
	}
	return Success()
}

func (d *eventDriver) Subscribe(num uint32, cb *Callback, app AppID) Result {
	if num != 0 {
		return Failure(ENOSUPPORT)
	}
	d.cb[app] = cb
	return Success()
}

type fakeChip struct {
	pending  int
	serviced int
}

func (c *fakeChip) HasPendingInterrupts() bool { return c.pending > 0 }
func (c *fakeChip) ServicePendingInterrupts() int {
	n := c.pending
	c.serviced += n
	c.pending = 0
	return n
}

func TestResultWord(t *testing.T) {
	tests := []struct {
		res  Result
		want int32
	}{
		{Success(), 0},
		{SuccessWithValue(2), 2},
		{Failure(EINVAL), -6},
		{Failure(ENOSUPPORT), -10},
		{Failure(ENODEVICE), -11},
		{Failure(ENOACK), -13},
	}
	for _, tc := range tests {
		t.Run(tc.res.String(), func(t *testing.T) {
			if got := tc.res.Word(); got != tc.want {
				t.Errorf("Word() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestResultErr(t *testing.T) {
	if Success().Err() != nil {
		t.Errorf("success has an error")
	}
	if err := Failure(ENODEVICE).Err(); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Err() = %v", err)
	}
	if err := Failure(ReturnCode(-99)).Err(); !errors.Is(err, ErrFail) {
		t.Errorf("unknown code Err() = %v", err)
	}
}

func TestResultFromError(t *testing.T) {
	tests := []struct {
		err  error
		want ReturnCode
	}{
		{nil, SUCCESS},
		{hil.ErrBusy, EBUSY},
		{fmt.Errorf("start: %w", hil.ErrInvalidReference), EINVAL},
		{hil.ErrInvalidPin, EINVAL},
		{fmt.Errorf("wrapped: %w", ErrNoSupport), ENOSUPPORT},
		{errors.New("something else"), FAIL},
	}
	for _, tc := range tests {
		if got := ResultFromError(tc.err).Code; got != tc.want {
			t.Errorf("ResultFromError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestResultFromErrorSeveralSentinels(t *testing.T) {
	err := errors.Join(ErrNoDevice, ErrFail, ErrInvalid)
	for i := 0; i < 50; i++ {
		if got := ResultFromError(err).Code; got != EINVAL {
			t.Fatalf("run %d: ResultFromError = %v, want EINVAL", i, got)
		}
	}
}

func TestUnknownDriverIsNoDevice(t *testing.T) {
	k := New(DriverTable{}, nil, Config{}, nil)
	p := k.CreateProcess("app")

	if r := k.Command(p, 0x99, 0, 0, 0); r.Code != ENODEVICE {
		t.Errorf("command = %v", r)
	}
	if r := k.Subscribe(p, 0x99, 0, func(a, b, c uint32) {}); r.Code != ENODEVICE {
		t.Errorf("subscribe = %v", r)
	}
	if r := k.Allow(p, 0x99, 0, make([]byte, 4)); r.Code != ENODEVICE {
		t.Errorf("allow = %v", r)
	}
}

func TestCommandOnlyRejectsSubscribeAndAllow(t *testing.T) {
	d := &echoDriver{}
	k := New(DriverTable{0x10: d}, nil, Config{}, nil)
	p := k.CreateProcess("app")

	called := false
	if r := k.Subscribe(p, 0x10, 0, func(a, b, c uint32) { called = true }); r.Code != ENOSUPPORT {
		t.Errorf("subscribe = %v", r)
	}
	if r := k.Allow(p, 0x10, 1, nil); r.Code != ENOSUPPORT {
		t.Errorf("allow = %v", r)
	}
	for k.Yield(p) {
	}
	if called {
		t.Errorf("callback invoked")
	}
	if r := k.Command(p, 0x10, 0, 3, 4); r.Word() != 7 {
		t.Errorf("command = %v", r)
	}
}

func TestUpcallDelivery(t *testing.T) {
	d := &eventDriver{cb: map[AppID]*Callback{}}
	k := New(DriverTable{0x7: d}, nil, Config{}, nil)
	a := k.CreateProcess("a")
	b := k.CreateProcess("b")

	var got [][2]uint32
	if r := k.Subscribe(a, 0x7, 0, func(x, y, _ uint32) { got = append(got, [2]uint32{x, y}) }); !r.IsSuccess() {
		t.Fatalf("subscribe = %v", r)
	}
	if r := k.Command(b, 0x7, 1, 0, 0); r.Code != EINVAL {
		t.Errorf("b has no subscription, got %v", r)
	}
	k.Command(a, 0x7, 1, 1, 2)
	k.Command(a, 0x7, 1, 3, 4)
	if a.Pending() != 2 {
		t.Fatalf("pending = %d", a.Pending())
	}

	for k.Yield(a) {
	}
	if len(got) != 2 || got[0] != [2]uint32{1, 2} || got[1] != [2]uint32{3, 4} {
		t.Errorf("upcalls = %v", got)
	}
	if k.Yield(b) {
		t.Errorf("b received an upcall")
	}
}

func TestResubscribeDropsQueuedUpcalls(t *testing.T) {
	d := &eventDriver{cb: map[AppID]*Callback{}}
	k := New(DriverTable{0x7: d}, nil, Config{}, nil)
	p := k.CreateProcess("app")

	old := 0
	k.Subscribe(p, 0x7, 0, func(_, _, _ uint32) { old++ })
	k.Command(p, 0x7, 1, 0, 0)
	k.Subscribe(p, 0x7, 0, nil)

	if p.Pending() != 0 || k.Yield(p) || old != 0 {
		t.Errorf("stale upcall delivered")
	}
}

func TestTaskQueueBounded(t *testing.T) {
	d := &eventDriver{cb: map[AppID]*Callback{}}
	k := New(DriverTable{0x7: d}, nil, Config{}, nil)
	p := k.CreateProcess("app")
	k.Subscribe(p, 0x7, 0, func(_, _, _ uint32) {})

	for i := 0; i < TaskQueueSize; i++ {
		if r := k.Command(p, 0x7, 1, 0, 0); !r.IsSuccess() {
			t.Fatalf("command %d = %v", i, r)
		}
	}
	if r := k.Command(p, 0x7, 1, 0, 0); r.Code != ENOMEM {
		t.Errorf("overflow = %v", r)
	}
	if p.Dropped() != 1 {
		t.Errorf("dropped = %d", p.Dropped())
	}
}

func TestInterruptsServicedBetweenSyscalls(t *testing.T) {
	chip := &fakeChip{pending: 2}
	k := New(DriverTable{}, chip, Config{}, nil)
	p := k.CreateProcess("app")

	k.Command(p, 1, 0, 0, 0)
	if chip.serviced != 2 {
		t.Errorf("serviced = %d", chip.serviced)
	}
	chip.pending = 1
	k.Yield(p)
	if chip.serviced != 3 {
		t.Errorf("yield did not service interrupts")
	}
}

func TestTraceSyscalls(t *testing.T) {
	var buf bytes.Buffer
	log := trust.New(&buf, "kernel", trust.DefaultLevel)
	k := New(DriverTable{0x2: &echoDriver{}}, nil, Config{TraceSyscalls: true}, log)
	p := k.CreateProcess("app")

	k.Command(p, 0x2, 0, 1, 1)
	k.Command(p, 0x3, 1, 5, 0)

	out := buf.String()
	for _, want := range []string{
		"[0] cmd(0x2, 0, 0x1, 0x1) = 0x2",
		"[0] cmd(0x3, 1, 0x5, 0x0) = 0xfffffff5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestDriverTableNumbers(t *testing.T) {
	table := DriverTable{0x7: &echoDriver{}, 0x2: &echoDriver{}, 0x5: &echoDriver{}}
	nums := table.Numbers()
	if len(nums) != 3 || nums[0] != 0x2 || nums[1] != 0x5 || nums[2] != 0x7 {
		t.Errorf("Numbers() = %v", nums)
	}
}
