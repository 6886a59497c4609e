package kernel

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// AppID identifies a process.
type AppID int

// Driver is the system call interface of a capsule. Every call returns
// synchronously and never blocks.
type Driver interface {
	Command(cmd, arg1, arg2 uint32, app AppID) Result
	Subscribe(num uint32, cb *Callback, app AppID) Result
	Allow(app AppID, num uint32, buf []byte) Result
}

// CommandOnly can be embedded by drivers that only take commands.
type CommandOnly struct{}

func (CommandOnly) Subscribe(uint32, *Callback, AppID) Result {
	return Failure(ENOSUPPORT)
}

func (CommandOnly) Allow(AppID, uint32, []byte) Result {
	return Failure(ENOSUPPORT)
}

// Platform maps driver numbers to drivers.
type Platform interface {
	WithDriver(num uint32) (Driver, bool)
}

// DriverTable is a Platform backed by a map.
type DriverTable map[uint32]Driver

func (t DriverTable) WithDriver(num uint32) (Driver, bool) {
	d, ok := t[num]
	return d, ok
}

// Numbers returns the installed driver numbers in ascending order.
func (t DriverTable) Numbers() []uint32 {
	nums := maps.Keys(t)
	slices.Sort(nums)
	return nums
}
