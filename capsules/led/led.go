// Package led exposes a board's LEDs to processes.
//
// Commands:
//
//	0: number of LEDs (ENODEVICE when the board has none)
//	1: turn LED arg1 on
//	2: turn LED arg1 off
//	3: toggle LED arg1
//
// LEDs are indexed in board order starting at 0.
package led

import (
	"omibyte.io/hilcore/hil"
	"omibyte.io/hilcore/kernel"
)

const DriverNum uint32 = 0x00002

const (
	cmdCount  = 0
	cmdOn     = 1
	cmdOff    = 2
	cmdToggle = 3
)

type Driver struct {
	kernel.CommandOnly
	leds []hil.ActiveOutput
}

var _ kernel.Driver = (*Driver)(nil)

// New takes ownership of leds. Each pin is expected to be configured as an
// output already; every LED starts off.
func New(leds []hil.ActiveOutput) *Driver {
	d := &Driver{leds: make([]hil.ActiveOutput, len(leds))}
	copy(d.leds, leds)
	for _, l := range d.leds {
		l.Off()
	}
	return d
}

func (d *Driver) Count() int {
	return len(d.leds)
}

// IsOn reports the state of LED i for host side inspection.
func (d *Driver) IsOn(i int) bool {
	return d.leds[i].IsOn()
}

func (d *Driver) Command(cmd, arg1, _ uint32, _ kernel.AppID) kernel.Result {
	if cmd == cmdCount {
		if len(d.leds) == 0 {
			return kernel.Failure(kernel.ENODEVICE)
		}
		return kernel.SuccessWithValue(uint32(len(d.leds)))
	}

	var op func(hil.ActiveOutput)
	switch cmd {
	case cmdOn:
		op = func(l hil.ActiveOutput) { l.On() }
	case cmdOff:
		op = func(l hil.ActiveOutput) { l.Off() }
	case cmdToggle:
		op = func(l hil.ActiveOutput) { l.Toggle() }
	default:
		return kernel.Failure(kernel.ENOSUPPORT)
	}

	if arg1 >= uint32(len(d.leds)) {
		return kernel.Failure(kernel.EINVAL)
	}
	op(d.leds[arg1])
	return kernel.Success()
}
