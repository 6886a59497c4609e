package hil

import "fmt"

// Output is a discrete digital output.
type Output interface {
	Set()
	Clear()
	// Toggle inverts the output and returns the new level.
	Toggle() bool
	Read() bool
}

type ActivationMode uint8

const (
	ActiveHigh ActivationMode = iota
	ActiveLow
)

func (m ActivationMode) String() string {
	switch m {
	case ActiveHigh:
		return "active-high"
	case ActiveLow:
		return "active-low"
	}
	return fmt.Sprintf("ActivationMode(%d)", uint8(m))
}

func ParseActivationMode(s string) (ActivationMode, error) {
	switch s {
	case "active-high", "high", "":
		return ActiveHigh, nil
	case "active-low", "low":
		return ActiveLow, nil
	}
	return 0, fmt.Errorf("%w: activation mode %q", ErrInvalidMode, s)
}

// ActiveOutput translates logical on/off into pin levels.
type ActiveOutput struct {
	Pin  Output
	Mode ActivationMode
}

func (o ActiveOutput) On() {
	if o.Mode == ActiveLow {
		o.Pin.Clear()
		return
	}
	o.Pin.Set()
}

func (o ActiveOutput) Off() {
	if o.Mode == ActiveLow {
		o.Pin.Set()
		return
	}
	o.Pin.Clear()
}

// Toggle flips the output and reports whether it is now on.
func (o ActiveOutput) Toggle() bool {
	level := o.Pin.Toggle()
	return level != (o.Mode == ActiveLow)
}

func (o ActiveOutput) IsOn() bool {
	return o.Pin.Read() != (o.Mode == ActiveLow)
}
