package hil

import "fmt"

// Pin is an analog input channel.
type Pin uint8

const (
	AIN0 Pin = iota
	AIN1
	AIN2
	AIN3
	AIN4
	AIN5
	AIN6
	AIN7
)

// NumPins is the number of analog input channels.
const NumPins = 8

func (p Pin) String() string {
	if p > AIN7 {
		return fmt.Sprintf("Pin(%d)", uint8(p))
	}
	return fmt.Sprintf("AIN%d", uint8(p))
}

// Valid reports whether p is one of the declared channels.
func (p Pin) Valid() bool {
	return p <= AIN7
}

// PinFrom converts a raw channel number, as read from a select register or
// passed by a process.
func PinFrom(v uint32) (Pin, error) {
	if v > uint32(AIN7) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPin, v)
	}
	return Pin(v), nil
}

// RefPin is the reference a comparator input is compared against. It is
// either an analog input channel or an internal reference.
type RefPin uint8

const (
	RefAIN0 RefPin = iota
	RefAIN1
	RefAIN2
	RefAIN3
	RefAIN4
	RefAIN5
	RefAIN6
	RefAIN7
	Int1V2
	Int1V8
	Int2V4
	VDD
)

var refNames = [...]string{
	"AIN0", "AIN1", "AIN2", "AIN3", "AIN4", "AIN5", "AIN6", "AIN7",
	"Int1V2", "Int1V8", "Int2V4", "VDD",
}

func (r RefPin) String() string {
	if int(r) < len(refNames) {
		return refNames[r]
	}
	return fmt.Sprintf("RefPin(%d)", uint8(r))
}

// External reports whether r names an analog input channel.
func (r RefPin) External() bool {
	return r <= RefAIN7
}

// Channel returns the analog input of an external reference.
func (r RefPin) Channel() (Pin, bool) {
	if !r.External() {
		return 0, false
	}
	return Pin(r), true
}

func RefPinFrom(v uint32) (RefPin, error) {
	if v > uint32(VDD) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidReference, v)
	}
	return RefPin(v), nil
}

// RefFromPin returns the external reference taken from analog input p.
func RefFromPin(p Pin) RefPin {
	return RefPin(p)
}

type OpMode uint8

const (
	SingleEnded OpMode = iota
	Differential
)

func (m OpMode) String() string {
	switch m {
	case SingleEnded:
		return "single-ended"
	case Differential:
		return "differential"
	}
	return fmt.Sprintf("OpMode(%d)", uint8(m))
}

func OpModeFrom(v uint32) (OpMode, error) {
	if v > uint32(Differential) {
		return 0, fmt.Errorf("%w: op mode %d", ErrInvalidMode, v)
	}
	return OpMode(v), nil
}

// SpeedMode trades power consumption against response time.
type SpeedMode uint8

const (
	Low SpeedMode = iota
	Normal
	High
)

func (s SpeedMode) String() string {
	switch s {
	case Low:
		return "low"
	case Normal:
		return "normal"
	case High:
		return "high"
	}
	return fmt.Sprintf("SpeedMode(%d)", uint8(s))
}

func SpeedModeFrom(v uint32) (SpeedMode, error) {
	if v > uint32(High) {
		return 0, fmt.Errorf("%w: speed mode %d", ErrInvalidMode, v)
	}
	return SpeedMode(v), nil
}

// ComparatorClient receives comparison events. Event is called from interrupt
// context and must not block.
type ComparatorClient interface {
	Event(rising bool, input Pin, reference RefPin)
}

// ClientFunc adapts a function to ComparatorClient.
type ClientFunc func(rising bool, input Pin, reference RefPin)

func (f ClientFunc) Event(rising bool, input Pin, reference RefPin) {
	f(rising, input, reference)
}

// AnalogComparator compares an analog input against a reference and reports
// crossings to its client.
//
// StartComparing fails with ErrBusy while a comparison is running and leaves
// the hardware untouched. Stop may be called any number of times.
type AnalogComparator interface {
	SetInput(pin Pin) error
	SetReference(ref RefPin) error
	SetBoth(pin Pin, ref RefPin) error
	StartComparing(pin Pin, ref RefPin, rising bool, mode OpMode) error
	Stop()
	SetClient(client ComparatorClient)
}
