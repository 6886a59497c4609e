package hil

import (
	"errors"
	"testing"
)

type fakePin struct {
	level bool
	ops   int
}

func (p *fakePin) Set()   { p.level = true; p.ops++ }
func (p *fakePin) Clear() { p.level = false; p.ops++ }
func (p *fakePin) Toggle() bool {
	p.level = !p.level
	p.ops++
	return p.level
}
func (p *fakePin) Read() bool { return p.level }

func TestPinRoundTrip(t *testing.T) {
	for v := uint32(0); v < NumPins; v++ {
		p, err := PinFrom(v)
		if err != nil {
			t.Fatalf("PinFrom(%d): %v", v, err)
		}
		if uint32(p) != v || !p.Valid() {
			t.Errorf("PinFrom(%d) = %v", v, p)
		}
	}
	if _, err := PinFrom(8); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("PinFrom(8) error = %v", err)
	}
}

func TestRefPin(t *testing.T) {
	tests := []struct {
		v        uint32
		name     string
		external bool
	}{
		{0, "AIN0", true},
		{7, "AIN7", true},
		{8, "Int1V2", false},
		{9, "Int1V8", false},
		{10, "Int2V4", false},
		{11, "VDD", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := RefPinFrom(tc.v)
			if err != nil {
				t.Fatal(err)
			}
			if r.String() != tc.name || r.External() != tc.external {
				t.Errorf("got %v external=%v", r, r.External())
			}
			if ch, ok := r.Channel(); ok != tc.external || (ok && RefFromPin(ch) != r) {
				t.Errorf("Channel() = %v, %v", ch, ok)
			}
		})
	}
	if _, err := RefPinFrom(12); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("RefPinFrom(12) error = %v", err)
	}
}

func TestModesRejectUnknown(t *testing.T) {
	if _, err := OpModeFrom(2); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("OpModeFrom(2) error = %v", err)
	}
	if _, err := SpeedModeFrom(3); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("SpeedModeFrom(3) error = %v", err)
	}
	if m, err := SpeedModeFrom(2); err != nil || m != High {
		t.Errorf("SpeedModeFrom(2) = %v, %v", m, err)
	}
}

func TestActiveOutput(t *testing.T) {
	tests := []struct {
		mode   ActivationMode
		onPin  bool
		offPin bool
	}{
		{ActiveHigh, true, false},
		{ActiveLow, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			pin := &fakePin{}
			o := ActiveOutput{Pin: pin, Mode: tc.mode}

			o.On()
			if pin.level != tc.onPin || !o.IsOn() {
				t.Errorf("On: pin=%v IsOn=%v", pin.level, o.IsOn())
			}
			o.Off()
			if pin.level != tc.offPin || o.IsOn() {
				t.Errorf("Off: pin=%v IsOn=%v", pin.level, o.IsOn())
			}
			if !o.Toggle() {
				t.Errorf("Toggle from off should report on")
			}
		})
	}
}

func TestParseActivationMode(t *testing.T) {
	if m, err := ParseActivationMode("active-low"); err != nil || m != ActiveLow {
		t.Errorf("got %v, %v", m, err)
	}
	if _, err := ParseActivationMode("sideways"); err == nil {
		t.Errorf("expected error")
	}
}
