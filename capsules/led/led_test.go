package led

import (
	"testing"

	"omibyte.io/hilcore/chips/nrf52"
	"omibyte.io/hilcore/hil"
	"omibyte.io/hilcore/kernel"
	"omibyte.io/hilcore/mmio"
	"omibyte.io/hilcore/sim"
)

type setup struct {
	m      *sim.Machine
	k      *kernel.Kernel
	p      *kernel.Process
	driver *Driver
}

func newSetup(t *testing.T, pins []int, modes []hil.ActivationMode) *setup {
	t.Helper()
	m := sim.NewMachine(nil)
	if _, err := m.AttachGPIO(nrf52.P0Base); err != nil {
		t.Fatal(err)
	}
	var regions mmio.Regions
	block, err := nrf52.GPIOBlock(&regions, m.Bus, nrf52.P0Base)
	if err != nil {
		t.Fatal(err)
	}
	port := nrf52.NewPort(block)

	var leds []hil.ActiveOutput
	for i, n := range pins {
		pin, err := port.Pin(n)
		if err != nil {
			t.Fatal(err)
		}
		pin.MakeOutput()
		leds = append(leds, hil.ActiveOutput{Pin: pin, Mode: modes[i]})
	}
	d := New(leds)
	table := kernel.DriverTable{}
	if len(leds) > 0 {
		table[DriverNum] = d
	}
	k := kernel.New(table, nil, kernel.Config{}, nil)
	return &setup{m: m, k: k, p: k.CreateProcess("app"), driver: d}
}

func (s *setup) cmd(n, arg uint32) kernel.Result {
	return s.k.Command(s.p, DriverNum, n, arg, 0)
}

func TestEndToEnd(t *testing.T) {
	s := newSetup(t, []int{17, 18}, []hil.ActivationMode{hil.ActiveLow, hil.ActiveLow})

	if r := s.cmd(0, 0); r.Word() != 2 {
		t.Errorf("count = %v", r)
	}
	if r := s.cmd(1, 0); r.Code != kernel.SUCCESS || !s.driver.IsOn(0) {
		t.Errorf("on(0) = %v, led on = %v", r, s.driver.IsOn(0))
	}
	if s.m.GPIO.Level(17) {
		t.Errorf("active-low LED 0 pin should be low when on")
	}
	if r := s.cmd(1, 5); r.Code != kernel.EINVAL {
		t.Errorf("on(5) = %v", r)
	}
	if r := s.cmd(3, 0); r.Code != kernel.SUCCESS || s.driver.IsOn(0) {
		t.Errorf("toggle(0) = %v, led on = %v", r, s.driver.IsOn(0))
	}
	if !s.m.GPIO.Level(17) {
		t.Errorf("LED 0 pin should be high when off")
	}
}

func TestOnOffToggleLeavesOn(t *testing.T) {
	s := newSetup(t, []int{13, 14, 15}, []hil.ActivationMode{hil.ActiveHigh, hil.ActiveLow, hil.ActiveHigh})
	for i := uint32(0); i < 3; i++ {
		s.cmd(1, i)
		s.cmd(2, i)
		s.cmd(3, i)
		if !s.driver.IsOn(int(i)) {
			t.Errorf("LED %d is off after on/off/toggle", i)
		}
	}
}

func TestOutOfRangeWritesNothing(t *testing.T) {
	s := newSetup(t, []int{17, 18}, []hil.ActivationMode{hil.ActiveHigh, hil.ActiveHigh})
	s.m.Bus.ResetTrace()

	for _, cmd := range []uint32{1, 2, 3} {
		for _, idx := range []uint32{2, 3, 100, 0xffffffff} {
			if r := s.cmd(cmd, idx); r.Code != kernel.EINVAL {
				t.Errorf("cmd %d(%d) = %v", cmd, idx, r)
			}
		}
	}
	if _, stores := s.m.Bus.Count(nrf52.P0Base, nrf52.GPIOSize); stores != 0 {
		t.Errorf("%d GPIO writes for invalid indices", stores)
	}
}

func TestUnknownCommand(t *testing.T) {
	s := newSetup(t, []int{17}, []hil.ActivationMode{hil.ActiveHigh})
	if r := s.cmd(4, 0); r.Code != kernel.ENOSUPPORT {
		t.Errorf("cmd 4 = %v", r)
	}
}

func TestSubscribeAndAllowUnsupported(t *testing.T) {
	s := newSetup(t, []int{17}, []hil.ActivationMode{hil.ActiveHigh})
	called := false
	for num := uint32(0); num < 4; num++ {
		if r := s.k.Subscribe(s.p, DriverNum, num, func(_, _, _ uint32) { called = true }); r.Code != kernel.ENOSUPPORT {
			t.Errorf("subscribe %d = %v", num, r)
		}
		if r := s.k.Allow(s.p, DriverNum, num, make([]byte, 8)); r.Code != kernel.ENOSUPPORT {
			t.Errorf("allow %d = %v", num, r)
		}
	}
	s.cmd(1, 0)
	for s.k.Yield(s.p) {
	}
	if called {
		t.Errorf("callback invoked")
	}
}

func TestNoLEDs(t *testing.T) {
	s := newSetup(t, nil, nil)
	if r := s.cmd(0, 0); r.Code != kernel.ENODEVICE {
		t.Errorf("absent driver count = %v", r)
	}
	if r := s.driver.Command(0, 0, 0, 0); r.Code != kernel.ENODEVICE {
		t.Errorf("empty driver count = %v", r)
	}
	if r := s.driver.Command(1, 0, 0, 0); r.Code != kernel.EINVAL {
		t.Errorf("empty driver on(0) = %v", r)
	}
}
