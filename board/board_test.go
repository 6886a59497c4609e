package board

import (
	"errors"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"omibyte.io/hilcore/capsules/comparator"
	"omibyte.io/hilcore/capsules/led"
	"omibyte.io/hilcore/hil"
	"omibyte.io/hilcore/kernel"
	"omibyte.io/hilcore/mmio"
	"omibyte.io/hilcore/sim"
)

func TestBuiltinBoards(t *testing.T) {
	names := All().Names()
	want := []string{"hail", "nrf52840dk", "nrf52dk", "sensor-node"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Names() = %v, want %v", names, want)
	}
	info, err := Lookup("NRF52DK")
	if err != nil {
		t.Fatal(err)
	}
	if len(info.LEDs) != 4 || info.Peripherals.Comp.Base != 0x40013000 {
		t.Errorf("unexpected nrf52dk definition:\n%s", spew.Sdump(info))
	}
	if _, err := Lookup("arduino"); !errors.Is(err, ErrBoardNotFound) {
		t.Errorf("Lookup(arduino) error = %v", err)
	}
	if got := len(All().FindByChip("nrf52832")); got != 3 {
		t.Errorf("FindByChip = %d boards", got)
	}
}

func TestFindIgnoresCase(t *testing.T) {
	bs := Boards{{Name: "NRF52DK", Chip: "NRF52832"}, {Name: "bench", Chip: "nrf52840"}}
	tests := []struct {
		name string
		want string
	}{
		{"nrf52dk", "NRF52DK"},
		{"NRF52DK", "NRF52DK"},
		{"Bench", "bench"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := bs.Find(tc.name)
			if err != nil || info.Name != tc.want {
				t.Errorf("Find(%q) = %q, %v", tc.name, info.Name, err)
			}
		})
	}
	if got := len(bs.FindByChip("nrf52832")); got != 1 {
		t.Errorf("FindByChip = %d boards, want 1", got)
	}
}

func TestLoadFile(t *testing.T) {
	bs, err := Load("testdata/boards.yaml")
	if err != nil {
		t.Fatal(err)
	}
	info, err := bs.Find("bench")
	if err != nil {
		t.Fatal(err)
	}
	if !info.Kernel.TraceSyscalls || info.LEDs[1].Mode != "active-low" {
		t.Errorf("unexpected definition:\n%s", spew.Sdump(info))
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	data := []byte(`
boards:
  - name: broken
    peripherals:
      comp:
        base: 0x40013002
        speed: warp
    leds:
      - { pin: 40 }
      - { pin: 40, mode: sideways }
`)
	_, err := Parse(data)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, target := range []error{ErrInvalidBoard, hil.ErrInvalidPin, hil.ErrInvalidMode} {
		if !errors.Is(err, target) {
			t.Errorf("error does not wrap %v: %v", target, err)
		}
	}
}

func TestWireOrder(t *testing.T) {
	info, _ := Lookup("nrf52dk")
	b, err := Simulate(info, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Order) != 6 {
		t.Fatalf("Order = %v", b.Order)
	}
	pos := map[string]int{}
	for i, name := range b.Order {
		pos[name] = i
	}
	for _, c := range components(info) {
		for _, dep := range c.deps {
			if pos[dep] > pos[c.name] {
				t.Errorf("%s built before its dependency %s: %v", c.name, dep, b.Order)
			}
		}
	}
	if nums := b.Drivers.Numbers(); !reflect.DeepEqual(nums, []uint32{led.DriverNum, comparator.DriverNum}) {
		t.Errorf("drivers = %v", nums)
	}
}

func TestWireRejectsOverlap(t *testing.T) {
	info, _ := Lookup("nrf52dk")
	info.Peripherals.GPIO = &GPIOConfig{Base: 0x40013800}
	m := sim.NewMachine(nil)
	_, err := Wire(info, m.Bus, m.IRQ, nil)
	if !errors.Is(err, mmio.ErrOverlap) {
		t.Errorf("error = %v, want overlap", err)
	}
}

func TestLEDsStartOff(t *testing.T) {
	info, _ := Lookup("nrf52dk")
	b, err := Simulate(info, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range info.LEDs {
		if !b.Machine.GPIO.IsOutput(l.Pin) || !b.Machine.GPIO.Level(l.Pin) {
			t.Errorf("active-low LED on pin %d is not an output driven high", l.Pin)
		}
	}
}

func TestEndToEnd(t *testing.T) {
	info, err := Lookup("nrf52dk")
	if err != nil {
		t.Fatal(err)
	}
	info.LEDs = info.LEDs[:2]
	b, err := Simulate(info, nil)
	if err != nil {
		t.Fatal(err)
	}
	k := b.Kernel
	p := k.CreateProcess("blink")

	steps := []struct {
		cmd  uint32
		arg  uint32
		want int32
		on   bool
	}{
		{0, 0, 2, false},
		{1, 0, 0, true},
		{1, 5, int32(kernel.EINVAL), true},
		{3, 0, 0, false},
	}
	for i, s := range steps {
		r := k.Command(p, led.DriverNum, s.cmd, s.arg, 0)
		if r.Word() != s.want {
			t.Errorf("step %d: cmd %d(%d) = %v", i, s.cmd, s.arg, r)
		}
		if b.LEDs.IsOn(0) != s.on {
			t.Errorf("step %d: LED 0 on = %v", i, b.LEDs.IsOn(0))
		}
	}
}

func TestBoardWithoutLEDs(t *testing.T) {
	info, _ := Lookup("sensor-node")
	b, err := Simulate(info, nil)
	if err != nil {
		t.Fatal(err)
	}
	if b.LEDs != nil {
		t.Errorf("LED driver created for a board without LEDs")
	}
	p := b.Kernel.CreateProcess("app")
	if r := b.Kernel.Command(p, led.DriverNum, 0, 0, 0); r.Code != kernel.ENODEVICE {
		t.Errorf("count = %v", r)
	}
}

func TestComparatorThroughKernel(t *testing.T) {
	info, _ := Lookup("nrf52840dk")
	b, err := Simulate(info, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s, err := b.Comp.Speed(); err != nil || s != hil.High {
		t.Errorf("speed = %v, %v", s, err)
	}
	k := b.Kernel
	p := k.CreateProcess("sense")
	var events int
	k.Subscribe(p, comparator.DriverNum, 0, func(rising, input, ref uint32) {
		if rising == 0 || input != 1 || ref != uint32(hil.VDD) {
			t.Errorf("upcall(%d, %d, %d)", rising, input, ref)
		}
		events++
	})
	req := comparator.Request{Ref: hil.VDD, Rising: true, Mode: hil.SingleEnded}
	if r := k.Command(p, comparator.DriverNum, 2, 1, req.Encode()); !r.IsSuccess() {
		t.Fatalf("start = %v", r)
	}
	b.Machine.Comp.SetVoltage(1, 3.4)
	for k.Yield(p) {
	}
	if events != 1 {
		t.Errorf("events = %d", events)
	}
}

func TestBuildOrderCycle(t *testing.T) {
	noop := func(*Board) error { return nil }
	cs := []*component{
		{name: "a", deps: []string{"b"}, build: noop},
		{name: "b", deps: []string{"a"}, build: noop},
	}
	if _, err := buildOrder(cs); !errors.Is(err, ErrCycle) {
		t.Errorf("error = %v, want cycle", err)
	}
	cs = []*component{{name: "a", deps: []string{"missing"}, build: noop}}
	if _, err := buildOrder(cs); !errors.Is(err, ErrInvalidBoard) {
		t.Errorf("error = %v, want invalid board", err)
	}
}
