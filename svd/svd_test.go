package svd

import (
	"bytes"
	"errors"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"omibyte.io/hilcore/chips/nrf52"
	"omibyte.io/hilcore/mmio"
	"omibyte.io/hilcore/sim"
)

func loadDevice(t *testing.T) *Device {
	t.Helper()
	d, err := ParseFile("testdata/nrf52.svd")
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestParse(t *testing.T) {
	d := loadDevice(t)
	if d.Name != "nrf52" || d.CPU.Name != "CM4" || d.RegisterSize != 32 {
		t.Errorf("unexpected device header %q %q %d", d.Name, d.CPU.Name, d.RegisterSize)
	}
	comp, err := d.Find("comp")
	if err != nil {
		t.Fatal(err)
	}
	if comp.BaseAddress != 0x40013000 || len(comp.Interrupts) != 1 || comp.Interrupts[0].Value != 19 {
		t.Errorf("unexpected COMP:\n%s", spew.Sdump(comp.BaseAddress, comp.Interrupts))
	}
	if _, err := d.Find("SAADC"); !errors.Is(err, ErrNoPeripheral) {
		t.Errorf("Find(SAADC) error = %v", err)
	}
}

func TestDerivedPeripheral(t *testing.T) {
	d := loadDevice(t)
	p1, err := d.Find("P1")
	if err != nil {
		t.Fatal(err)
	}
	if p1.BaseAddress != 0x50000300 || len(p1.Registers.Elements) == 0 {
		t.Errorf("derivedFrom not resolved")
	}
}

func TestExpandDimRegisters(t *testing.T) {
	d := loadDevice(t)
	p0, _ := d.Find("P0")
	var found bool
	for _, r := range p0.Expand() {
		if r.Name == "PIN_CNF[31]" {
			found = true
			if r.AddressOffset != 0x77C {
				t.Errorf("PIN_CNF[31] offset = %#x", uint64(r.AddressOffset))
			}
		}
	}
	if !found {
		t.Errorf("PIN_CNF[31] not expanded")
	}
}

func TestFieldPosition(t *testing.T) {
	one, seven, nine := Integer(1), Integer(7), Integer(9)
	tests := []struct {
		name   string
		f      Field
		offset uint64
		width  uint64
	}{
		{"offset-only", Field{BitOffset: &seven}, 7, 1},
		{"offset-width", Field{BitOffset: &seven, BitWidth: &nine}, 7, 9},
		{"lsb-msb", Field{LSB: &one, MSB: &seven}, 1, 7},
		{"range", Field{BitRange: BitRange{MSB: 13, LSB: 8}}, 8, 6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o, w := tc.f.Position()
			if o != tc.offset || w != tc.width {
				t.Errorf("Position() = %d, %d", o, w)
			}
		})
	}
}

func TestVerifyDeclaredLayouts(t *testing.T) {
	d := loadDevice(t)
	bus := sim.NewBus()
	var regions mmio.Regions

	tests := []struct {
		peripheral string
		block      func() (*mmio.Block, error)
	}{
		{"COMP", func() (*mmio.Block, error) { return nrf52.CompBlock(&regions, bus, nrf52.CompBase) }},
		{"P0", func() (*mmio.Block, error) { return nrf52.GPIOBlock(&regions, bus, nrf52.P0Base) }},
	}
	for _, tc := range tests {
		t.Run(tc.peripheral, func(t *testing.T) {
			b, err := tc.block()
			if err != nil {
				t.Fatal(err)
			}
			p, err := d.Find(tc.peripheral)
			if err != nil {
				t.Fatal(err)
			}
			if ms := d.Verify(b.Layout(), p); len(ms) != 0 {
				t.Errorf("mismatches:\n%s", spew.Sdump(ms))
			}
		})
	}
}

func TestVerifyReportsMismatches(t *testing.T) {
	d := loadDevice(t)
	comp, _ := d.Find("COMP")
	layout := mmio.NewBlock(sim.NewBus(), "COMP", 0x40014000, 0x1000,
		mmio.NewRW[uint32]("MODE.MAIN", 0x534, 9, 1),
		mmio.NewRW[uint32]("RESULT.RESULT", 0x400, 0, 1),
		mmio.NewRW[uint32]("PSEL.PSEL", 0x508, 0, 3),
		mmio.NewRW[uint32]("HYST.GAIN", 0x538, 0, 1),
		mmio.NewRW[uint32]("LPSEL", 0x600, 0, 1),
	).Layout()

	ms := d.Verify(layout, comp)
	want := []string{
		"COMP: base",
		"MODE.MAIN: bits",
		"RESULT.RESULT: access",
		"PSEL.PSEL: offset",
		"HYST.GAIN: field GAIN not in register HYST",
		"LPSEL: register LPSEL not in COMP",
	}
	if len(ms) != len(want) {
		t.Fatalf("got %d mismatches:\n%s", len(ms), spew.Sdump(ms))
	}
	for i, w := range want {
		if !strings.HasPrefix(ms[i].String(), w) {
			t.Errorf("mismatch %d = %q, want prefix %q", i, ms[i], w)
		}
	}
}

func TestGenerate(t *testing.T) {
	d := loadDevice(t)
	comp, _ := d.Find("COMP")

	var buf bytes.Buffer
	if err := d.Generate(&buf, "regs", "comp", comp); err != nil {
		t.Fatal(err)
	}
	src := buf.String()
	// alignment of the var block depends on the longest name
	flat := strings.Join(strings.Fields(src), " ")
	for _, want := range []string{
		`compTasksStart = mmio.NewWO[uint32]("TASKS_START", 0x0, 0, 1)`,
		`compThThup = mmio.NewRW[uint32]("TH.THUP", 0x530, 8, 6)`,
		`compResult = mmio.NewRO[uint32]("RESULT", 0x400, 0, 1)`,
		"func compFields() []mmio.Declarer {",
	} {
		if !strings.Contains(flat, want) {
			t.Errorf("generated source lacks %q:\n%s", want, src)
		}
	}
	if _, err := parser.ParseFile(token.NewFileSet(), "comp_regs.go", src, 0); err != nil {
		t.Errorf("generated source does not parse: %v", err)
	}
}

func TestGoName(t *testing.T) {
	tests := map[string]string{
		"EVENTS_UP":  "EventsUp",
		"PIN_CNF[3]": "PinCnf3",
		"TH":         "Th",
	}
	for in, want := range tests {
		if got := goName(in); got != want {
			t.Errorf("goName(%q) = %q, want %q", in, got, want)
		}
	}
}
