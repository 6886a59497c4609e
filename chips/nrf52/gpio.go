package nrf52

import (
	"fmt"

	"omibyte.io/hilcore/hil"
	"omibyte.io/hilcore/mmio"
)

const (
	P0Base   uintptr = 0x50000000
	GPIOSize uintptr = 0x1000

	// NumPins is the number of pins on port P0.
	NumPins = 32
)

var (
	gpioOut    = mmio.NewRW[uint32]("OUT", 0x504, 0, 32)
	gpioOutset = mmio.NewRW[uint32]("OUTSET", 0x508, 0, 32)
	gpioOutclr = mmio.NewRW[uint32]("OUTCLR", 0x50C, 0, 32)
	gpioIn     = mmio.NewRO[uint32]("IN", 0x510, 0, 32)
	gpioDir    = mmio.NewRW[uint32]("DIR", 0x514, 0, 32)
	gpioDirset = mmio.NewRW[uint32]("DIRSET", 0x518, 0, 32)
	gpioDirclr = mmio.NewRW[uint32]("DIRCLR", 0x51C, 0, 32)
)

type pinCnf struct {
	dir   mmio.RW[uint32]
	input mmio.RW[uint32]
}

var gpioPinCnf [NumPins]pinCnf

func init() {
	for n := range gpioPinCnf {
		off := 0x700 + uintptr(4*n)
		name := fmt.Sprintf("PIN_CNF[%d]", n)
		gpioPinCnf[n] = pinCnf{
			dir:   mmio.NewRW[uint32](name+".DIR", off, 0, 1),
			input: mmio.NewRW[uint32](name+".INPUT", off, 1, 1),
		}
	}
}

// GPIOFields returns the declared GPIO register layout.
func GPIOFields() []mmio.Declarer {
	fields := []mmio.Declarer{gpioOut, gpioOutset, gpioOutclr, gpioIn, gpioDir, gpioDirset, gpioDirclr}
	for _, cnf := range gpioPinCnf {
		fields = append(fields, cnf.dir, cnf.input)
	}
	return fields
}

func GPIOBlock(r *mmio.Regions, bus mmio.Bus, base uintptr) (*mmio.Block, error) {
	return r.Block(bus, "P0", base, GPIOSize, GPIOFields()...)
}

// Port is a GPIO port.
type Port struct {
	regs *mmio.Block
	pins [NumPins]*Pin
}

func NewPort(regs *mmio.Block) *Port {
	return &Port{regs: regs}
}

func (p *Port) Block() *mmio.Block {
	return p.regs
}

// Pin returns the handle for pin n. Handles are created once per pin.
func (p *Port) Pin(n int) (*Pin, error) {
	if n < 0 || n >= NumPins {
		return nil, fmt.Errorf("%w: P0.%02d", hil.ErrInvalidPin, n)
	}
	if p.pins[n] == nil {
		p.pins[n] = &Pin{port: p, n: uint8(n)}
	}
	return p.pins[n], nil
}

// Pin is a single GPIO line.
type Pin struct {
	port *Port
	n    uint8
}

var _ hil.Output = (*Pin)(nil)

func (p *Pin) Number() int {
	return int(p.n)
}

func (p *Pin) String() string {
	return fmt.Sprintf("P0.%02d", p.n)
}

func (p *Pin) mask() uint32 {
	return 1 << p.n
}

// MakeOutput configures the pin as an output with its input buffer
// disconnected.
func (p *Pin) MakeOutput() {
	cnf := gpioPinCnf[p.n]
	p.port.regs.Write(cnf.dir.Val(1), cnf.input.Val(1))
}

func (p *Pin) MakeInput() {
	cnf := gpioPinCnf[p.n]
	p.port.regs.Write(cnf.dir.Val(0), cnf.input.Val(0))
}

func (p *Pin) IsOutput() bool {
	return gpioDir.Get(p.port.regs)&p.mask() != 0
}

func (p *Pin) Set() {
	gpioOutset.Set(p.port.regs, p.mask())
}

func (p *Pin) Clear() {
	gpioOutclr.Set(p.port.regs, p.mask())
}

func (p *Pin) Toggle() bool {
	if gpioOut.Get(p.port.regs)&p.mask() != 0 {
		p.Clear()
		return false
	}
	p.Set()
	return true
}

// Read returns the driven level for outputs and the input level otherwise.
func (p *Pin) Read() bool {
	if p.IsOutput() {
		return gpioOut.Get(p.port.regs)&p.mask() != 0
	}
	return gpioIn.Get(p.port.regs)&p.mask() != 0
}

// SetDirection writes DIRSET or DIRCLR for the pin.
func (p *Pin) SetDirection(output bool) {
	if output {
		gpioDirset.Set(p.port.regs, p.mask())
		return
	}
	gpioDirclr.Set(p.port.regs, p.mask())
}
