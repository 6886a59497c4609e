package sim

const (
	gpioOut    = 0x504
	gpioOutset = 0x508
	gpioOutclr = 0x50C
	gpioIn     = 0x510
	gpioDir    = 0x514
	gpioDirset = 0x518
	gpioDirclr = 0x51C
	gpioPinCnf = 0x700

	numGPIO = 32
)

const GPIOSize = 0x1000

// GPIO simulates an nRF52 GPIO port. Pins configured as outputs read back
// their driven level, inputs read the externally applied level.
type GPIO struct {
	out      uint32
	dir      uint32
	external uint32
	cnf      [numGPIO]uint32
}

func NewGPIO() *GPIO {
	g := &GPIO{}
	for i := range g.cnf {
		// disconnected input buffer, the reset value
		g.cnf[i] = 0x2
	}
	return g
}

func (g *GPIO) Load(off uintptr) uint32 {
	if off >= gpioPinCnf && off < gpioPinCnf+4*numGPIO {
		n := (off - gpioPinCnf) / 4
		return g.cnf[n]&^1 | (g.dir>>n)&1
	}
	switch off {
	case gpioOut, gpioOutset, gpioOutclr:
		return g.out
	case gpioIn:
		return g.out&g.dir | g.external&^g.dir
	case gpioDir, gpioDirset, gpioDirclr:
		return g.dir
	}
	return 0
}

func (g *GPIO) Store(off uintptr, v uint32) {
	if off >= gpioPinCnf && off < gpioPinCnf+4*numGPIO {
		n := (off - gpioPinCnf) / 4
		g.cnf[n] = v
		if v&1 != 0 {
			g.dir |= 1 << n
		} else {
			g.dir &^= 1 << n
		}
		return
	}
	switch off {
	case gpioOut:
		g.out = v
	case gpioOutset:
		g.out |= v
	case gpioOutclr:
		g.out &^= v
	case gpioDir:
		g.dir = v
	case gpioDirset:
		g.dir |= v
	case gpioDirclr:
		g.dir &^= v
	}
}

// Level reports the driven output level of pin.
func (g *GPIO) Level(pin int) bool {
	return g.out&(1<<pin) != 0
}

// IsOutput reports whether pin is configured as an output.
func (g *GPIO) IsOutput(pin int) bool {
	return g.dir&(1<<pin) != 0
}

// Drive applies an external level to pin.
func (g *GPIO) Drive(pin int, high bool) {
	if high {
		g.external |= 1 << pin
	} else {
		g.external &^= 1 << pin
	}
}
