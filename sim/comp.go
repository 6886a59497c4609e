package sim

import "math"

const (
	compTasksStart  = 0x000
	compTasksStop   = 0x004
	compTasksSample = 0x008
	compEvents      = 0x100
	compShorts      = 0x200
	compInten       = 0x300
	compIntenset    = 0x304
	compIntenclr    = 0x308
	compResult      = 0x400
	compEnable      = 0x500
	compPsel        = 0x504
	compRefsel      = 0x508
	compExtrefsel   = 0x50C
	compTh          = 0x530
	compMode        = 0x534
	compHyst        = 0x538

	compEnabled = 2
	numEvents   = 4
)

// Comparator events, in register and interrupt bit order.
const (
	EventReady = iota
	EventDown
	EventUp
	EventCross
)

// CompSize is the size of the COMP register block.
const CompSize = 0x1000

// hysteresis applied in differential mode when HYST is set
const diffHysteresis = 0.05

// Comparator simulates the nRF52 COMP peripheral. Analog inputs are driven
// with SetVoltage; crossings latch events and raise the interrupt when the
// matching INTEN bit is set.
type Comparator struct {
	Raise func()

	VDD   float64
	volts [8]float64

	events  [numEvents]uint32
	inten   uint32
	shorts  uint32
	result  uint32
	enable  uint32
	psel    uint32
	refsel  uint32
	extref  uint32
	th      uint32
	mode    uint32
	hyst    uint32
	running bool

	Starts int
	Stops  int
}

func NewComparator(raise func()) *Comparator {
	return &Comparator{Raise: raise, VDD: 3.3}
}

func (c *Comparator) Load(off uintptr) uint32 {
	switch {
	case off >= compEvents && off < compEvents+4*numEvents:
		return c.events[(off-compEvents)/4]
	}
	switch off {
	case compShorts:
		return c.shorts
	case compInten, compIntenset, compIntenclr:
		return c.inten
	case compResult:
		return c.result
	case compEnable:
		return c.enable
	case compPsel:
		return c.psel
	case compRefsel:
		return c.refsel
	case compExtrefsel:
		return c.extref
	case compTh:
		return c.th
	case compMode:
		return c.mode
	case compHyst:
		return c.hyst
	}
	return 0
}

func (c *Comparator) Store(off uintptr, v uint32) {
	switch {
	case off >= compEvents && off < compEvents+4*numEvents:
		c.events[(off-compEvents)/4] = v & 1
		c.update()
		return
	}
	switch off {
	case compTasksStart:
		if v&1 != 0 && c.enable == compEnabled {
			c.Starts++
			c.running = true
			c.result = c.compare(c.result)
			c.fire(EventReady)
		}
	case compTasksStop:
		if v&1 != 0 {
			c.Stops++
			c.running = false
		}
	case compTasksSample:
		if v&1 != 0 && c.enable == compEnabled {
			c.result = c.compare(c.result)
		}
	case compShorts:
		c.shorts = v & 0x1f
	case compInten:
		c.inten = v & 0xf
	case compIntenset:
		c.inten |= v & 0xf
	case compIntenclr:
		c.inten &^= v & 0xf
	case compEnable:
		c.enable = v & 0x3
		if c.enable != compEnabled {
			c.running = false
		}
	case compPsel:
		c.psel = v & 0x7
	case compRefsel:
		c.refsel = v & 0x7
	case compExtrefsel:
		c.extref = v & 0x7
	case compTh:
		c.th = v & 0x3f3f
	case compMode:
		c.mode = v & 0x103
	case compHyst:
		c.hyst = v & 1
	}
	c.update()
}

// SetVoltage drives analog input ch. A running comparator re-evaluates and
// latches DOWN, UP and CROSS events on a change of result.
func (c *Comparator) SetVoltage(ch int, v float64) {
	c.volts[ch] = v
	if !c.running {
		return
	}
	prev := c.result
	c.result = c.compare(prev)
	switch {
	case prev == 0 && c.result == 1:
		c.fire(EventUp)
		c.fire(EventCross)
	case prev == 1 && c.result == 0:
		c.fire(EventDown)
		c.fire(EventCross)
	}
}

func (c *Comparator) Voltage(ch int) float64 {
	return c.volts[ch]
}

// Fire latches an event as if the hardware had produced it, regardless of
// the analog inputs.
func (c *Comparator) Fire(event int) {
	c.fire(event)
}

// SetResult forces the RESULT register.
func (c *Comparator) SetResult(above bool) {
	c.result = 0
	if above {
		c.result = 1
	}
}

func (c *Comparator) Running() bool {
	return c.running
}

func (c *Comparator) Inten() uint32 {
	return c.inten
}

func (c *Comparator) Event(event int) bool {
	return c.events[event] != 0
}

func (c *Comparator) fire(event int) {
	c.events[event] = 1
	c.update()
}

func (c *Comparator) update() {
	var latched uint32
	for i, e := range c.events {
		latched |= e << i
	}
	if latched&c.inten != 0 && c.Raise != nil {
		c.Raise()
	}
}

func (c *Comparator) reference() float64 {
	switch c.refsel {
	case 0:
		return 1.2
	case 1:
		return 1.8
	case 2:
		return 2.4
	case 4:
		return c.VDD
	case 5:
		return c.volts[c.extref]
	}
	return math.NaN()
}

func (c *Comparator) compare(prev uint32) uint32 {
	vin := c.volts[c.psel]
	var up, down float64
	if c.mode&0x100 != 0 {
		ref := c.volts[c.extref]
		up, down = ref, ref
		if c.hyst != 0 {
			up += diffHysteresis / 2
			down -= diffHysteresis / 2
		}
	} else {
		ref := c.reference()
		up = ref * float64((c.th>>8)&0x3f+1) / 64
		down = ref * float64(c.th&0x3f+1) / 64
	}
	switch {
	case vin > up:
		return 1
	case vin < down:
		return 0
	}
	return prev
}
