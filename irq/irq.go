// Package irq models a nested vectored interrupt controller: numbered lines
// with an enable mask, a pending latch and one handler each.
package irq

import (
	"fmt"
	"math/bits"

	"omibyte.io/hilcore/trust"
)

// Line is an interrupt number. Lower numbers have higher priority.
type Line uint8

// MaxLines is the number of lines a controller can track.
const MaxLines = 64

type Handler func()

type Controller struct {
	handlers [MaxLines]Handler
	names    [MaxLines]string
	enabled  uint64
	pending  uint64
	active   uint64
	log      *trust.Logger
}

func NewController(log *trust.Logger) *Controller {
	if log == nil {
		log = trust.Discard()
	}
	return &Controller{log: log}
}

func checkLine(line Line) {
	if line >= MaxLines {
		panic(fmt.Sprintf("irq: line %d out of range", line))
	}
}

// Register installs the handler for line, replacing any previous one. The
// line is not enabled.
func (c *Controller) Register(line Line, name string, h Handler) {
	checkLine(line)
	c.handlers[line] = h
	c.names[line] = name
}

func (c *Controller) Enable(line Line) {
	checkLine(line)
	c.enabled |= 1 << line
}

func (c *Controller) Disable(line Line) {
	checkLine(line)
	c.enabled &^= 1 << line
}

func (c *Controller) Enabled(line Line) bool {
	checkLine(line)
	return c.enabled&(1<<line) != 0
}

// Raise latches line as pending. This is the hardware side: peripherals call
// it when an enabled event fires.
func (c *Controller) Raise(line Line) {
	checkLine(line)
	c.pending |= 1 << line
}

func (c *Controller) Pending(line Line) bool {
	checkLine(line)
	return c.pending&(1<<line) != 0
}

// HasPending reports whether any enabled line is pending.
func (c *Controller) HasPending() bool {
	return c.pending&c.enabled != 0
}

// Service runs the handler of every enabled pending line once, in priority
// order, and returns how many lines were dispatched. A line is masked while
// its handler runs, so raising it again from inside the handler leaves it
// pending for the next pass.
func (c *Controller) Service() int {
	ready := c.pending & c.enabled &^ c.active
	n := 0
	for ready != 0 {
		line := Line(bits.TrailingZeros64(ready))
		ready &^= 1 << line
		c.dispatch(line)
		n++
	}
	return n
}

func (c *Controller) dispatch(line Line) {
	c.pending &^= 1 << line
	h := c.handlers[line]
	if h == nil {
		c.log.Warnf("unhandled interrupt %d", line)
		return
	}
	c.active |= 1 << line
	defer func() { c.active &^= 1 << line }()
	h()
}

// Name returns the name the line's handler was registered with.
func (c *Controller) Name(line Line) string {
	checkLine(line)
	return c.names[line]
}
