package nrf52

import (
	"omibyte.io/hilcore/irq"
	"omibyte.io/hilcore/trust"
)

const GPIOTEIRQ irq.Line = 6

// Chip routes the nRF52 interrupt lines to the peripheral drivers.
type Chip struct {
	IRQ  *irq.Controller
	Comp *Comparator
	P0   *Port

	gpioteEvents int
	log          *trust.Logger
}

// NewChip registers and enables the handlers of the peripherals present.
// Either peripheral may be nil.
func NewChip(ctrl *irq.Controller, comp *Comparator, p0 *Port, log *trust.Logger) *Chip {
	if log == nil {
		log = trust.Discard()
	}
	c := &Chip{IRQ: ctrl, Comp: comp, P0: p0, log: log}
	if comp != nil {
		ctrl.Register(CompIRQ, "COMP", comp.HandleInterrupt)
		ctrl.Enable(CompIRQ)
	}
	if p0 != nil {
		ctrl.Register(GPIOTEIRQ, "GPIOTE", c.handleGPIOTE)
		ctrl.Enable(GPIOTEIRQ)
	}
	return c
}

// No GPIOTE channels are configured; an event is only counted.
func (c *Chip) handleGPIOTE() {
	c.gpioteEvents++
	c.log.Debugf("GPIOTE event %d", c.gpioteEvents)
}

func (c *Chip) HasPendingInterrupts() bool {
	return c.IRQ.HasPending()
}

// ServicePendingInterrupts dispatches pending interrupts until none are left
// and returns the number of handlers run.
func (c *Chip) ServicePendingInterrupts() int {
	total := 0
	for c.IRQ.HasPending() {
		n := c.IRQ.Service()
		if n == 0 {
			break
		}
		total += n
	}
	return total
}
