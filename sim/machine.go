package sim

import (
	"fmt"

	"omibyte.io/hilcore/irq"
	"omibyte.io/hilcore/trust"
)

// Machine is a simulated nRF52 with a bus, an interrupt controller and the
// peripherals attached to them.
type Machine struct {
	Bus  *Bus
	IRQ  *irq.Controller
	Comp *Comparator
	GPIO *GPIO
}

func NewMachine(log *trust.Logger) *Machine {
	if log == nil {
		log = trust.Discard()
	}
	return &Machine{
		Bus: NewBus(),
		IRQ: irq.NewController(log.With("irq")),
	}
}

// AttachComparator maps a COMP peripheral at base that raises line.
func (m *Machine) AttachComparator(base uintptr, line irq.Line) (*Comparator, error) {
	if m.Comp != nil {
		return nil, fmt.Errorf("comparator already attached")
	}
	c := NewComparator(func() { m.IRQ.Raise(line) })
	if err := m.Bus.Map("COMP", base, CompSize, c); err != nil {
		return nil, err
	}
	m.Comp = c
	return c, nil
}

func (m *Machine) AttachGPIO(base uintptr) (*GPIO, error) {
	if m.GPIO != nil {
		return nil, fmt.Errorf("gpio already attached")
	}
	g := NewGPIO()
	if err := m.Bus.Map("P0", base, GPIOSize, g); err != nil {
		return nil, err
	}
	m.GPIO = g
	return g, nil
}
