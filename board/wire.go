package board

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"omibyte.io/hilcore/capsules/comparator"
	"omibyte.io/hilcore/capsules/led"
	"omibyte.io/hilcore/chips/nrf52"
	"omibyte.io/hilcore/hil"
	"omibyte.io/hilcore/irq"
	"omibyte.io/hilcore/kernel"
	"omibyte.io/hilcore/mmio"
	"omibyte.io/hilcore/sim"
	"omibyte.io/hilcore/trust"
)

// Board is a wired board: every peripheral driver, capsule and the kernel,
// constructed once and owned here.
type Board struct {
	Info    Info
	Regions mmio.Regions
	IRQ     *irq.Controller

	Port       *nrf52.Port
	Comp       *nrf52.Comparator
	Chip       *nrf52.Chip
	LEDs       *led.Driver
	Comparator *comparator.Driver
	Drivers    kernel.DriverTable
	Kernel     *kernel.Kernel

	// Order is the sequence components were constructed in.
	Order []string

	// Machine is set for simulated boards.
	Machine *sim.Machine

	bus mmio.Bus
	log *trust.Logger
}

var _ kernel.Platform = (*Board)(nil)

func (b *Board) WithDriver(num uint32) (kernel.Driver, bool) {
	return b.Drivers.WithDriver(num)
}

type component struct {
	name  string
	deps  []string
	build func(b *Board) error
}

type componentNode struct {
	id int64
	c  *component
}

func (n componentNode) ID() int64 {
	return n.id
}

// Wire constructs the components of info on bus in dependency order.
func Wire(info Info, bus mmio.Bus, ctrl *irq.Controller, log *trust.Logger) (*Board, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = trust.Discard()
	}
	b := &Board{
		Info:    info,
		IRQ:     ctrl,
		Drivers: kernel.DriverTable{},
		bus:     bus,
		log:     log.With(info.Name),
	}

	order, err := buildOrder(components(info))
	if err != nil {
		return nil, err
	}
	for _, c := range order {
		if err := c.build(b); err != nil {
			return nil, fmt.Errorf("board %s: %s: %w", info.Name, c.name, err)
		}
		b.Order = append(b.Order, c.name)
	}
	b.log.Infof("wired %v", b.Order)
	return b, nil
}

// Simulate wires info on a simulated machine with the board's peripherals
// attached at their configured addresses.
func Simulate(info Info, log *trust.Logger) (*Board, error) {
	m := sim.NewMachine(log)
	if c := info.Peripherals.Comp; c != nil {
		if _, err := m.AttachComparator(uintptr(c.Base), nrf52.CompIRQ); err != nil {
			return nil, err
		}
	}
	if g := info.Peripherals.GPIO; g != nil {
		if _, err := m.AttachGPIO(uintptr(g.Base)); err != nil {
			return nil, err
		}
	}
	b, err := Wire(info, m.Bus, m.IRQ, log)
	if err != nil {
		return nil, err
	}
	b.Machine = m
	return b, nil
}

func components(info Info) []*component {
	var cs []*component
	var chipDeps, kernelDeps []string

	if info.Peripherals.GPIO != nil {
		cs = append(cs, &component{name: "gpio", build: buildGPIO})
		chipDeps = append(chipDeps, "gpio")
	}
	if info.Peripherals.Comp != nil {
		cs = append(cs,
			&component{name: "comp", build: buildComp},
			&component{name: "comparator", deps: []string{"comp"}, build: buildComparatorCapsule},
		)
		chipDeps = append(chipDeps, "comp")
		kernelDeps = append(kernelDeps, "comparator")
	}
	// no LED driver is registered for a board without LEDs
	if len(info.LEDs) > 0 {
		cs = append(cs, &component{name: "leds", deps: []string{"gpio"}, build: buildLEDs})
		kernelDeps = append(kernelDeps, "leds")
	}
	cs = append(cs,
		&component{name: "chip", deps: chipDeps, build: buildChip},
		&component{name: "kernel", deps: append(kernelDeps, "chip"), build: buildKernel},
	)
	return cs
}

func buildOrder(cs []*component) ([]*component, error) {
	g := simple.NewDirectedGraph()
	nodes := map[string]componentNode{}
	for i, c := range cs {
		n := componentNode{id: int64(i), c: c}
		nodes[c.name] = n
		g.AddNode(n)
	}
	for _, c := range cs {
		for _, dep := range c.deps {
			from, ok := nodes[dep]
			if !ok {
				return nil, fmt.Errorf("%w: %s depends on missing %s", ErrInvalidBoard, c.name, dep)
			}
			g.SetEdge(g.NewEdge(from, nodes[c.name]))
		}
	}

	sorted, err := topo.SortStabilized(g, func(ns []graph.Node) {
		sort.Slice(ns, func(i, j int) bool { return ns[i].ID() < ns[j].ID() })
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycle, err)
	}
	order := make([]*component, len(sorted))
	for i, n := range sorted {
		order[i] = n.(componentNode).c
	}
	return order, nil
}

func buildGPIO(b *Board) error {
	block, err := nrf52.GPIOBlock(&b.Regions, b.bus, uintptr(b.Info.Peripherals.GPIO.Base))
	if err != nil {
		return err
	}
	b.Port = nrf52.NewPort(block)
	return nil
}

func buildComp(b *Board) error {
	cfg := b.Info.Peripherals.Comp
	block, err := nrf52.CompBlock(&b.Regions, b.bus, uintptr(cfg.Base))
	if err != nil {
		return err
	}
	b.Comp = nrf52.NewComparator(block, b.log.With("comp"))
	speed, err := cfg.SpeedMode()
	if err != nil {
		return err
	}
	if err := b.Comp.SetSpeed(speed); err != nil {
		return err
	}
	b.Comp.SetHysteresis(cfg.Hysteresis)
	return nil
}

func buildComparatorCapsule(b *Board) error {
	b.Comparator = comparator.New(b.Comp, b.log.With("comparator"))
	b.Drivers[comparator.DriverNum] = b.Comparator
	return nil
}

func buildLEDs(b *Board) error {
	leds := make([]hil.ActiveOutput, 0, len(b.Info.LEDs))
	for _, l := range b.Info.LEDs {
		pin, err := b.Port.Pin(l.Pin)
		if err != nil {
			return err
		}
		mode, err := hil.ParseActivationMode(l.Mode)
		if err != nil {
			return err
		}
		pin.MakeOutput()
		leds = append(leds, hil.ActiveOutput{Pin: pin, Mode: mode})
	}
	b.LEDs = led.New(leds)
	b.Drivers[led.DriverNum] = b.LEDs
	return nil
}

func buildChip(b *Board) error {
	b.Chip = nrf52.NewChip(b.IRQ, b.Comp, b.Port, b.log.With("chip"))
	return nil
}

func buildKernel(b *Board) error {
	b.Kernel = kernel.New(b, b.Chip, b.Info.Kernel, b.log.With("kernel"))
	return nil
}
