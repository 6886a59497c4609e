package nrf52

import (
	"fmt"

	"omibyte.io/hilcore/hil"
	"omibyte.io/hilcore/mmio"
	"omibyte.io/hilcore/trust"
)

// Comparator drives the COMP peripheral. It owns its register block and has at
// most one client.
//
// The driver is Idle when neither the UP nor the DOWN interrupt is enabled and
// armed otherwise. An interrupt disarms it before RESULT is read, so there is
// at most one callback per StartComparing. If the input moves back across the
// threshold between the event and the RESULT read, no callback is made and the
// crossing is lost.
type Comparator struct {
	regs   *mmio.Block
	client hil.ComparatorClient
	log    *trust.Logger
}

var _ hil.AnalogComparator = (*Comparator)(nil)

func NewComparator(regs *mmio.Block, log *trust.Logger) *Comparator {
	if log == nil {
		log = trust.Discard()
	}
	return &Comparator{regs: regs, log: log}
}

func (c *Comparator) Block() *mmio.Block {
	return c.regs
}

// SetClient installs the receiver of crossing events. When interrupts can
// nest, it must not be called from a handler of higher priority than COMP's.
func (c *Comparator) SetClient(client hil.ComparatorClient) {
	c.client = client
}

func (c *Comparator) SetInput(pin hil.Pin) error {
	if !pin.Valid() {
		return fmt.Errorf("%w: %v", hil.ErrInvalidPin, pin)
	}
	compPsel.Set(c.regs, uint32(pin))
	return nil
}

// SetReference selects the reference according to the operating mode already
// programmed in MODE.MAIN.
func (c *Comparator) SetReference(ref hil.RefPin) error {
	differential := compModeMain.Get(c.regs) == 1
	if err := checkReference(ref, differential); err != nil {
		return err
	}
	if ch, ok := ref.Channel(); ok {
		if !differential {
			compRefsel.Set(c.regs, refselARef)
		}
		compExtrefsel.Set(c.regs, uint32(ch))
		return nil
	}
	v, _ := encodeInternalRef(ref)
	compRefsel.Set(c.regs, v)
	return nil
}

func checkReference(ref hil.RefPin, differential bool) error {
	if _, err := hil.RefPinFrom(uint32(ref)); err != nil {
		return err
	}
	if differential && !ref.External() {
		return fmt.Errorf("%w: differential mode needs an analog input, got %v", hil.ErrInvalidReference, ref)
	}
	return nil
}

func (c *Comparator) SetBoth(pin hil.Pin, ref hil.RefPin) error {
	if err := c.SetInput(pin); err != nil {
		return err
	}
	return c.SetReference(ref)
}

// Running reports whether the peripheral is enabled.
func (c *Comparator) Running() bool {
	return compEnable.Get(c.regs) == enableEnabled
}

// StartComparing configures the comparator and arms the interrupt for the
// requested edge. Arguments are checked before any register is written.
func (c *Comparator) StartComparing(pin hil.Pin, ref hil.RefPin, rising bool, mode hil.OpMode) error {
	main, err := encodeMode(mode)
	if err != nil {
		return err
	}
	if !pin.Valid() {
		return fmt.Errorf("%w: %v", hil.ErrInvalidPin, pin)
	}
	if err := checkReference(ref, mode == hil.Differential); err != nil {
		return err
	}
	if c.Running() {
		return hil.ErrBusy
	}

	c.regs.Modify(compModeMain.Val(main))
	if err := c.SetBoth(pin, ref); err != nil {
		return err
	}
	c.regs.Write(compThUp.Val(thresholdVref), compThDown.Val(thresholdVref))
	compEnable.Set(c.regs, enableEnabled)

	// stale edges from an earlier run must not fire on arming
	compEventsUp.Set(c.regs, 0)
	compEventsDown.Set(c.regs, 0)
	compEventsCross.Set(c.regs, 0)

	if rising {
		compIntensetUp.Set(c.regs, 1)
	} else {
		compIntensetDown.Set(c.regs, 1)
	}
	compTasksStart.Set(c.regs, 1)
	c.log.Debugf("comparing %v against %v (%v, rising=%v)", pin, ref, mode, rising)
	return nil
}

// Stop disarms both edge interrupts and disables the peripheral.
func (c *Comparator) Stop() {
	c.regs.Write(compIntenclrUp.Val(1), compIntenclrDown.Val(1))
	compEnable.Set(c.regs, enableDisabled)
	compTasksStop.Set(c.regs, 1)
}

func (c *Comparator) SetSpeed(s hil.SpeedMode) error {
	v, err := encodeSpeed(s)
	if err != nil {
		return err
	}
	c.regs.Modify(compModeSp.Val(v))
	return nil
}

func (c *Comparator) Speed() (hil.SpeedMode, error) {
	return decodeSpeed(compModeSp.Get(c.regs))
}

// SetHysteresis enables the 50mV hysteresis of differential mode.
func (c *Comparator) SetHysteresis(on bool) {
	var v uint32
	if on {
		v = 1
	}
	compHyst.Set(c.regs, v)
}

// Sample runs a single single-ended comparison of pin against ref and reports
// whether the input is above the reference. It fails with hil.ErrBusy while a
// comparison is running.
func (c *Comparator) Sample(pin hil.Pin, ref hil.RefPin) (bool, error) {
	if !pin.Valid() {
		return false, fmt.Errorf("%w: %v", hil.ErrInvalidPin, pin)
	}
	if err := checkReference(ref, false); err != nil {
		return false, err
	}
	if c.Running() {
		return false, hil.ErrBusy
	}

	c.regs.Modify(compModeMain.Val(0))
	if err := c.SetBoth(pin, ref); err != nil {
		return false, err
	}
	c.regs.Write(compThUp.Val(thresholdVref), compThDown.Val(thresholdVref))
	compEnable.Set(c.regs, enableEnabled)
	compTasksStart.Set(c.regs, 1)
	compTasksSample.Set(c.regs, 1)
	above := compResult.Get(c.regs) == resultAbove

	compTasksStop.Set(c.regs, 1)
	compEnable.Set(c.regs, enableDisabled)
	compEventsReady.Set(c.regs, 0)
	return above, nil
}

// HandleInterrupt is the COMP interrupt handler.
func (c *Comparator) HandleInterrupt() {
	var rising bool
	switch {
	case compIntenUp.IsSet(c.regs):
		compIntenclrUp.Set(c.regs, 1)
		compEventsUp.Set(c.regs, 0)
		rising = true
	case compIntenDown.IsSet(c.regs):
		compIntenclrDown.Set(c.regs, 1)
		compEventsDown.Set(c.regs, 0)
	default:
		c.log.Debugf("interrupt while not armed")
		return
	}

	above := compResult.Get(c.regs) == resultAbove
	if above != rising {
		c.log.Debugf("crossing reverted before RESULT was read")
		return
	}
	if c.client == nil {
		return
	}

	input, ref, err := c.selection()
	if err != nil {
		c.log.Warnf("%v", err)
		return
	}
	c.client.Event(rising, input, ref)
}

// selection decodes the programmed input and reference.
func (c *Comparator) selection() (hil.Pin, hil.RefPin, error) {
	input, err := hil.PinFrom(compPsel.Get(c.regs))
	if err != nil {
		return 0, 0, err
	}
	if compModeMain.Get(c.regs) == 1 {
		return input, hil.RefFromPin(hil.Pin(compExtrefsel.Get(c.regs))), nil
	}
	refsel := compRefsel.Get(c.regs)
	if refsel == refselARef {
		return input, hil.RefFromPin(hil.Pin(compExtrefsel.Get(c.regs))), nil
	}
	ref, err := decodeInternalRef(refsel)
	return input, ref, err
}
