// Package comparator exposes the analog comparator to processes.
//
// Commands:
//
//	0: number of analog input channels
//	1: sample channel arg1 against reference arg2, returns 1 when above
//	2: start comparing channel arg1; arg2 holds the reference in bits 0-7,
//	   the edge (1 = rising) in bit 8 and the mode (1 = differential) in bit 9
//	3: stop comparing; EBUSY while another process owns the comparison
//
// Subscribe 0 installs the upcall for crossings, called with
// (rising, input, reference). A comparison is one-shot: after its event the
// comparator is stopped again.
package comparator

import (
	"fmt"

	"omibyte.io/hilcore/hil"
	"omibyte.io/hilcore/kernel"
	"omibyte.io/hilcore/trust"
)

const DriverNum uint32 = 0x00007

const (
	cmdChannels = 0
	cmdSample   = 1
	cmdStart    = 2
	cmdStop     = 3
)

// Comparator is what the driver needs from the hardware.
type Comparator interface {
	hil.AnalogComparator
	Sample(pin hil.Pin, ref hil.RefPin) (bool, error)
}

type Driver struct {
	comp      Comparator
	callbacks map[kernel.AppID]*kernel.Callback
	owner     kernel.AppID
	active    bool
	log       *trust.Logger
}

var (
	_ kernel.Driver        = (*Driver)(nil)
	_ hil.ComparatorClient = (*Driver)(nil)
)

// New creates the driver and installs it as the comparator's client.
func New(comp Comparator, log *trust.Logger) *Driver {
	if log == nil {
		log = trust.Discard()
	}
	d := &Driver{comp: comp, callbacks: map[kernel.AppID]*kernel.Callback{}, log: log}
	comp.SetClient(d)
	return d
}

// Request is the decoded argument word of the start command.
type Request struct {
	Ref    hil.RefPin
	Rising bool
	Mode   hil.OpMode
}

// Encode packs r into the argument word of the start command.
func (r Request) Encode() uint32 {
	v := uint32(r.Ref) & 0xff
	if r.Rising {
		v |= 1 << 8
	}
	return v | uint32(r.Mode)<<9
}

func DecodeRequest(arg uint32) (Request, error) {
	ref, err := hil.RefPinFrom(arg & 0xff)
	if err != nil {
		return Request{}, err
	}
	mode, err := hil.OpModeFrom(arg >> 9)
	if err != nil {
		return Request{}, err
	}
	return Request{Ref: ref, Rising: arg&(1<<8) != 0, Mode: mode}, nil
}

func (d *Driver) Command(cmd, arg1, arg2 uint32, app kernel.AppID) kernel.Result {
	switch cmd {
	case cmdChannels:
		return kernel.SuccessWithValue(hil.NumPins)
	case cmdSample:
		return d.sample(arg1, arg2)
	case cmdStart:
		return d.start(arg1, arg2, app)
	case cmdStop:
		if d.active && app != d.owner {
			return kernel.Failure(kernel.EBUSY)
		}
		d.comp.Stop()
		d.active = false
		return kernel.Success()
	}
	return kernel.Failure(kernel.ENOSUPPORT)
}

func (d *Driver) sample(channel, reference uint32) kernel.Result {
	pin, err := hil.PinFrom(channel)
	if err != nil {
		return kernel.ResultFromError(err)
	}
	ref, err := hil.RefPinFrom(reference)
	if err != nil {
		return kernel.ResultFromError(err)
	}
	above, err := d.comp.Sample(pin, ref)
	if err != nil {
		return kernel.ResultFromError(err)
	}
	if above {
		return kernel.SuccessWithValue(1)
	}
	return kernel.SuccessWithValue(0)
}

func (d *Driver) start(channel, arg uint32, app kernel.AppID) kernel.Result {
	pin, err := hil.PinFrom(channel)
	if err != nil {
		return kernel.ResultFromError(err)
	}
	req, err := DecodeRequest(arg)
	if err != nil {
		return kernel.ResultFromError(err)
	}
	if err := d.comp.StartComparing(pin, req.Ref, req.Rising, req.Mode); err != nil {
		return kernel.ResultFromError(fmt.Errorf("start %v: %w", pin, err))
	}
	d.owner = app
	d.active = true
	return kernel.Success()
}

func (d *Driver) Subscribe(num uint32, cb *kernel.Callback, app kernel.AppID) kernel.Result {
	if num != 0 {
		return kernel.Failure(kernel.ENOSUPPORT)
	}
	if cb == nil {
		delete(d.callbacks, app)
	} else {
		d.callbacks[app] = cb
	}
	return kernel.Success()
}

func (d *Driver) Allow(kernel.AppID, uint32, []byte) kernel.Result {
	return kernel.Failure(kernel.ENOSUPPORT)
}

// Event forwards a crossing to the process that started the comparison.
func (d *Driver) Event(rising bool, input hil.Pin, ref hil.RefPin) {
	if !d.active {
		return
	}
	d.active = false
	d.comp.Stop()

	cb, ok := d.callbacks[d.owner]
	if !ok {
		d.log.Debugf("crossing on %v for app %d without upcall", input, d.owner)
		return
	}
	var edge uint32
	if rising {
		edge = 1
	}
	if !cb.Schedule(edge, uint32(input), uint32(ref)) {
		d.log.Warnf("upcall queue of app %d full, crossing dropped", d.owner)
	}
}
