// Package kernel implements the system call entry points through which
// processes reach drivers.
package kernel

import (
	"omibyte.io/hilcore/trust"
)

type Config struct {
	TraceSyscalls bool `yaml:"trace_syscalls"`
}

// Interrupts is serviced by the kernel between system calls.
type Interrupts interface {
	ServicePendingInterrupts() int
	HasPendingInterrupts() bool
}

// Kernel dispatches system calls to the platform's drivers. All calls must be
// made from the single kernel goroutine.
type Kernel struct {
	platform Platform
	chip     Interrupts
	config   Config
	procs    []*Process
	log      *trust.Logger
}

// New creates a kernel. chip may be nil when there is no interrupt source.
func New(platform Platform, chip Interrupts, config Config, log *trust.Logger) *Kernel {
	if log == nil {
		log = trust.Discard()
	}
	return &Kernel{platform: platform, chip: chip, config: config, log: log}
}

func (k *Kernel) Config() Config {
	return k.config
}

// CreateProcess registers a process with the next free id.
func (k *Kernel) CreateProcess(name string) *Process {
	p := &Process{id: AppID(len(k.procs)), name: name}
	k.procs = append(k.procs, p)
	return p
}

func (k *Kernel) Processes() []*Process {
	return k.procs
}

// ServiceInterrupts runs pending interrupt handlers.
func (k *Kernel) ServiceInterrupts() int {
	if k.chip == nil {
		return 0
	}
	return k.chip.ServicePendingInterrupts()
}

func (k *Kernel) Command(p *Process, driver, cmd, arg1, arg2 uint32) Result {
	k.ServiceInterrupts()
	var res Result
	if d, ok := k.platform.WithDriver(driver); ok {
		res = d.Command(cmd, arg1, arg2, p.id)
	} else {
		res = Failure(ENODEVICE)
	}
	if k.config.TraceSyscalls {
		k.log.Infof("[%d] cmd(%#x, %d, %#x, %#x) = %#x", p.id, driver, cmd, arg1, arg2, uint32(res.Word()))
	}
	return res
}

// Subscribe installs fn as the upcall for (driver, num). Upcalls still queued
// for the previous subscription are removed. A nil fn unsubscribes.
func (k *Kernel) Subscribe(p *Process, driver, num uint32, fn Upcall) Result {
	k.ServiceInterrupts()
	id := CallbackID{Driver: driver, Subscribe: num}
	p.removePending(id)

	var cb *Callback
	if fn != nil {
		cb = &Callback{id: id, proc: p, fn: fn}
	}
	var res Result
	if d, ok := k.platform.WithDriver(driver); ok {
		res = d.Subscribe(num, cb, p.id)
	} else {
		res = Failure(ENODEVICE)
	}
	if k.config.TraceSyscalls {
		k.log.Infof("[%d] subscribe(%#x, %d, %t) = %#x", p.id, driver, num, fn != nil, uint32(res.Word()))
	}
	return res
}

func (k *Kernel) Allow(p *Process, driver, num uint32, buf []byte) Result {
	k.ServiceInterrupts()
	var res Result
	if d, ok := k.platform.WithDriver(driver); ok {
		res = d.Allow(p.id, num, buf)
	} else {
		res = Failure(ENODEVICE)
	}
	if k.config.TraceSyscalls {
		k.log.Infof("[%d] allow(%#x, %d, %#x) = %#x", p.id, driver, num, len(buf), uint32(res.Word()))
	}
	return res
}

// Yield services interrupts and delivers one queued upcall to p. It reports
// whether an upcall ran.
func (k *Kernel) Yield(p *Process) bool {
	k.ServiceInterrupts()
	t, ok := p.dequeue()
	if !ok {
		return false
	}
	if k.config.TraceSyscalls {
		k.log.Infof("[%d] upcall(%#x, %d)(%#x, %#x, %#x)", p.id, t.id.Driver, t.id.Subscribe, t.args[0], t.args[1], t.args[2])
	}
	t.fn(t.args[0], t.args[1], t.args[2])
	return true
}
