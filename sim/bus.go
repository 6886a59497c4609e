// Package sim provides simulated nRF52 peripherals behind an mmio.Bus so the
// drivers can run on a host.
package sim

import (
	"fmt"

	"omibyte.io/hilcore/mmio"
)

// Device is a memory mapped peripheral. Offsets are relative to the mapping
// base and always word aligned.
type Device interface {
	Load(offset uintptr) uint32
	Store(offset uintptr, value uint32)
}

// Access is one recorded bus transaction.
type Access struct {
	Store bool
	Addr  uintptr
	Value uint32
}

func (a Access) String() string {
	if a.Store {
		return fmt.Sprintf("W %#08x <- %#08x", a.Addr, a.Value)
	}
	return fmt.Sprintf("R %#08x -> %#08x", a.Addr, a.Value)
}

type mapping struct {
	base uintptr
	size uintptr
	dev  Device
}

// Bus routes word accesses to mapped devices. Addresses that no device claims
// behave as plain RAM. Every access is recorded.
type Bus struct {
	regions  mmio.Regions
	mappings []mapping
	ram      map[uintptr]uint32
	trace    []Access
}

func NewBus() *Bus {
	return &Bus{ram: map[uintptr]uint32{}}
}

// Map places dev at [base, base+size). Overlapping mappings are rejected.
func (b *Bus) Map(name string, base, size uintptr, dev Device) error {
	if err := b.regions.Claim(name, base, size); err != nil {
		return err
	}
	b.mappings = append(b.mappings, mapping{base: base, size: size, dev: dev})
	return nil
}

func (b *Bus) find(addr uintptr) (Device, uintptr) {
	for _, m := range b.mappings {
		if addr >= m.base && addr < m.base+m.size {
			return m.dev, addr - m.base
		}
	}
	return nil, 0
}

func (b *Bus) LoadUint32(addr uintptr) uint32 {
	var v uint32
	if dev, off := b.find(addr); dev != nil {
		v = dev.Load(off)
	} else {
		v = b.ram[addr]
	}
	b.trace = append(b.trace, Access{Addr: addr, Value: v})
	return v
}

func (b *Bus) StoreUint32(addr uintptr, value uint32) {
	b.trace = append(b.trace, Access{Store: true, Addr: addr, Value: value})
	if dev, off := b.find(addr); dev != nil {
		dev.Store(off, value)
		return
	}
	b.ram[addr] = value
}

// Trace returns the recorded accesses since the last reset.
func (b *Bus) Trace() []Access {
	return b.trace
}

func (b *Bus) ResetTrace() {
	b.trace = b.trace[:0]
}

// Count returns the number of loads and stores recorded inside
// [base, base+size).
func (b *Bus) Count(base, size uintptr) (loads, stores int) {
	for _, a := range b.trace {
		if a.Addr < base || a.Addr >= base+size {
			continue
		}
		if a.Store {
			stores++
		} else {
			loads++
		}
	}
	return
}
