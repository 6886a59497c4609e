package svd

import (
	"fmt"
	"strings"

	"omibyte.io/hilcore/mmio"
)

type Device struct {
	Name          string      `xml:"name"`
	Description   string      `xml:"description"`
	Series        string      `xml:"series"`
	Version       string      `xml:"version"`
	Vendor        string      `xml:"vendor"`
	CPU           CPU         `xml:"cpu"`
	BitWidth      Integer     `xml:"width"`
	RegisterSize  Integer     `xml:"size"`
	DefaultAccess string      `xml:"access"`
	Peripherals   Peripherals `xml:"peripherals"`
}

type CPU struct {
	Name             string  `xml:"name"`
	Revision         string  `xml:"revision"`
	Endian           string  `xml:"endian"`
	MPUPresent       string  `xml:"mpuPresent"`
	FPUPresent       string  `xml:"fpuPresent"`
	NVICPriorityBits Integer `xml:"nvicPrioBits"`
}

type Peripherals struct {
	Elements []Peripheral `xml:"peripheral"`
}

type Peripheral struct {
	Name         string       `xml:"name"`
	Description  string       `xml:"description"`
	Group        string       `xml:"groupName"`
	BaseAddress  Integer      `xml:"baseAddress"`
	AddressBlock AddressBlock `xml:"addressBlock"`
	Interrupts   []Interrupt  `xml:"interrupt"`
	Registers    Registers    `xml:"registers"`
	DerivedFrom  string       `xml:"derivedFrom,attr"`
}

type AddressBlock struct {
	Offset Integer `xml:"offset"`
	Size   Integer `xml:"size"`
}

type Interrupt struct {
	Name        string  `xml:"name"`
	Description string  `xml:"description"`
	Value       Integer `xml:"value"`
}

type Registers struct {
	Elements []Register `xml:"register"`
}

type Register struct {
	Name          string  `xml:"name"`
	Description   string  `xml:"description"`
	AddressOffset Integer `xml:"addressOffset"`
	Size          Integer `xml:"size"`
	Access        string  `xml:"access"`
	Count         Integer `xml:"dim"`
	Increment     Integer `xml:"dimIncrement"`
	Fields        Fields  `xml:"fields"`
}

type Fields struct {
	Elements []Field `xml:"field"`
}

type Field struct {
	Name        string   `xml:"name"`
	Description string   `xml:"description"`
	BitOffset   *Integer `xml:"bitOffset"`
	BitWidth    *Integer `xml:"bitWidth"`
	LSB         *Integer `xml:"lsb"`
	MSB         *Integer `xml:"msb"`
	BitRange    BitRange `xml:"bitRange"`
	Access      string   `xml:"access"`
}

// Position returns the bit offset and width whichever way the field
// declares them.
func (f Field) Position() (offset, width uint64) {
	switch {
	case f.BitOffset != nil:
		offset, width = uint64(*f.BitOffset), 1
		if f.BitWidth != nil {
			width = uint64(*f.BitWidth)
		}
	case f.LSB != nil && f.MSB != nil:
		offset, width = uint64(*f.LSB), uint64(*f.MSB-*f.LSB)+1
	default:
		offset, width = f.BitRange.LSB, f.BitRange.MSB-f.BitRange.LSB+1
	}
	return
}

// Find returns the named peripheral with derivedFrom resolved.
func (d *Device) Find(name string) (Peripheral, error) {
	for _, p := range d.Peripherals.Elements {
		if !strings.EqualFold(p.Name, name) {
			continue
		}
		if len(p.DerivedFrom) > 0 && len(p.Registers.Elements) == 0 {
			base, err := d.Find(p.DerivedFrom)
			if err != nil {
				return Peripheral{}, fmt.Errorf("%s derived from %s: %w", p.Name, p.DerivedFrom, err)
			}
			p.Registers = base.Registers
		}
		return p, nil
	}
	return Peripheral{}, fmt.Errorf("%w: %s", ErrNoPeripheral, name)
}

// Expand returns the registers of p with dim arrays unrolled, the element
// name index filled in.
func (p Peripheral) Expand() []Register {
	var regs []Register
	for _, r := range p.Registers.Elements {
		if r.Count == 0 {
			regs = append(regs, r)
			continue
		}
		for i := Integer(0); i < r.Count; i++ {
			e := r
			e.Name = strings.Replace(r.Name, "%s", fmt.Sprint(i), 1)
			e.AddressOffset = r.AddressOffset + i*r.Increment
			e.Count = 0
			regs = append(regs, e)
		}
	}
	return regs
}

// access resolves the effective access mode of a field.
func (d *Device) access(r Register, f *Field) (mmio.Access, error) {
	s := d.DefaultAccess
	if len(r.Access) > 0 {
		s = r.Access
	}
	if f != nil && len(f.Access) > 0 {
		s = f.Access
	}
	if len(s) == 0 {
		return mmio.ReadWrite, nil
	}
	return mmio.ParseAccess(s)
}

func (d *Device) size(r Register) uint64 {
	switch {
	case r.Size != 0:
		return uint64(r.Size)
	case d.RegisterSize != 0:
		return uint64(d.RegisterSize)
	}
	return 32
}
