package mmio

import (
	"errors"
	"fmt"
)

// Block is a typed view of a peripheral's register block. The layout is
// checked once by NewBlock; field accesses are not checked again.
type Block struct {
	bus    Bus
	name   string
	base   uintptr
	size   uintptr
	fields []Field
}

// Layout is the declared register map of a block.
type Layout struct {
	Name   string
	Base   uintptr
	Size   uintptr
	Fields []Field
}

// NewBlock declares a register block of size bytes at base. A misdeclared
// layout is a programming error and panics.
func NewBlock(bus Bus, name string, base, size uintptr, fields ...Declarer) *Block {
	if bus == nil {
		panic("mmio: nil bus for block " + name)
	}
	if base%4 != 0 || size == 0 || size%4 != 0 {
		panic(fmt.Sprintf("mmio: block %s at %#x with size %#x is not word aligned", name, base, size))
	}
	if base+size < base {
		panic(fmt.Sprintf("mmio: block %s wraps the address space", name))
	}

	b := &Block{bus: bus, name: name, base: base, size: size}
	var errs []error
	for _, d := range fields {
		f := d.Descriptor()
		if err := f.validate(size); err != nil {
			errs = append(errs, err)
			continue
		}
		b.fields = append(b.fields, f)
	}
	if err := errors.Join(errs...); err != nil {
		panic(fmt.Sprintf("mmio: block %s: %v", name, err))
	}
	return b
}

func (b *Block) Name() string {
	return b.name
}

func (b *Block) Base() uintptr {
	return b.base
}

func (b *Block) Size() uintptr {
	return b.size
}

func (b *Block) Layout() Layout {
	fields := make([]Field, len(b.fields))
	copy(fields, b.fields)
	return Layout{Name: b.name, Base: b.base, Size: b.size, Fields: fields}
}

func (b *Block) load(offset uintptr) uint32 {
	return b.bus.LoadUint32(b.base + offset)
}

func (b *Block) store(offset uintptr, value uint32) {
	b.bus.StoreUint32(b.base+offset, value)
}

// Write stores one word built from vals. Bits not covered by vals are zero.
func (b *Block) Write(vals ...Value) {
	if len(vals) == 0 {
		return
	}
	offset, word := combine(vals)
	b.store(offset, word)
}

// Modify updates the fields named by vals with a single read and a single
// write of their word, keeping every other bit.
func (b *Block) Modify(vals ...Value) {
	if len(vals) == 0 {
		return
	}
	offset, word := combine(vals)
	var mask uint32
	for _, v := range vals {
		mask |= v.field.Mask()
	}
	cur := b.load(offset)
	b.store(offset, (cur&^mask)|word)
}

// All values must target the same word; a field can only appear once.
func combine(vals []Value) (uintptr, uint32) {
	offset := vals[0].field.Offset
	var word, seen uint32
	for _, v := range vals {
		if v.field.Offset != offset {
			panic(fmt.Sprintf("mmio: fields %s and %s live in different words", vals[0].field.Name, v.field.Name))
		}
		if seen&v.field.Mask() != 0 {
			panic("mmio: overlapping fields in one access: " + v.field.Name)
		}
		seen |= v.field.Mask()
		word |= v.bits
	}
	return offset, word
}
