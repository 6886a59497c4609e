package mmio

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Field describes a bit field inside one 32-bit register word. Offset is the
// byte offset of the word from the start of its block.
type Field struct {
	Name   string
	Offset uintptr
	Shift  uint8
	Width  uint8
	Access Access
}

// Declarer is implemented by every typed field so blocks can collect their
// layout.
type Declarer interface {
	Descriptor() Field
}

func (f Field) Descriptor() Field {
	return f
}

// Mask returns the field bits in position.
func (f Field) Mask() uint32 {
	return uint32((uint64(1)<<f.Width)-1) << f.Shift
}

func (f Field) String() string {
	return fmt.Sprintf("%s@%#03x[%d:%d](%s)", f.Name, f.Offset, int(f.Shift)+int(f.Width)-1, f.Shift, f.Access)
}

func (f Field) validate(size uintptr) error {
	switch {
	case f.Width == 0:
		return fmt.Errorf("field %s has zero width", f.Name)
	case int(f.Shift)+int(f.Width) > 32:
		return fmt.Errorf("field %s spans past bit 31", f.Name)
	case f.Offset%4 != 0:
		return fmt.Errorf("field %s offset %#x is not word aligned", f.Name, f.Offset)
	case f.Offset+4 > size:
		return fmt.Errorf("field %s offset %#x is outside the %#x byte block", f.Name, f.Offset, size)
	case f.Access != ReadOnly && f.Access != WriteOnly && f.Access != ReadWrite:
		return fmt.Errorf("field %s has no access mode", f.Name)
	}
	return nil
}

func (f Field) extract(word uint32) uint32 {
	return (word & f.Mask()) >> f.Shift
}

// Values wider than the field are masked to the field width.
func (f Field) place(v uint32) uint32 {
	return (v << f.Shift) & f.Mask()
}

// Value is a field together with the bits to put into it. Values are combined
// by Block.Write and Block.Modify.
type Value struct {
	field Field
	bits  uint32
}

func (v Value) Field() Field {
	return v.field
}

// Bits returns the value in position within the word.
func (v Value) Bits() uint32 {
	return v.bits
}

// RO is a read-only field.
type RO[T constraints.Unsigned] struct{ Field }

// WO is a write-only field, for example a task trigger.
type WO[T constraints.Unsigned] struct{ Field }

// RW is a read-write field.
type RW[T constraints.Unsigned] struct{ Field }

func NewRO[T constraints.Unsigned](name string, offset uintptr, shift, width uint8) RO[T] {
	return RO[T]{Field{Name: name, Offset: offset, Shift: shift, Width: width, Access: ReadOnly}}
}

func NewWO[T constraints.Unsigned](name string, offset uintptr, shift, width uint8) WO[T] {
	return WO[T]{Field{Name: name, Offset: offset, Shift: shift, Width: width, Access: WriteOnly}}
}

func NewRW[T constraints.Unsigned](name string, offset uintptr, shift, width uint8) RW[T] {
	return RW[T]{Field{Name: name, Offset: offset, Shift: shift, Width: width, Access: ReadWrite}}
}

func (f RO[T]) Get(b *Block) T {
	return T(f.extract(b.load(f.Offset)))
}

func (f RO[T]) IsSet(b *Block) bool {
	return b.load(f.Offset)&f.Mask() != 0
}

// Set stores the whole word with only this field populated.
func (f WO[T]) Set(b *Block, v T) {
	b.store(f.Offset, f.place(uint32(v)))
}

func (f WO[T]) Val(v T) Value {
	return Value{field: f.Field, bits: f.place(uint32(v))}
}

func (f RW[T]) Get(b *Block) T {
	return T(f.extract(b.load(f.Offset)))
}

func (f RW[T]) IsSet(b *Block) bool {
	return b.load(f.Offset)&f.Mask() != 0
}

// Set stores the whole word with only this field populated. Use Block.Modify
// to keep the other bits of the word.
func (f RW[T]) Set(b *Block, v T) {
	b.store(f.Offset, f.place(uint32(v)))
}

func (f RW[T]) Val(v T) Value {
	return Value{field: f.Field, bits: f.place(uint32(v))}
}
