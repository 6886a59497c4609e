package mmio

import (
	"sync/atomic"
	"unsafe"
)

// Bus performs single word accesses to physical addresses. Every call is
// exactly one bus transaction.
type Bus interface {
	LoadUint32(addr uintptr) uint32
	StoreUint32(addr uintptr, value uint32)
}

// Direct accesses real memory. It is only meaningful on a target where the
// peripheral block is mapped at its physical address.
type Direct struct{}

func (Direct) LoadUint32(addr uintptr) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(addr)))
}

func (Direct) StoreUint32(addr uintptr, value uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(addr)), value)
}
