package mmio

import (
	"fmt"
	"sort"
)

type claim struct {
	name string
	base uintptr
	size uintptr
}

// Regions records which driver owns which physical address range. Board
// wiring claims every block before constructing it.
type Regions struct {
	claims []claim
}

func (r *Regions) Claim(name string, base, size uintptr) error {
	if size == 0 {
		return fmt.Errorf("claim %s: empty range", name)
	}
	end := base + size
	if end < base {
		return fmt.Errorf("claim %s: [%#x, +%#x) wraps the address space", name, base, size)
	}
	for _, c := range r.claims {
		if base < c.base+c.size && c.base < end {
			return fmt.Errorf("%w: %s [%#x, %#x) and %s [%#x, %#x)", ErrOverlap,
				name, base, end, c.name, c.base, c.base+c.size)
		}
	}
	r.claims = append(r.claims, claim{name: name, base: base, size: size})
	sort.Slice(r.claims, func(i, j int) bool {
		return r.claims[i].base < r.claims[j].base
	})
	return nil
}

// Owner reports the claim covering addr.
func (r *Regions) Owner(addr uintptr) (string, bool) {
	for _, c := range r.claims {
		if addr >= c.base && addr < c.base+c.size {
			return c.name, true
		}
	}
	return "", false
}

// Block claims the range and declares a block over it.
func (r *Regions) Block(bus Bus, name string, base, size uintptr, fields ...Declarer) (*Block, error) {
	if err := r.Claim(name, base, size); err != nil {
		return nil, err
	}
	return NewBlock(bus, name, base, size, fields...), nil
}
