package svd

import (
	"fmt"
	"strings"

	"omibyte.io/hilcore/mmio"
)

// Mismatch is one difference between a declared field and the device
// description.
type Mismatch struct {
	Field   string
	Problem string
}

func (m Mismatch) String() string {
	return m.Field + ": " + m.Problem
}

// Verify compares every field of layout with peripheral p. Field names are
// "REGISTER.FIELD"; a bare "REGISTER" names the field of the same name or,
// when there is none, the whole register.
func (d *Device) Verify(layout mmio.Layout, p Peripheral) []Mismatch {
	var out []Mismatch
	report := func(f mmio.Field, format string, args ...interface{}) {
		out = append(out, Mismatch{Field: f.Name, Problem: fmt.Sprintf(format, args...)})
	}

	if uint64(p.BaseAddress) != uint64(layout.Base) {
		out = append(out, Mismatch{
			Field:   layout.Name,
			Problem: fmt.Sprintf("base %#x, device has %#x", layout.Base, uint64(p.BaseAddress)),
		})
	}

	regs := map[string]Register{}
	for _, r := range p.Expand() {
		regs[r.Name] = r
	}

	for _, f := range layout.Fields {
		regName, fieldName, dotted := strings.Cut(f.Name, ".")
		r, ok := regs[regName]
		if !ok {
			report(f, "register %s not in %s", regName, p.Name)
			continue
		}
		if uint64(r.AddressOffset) != uint64(f.Offset) {
			report(f, "offset %#x, device has %#x", f.Offset, uint64(r.AddressOffset))
		}
		if !dotted {
			fieldName = regName
		}

		var svdField *Field
		for i := range r.Fields.Elements {
			if r.Fields.Elements[i].Name == fieldName {
				svdField = &r.Fields.Elements[i]
				break
			}
		}

		var offset, width uint64
		switch {
		case svdField != nil:
			offset, width = svdField.Position()
		case !dotted:
			offset, width = 0, d.size(r)
		default:
			report(f, "field %s not in register %s", fieldName, regName)
			continue
		}
		if offset != uint64(f.Shift) || width != uint64(f.Width) {
			report(f, "bits [%d+%d], device has [%d+%d]", f.Shift, f.Width, offset, width)
		}

		access, err := d.access(r, svdField)
		if err != nil {
			report(f, "%v", err)
			continue
		}
		if access != f.Access {
			report(f, "access %s, device has %s", f.Access, access)
		}
	}
	return out
}
