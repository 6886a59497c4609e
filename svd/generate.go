package svd

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/tools/imports"

	"omibyte.io/hilcore/mmio"
)

const mmioImport = "omibyte.io/hilcore/mmio"

// Generate writes Go declarations of the fields of p to w: one variable per
// field named prefix+Register+Field, and a function returning them all in
// declaration order.
func (d *Device) Generate(w io.Writer, pkg, prefix string, p Peripheral) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated from %s %s. DO NOT EDIT.\n\n", d.Name, p.Name)
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	fmt.Fprintf(&buf, "import %q\n\n", mmioImport)

	var names []string
	buf.WriteString("var (\n")
	for _, r := range p.Expand() {
		if len(r.Fields.Elements) == 0 {
			access, err := d.access(r, nil)
			if err != nil {
				return fmt.Errorf("%s: %w", r.Name, err)
			}
			name := prefix + goName(r.Name)
			names = append(names, name)
			fmt.Fprintf(&buf, "%s = mmio.New%s[uint32](%q, %#x, 0, %d)\n",
				name, constructor(access), r.Name, uint64(r.AddressOffset), d.size(r))
			continue
		}
		for i := range r.Fields.Elements {
			f := &r.Fields.Elements[i]
			access, err := d.access(r, f)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", r.Name, f.Name, err)
			}
			offset, width := f.Position()
			fieldName := r.Name
			name := prefix + goName(r.Name)
			if f.Name != r.Name {
				fieldName = r.Name + "." + f.Name
				name += goName(f.Name)
			}
			names = append(names, name)
			fmt.Fprintf(&buf, "%s = mmio.New%s[uint32](%q, %#x, %d, %d)\n",
				name, constructor(access), fieldName, uint64(r.AddressOffset), offset, width)
		}
	}
	buf.WriteString(")\n\n")

	fmt.Fprintf(&buf, "func %sFields() []mmio.Declarer {\nreturn []mmio.Declarer{\n", prefix)
	for _, name := range names {
		fmt.Fprintf(&buf, "%s,\n", name)
	}
	buf.WriteString("}\n}\n")

	src, err := imports.Process(strings.ToLower(prefix)+"_regs.go", buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(src)
	return err
}

func constructor(a mmio.Access) string {
	switch {
	case a.CanRead() && a.CanWrite():
		return "RW"
	case a.CanWrite():
		return "WO"
	}
	return "RO"
}

// goName turns "EVENTS_UP" or "PIN_CNF[3]" into "EventsUp" or "PinCnf3".
func goName(s string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '[' || r == ']' || r == '.'
	}) {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(strings.ToLower(part[1:]))
	}
	return b.String()
}
