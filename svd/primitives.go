package svd

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Integer is an SVD scaled non-negative integer: decimal, 0x hex or #binary.
type Integer uint64

func (h *Integer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) (err error) {
	var v string
	if err = d.DecodeElement(&v, &start); err != nil {
		return err
	}
	value, err := parseInteger(v)
	if err != nil {
		return fmt.Errorf("%s: %w", start.Name.Local, err)
	}
	*h = Integer(value)
	return nil
}

func parseInteger(v string) (uint64, error) {
	v = strings.TrimSpace(v)
	switch {
	case strings.HasPrefix(v, "0x"), strings.HasPrefix(v, "0X"):
		return strconv.ParseUint(v[2:], 16, 64)
	case strings.HasPrefix(v, "#"):
		return strconv.ParseUint(v[1:], 2, 64)
	}
	return strconv.ParseUint(v, 10, 64)
}

// BitRange is the "[msb:lsb]" form of a field position.
type BitRange struct {
	MSB uint64
	LSB uint64
}

func (b *BitRange) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var v string
	if err := d.DecodeElement(&v, &start); err != nil {
		return err
	}
	v = strings.TrimSpace(v)
	if len(v) == 0 {
		return nil
	}
	msb, lsb, ok := strings.Cut(strings.Trim(v, "[]"), ":")
	if !ok {
		return fmt.Errorf("bitRange %q", v)
	}
	var err error
	if b.MSB, err = parseInteger(msb); err != nil {
		return err
	}
	if b.LSB, err = parseInteger(lsb); err != nil {
		return err
	}
	return nil
}
