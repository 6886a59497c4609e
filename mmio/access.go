package mmio

import (
	"fmt"
	"strings"
)

// Access is the access mode of a register field.
type Access uint8

const (
	ReadOnly  Access = 1 << 0
	WriteOnly Access = 1 << 1
	ReadWrite        = ReadOnly | WriteOnly
)

func (a Access) CanRead() bool {
	return a&ReadOnly != 0
}

func (a Access) CanWrite() bool {
	return a&WriteOnly != 0
}

func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "r"
	case WriteOnly:
		return "w"
	case ReadWrite:
		return "rw"
	}
	return fmt.Sprintf("Access(%d)", uint8(a))
}

// ParseAccess accepts the short forms ("r", "w", "rw") as well as the CMSIS-SVD
// spellings ("read-only", "write-only", "read-write", "writeOnce", ...).
func ParseAccess(s string) (Access, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "read-only":
		return ReadOnly, nil
	case "w", "write-only", "writeonce":
		return WriteOnly, nil
	case "rw", "read-write", "read-writeonce":
		return ReadWrite, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAccess, s)
}
