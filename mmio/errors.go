package mmio

import "errors"

var (
	ErrOverlap       = errors.New("register range overlaps an existing claim")
	ErrUnknownAccess = errors.New("unknown access mode")
)
