package svd

import "errors"

var (
	ErrNoPeripheral = errors.New("peripheral not in device description")
)
