package hil

import "errors"

var (
	ErrBusy             = errors.New("peripheral busy")
	ErrInvalidPin       = errors.New("invalid pin")
	ErrInvalidReference = errors.New("invalid reference")
	ErrInvalidMode      = errors.New("invalid mode")
)
