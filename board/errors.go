package board

import "errors"

var (
	ErrBoardNotFound = errors.New("board not found")
	ErrInvalidBoard  = errors.New("invalid board definition")
	ErrCycle         = errors.New("component dependency cycle")
)
