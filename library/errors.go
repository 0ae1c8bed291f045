package library

import (
	"errors"
)

// Error kinds returned by all core operations. Callers classify with
// errors.Is; wrapped context carries the specifics.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrIllegalState    = errors.New("illegal state")
	ErrConflict        = errors.New("conflict")
	ErrCorruptData     = errors.New("corrupt data")
)
