package keymap

import "errors"

var (
	ErrUnresolvable           = errors.New("keymap: symbol is not reachable")
	ErrAllocationFailed       = errors.New("keymap: no writable keycode slot")
	ErrModifierAssignmentFull = errors.New("keymap: no free modifier slot")
	ErrModifierUnavailable    = errors.New("keymap: modifier role has no bucket")
)
