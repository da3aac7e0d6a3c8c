// Package keymap keeps a cached view of the display's keyboard mapping,
// derives which modifier buckets carry Alt, Meta, Super and AltGr, edits
// spare keycodes to hold symbols the layout lacks and resolves a keysym
// into the keycode and modifiers producing it.
package keymap

import (
	"xkeysend/keysym"
)

// Keycode is a physical key position as the display server numbers it.
type Keycode uint8

// Session is the part of a display connection the keymap reads and edits.
type Session interface {
	KeycodeRange() (min, max Keycode)
	// KeyboardMapping returns count rows of perKeycode keysyms each,
	// starting at first.
	KeyboardMapping(first Keycode, count int) (perKeycode int, syms []keysym.Keysym, err error)
	ChangeKeyboardMapping(first Keycode, perKeycode int, syms []keysym.Keysym) error
	// ModifierMapping returns 8 buckets of perModifier keycodes each;
	// zero entries are empty.
	ModifierMapping() (perModifier int, codes []Keycode, err error)
	SetModifierMapping(perModifier int, codes []Keycode) error
}
