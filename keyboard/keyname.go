package keyboard

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"xkeysend/keymap"
	"xkeysend/keysym"
)

// NameKind tells what activating a key name does.
type NameKind int

const (
	// Literal types Sym with Mods added to the shift state.
	Literal NameKind = iota
	// Modifier toggles Mod in the shift state.
	Modifier
	// NumLock toggles the keypad number state.
	NumLock
	// Focus selects or clears the focus target.
	Focus
)

// KeyName is a parsed key name.
type KeyName struct {
	Kind NameKind
	Mod  keymap.Mods
	Sym  keysym.Keysym
	Mods keymap.Mods
}

var prefixMods = map[byte]keymap.Mods{
	's': keymap.ModShift,
	'c': keymap.ModControl,
	'a': keymap.ModAlt,
	'm': keymap.ModMeta,
	'w': keymap.ModSuper,
}

// ParseKeyName classifies name. Alt, Meta and Super names toggle a
// modifier only when avail has that role; otherwise they are sent as
// ordinary keys.
func ParseKeyName(name string, avail keymap.Mods) (KeyName, error) {
	switch {
	case name == "":
		return KeyName{}, fmt.Errorf("%w: empty key name", keymap.ErrUnresolvable)
	case name == "Focus":
		return KeyName{Kind: Focus}, nil
	case name == "Num_Lock":
		return KeyName{Kind: NumLock}, nil
	case name == "Caps_Lock", name == "Shift_Lock":
		return KeyName{Kind: Modifier, Mod: keymap.ModLock}, nil
	case name == "Mode_switch":
		return KeyName{Kind: Modifier, Mod: keymap.ModAltGr}, nil
	case name == "Shift", name == "Shift_L", name == "Shift_R":
		return KeyName{Kind: Modifier, Mod: keymap.ModShift}, nil
	case strings.HasPrefix(name, "Control"):
		return KeyName{Kind: Modifier, Mod: keymap.ModControl}, nil
	case strings.HasPrefix(name, "Alt") && avail.Has(keymap.ModAlt):
		return KeyName{Kind: Modifier, Mod: keymap.ModAlt}, nil
	case strings.HasPrefix(name, "Meta") && avail.Has(keymap.ModMeta):
		return KeyName{Kind: Modifier, Mod: keymap.ModMeta}, nil
	case strings.HasPrefix(name, "Super") && avail.Has(keymap.ModSuper):
		return KeyName{Kind: Modifier, Mod: keymap.ModSuper}, nil
	}

	if r, size := utf8.DecodeRuneInString(name); size == len(name) && r != utf8.RuneError {
		return KeyName{Kind: Literal, Sym: keysym.FromRune(r)}, nil
	}

	kn := KeyName{Kind: Literal}
	rest := name
	for len(rest) > 2 && rest[1] == ':' && 'a' <= rest[0] && rest[0] <= 'z' {
		m, ok := prefixMods[rest[0]]
		if !ok {
			return KeyName{}, fmt.Errorf("%w: unknown modifier prefix %q in %s", keymap.ErrUnresolvable, rest[:2], name)
		}
		kn.Mods |= m
		rest = rest[2:]
	}
	sym, err := keysym.Parse(rest)
	if err != nil {
		return KeyName{}, fmt.Errorf("%w: %w", keymap.ErrUnresolvable, err)
	}
	kn.Sym = sym
	return kn, nil
}

// substitutes maps keypad keysyms onto the main block and sided
// modifiers onto the other side.
var substitutes = map[keysym.Keysym]keysym.Keysym{
	keysym.ShiftL:   keysym.ShiftR,
	keysym.ShiftR:   keysym.ShiftL,
	keysym.ControlL: keysym.ControlR,
	keysym.ControlR: keysym.ControlL,
	keysym.AltL:     keysym.AltR,
	keysym.AltR:     keysym.AltL,
	keysym.MetaL:    keysym.MetaR,
	keysym.MetaR:    keysym.MetaL,
	keysym.SuperL:   keysym.SuperR,
	keysym.SuperR:   keysym.SuperL,
}

func init() {
	for from, to := range map[string]string{
		"KP_Equal":    "equal",
		"KP_Divide":   "slash",
		"KP_Multiply": "asterisk",
		"KP_Add":      "plus",
		"KP_Subtract": "minus",
		"KP_Enter":    "Return",
	} {
		substitutes[keysym.Lookup(from)] = keysym.Lookup(to)
	}
	for d := '0'; d <= '9'; d++ {
		substitutes[keysym.Lookup("KP_"+string(d))] = keysym.Keysym(d)
	}
}

// Substitute returns the replacement keysym for sym, if it has one.
func Substitute(sym keysym.Keysym) (keysym.Keysym, bool) {
	s, ok := substitutes[sym]
	return s, ok
}
