// Package keysym names X keysyms and maps typed characters onto them.
package keysym

import (
	"fmt"
	"strconv"
	"strings"
)

// Keysym is an abstract symbol a key can produce (X11 KeySym).
type Keysym uint32

const (
	// NoSymbol marks an empty level in a keycode row.
	NoSymbol Keysym = 0
	// VoidSymbol is the X "no symbol at all" value, never typed.
	VoidSymbol Keysym = 0xffffff

	// Direct Unicode keysyms are 0x01000000 + code point.
	unicodeOffset Keysym = 0x01000000
)

// IsSpecial reports whether k belongs to the reserved high range holding
// function, cursor and modifier keys (0xff00..0xffff) or vendor keysyms.
// A keycode whose base level is special is never edited by the allocator.
func (k Keysym) IsSpecial() bool {
	return (0xff00 <= k && k < 0x10000) || k >= 0x1008f000
}

// PrefersBaseLevel reports whether a newly allocated slot for k should be
// tried in the unshifted position first (function keys, Unicode keysyms).
func (k Keysym) PrefersBaseLevel() bool {
	return k >= 0xf000
}

// IsLatinLetter reports whether k is one of A-Z or a-z.
func (k Keysym) IsLatinLetter() bool {
	return ('A' <= k && k <= 'Z') || ('a' <= k && k <= 'z')
}

// Lower returns the lowercase Latin letter for k, or k itself.
func (k Keysym) Lower() Keysym {
	if 'A' <= k && k <= 'Z' {
		return k - 'A' + 'a'
	}
	return k
}

// Upper returns the uppercase Latin letter for k, or k itself.
func (k Keysym) Upper() Keysym {
	if 'a' <= k && k <= 'z' {
		return k - 'a' + 'A'
	}
	return k
}

// String returns the keysym name, falling back to U+XXXX or hex.
func (k Keysym) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	if k > unicodeOffset && k <= unicodeOffset+0x10ffff {
		return fmt.Sprintf("U%04X", uint32(k-unicodeOffset))
	}
	return fmt.Sprintf("0x%x", uint32(k))
}

// Lookup resolves a keysym name the way XStringToKeysym does: table
// names first, then "U1234" Unicode forms. It returns NoSymbol if the
// name is unknown.
func Lookup(name string) Keysym {
	if k, ok := values[name]; ok {
		return k
	}
	if len(name) > 1 && (name[0] == 'U' || name[0] == 'u') {
		if cp, err := strconv.ParseUint(name[1:], 16, 32); err == nil && cp <= 0x10ffff {
			return FromRune(rune(cp))
		}
	}
	return NoSymbol
}

// Parse accepts a keysym name or a raw "0x..." value.
func Parse(name string) (Keysym, error) {
	if strings.HasPrefix(name, "0x") || strings.HasPrefix(name, "0X") {
		v, err := strconv.ParseUint(name[2:], 16, 32)
		if err != nil {
			return NoSymbol, fmt.Errorf("keysym: bad value %q: %w", name, err)
		}
		return Keysym(v), nil
	}
	if k := Lookup(name); k != NoSymbol {
		return k, nil
	}
	return NoSymbol, fmt.Errorf("keysym: no such keysym: %s", name)
}

// FromRune maps a typed character to the keysym producing it.
// Latin-1 characters are their own keysyms, control characters map onto
// the TTY function keys, everything else uses the direct Unicode range.
func FromRune(r rune) Keysym {
	switch r {
	case '\b':
		return BackSpace
	case '\t':
		return Tab
	case '\n':
		return Return
	case '\r':
		return Return
	case 0x1b:
		return Escape
	case 0x7f:
		return Delete
	}
	if (0x20 <= r && r <= 0x7e) || (0xa0 <= r && r <= 0xff) {
		return Keysym(r)
	}
	if k, ok := runeKeysyms[r]; ok {
		return k
	}
	if r < 0 || r > 0x10ffff {
		return NoSymbol
	}
	return unicodeOffset + Keysym(r)
}

// Rune returns the printable character for k, or -1.
func (k Keysym) Rune() rune {
	if (0x20 <= k && k <= 0x7e) || (0xa0 <= k && k <= 0xff) {
		return rune(k)
	}
	if k > unicodeOffset && k <= unicodeOffset+0x10ffff {
		return rune(k - unicodeOffset)
	}
	for r, sym := range runeKeysyms {
		if sym == k {
			return r
		}
	}
	return -1
}

// IsKeypad reports whether k is one of the KP_* keysyms.
func (k Keysym) IsKeypad() bool {
	return KPFirst <= k && k <= KPLast
}
