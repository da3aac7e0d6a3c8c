package keymap

import (
	"fmt"

	"xkeysend/keysym"
)

// Assignment tells which bucket each modifier role lives in.
type Assignment struct {
	Alt, Meta, Super Mask
	ModeSwitch       Mask
	Level3           Mask

	// AltGr is the effective AltGr role: Mode_switch when the layout has
	// it, otherwise ISO_Level3_Shift.
	AltGr       Mask
	AltGrKeysym keysym.Keysym
	BestEffort  bool

	Warnings []string
}

// Buckets where the server's default map places each role.
const (
	bucketAlt   = 3 // Mod1
	bucketMeta  = 5 // Mod3
	bucketSuper = 6 // Mod4
)

// Derive scans every bucket and position of the modifier mapping and
// assigns a role to the first bucket holding a key whose base keysym is
// that role's keysym.
func Derive(s *Snapshot) Assignment {
	var a Assignment
	warn := func(format string, args ...any) {
		a.Warnings = append(a.Warnings, fmt.Sprintf(format, args...))
	}

	for i := 0; i < 8; i++ {
		mask := Mask(1) << i
		for _, code := range s.Bucket(i) {
			if code < s.Min || code > s.Max {
				continue
			}
			switch s.Level(code, 0) {
			case keysym.AltL, keysym.AltR:
				if a.Alt == 0 {
					a.Alt = mask
					if i != bucketAlt {
						warn("Alt is in modifier bucket %d, expected %d", i, bucketAlt)
					}
				}
			case keysym.MetaL, keysym.MetaR:
				if a.Meta == 0 {
					a.Meta = mask
					if i != bucketMeta {
						warn("Meta is in modifier bucket %d, expected %d", i, bucketMeta)
					}
				}
			case keysym.SuperL, keysym.SuperR:
				if a.Super == 0 {
					a.Super = mask
					if i != bucketSuper {
						warn("Super is in modifier bucket %d, expected %d", i, bucketSuper)
					}
				}
			case keysym.ModeSwitch:
				if a.ModeSwitch == 0 {
					a.ModeSwitch = mask
				}
			case keysym.ISOLevel3Shift:
				if a.Level3 == 0 {
					a.Level3 = mask
				}
			}
		}
	}

	if a.Level3 != 0 && a.Level3 == a.ModeSwitch {
		a.Level3 = SyntheticMask
		a.BestEffort = true
		warn("Mode_switch and ISO_Level3_Shift share one bucket, ISO_Level3_Shift levels are best effort")
	}

	switch {
	case a.ModeSwitch != 0:
		a.AltGr = a.ModeSwitch
		a.AltGrKeysym = keysym.ModeSwitch
	case a.Level3 != 0:
		a.AltGr = a.Level3
		a.AltGrKeysym = keysym.ISOLevel3Shift
		a.BestEffort = true
		warn("no Mode_switch modifier, using ISO_Level3_Shift as AltGr (best effort)")
	default:
		warn("neither Mode_switch nor ISO_Level3_Shift is a modifier, AltGr levels are unreachable")
	}
	return a
}

// Role returns the bucket of a single logical modifier. Shift, Lock and
// Control are fixed by the protocol.
func (a Assignment) Role(m Mods) Mask {
	switch m {
	case ModShift:
		return ShiftMask
	case ModLock:
		return LockMask
	case ModControl:
		return ControlMask
	case ModAlt:
		return a.Alt
	case ModMeta:
		return a.Meta
	case ModSuper:
		return a.Super
	case ModAltGr:
		return a.AltGr
	case ModLevel3:
		return a.Level3
	}
	return 0
}

// Mask translates a set of logical modifiers into state bits.
func (a Assignment) Mask(m Mods) Mask {
	var out Mask
	for _, n := range modNames {
		if m&n.mod != 0 {
			out |= a.Role(n.mod)
		}
	}
	return out
}

// Available returns the logical modifiers that have a bucket in this
// layout.
func (a Assignment) Available() Mods {
	var out Mods
	for _, n := range modNames {
		if a.Role(n.mod) != 0 {
			out |= n.mod
		}
	}
	return out
}
