package keymap

import "strings"

// Mods is a set of logical modifier roles. The physical bucket behind
// each role comes from the Assignment of the current layout.
type Mods uint16

const (
	ModShift Mods = 1 << iota
	ModLock
	ModControl
	ModAlt
	ModMeta
	ModSuper
	ModAltGr
	ModLevel3
	ModNumLock
)

var modNames = []struct {
	mod  Mods
	name string
}{
	{ModShift, "Shift"},
	{ModLock, "Lock"},
	{ModControl, "Control"},
	{ModAlt, "Alt"},
	{ModMeta, "Meta"},
	{ModSuper, "Super"},
	{ModAltGr, "AltGr"},
	{ModLevel3, "Level3"},
	{ModNumLock, "NumLock"},
}

// Has reports whether all of m2 are set in m.
func (m Mods) Has(m2 Mods) bool { return m&m2 == m2 }

// With returns m plus m2.
func (m Mods) With(m2 Mods) Mods { return m | m2 }

// Without returns m minus m2.
func (m Mods) Without(m2 Mods) Mods { return m &^ m2 }

func (m Mods) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, n := range modNames {
		if m&n.mod != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "+")
}

// Mask is a core-protocol modifier state (Shift=1 ... Mod5=0x80).
type Mask uint16

const (
	ShiftMask   Mask = 1 << 0
	LockMask    Mask = 1 << 1
	ControlMask Mask = 1 << 2
	Mod1Mask    Mask = 1 << 3
	Mod2Mask    Mask = 1 << 4
	Mod3Mask    Mask = 1 << 5
	Mod4Mask    Mask = 1 << 6
	Mod5Mask    Mask = 1 << 7

	// SyntheticMask stands in for a role that shares its bucket with
	// another one. It never reaches the wire as a state bit.
	SyntheticMask Mask = 0x2000
)

// Wire drops bits the core protocol does not know.
func (m Mask) Wire() uint16 { return uint16(m & 0xff) }
