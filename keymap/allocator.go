package keymap

import (
	"fmt"

	"xkeysend/keysym"
)

type slot struct {
	code  Keycode
	level int
}

// freeSlot looks for an empty level, scanning keycodes from the highest
// down and levels from the highest allowed down. With unusedOnly only
// keycodes without a base symbol qualify. Keycodes whose base symbol is
// special are never touched.
func (s *Snapshot) freeSlot(top, unusedOnly bool, maxLevel int) (slot, bool) {
	if top {
		maxLevel = 0
	}
	maxLevel = min(maxLevel, s.PerKeycode-1)
	for code := int(s.Max); code >= int(s.Min); code-- {
		base := s.Level(Keycode(code), 0)
		if base.IsSpecial() || (unusedOnly && base != keysym.NoSymbol) {
			continue
		}
		for level := maxLevel; level >= 0; level-- {
			if s.Level(Keycode(code), level) == keysym.NoSymbol {
				return slot{Keycode(code), level}, true
			}
		}
	}
	return slot{}, false
}

// Allocate writes sym into a free slot and rebuilds the snapshot. With
// top only the base level is used.
func (st *State) Allocate(sym keysym.Keysym, top bool) (Keycode, error) {
	snap, a, err := st.Current()
	if err != nil {
		return 0, err
	}
	// Levels above Shift are only reachable through AltGr.
	maxLevel := 3
	if a.AltGr == 0 {
		maxLevel = 1
	}
	for _, unusedOnly := range []bool{true, false} {
		sl, ok := snap.freeSlot(top, unusedOnly, maxLevel)
		if !ok {
			continue
		}
		row := snap.rawRow(sl.code)
		row[sl.level] = sym
		if err := st.sess.ChangeKeyboardMapping(sl.code, snap.PerKeycode, row); err != nil {
			return 0, fmt.Errorf("keymap: write keycode %d: %w", sl.code, err)
		}
		st.log.Info("keysym added", "keysym", sym, "keycode", sl.code, "level", sl.level)
		if err := st.Rebuild(); err != nil {
			return 0, err
		}
		return sl.code, nil
	}
	return 0, fmt.Errorf("%w for %v", ErrAllocationFailed, sym)
}

// Promote places the keycode of sym into the first free position of
// buckets Mod5 down to Mod2, allocating a keycode for sym if needed.
// Mode_switch may also join the bucket holding ISO_Level3_Shift.
func (st *State) Promote(sym keysym.Keysym) error {
	snap, _, err := st.Current()
	if err != nil {
		return err
	}
	code, ok := snap.Keycode(sym)
	if !ok {
		if code, err = st.Allocate(sym, true); err != nil {
			return err
		}
		if snap, _, err = st.Current(); err != nil {
			return err
		}
	}

	per := snap.modPer
	codes := append([]Keycode(nil), snap.modCodes...)
	for i := 7; i > 3 && per > 0; i-- {
		first := codes[i*per]
		if first != 0 && !(sym == keysym.ModeSwitch && snap.Level(first, 0) == keysym.ISOLevel3Shift) {
			continue
		}
		for pos := 0; pos < per; pos++ {
			if codes[i*per+pos] != 0 {
				continue
			}
			codes[i*per+pos] = code
			if err := st.sess.SetModifierMapping(per, codes); err != nil {
				return fmt.Errorf("keymap: set modifier mapping: %w", err)
			}
			st.log.Info("modifier added", "keysym", sym, "keycode", code, "bucket", i)
			return st.Rebuild()
		}
	}
	return fmt.Errorf("%w for %v", ErrModifierAssignmentFull, sym)
}
