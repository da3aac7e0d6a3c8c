package keymap

import (
	"errors"
	"fmt"

	"xkeysend/keysym"
)

// Resolution is how to produce one keysym on the current layout.
type Resolution struct {
	Keycode Keycode
	Level   int
	// Mods is the requested set with the level's own modifiers forced
	// in and conflicting ones forced out.
	Mods Mods
	// Dropped holds requested roles the layout has no bucket for.
	Dropped Mods
	// Allocated is set when the symbol had to be written into the map.
	Allocated bool
}

// Resolve finds the keycode and modifiers that produce sym together with
// the desired modifiers. When the layout lacks sym and automatic insertion
// is enabled, a slot is allocated and the lookup is retried once.
func (st *State) Resolve(sym keysym.Keysym, desired Mods) (Resolution, error) {
	if sym == keysym.NoSymbol {
		return Resolution{}, fmt.Errorf("%w: NoSymbol", ErrUnresolvable)
	}
	snap, a, err := st.Current()
	if err != nil {
		return Resolution{}, err
	}
	if res, ok := lookup(snap, a, sym, desired); ok {
		return res, nil
	}
	if !st.opts.AutoAddKeysym {
		return Resolution{}, fmt.Errorf("%w: %v", ErrUnresolvable, sym)
	}

	if err := st.allocateFor(sym); err != nil {
		return Resolution{}, fmt.Errorf("%w: %v: %w", ErrUnresolvable, sym, err)
	}
	if snap, a, err = st.Current(); err != nil {
		return Resolution{}, err
	}
	res, ok := lookup(snap, a, sym, desired)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %v after allocation", ErrUnresolvable, sym)
	}
	res.Allocated = true
	return res, nil
}

// allocateFor tries the base level first for function-range symbols and
// falls back to the shifted levels.
func (st *State) allocateFor(sym keysym.Keysym) error {
	if sym.PrefersBaseLevel() {
		_, err := st.Allocate(sym, true)
		if err == nil || !errors.Is(err, ErrAllocationFailed) {
			return err
		}
	}
	_, err := st.Allocate(sym, false)
	return err
}

// levelMods lists, per level, the modifiers forced on and forced off.
var levelMods = [...]struct{ on, off Mods }{
	{0, ModAltGr | ModLevel3},
	{ModShift, ModAltGr | ModLevel3},
	{ModAltGr, ModShift | ModLevel3},
	{ModShift | ModAltGr, ModLevel3},
	{ModLevel3, ModShift | ModAltGr},
	{ModShift | ModLevel3, ModAltGr},
}

func lookup(s *Snapshot, a Assignment, sym keysym.Keysym, desired Mods) (Resolution, bool) {
	avail := a.Available()
	desired &^= ModNumLock
	res := Resolution{Dropped: desired &^ avail}
	desired &= avail

	found := func(code Keycode, level int) (Resolution, bool) {
		res.Keycode = code
		res.Level = level
		res.Mods = desired&^levelMods[level].off | levelMods[level].on
		// A plain level keeps an explicit Shift only when the key has
		// nothing on its Shift level.
		if level == 0 && s.Level(code, 1) != keysym.NoSymbol {
			res.Mods &^= ModShift
		}
		return res, true
	}

	for code := int(s.Min); code <= int(s.Max); code++ {
		for level := 0; level < 2 && level < s.PerKeycode; level++ {
			if s.Level(Keycode(code), level) == sym {
				return found(Keycode(code), level)
			}
		}
	}

	altGr := a.AltGr != 0
	level3 := a.Level3 != 0
	if !altGr && !level3 {
		return res, false
	}
	for code := int(s.Min); code <= int(s.Max); code++ {
		for level := 2; level < len(levelMods) && level < s.PerKeycode; level++ {
			if level < 4 && !altGr || level >= 4 && !level3 {
				continue
			}
			if s.Level(Keycode(code), level) == sym {
				return found(Keycode(code), level)
			}
		}
	}
	return res, false
}
