package keymap

import (
	"log/slog"
	"math/bits"
	"slices"

	"xkeysend/keysym"
)

// Options control how far the keymap may edit the live layout.
type Options struct {
	// AutoAddKeysym lets the resolver write missing symbols into spare
	// keycode slots.
	AutoAddKeysym bool
	// PromoteModeSwitch assigns Mode_switch to a free bucket even when
	// ISO_Level3_Shift already serves as AltGr.
	PromoteModeSwitch bool
}

// State owns the current Snapshot and its Assignment and rebuilds them
// after the mapping changed.
type State struct {
	sess Session
	opts Options
	log  *slog.Logger

	snap     *Snapshot
	assign   Assignment
	warnings []string
	promoted bool
}

func NewState(sess Session, opts Options, log *slog.Logger) *State {
	if log == nil {
		log = slog.Default()
	}
	return &State{sess: sess, opts: opts, log: log.With("component", "keymap")}
}

func (st *State) Options() Options { return st.opts }

func (st *State) SetOptions(opts Options) {
	st.opts = opts
	st.Invalidate()
}

// Invalidate drops the cached snapshot; the next use reads a fresh one.
func (st *State) Invalidate() {
	st.snap = nil
	st.promoted = false
}

// Current returns the snapshot and assignment, rebuilding if stale.
func (st *State) Current() (*Snapshot, Assignment, error) {
	if st.snap == nil {
		if err := st.Rebuild(); err != nil {
			return nil, Assignment{}, err
		}
	}
	return st.snap, st.assign, nil
}

// Rebuild re-reads the mapping and derives the modifier assignment.
func (st *State) Rebuild() error {
	snap, err := Capture(st.sess)
	if err != nil {
		return err
	}
	st.snap = snap
	st.assign = Derive(snap)
	if !slices.Equal(st.warnings, st.assign.Warnings) {
		for _, w := range st.assign.Warnings {
			st.log.Warn(w)
		}
		st.warnings = st.assign.Warnings
	}
	st.log.Debug("keymap captured",
		"keycodes", []Keycode{snap.Min, snap.Max},
		"per_keycode", snap.PerKeycode,
		"altgr", st.assign.AltGrKeysym)

	if st.opts.AutoAddKeysym && !st.promoted &&
		(st.assign.AltGr == 0 || (st.opts.PromoteModeSwitch && st.assign.ModeSwitch == 0)) {
		st.promoted = true
		if err := st.Promote(keysym.ModeSwitch); err != nil {
			st.log.Warn("cannot assign Mode_switch to a modifier", "err", err)
		}
	}
	return nil
}

var roleKeysyms = map[Mods][]keysym.Keysym{
	ModShift:   {keysym.ShiftL, keysym.ShiftR},
	ModLock:    {keysym.CapsLock, keysym.ShiftLock},
	ModControl: {keysym.ControlL, keysym.ControlR},
	ModAlt:     {keysym.AltL, keysym.AltR},
	ModMeta:    {keysym.MetaL, keysym.MetaR},
	ModSuper:   {keysym.SuperL, keysym.SuperR},
	ModLevel3:  {keysym.ISOLevel3Shift},
}

// RoleOf returns the modifier role a key carrying sym engages. Lock keys
// latch and have no role here.
func (st *State) RoleOf(sym keysym.Keysym) (Mods, bool) {
	if _, a, err := st.Current(); err == nil && a.AltGr != 0 && sym == a.AltGrKeysym {
		return ModAltGr, true
	}
	for m, syms := range roleKeysyms {
		if m != ModLock && slices.Contains(syms, sym) {
			return m, true
		}
	}
	return 0, false
}

// ModifierKeycode returns a keycode whose press engages role m.
func (st *State) ModifierKeycode(m Mods) (Keycode, bool) {
	snap, a, err := st.Current()
	if err != nil {
		st.log.Error("keymap unavailable", "err", err)
		return 0, false
	}
	syms := roleKeysyms[m]
	if m == ModAltGr {
		syms = []keysym.Keysym{a.AltGrKeysym}
	}
	mask := a.Role(m)
	if mask == 0 {
		return 0, false
	}
	if mask != SyntheticMask {
		codes := snap.Bucket(bits.TrailingZeros16(uint16(mask)))
		for _, code := range codes {
			if slices.Contains(syms, snap.Level(code, 0)) {
				return code, true
			}
		}
		if len(codes) > 0 {
			return codes[0], true
		}
	}
	for _, sym := range syms {
		if code, ok := snap.Keycode(sym); ok {
			return code, true
		}
	}
	return 0, false
}

// StateMask translates logical modifiers into core state bits.
func (st *State) StateMask(m Mods) uint16 {
	_, a, err := st.Current()
	if err != nil {
		return 0
	}
	return a.Mask(m).Wire()
}

// Available returns the logical modifiers the layout can produce.
func (st *State) Available() Mods {
	_, a, err := st.Current()
	if err != nil {
		return ModShift | ModLock | ModControl
	}
	return a.Available()
}

// Keycode returns the lowest keycode carrying sym, if any.
func (st *State) Keycode(sym keysym.Keysym) (Keycode, bool) {
	snap, _, err := st.Current()
	if err != nil {
		return 0, false
	}
	return snap.Keycode(sym)
}
