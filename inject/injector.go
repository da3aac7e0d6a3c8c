package inject

import (
	"errors"
	"log/slog"
	"math"

	"xkeysend/keymap"
	"xkeysend/keysym"
)

// Action selects which transitions of the main key are sent.
type Action int

const (
	Tap Action = iota
	Press
	Release
)

func (a Action) String() string {
	switch a {
	case Press:
		return "press"
	case Release:
		return "release"
	}
	return "tap"
}

// Axis names a pointer coordinate.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Request is one key with the modifiers that must be held around it.
// A zero Keycode sends the modifiers alone.
type Request struct {
	Keycode keymap.Keycode
	Mods    keymap.Mods
	Action  Action
}

// Layout answers which keycodes engage modifier roles on the current map.
type Layout interface {
	ModifierKeycode(m keymap.Mods) (keymap.Keycode, bool)
	StateMask(m keymap.Mods) uint16
	Keycode(sym keysym.Keysym) (keymap.Keycode, bool)
}

type Options struct {
	// JumpPointer warps the pointer into the target child before fake
	// hardware input, JumpPointerBack restores it afterwards.
	JumpPointer     bool
	JumpPointerBack bool
	// AltGrKeycode overrides the keycode pressed for the AltGr role.
	AltGrKeycode keymap.Keycode
	// CapsLockGuard taps Caps_Lock around fake hardware input while the
	// lock is on, so letters keep their intended case.
	CapsLockGuard bool

	// Self and SelfParent are the caller's own windows; input is refused
	// while they hold the focus.
	Self, SelfParent Window
}

// Modifiers are pressed in this order and released in reverse.
var pressOrder = []keymap.Mods{
	keymap.ModControl,
	keymap.ModAlt,
	keymap.ModMeta,
	keymap.ModSuper,
	keymap.ModAltGr,
	keymap.ModLevel3,
	keymap.ModShift,
}

type Injector struct {
	sess   Session
	layout Layout
	ch     Channel
	opts   Options
	log    *slog.Logger

	target Target
	// holding are modifiers pressed by an earlier request and still down.
	holding keymap.Mods
}

func New(sess Session, layout Layout, ch Channel, opts Options, log *slog.Logger) *Injector {
	if log == nil {
		log = slog.Default()
	}
	return &Injector{
		sess:   sess,
		layout: layout,
		ch:     ch,
		opts:   opts,
		log:    log.With("component", "inject", "channel", ch.Name()),
	}
}

func (in *Injector) SetOptions(opts Options) { in.opts = opts }

func (in *Injector) Channel() Channel { return in.ch }

// Target returns the explicit focus target, zero if input follows focus.
func (in *Injector) Target() Target { return in.target }

func (in *Injector) SetTarget(t Target) {
	in.target = t
	in.log.Info("focus target set", "window", t.Window, "child", t.Child)
}

func (in *Injector) ClearTarget() {
	in.target = Target{}
	in.log.Info("focus target cleared")
}

// Hold records m as pressed until Unhold. Requests neither press nor
// release a held modifier.
func (in *Injector) Hold(m keymap.Mods) { in.holding |= m }

func (in *Injector) Unhold(m keymap.Mods) { in.holding &^= m }

// Held returns the modifiers kept down across requests.
func (in *Injector) Held() keymap.Mods { return in.holding }

// Bell rings the display bell, the only feedback a failed request gives.
func (in *Injector) Bell() {
	if err := in.sess.Bell(); err != nil {
		in.log.Debug("bell failed", "err", err)
	}
}

type held struct {
	mod  keymap.Mods
	code keymap.Keycode
}

// Inject sends req: every modifier in press order, the key, then the
// modifiers in reverse. Nothing is released that was not pressed here,
// and held modifiers are left alone.
// As on real hardware, each event carries the state from before it.
func (in *Injector) Inject(req Request) error {
	focus, err := in.guardFocus()
	if err != nil {
		return err
	}
	dst := in.target
	if dst.Window == None {
		dst.Window = focus
	}

	if in.ch.FakeHardware() && (in.opts.CapsLockGuard || in.opts.JumpPointer && in.target.Child != None) {
		ptr, err := in.sess.QueryPointer()
		if err != nil {
			in.log.Warn("pointer query failed", "err", err)
		} else {
			if in.opts.JumpPointer && in.target.Child != None {
				defer in.jumpPointer(ptr)()
			}
			if in.opts.CapsLockGuard && ptr.Mask&uint16(keymap.LockMask) != 0 {
				in.tapCapsLock(dst)
				defer in.tapCapsLock(dst)
			}
		}
	}

	// Lock is a latched state bit, never a key held here.
	state := in.layout.StateMask(req.Mods&keymap.ModLock | in.holding)
	var down []held
	for _, m := range pressOrder {
		if !req.Mods.Has(m) || in.holding.Has(m) {
			continue
		}
		code, ok := in.modifierKeycode(m)
		if !ok {
			in.log.Warn("no keycode for modifier", "modifier", m)
			continue
		}
		if err := in.key(dst, code, state, true); err != nil {
			return err
		}
		state |= in.layout.StateMask(m)
		down = append(down, held{m, code})
	}

	if req.Keycode != 0 {
		if req.Action != Release {
			err = in.key(dst, req.Keycode, state, true)
		}
		if err == nil && req.Action != Press {
			err = in.key(dst, req.Keycode, state, false)
		}
	}
	if err != nil {
		return err
	}
	for i := len(down) - 1; i >= 0; i-- {
		if err := in.key(dst, down[i].code, state, false); err != nil {
			return err
		}
		state &^= in.layout.StateMask(down[i].mod)
	}
	return nil
}

func (in *Injector) modifierKeycode(m keymap.Mods) (keymap.Keycode, bool) {
	if m == keymap.ModAltGr && in.opts.AltGrKeycode != 0 {
		return in.opts.AltGrKeycode, true
	}
	return in.layout.ModifierKeycode(m)
}

// key delivers one transition. A vanished window aborts the request,
// other failures are logged and delivery goes on. Only window-addressed
// channels can report a vanished window, and nothing stays pressed there.
func (in *Injector) key(dst Target, code keymap.Keycode, state uint16, press bool) error {
	err := in.ch.Key(dst, code, state, press)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrBadWindow) {
		in.targetGone()
		return ErrTargetGone
	}
	in.log.Warn("key delivery failed", "keycode", code, "press", press, "err", err)
	return nil
}

// guardFocus refuses input aimed at our own windows and moves the focus
// to the explicit target, if there is one. It returns the window that
// holds the focus.
func (in *Injector) guardFocus() (Window, error) {
	focus := in.target.Child
	if focus == None {
		focus = in.target.Window
	}
	if focus == None {
		f, err := in.sess.InputFocus()
		if err != nil {
			in.log.Warn("input focus query failed", "err", err)
		}
		focus = f
	}
	if in.opts.Self != None &&
		(focus == None || focus == PointerRoot || focus == in.opts.Self || focus == in.opts.SelfParent) {
		in.Bell()
		return focus, ErrSelfFocusRejected
	}

	if in.target.Window != None {
		if !in.sess.WindowExists(in.target.Window) {
			in.targetGone()
			return None, ErrTargetGone
		}
		if err := in.sess.SetInputFocus(in.target.Window); err != nil {
			if errors.Is(err, ErrBadWindow) {
				in.targetGone()
				return None, ErrTargetGone
			}
			in.log.Warn("set input focus failed", "window", in.target.Window, "err", err)
		}
	}
	return focus, nil
}

func (in *Injector) targetGone() {
	in.log.Warn("focus target is gone, input follows focus again", "window", in.target.Window)
	in.target = Target{}
	in.Bell()
}

// jumpPointer warps into the target child and returns the undo step.
func (in *Injector) jumpPointer(saved Pointer) func() {
	if err := in.sess.WarpPointer(in.target.Child, 1, 1); err != nil {
		in.log.Warn("pointer jump failed", "window", in.target.Child, "err", err)
		return func() {}
	}
	return func() {
		if !in.opts.JumpPointerBack {
			return
		}
		if err := in.sess.WarpPointer(None, saved.RootX, saved.RootY); err != nil {
			in.log.Warn("pointer restore failed", "err", err)
		}
	}
}

func (in *Injector) tapCapsLock(dst Target) {
	code, ok := in.layout.Keycode(keysym.CapsLock)
	if !ok {
		in.log.Debug("no Caps_Lock keycode")
		return
	}
	if err := in.key(dst, code, 0, true); err == nil {
		in.key(dst, code, 0, false)
	}
}

// Click presses and releases a pointer button.
func (in *Injector) Click(button uint8) error {
	if err := in.sess.FakeButton(button, true); err != nil {
		return err
	}
	return in.sess.FakeButton(button, false)
}

// MovePointer sets or shifts one pointer coordinate on the root window.
func (in *Injector) MovePointer(axis Axis, value int, relative bool) error {
	ptr, err := in.sess.QueryPointer()
	if err != nil {
		return err
	}
	x, y := int(ptr.RootX), int(ptr.RootY)
	pos := &x
	if axis == AxisY {
		pos = &y
	}
	if relative {
		*pos += value
	} else {
		*pos = value
	}
	return in.sess.WarpPointer(None, clamp16(x), clamp16(y))
}

func clamp16(v int) int16 {
	return int16(min(max(v, math.MinInt16), math.MaxInt16))
}
