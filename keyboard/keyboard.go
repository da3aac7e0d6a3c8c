// Package keyboard is the entry point for callers that type: it keeps the
// latched shift state of a virtual keyboard, expands macros bound to key
// names and feeds text through the command interpreter.
//
// A Keyboard is not safe for concurrent use. The program drives it from
// one loop, which also serialises keymap edits.
package keyboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"xkeysend/command"
	"xkeysend/exec"
	"xkeysend/inject"
	"xkeysend/keymap"
	"xkeysend/keysym"
)

// MaxDepth bounds macro -> text -> key name -> macro chains.
const MaxDepth = 8

var (
	ErrRecursion = errors.New("keyboard: macro nesting too deep")
	ErrSecure    = errors.New("keyboard: commands disabled in secure mode")
)

// Policy decides what survives a typed key and what macros may do.
type Policy struct {
	// ShiftLock keeps a latched Shift after a key.
	ShiftLock bool
	// ModifiersLock keeps latched Control, Alt, Meta and Super.
	ModifiersLock bool
	// AltGrLock keeps a latched AltGr.
	AltGrLock bool
	// KeypadKeysym sends KP_* keysyms as such instead of their main
	// block counterparts.
	KeypadKeysym bool

	Secure         bool
	Macros         map[string]string
	CommandTimeout time.Duration
	TextDelay      time.Duration
}

// Picker chooses a focus target when the Focus key is activated.
type Picker interface {
	PickTarget(ctx context.Context) (inject.Target, error)
}

type Keyboard struct {
	keymap *keymap.State
	inj    *inject.Injector
	runner *command.Runner
	policy Policy
	picker Picker
	log    *slog.Logger

	shift   keymap.Mods
	numLock bool
	depth   int
}

func New(km *keymap.State, inj *inject.Injector, policy Policy, log *slog.Logger) *Keyboard {
	if log == nil {
		log = slog.Default()
	}
	k := &Keyboard{
		keymap: km,
		inj:    inj,
		policy: policy,
		log:    log.With("component", "keyboard"),
	}
	k.runner = command.NewRunner(k, policy.TextDelay, log)
	return k
}

func (k *Keyboard) Policy() Policy { return k.policy }

// SetPolicy replaces the policy. The shift state is kept.
func (k *Keyboard) SetPolicy(p Policy) {
	k.policy = p
	k.runner.Delay = p.TextDelay
}

func (k *Keyboard) SetPicker(p Picker) { k.picker = p }

// ShiftState returns the latched modifiers, NumLock included.
func (k *Keyboard) ShiftState() keymap.Mods {
	if k.numLock {
		return k.shift | keymap.ModNumLock
	}
	return k.shift
}

// MappingInvalidated makes the next operation read the layout again.
func (k *Keyboard) MappingInvalidated() {
	k.log.Debug("keyboard mapping changed")
	k.keymap.Invalidate()
}

// SetFocusTarget directs input at t; a zero t follows the live focus.
func (k *Keyboard) SetFocusTarget(t inject.Target) {
	if t.IsZero() {
		k.inj.ClearTarget()
		return
	}
	k.inj.SetTarget(t)
}

// OnSymbolicKeyActivated handles a key of the virtual keyboard: a bound
// macro runs, a modifier toggles, anything else is typed with the
// latched modifiers.
func (k *Keyboard) OnSymbolicKeyActivated(ctx context.Context, name string) error {
	_, err := k.activate(ctx, name, 0)
	return err
}

// SendText types text, escapes included, and returns once all of it has
// been sent.
func (k *Keyboard) SendText(ctx context.Context, text string) error {
	if k.depth >= MaxDepth {
		k.log.Error("macro nesting too deep, text dropped", "depth", k.depth)
		return ErrRecursion
	}
	k.depth++
	defer func() { k.depth-- }()
	return k.runner.Run(ctx, text)
}

// activate returns the one-shot latch left for the rest of a text.
func (k *Keyboard) activate(ctx context.Context, name string, latch keymap.Mods) (keymap.Mods, error) {
	if value, ok := k.macro(name); ok {
		return 0, k.runMacro(ctx, name, value)
	}

	kn, err := ParseKeyName(name, k.keymap.Available())
	if err != nil {
		k.log.Warn("bad key name", "name", name, "err", err)
		k.inj.Bell()
		return 0, err
	}
	switch kn.Kind {
	case Modifier:
		return latch, k.toggle(kn.Mod)
	case NumLock:
		k.numLock = !k.numLock
		k.log.Debug("num lock toggled", "on", k.numLock)
		return latch, nil
	case Focus:
		return latch, k.focus(ctx)
	}

	mods := k.shift | latch | kn.Mods
	sym := kn.Sym
	// A letter key shows its capital while Shift is latched.
	if mods.Has(keymap.ModShift) && sym.IsLatinLetter() {
		sym = sym.Upper()
	}
	if _, ok := k.keymap.Keycode(sym); !ok || !k.policy.KeypadKeysym && sym.IsKeypad() {
		if s, ok := Substitute(sym); ok {
			k.log.Debug("keysym substituted", "from", sym, "to", s)
			sym = s
		}
	}
	err = k.send(sym, mods, inject.Tap)
	k.release()
	return 0, err
}

// macro finds the value bound to name, preferring the binding prefixed
// with the strongest latched modifier.
func (k *Keyboard) macro(name string) (string, bool) {
	if len(k.policy.Macros) == 0 {
		return "", false
	}
	for _, p := range []struct {
		mod    keymap.Mods
		prefix string
	}{
		{keymap.ModSuper, "w:"},
		{keymap.ModMeta, "m:"},
		{keymap.ModAlt, "a:"},
		{keymap.ModControl, "c:"},
		{keymap.ModShift, "s:"},
	} {
		if k.shift.Has(p.mod) {
			if v, ok := k.policy.Macros[p.prefix+name]; ok {
				return v, true
			}
			break
		}
	}
	v, ok := k.policy.Macros[name]
	return v, ok
}

func (k *Keyboard) runMacro(ctx context.Context, name, value string) error {
	k.log.Debug("macro", "name", name, "value", value)
	if len(value) > 0 && value[0] == '!' {
		return k.runCommand(value[1:])
	}
	if len(value) > 0 && value[0] == '\\' {
		value = value[1:]
	}
	err := k.SendText(ctx, value)
	k.release()
	return err
}

func (k *Keyboard) runCommand(line string) error {
	if k.policy.Secure {
		k.log.Warn("command not run in secure mode", "command", line)
		return ErrSecure
	}
	c, err := exec.Parse(line)
	if err != nil {
		k.log.Warn("bad command", "command", line, "err", err)
		return err
	}
	c.Timeout = k.policy.CommandTimeout
	r := exec.ExecCommand(c)
	if r.Err != nil {
		k.log.Warn("command failed", "command", line, "status", r.Status, "stderr", string(r.StdErr))
		return fmt.Errorf("keyboard: %s: %w", c.Command, r.Err)
	}
	k.log.Info("command run", "command", line, "detached", c.NoWait)
	return nil
}

// toggle flips a latched modifier. Releasing one first sends the chord
// alone so applications see it end.
func (k *Keyboard) toggle(m keymap.Mods) error {
	if m != keymap.ModShift && m != keymap.ModControl && m != keymap.ModLock && !k.keymap.Available().Has(m) {
		k.log.Warn("modifier not on this layout", "modifier", m, "err", keymap.ErrModifierUnavailable)
		return fmt.Errorf("%w: %v", keymap.ErrModifierUnavailable, m)
	}
	var err error
	if k.shift.Has(m) {
		err = k.inj.Inject(inject.Request{Mods: k.shift})
	}
	k.shift ^= m
	k.log.Debug("shift state", "mods", k.shift)
	return err
}

func (k *Keyboard) focus(ctx context.Context) error {
	if k.shift.Has(keymap.ModShift) {
		k.inj.ClearTarget()
		return nil
	}
	if k.picker == nil {
		k.log.Warn("no window picker, focus target unchanged")
		return nil
	}
	t, err := k.picker.PickTarget(ctx)
	if err != nil {
		k.inj.Bell()
		return fmt.Errorf("keyboard: pick focus target: %w", err)
	}
	k.SetFocusTarget(t)
	return nil
}

// release clears the latches the policy does not keep.
func (k *Keyboard) release() {
	if !k.policy.ShiftLock {
		k.shift &^= keymap.ModShift
	}
	if !k.policy.ModifiersLock {
		k.shift &^= keymap.ModControl | keymap.ModAlt | keymap.ModMeta | keymap.ModSuper
	}
	if !k.policy.AltGrLock {
		k.shift &^= keymap.ModAltGr
	}
}

// send resolves sym and injects it. An unresolvable symbol rings the
// bell and sends nothing.
func (k *Keyboard) send(sym keysym.Keysym, mods keymap.Mods, action inject.Action) error {
	res, err := k.keymap.Resolve(sym, mods)
	if err != nil {
		k.log.Warn("cannot type keysym", "keysym", sym, "err", err)
		k.inj.Bell()
		return err
	}
	if res.Dropped != 0 {
		k.log.Warn("modifier dropped", "keysym", sym, "modifiers", res.Dropped, "err", keymap.ErrModifierUnavailable)
	}
	k.log.Debug("typing", "keysym", sym, "keycode", res.Keycode, "level", res.Level, "mods", res.Mods, "allocated", res.Allocated)
	return k.inj.Inject(inject.Request{Keycode: res.Keycode, Mods: res.Mods, Action: action})
}

// command.Executor

func (k *Keyboard) TypeKeysym(_ context.Context, sym keysym.Keysym, mods keymap.Mods) error {
	return k.send(sym, mods, inject.Tap)
}

func (k *Keyboard) Activate(ctx context.Context, name string, latch keymap.Mods) (keymap.Mods, error) {
	return k.activate(ctx, name, latch)
}

func (k *Keyboard) Direct(_ context.Context, name string, action inject.Action) error {
	sym, err := keysym.Parse(name)
	if err != nil {
		k.inj.Bell()
		return fmt.Errorf("%w: %w", keymap.ErrUnresolvable, err)
	}
	m, isMod := k.keymap.RoleOf(sym)
	if isMod && action == inject.Release {
		k.inj.Unhold(m)
	}
	err = k.send(sym, 0, action)
	if isMod && action == inject.Press && err == nil {
		k.inj.Hold(m)
	}
	return err
}

func (k *Keyboard) Click(button uint8) error { return k.inj.Click(button) }

func (k *Keyboard) MovePointer(axis inject.Axis, value int, relative bool) error {
	return k.inj.MovePointer(axis, value, relative)
}
