package keyboard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xkeysend/inject"
	"xkeysend/keyboard"
	"xkeysend/keymap"
	"xkeysend/memsession"
)

const appWindow inject.Window = 0x200

type fixture struct {
	sess *memsession.Session
	inj  *inject.Injector
	kb   *keyboard.Keyboard
}

func setup(t *testing.T, opts keymap.Options, policy keyboard.Policy) *fixture {
	t.Helper()
	sess := memsession.NewUS()
	sess.Windows[appWindow] = true
	sess.Focus = appWindow
	ch, err := inject.NewChannel("xtest", sess, 0)
	require.NoError(t, err)
	km := keymap.NewState(sess, opts, nil)
	inj := inject.New(sess, km, ch, inject.Options{}, nil)
	return &fixture{sess: sess, inj: inj, kb: keyboard.New(km, inj, policy, nil)}
}

func (f *fixture) activate(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, f.kb.OnSymbolicKeyActivated(context.Background(), name), name)
	}
}

func TestSendTextPairsCase(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{})
	require.NoError(t, f.kb.SendText(context.Background(), "aA"))
	assert.Equal(t, []string{"+a", "-a", "+Shift_L", "+a", "-a", "-Shift_L"}, f.sess.Keys())
}

func TestOneShotShiftOnNamedKey(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{})
	require.NoError(t, f.kb.SendText(context.Background(), `\S\[Tab]x`))
	assert.Equal(t, []string{"+Shift_L", "+Tab", "-Tab", "-Shift_L", "+x", "-x"}, f.sess.Keys())
}

func TestDirectPressAndRelease(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{})
	require.NoError(t, f.kb.SendText(context.Background(), `\{+Shift_L}a\{-Shift_L}`))
	assert.Equal(t, []string{"+Shift_L", "+a", "-a", "-Shift_L"}, f.sess.Keys())
}

func TestDirectModifierHeldAcrossKeys(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{})
	require.NoError(t, f.kb.SendText(context.Background(), `\{+Shift_L}AB\{-Shift_L}`))
	assert.Equal(t, []string{"+Shift_L", "+a", "-a", "+b", "-b", "-Shift_L"}, f.sess.Keys())
	assert.Zero(t, f.inj.Held())

	f.sess.Reset()
	require.NoError(t, f.kb.SendText(context.Background(), `\{+Control_L}\C\[c]\{-Control_L}x`))
	assert.Equal(t, []string{"+Control_L", "+c", "-c", "-Control_L", "+x", "-x"}, f.sess.Keys())
}

func TestLatchedModifierAppliesOnce(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{})
	f.activate(t, "Control_L")
	assert.Equal(t, keymap.ModControl, f.kb.ShiftState())
	assert.Empty(t, f.sess.Keys())

	f.activate(t, "c", "c")
	assert.Equal(t, []string{"+Control_L", "+c", "-c", "-Control_L", "+c", "-c"}, f.sess.Keys())
	assert.Zero(t, f.kb.ShiftState())
}

func TestToggleOffSendsChord(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{})
	f.activate(t, "Shift_L", "Control_R")
	f.activate(t, "Shift_R")
	assert.Equal(t, []string{"+Control_L", "+Shift_L", "-Shift_L", "-Control_L"}, f.sess.Keys())
	assert.Equal(t, keymap.ModControl, f.kb.ShiftState())
}

func TestStickyPolicy(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{ShiftLock: true})
	f.activate(t, "Shift_L", "Control_L", "a", "a")
	assert.Equal(t, []string{
		"+Control_L", "+Shift_L", "+a", "-a", "-Shift_L", "-Control_L",
		"+Shift_L", "+a", "-a", "-Shift_L",
	}, f.sess.Keys())
	assert.Equal(t, keymap.ModShift, f.kb.ShiftState())
}

func TestMetaWithoutBucketIsAKey(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{})
	f.activate(t, "Meta_L")
	assert.Zero(t, f.kb.ShiftState())
	assert.Equal(t, []string{"+Shift_L", "+Alt_L", "-Alt_L", "-Shift_L"}, f.sess.Keys())
}

func TestPrefixedName(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{})
	f.activate(t, "c:a", "0x61")
	assert.Equal(t, []string{"+Control_L", "+a", "-a", "-Control_L", "+a", "-a"}, f.sess.Keys())

	err := f.kb.OnSymbolicKeyActivated(context.Background(), "q:a")
	assert.ErrorIs(t, err, keymap.ErrUnresolvable)
	assert.Equal(t, 1, f.sess.Bells())
}

func TestKeypadSubstitution(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{})
	f.activate(t, "KP_Add", "KP_7")
	assert.Equal(t, []string{"+Shift_L", "+equal", "-equal", "-Shift_L", "+7", "-7"}, f.sess.Keys())
}

func TestUnresolvableRingsOnce(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{})
	err := f.kb.SendText(context.Background(), "ж")
	assert.ErrorIs(t, err, keymap.ErrUnresolvable)
	assert.Empty(t, f.sess.Keys())
	assert.Equal(t, 1, f.sess.Bells())
}

func TestAllocatesMissingSymbol(t *testing.T) {
	f := setup(t, keymap.Options{AutoAddKeysym: true}, keyboard.Policy{})
	require.NoError(t, f.kb.SendText(context.Background(), "жж"))
	assert.Equal(t, []string{"+U0436", "-U0436", "+U0436", "-U0436"}, f.sess.Keys())
	assert.Equal(t, 1, f.sess.MappingWrites)
}

func TestMacros(t *testing.T) {
	policy := keyboard.Policy{Macros: map[string]string{
		"F1":   "hi",
		"s:F1": `\Bye`,
	}}
	f := setup(t, keymap.Options{}, policy)
	f.activate(t, "F1")
	assert.Equal(t, []string{"+h", "-h", "+i", "-i"}, f.sess.Keys())

	f.sess.Reset()
	f.activate(t, "Shift_L", "F1")
	assert.Equal(t, []string{"+Shift_L", "+b", "-b", "-Shift_L", "+y", "-y", "+e", "-e"}, f.sess.Keys())
	assert.Zero(t, f.kb.ShiftState())
}

func TestMacroFallsBackToBareName(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{Macros: map[string]string{"F2": "x"}})
	f.activate(t, "Control_L", "F2")
	assert.Equal(t, []string{"+x", "-x"}, f.sess.Keys())
}

func TestSecureRefusesCommands(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{Secure: true, Macros: map[string]string{"F3": "!true"}})
	err := f.kb.OnSymbolicKeyActivated(context.Background(), "F3")
	assert.ErrorIs(t, err, keyboard.ErrSecure)
	assert.Empty(t, f.sess.Events)
}

func TestMacroRecursionStops(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{Macros: map[string]string{"loop": `a\[loop]`}})
	err := f.kb.OnSymbolicKeyActivated(context.Background(), "loop")
	assert.ErrorIs(t, err, keyboard.ErrRecursion)
	assert.Len(t, f.sess.Keys(), 2*keyboard.MaxDepth)
}

func TestNumLockState(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{})
	f.activate(t, "Num_Lock")
	assert.Equal(t, keymap.ModNumLock, f.kb.ShiftState())
	f.activate(t, "Num_Lock")
	assert.Zero(t, f.kb.ShiftState())
	assert.Empty(t, f.sess.Events)
}

type picker inject.Target

func (p picker) PickTarget(context.Context) (inject.Target, error) { return inject.Target(p), nil }

func TestFocusKey(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{})
	want := inject.Target{Window: appWindow, Child: 0x201}
	f.kb.SetPicker(picker(want))

	f.activate(t, "Focus")
	assert.Equal(t, want, f.inj.Target())

	f.activate(t, "Shift_L", "Focus")
	assert.True(t, f.inj.Target().IsZero())
}

func TestMappingInvalidated(t *testing.T) {
	f := setup(t, keymap.Options{}, keyboard.Policy{})
	f.activate(t, "q")
	f.sess.SetRow(200, 'q')
	f.sess.SetRow(memsession.KeyQ)
	f.kb.MappingInvalidated()
	f.sess.Reset()
	f.activate(t, "q")
	require.Len(t, f.sess.Events, 2)
	assert.Equal(t, keymap.Keycode(200), f.sess.Events[0].Keycode)
}
