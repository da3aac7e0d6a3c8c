package memsession

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xkeysend/inject"
	"xkeysend/keymap"
	"xkeysend/keysym"
)

func TestMappingWrites(t *testing.T) {
	s := NewUS()
	per, syms, err := s.KeyboardMapping(KeyA, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, per)
	assert.Equal(t, keysym.FromRune('a'), syms[0])
	assert.Equal(t, keysym.FromRune('s'), syms[4])

	require.NoError(t, s.ChangeKeyboardMapping(200, 4, []keysym.Keysym{0x1000436, 0x1000436, 0, 0}))
	assert.Equal(t, keysym.Keysym(0x1000436), s.Row(200)[0])
	assert.Equal(t, 1, s.MappingWrites)

	assert.Error(t, s.ChangeKeyboardMapping(200, 2, []keysym.Keysym{1, 2}))
	assert.Error(t, s.ChangeKeyboardMapping(255, 4, make([]keysym.Keysym, 8)))
	_, _, err = s.KeyboardMapping(250, 10)
	assert.Error(t, err)

	assert.Error(t, s.SetModifierMapping(2, make([]keymap.Keycode, 3)))
}

func TestWindows(t *testing.T) {
	s := NewUS()
	assert.ErrorIs(t, s.SetInputFocus(0x42), inject.ErrBadWindow)
	assert.ErrorIs(t, s.SendKey(0x42, KeyA, 0, true), inject.ErrBadWindow)
	require.NoError(t, s.SendKey(inject.PointerRoot, KeyA, 0, true))

	s.Windows[0x42] = true
	require.NoError(t, s.SetInputFocus(0x42))
	focus, _ := s.InputFocus()
	assert.Equal(t, inject.Window(0x42), focus)

	s.NoXTest = true
	assert.ErrorIs(t, s.FakeKey(KeyA, true), inject.ErrNoXTest)
}

func TestTrace(t *testing.T) {
	s := NewUS()
	require.NoError(t, s.FakeKey(KeyShiftL, true))
	require.NoError(t, s.FakeKey(KeyA, true))
	require.NoError(t, s.FakeKey(KeyA, false))
	require.NoError(t, s.FakeKey(KeyShiftL, false))
	require.NoError(t, s.Bell())

	assert.Equal(t, []string{"+Shift_L", "+a", "-a", "-Shift_L"}, s.Keys())
	assert.Equal(t, 1, s.Bells())
	assert.Equal(t, []string{
		"+Shift_L\txtest press keycode=50",
		"+a\txtest press keycode=38",
		"-a\txtest release keycode=38",
		"-Shift_L\txtest release keycode=50",
		"bell",
	}, s.Trace())

	s.Reset()
	assert.Empty(t, s.Trace())
}
