package keymap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xkeysend/keymap"
	"xkeysend/keysym"
	"xkeysend/memsession"
)

func TestCapturePairsCases(t *testing.T) {
	sess := memsession.NewUS()
	sess.SetRow(memsession.KeyA, 'A')
	snap, err := keymap.Capture(sess)
	require.NoError(t, err)

	assert.Equal(t, keysym.Keysym('q'), snap.Level(memsession.KeyQ, 0))
	assert.Equal(t, keysym.Keysym('Q'), snap.Level(memsession.KeyQ, 1))
	assert.Equal(t, keysym.Keysym('a'), snap.Level(memsession.KeyA, 0))
	assert.Equal(t, keysym.Keysym('A'), snap.Level(memsession.KeyA, 1))
	// Non-letters are left alone.
	assert.Equal(t, keysym.NoSymbol, snap.Level(memsession.KeyTab, 1))
	assert.Equal(t, keysym.NoSymbol, snap.Level(7, 0))
}

func TestCaptureBucketsAndLookup(t *testing.T) {
	snap, err := keymap.Capture(memsession.NewUS())
	require.NoError(t, err)

	assert.Equal(t, []keymap.Keycode{memsession.KeyShiftL, memsession.KeyShiftR}, snap.Bucket(0))
	assert.Empty(t, snap.Bucket(5))
	code, ok := snap.Keycode('A')
	assert.True(t, ok)
	assert.Equal(t, memsession.KeyA, code)
	_, ok = snap.Keycode(keysym.FromRune('ж'))
	assert.False(t, ok)
}

func TestDeriveUS(t *testing.T) {
	snap, err := keymap.Capture(memsession.NewUS())
	require.NoError(t, err)
	a := keymap.Derive(snap)

	assert.Equal(t, keymap.Mod1Mask, a.Alt)
	assert.Zero(t, a.Meta)
	assert.Equal(t, keymap.Mod4Mask, a.Super)
	assert.Zero(t, a.ModeSwitch)
	assert.Equal(t, keymap.Mod5Mask, a.Level3)
	assert.Equal(t, keymap.Mod5Mask, a.AltGr)
	assert.Equal(t, keysym.ISOLevel3Shift, a.AltGrKeysym)
	assert.True(t, a.BestEffort)
	assert.False(t, a.Available().Has(keymap.ModMeta))
	assert.True(t, a.Available().Has(keymap.ModAlt|keymap.ModSuper|keymap.ModAltGr))
}

func TestDeriveSharedAltGrBucket(t *testing.T) {
	sess := memsession.NewUS()
	sess.SetRow(203, keysym.ModeSwitch)
	sess.SetModifier(7, memsession.KeyLevel3, 203)
	snap, err := keymap.Capture(sess)
	require.NoError(t, err)
	a := keymap.Derive(snap)

	assert.Equal(t, keymap.Mod5Mask, a.ModeSwitch)
	assert.Equal(t, keymap.SyntheticMask, a.Level3)
	assert.Equal(t, keymap.Mod5Mask, a.AltGr)
	assert.Equal(t, keysym.ModeSwitch, a.AltGrKeysym)
	assert.True(t, a.BestEffort)
	assert.Zero(t, a.Mask(keymap.ModLevel3).Wire())
}

func TestDeriveUnconventionalBuckets(t *testing.T) {
	sess := memsession.NewUS()
	sess.SetModifier(3)
	sess.SetModifier(5, memsession.KeyAltL)
	sess.SetModifier(7)
	snap, err := keymap.Capture(sess)
	require.NoError(t, err)
	a := keymap.Derive(snap)

	assert.Equal(t, keymap.Mod3Mask, a.Alt)
	assert.Zero(t, a.AltGr)
	assert.Len(t, a.Warnings, 2)
	assert.Contains(t, a.Warnings[0], "Alt is in modifier bucket 5")
}

func TestModsString(t *testing.T) {
	assert.Equal(t, "none", keymap.Mods(0).String())
	assert.Equal(t, "Shift+Control+AltGr", (keymap.ModAltGr | keymap.ModShift | keymap.ModControl).String())
	assert.True(t, keymap.ModShift.With(keymap.ModAlt).Has(keymap.ModAlt))
	assert.False(t, keymap.ModShift.With(keymap.ModAlt).Without(keymap.ModAlt).Has(keymap.ModAlt))
}
