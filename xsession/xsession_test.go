package xsession

import (
	"errors"
	"os"
	"testing"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xkeysend/inject"
	"xkeysend/keymap"
)

func TestWrapBadWindow(t *testing.T) {
	err := wrap(xproto.WindowError{BadValue: 0x4a00003})
	assert.ErrorIs(t, err, inject.ErrBadWindow)
	assert.Contains(t, err.Error(), "0x4a00003")

	other := xproto.AccessError{}
	assert.Equal(t, error(other), wrap(other))
	assert.NoError(t, wrap(nil))
	assert.False(t, errors.Is(wrap(other), inject.ErrBadWindow))
}

// TestLiveDisplay reads the mapping of a real server when one is around.
func TestLiveDisplay(t *testing.T) {
	if os.Getenv("DISPLAY") == "" {
		t.Skip("no DISPLAY")
	}
	s, err := Open("", true, nil)
	require.NoError(t, err)
	defer s.Close()

	snap, err := keymap.Capture(s)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, snap.PerKeycode, 1)

	_, err = s.InputFocus()
	assert.NoError(t, err)
	assert.False(t, s.WindowExists(0x7fffffff))
}
