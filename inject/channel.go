package inject

import (
	"errors"
	"fmt"
	"time"

	"github.com/micmonay/keybd_event"

	"xkeysend/keymap"
)

// Channel delivers a single key transition.
type Channel interface {
	Name() string
	// FakeHardware channels feed the server's input queue, so the pointer
	// position and lock state matter to them.
	FakeHardware() bool
	Key(dst Target, code keymap.Keycode, state uint16, press bool) error
}

// NewChannel picks a channel by its configured name.
func NewChannel(name string, sess Session, uinputDelay time.Duration) (Channel, error) {
	switch name {
	case "", "xtest":
		return &XTest{sess}, nil
	case "sendevent":
		return &SendEvent{sess}, nil
	case "uinput":
		return NewUinput(uinputDelay)
	}
	return nil, fmt.Errorf("inject: unknown channel %q", name)
}

// XTest fakes hardware input through the XTEST extension.
type XTest struct{ sess Session }

func (c *XTest) Name() string       { return "xtest" }
func (c *XTest) FakeHardware() bool { return true }
func (c *XTest) Key(_ Target, code keymap.Keycode, _ uint16, press bool) error {
	return c.sess.FakeKey(code, press)
}

// SendEvent sends synthetic key events straight to a window. Many clients
// ignore them, but they need no extension and no focus change.
type SendEvent struct{ sess Session }

func (c *SendEvent) Name() string       { return "sendevent" }
func (c *SendEvent) FakeHardware() bool { return false }
func (c *SendEvent) Key(dst Target, code keymap.Keycode, state uint16, press bool) error {
	err := c.sess.SendKey(dst.Window, code, state, press)
	if err != nil && errors.Is(err, ErrBadWindow) && dst.Child != None && dst.Child != dst.Window {
		err = c.sess.SendKey(dst.Child, code, state, press)
	}
	return err
}

// Uinput types through a kernel virtual keyboard. Linux input codes are
// X keycodes shifted down by 8.
type Uinput struct {
	kb keybd_event.KeyBonding
}

// NewUinput creates the virtual device and waits delay for the desktop
// to pick it up.
func NewUinput(delay time.Duration) (*Uinput, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("inject: uinput device: %w", err)
	}
	time.Sleep(delay)
	return &Uinput{kb: kb}, nil
}

func (c *Uinput) Name() string       { return "uinput" }
func (c *Uinput) FakeHardware() bool { return true }
func (c *Uinput) Key(_ Target, code keymap.Keycode, _ uint16, press bool) error {
	if code < 8 {
		return fmt.Errorf("inject: keycode %d has no uinput code", code)
	}
	c.kb.SetKeys(int(code) - 8)
	if press {
		return c.kb.Press()
	}
	return c.kb.Release()
}
