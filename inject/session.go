// Package inject turns a resolved key into the ordered press and release
// events of its modifiers and the key itself, and delivers them to the
// focused window.
package inject

import (
	"errors"

	"xkeysend/keymap"
)

// Window is a display server window id.
type Window uint32

const (
	None        Window = 0
	PointerRoot Window = 1
)

// Target is the window that should receive input, with the deepest
// child under it used as a fallback destination.
type Target struct {
	Window Window
	Child  Window
}

func (t Target) IsZero() bool { return t.Window == None && t.Child == None }

// Pointer is the result of a pointer query on the root window.
type Pointer struct {
	Root, Child  Window
	RootX, RootY int16
	Mask         uint16
}

// Session is the part of a display connection used for delivery.
type Session interface {
	InputFocus() (Window, error)
	SetInputFocus(w Window) error
	WindowExists(w Window) bool
	FakeKey(code keymap.Keycode, press bool) error
	FakeButton(button uint8, press bool) error
	SendKey(w Window, code keymap.Keycode, state uint16, press bool) error
	QueryPointer() (Pointer, error)
	// WarpPointer moves the pointer to (x, y) relative to w, or to root
	// coordinates when w is None.
	WarpPointer(w Window, x, y int16) error
	Bell() error
}

var (
	ErrSelfFocusRejected = errors.New("inject: focus is on our own window")
	ErrTargetGone        = errors.New("inject: focus target no longer exists")
	// ErrBadWindow is wrapped by sessions when the server rejects a window id.
	ErrBadWindow = errors.New("inject: bad window")
	ErrNoXTest   = errors.New("inject: XTEST extension unavailable")
)
