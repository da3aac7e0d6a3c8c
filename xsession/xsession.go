// Package xsession talks to an X server over the core protocol and the
// XTEST extension. A Session serves both the keymap and the injector.
package xsession

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgb/xtest"

	"xkeysend/inject"
	"xkeysend/keymap"
	"xkeysend/keysym"
)

var ErrMappingBusy = errors.New("xsession: modifier keys are held, mapping not changed")

type Session struct {
	conn *xgb.Conn
	root xproto.Window
	min  keymap.Keycode
	max  keymap.Keycode

	// sync waits for the server's answer to every request, so errors
	// surface at the call that caused them.
	sync  bool
	xtest bool
	log   *slog.Logger

	mapping chan struct{}
}

// Open connects to display ("" means $DISPLAY) and starts reading its
// events. Without XTEST the session still works for SendEvent delivery.
func Open(display string, sync bool, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("xsession: connect %q: %w", display, err)
	}
	setup := xproto.Setup(conn)
	s := &Session{
		conn:    conn,
		root:    setup.DefaultScreen(conn).Root,
		min:     keymap.Keycode(setup.MinKeycode),
		max:     keymap.Keycode(setup.MaxKeycode),
		sync:    sync,
		log:     log.With("component", "xsession"),
		mapping: make(chan struct{}, 1),
	}
	if err := xtest.Init(conn); err != nil {
		s.log.Warn("XTEST unavailable, only SendEvent delivery works", "err", err)
	} else {
		s.xtest = true
	}
	s.log.Debug("connected", "display", display, "root", s.root, "keycodes", []keymap.Keycode{s.min, s.max})
	go s.readEvents()
	return s, nil
}

func (s *Session) Close() { s.conn.Close() }

// MappingChanges reports keyboard and modifier mapping changes. It is
// closed when the connection ends.
func (s *Session) MappingChanges() <-chan struct{} { return s.mapping }

func (s *Session) readEvents() {
	defer close(s.mapping)
	for {
		ev, err := s.conn.WaitForEvent()
		if ev == nil && err == nil {
			s.log.Info("connection closed")
			return
		}
		if err != nil {
			// Answers to requests nobody waited for.
			s.log.Warn("X error", "err", err)
			continue
		}
		if mn, ok := ev.(xproto.MappingNotifyEvent); ok && mn.Request != xproto.MappingPointer {
			select {
			case s.mapping <- struct{}{}:
			default:
			}
		}
	}
}

// wrap tags "no such window" replies so callers can test for them.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var we xproto.WindowError
	if errors.As(err, &we) {
		return fmt.Errorf("%w %#x: %v", inject.ErrBadWindow, we.BadValue, err)
	}
	return err
}

type checker interface{ Check() error }

func (s *Session) done(c checker) error { return wrap(c.Check()) }

// Session for keymap.

func (s *Session) KeycodeRange() (keymap.Keycode, keymap.Keycode) { return s.min, s.max }

func (s *Session) KeyboardMapping(first keymap.Keycode, count int) (int, []keysym.Keysym, error) {
	r, err := xproto.GetKeyboardMapping(s.conn, xproto.Keycode(first), byte(count)).Reply()
	if err != nil {
		return 0, nil, fmt.Errorf("xsession: keyboard mapping: %w", err)
	}
	syms := make([]keysym.Keysym, len(r.Keysyms))
	for i, k := range r.Keysyms {
		syms[i] = keysym.Keysym(k)
	}
	return int(r.KeysymsPerKeycode), syms, nil
}

func (s *Session) ChangeKeyboardMapping(first keymap.Keycode, per int, syms []keysym.Keysym) error {
	if per <= 0 || len(syms)%per != 0 {
		return fmt.Errorf("xsession: %d keysyms do not fill rows of %d", len(syms), per)
	}
	xs := make([]xproto.Keysym, len(syms))
	for i, k := range syms {
		xs[i] = xproto.Keysym(k)
	}
	err := xproto.ChangeKeyboardMappingChecked(s.conn, byte(len(syms)/per), xproto.Keycode(first), byte(per), xs).Check()
	if err != nil {
		return fmt.Errorf("xsession: change keyboard mapping: %w", err)
	}
	return nil
}

func (s *Session) ModifierMapping() (int, []keymap.Keycode, error) {
	r, err := xproto.GetModifierMapping(s.conn).Reply()
	if err != nil {
		return 0, nil, fmt.Errorf("xsession: modifier mapping: %w", err)
	}
	codes := make([]keymap.Keycode, len(r.Keycodes))
	for i, c := range r.Keycodes {
		codes[i] = keymap.Keycode(c)
	}
	return int(r.KeycodesPerModifier), codes, nil
}

func (s *Session) SetModifierMapping(per int, codes []keymap.Keycode) error {
	xc := make([]xproto.Keycode, len(codes))
	for i, c := range codes {
		xc[i] = xproto.Keycode(c)
	}
	r, err := xproto.SetModifierMapping(s.conn, byte(per), xc).Reply()
	if err != nil {
		return fmt.Errorf("xsession: set modifier mapping: %w", err)
	}
	switch r.Status {
	case xproto.MappingStatusSuccess:
		return nil
	case xproto.MappingStatusBusy:
		return ErrMappingBusy
	}
	return fmt.Errorf("xsession: set modifier mapping: status %d", r.Status)
}

// Session for inject.

func (s *Session) InputFocus() (inject.Window, error) {
	r, err := xproto.GetInputFocus(s.conn).Reply()
	if err != nil {
		return inject.None, fmt.Errorf("xsession: input focus: %w", err)
	}
	return inject.Window(r.Focus), nil
}

// SetInputFocus always waits for the answer: a vanished target has to be
// noticed before anything is typed.
func (s *Session) SetInputFocus(w inject.Window) error {
	return wrap(xproto.SetInputFocusChecked(s.conn, xproto.InputFocusParent, xproto.Window(w), xproto.TimeCurrentTime).Check())
}

func (s *Session) WindowExists(w inject.Window) bool {
	_, err := xproto.GetGeometry(s.conn, xproto.Drawable(w)).Reply()
	return err == nil
}

func (s *Session) FakeKey(code keymap.Keycode, press bool) error {
	if !s.xtest {
		return inject.ErrNoXTest
	}
	typ := byte(xproto.KeyRelease)
	if press {
		typ = xproto.KeyPress
	}
	if !s.sync {
		xtest.FakeInput(s.conn, typ, byte(code), 0, s.root, 0, 0, 0)
		return nil
	}
	return s.done(xtest.FakeInputChecked(s.conn, typ, byte(code), 0, s.root, 0, 0, 0))
}

func (s *Session) FakeButton(button uint8, press bool) error {
	if !s.xtest {
		return inject.ErrNoXTest
	}
	typ := byte(xproto.ButtonRelease)
	if press {
		typ = xproto.ButtonPress
	}
	if !s.sync {
		xtest.FakeInput(s.conn, typ, button, 0, s.root, 0, 0, 0)
		return nil
	}
	return s.done(xtest.FakeInputChecked(s.conn, typ, button, 0, s.root, 0, 0, 0))
}

// SendKey addresses a synthetic key event to w. PointerRoot sends it to
// whichever window has the focus.
func (s *Session) SendKey(w inject.Window, code keymap.Keycode, state uint16, press bool) error {
	ev := xproto.KeyPressEvent{
		Detail:     xproto.Keycode(code),
		Time:       xproto.TimeCurrentTime,
		Root:       s.root,
		Event:      xproto.Window(w),
		Child:      xproto.WindowNone,
		RootX:      1,
		RootY:      1,
		EventX:     1,
		EventY:     1,
		State:      state,
		SameScreen: true,
	}
	dst := xproto.Window(w)
	if w == inject.PointerRoot {
		dst = xproto.SendEventDestItemFocus
		ev.Event = s.root
	}
	mask, data := uint32(xproto.EventMaskKeyPress), ev.Bytes()
	if !press {
		mask, data = xproto.EventMaskKeyRelease, xproto.KeyReleaseEvent(ev).Bytes()
	}
	if !s.sync {
		xproto.SendEvent(s.conn, true, dst, mask, string(data))
		return nil
	}
	return s.done(xproto.SendEventChecked(s.conn, true, dst, mask, string(data)))
}

func (s *Session) QueryPointer() (inject.Pointer, error) {
	r, err := xproto.QueryPointer(s.conn, s.root).Reply()
	if err != nil {
		return inject.Pointer{}, fmt.Errorf("xsession: query pointer: %w", err)
	}
	return inject.Pointer{
		Root:  inject.Window(r.Root),
		Child: inject.Window(r.Child),
		RootX: r.RootX,
		RootY: r.RootY,
		Mask:  r.Mask,
	}, nil
}

func (s *Session) WarpPointer(w inject.Window, x, y int16) error {
	dst := xproto.Window(w)
	if w == inject.None {
		dst = s.root
	}
	if !s.sync {
		xproto.WarpPointer(s.conn, xproto.WindowNone, dst, 0, 0, 0, 0, x, y)
		return nil
	}
	return s.done(xproto.WarpPointerChecked(s.conn, xproto.WindowNone, dst, 0, 0, 0, 0, x, y))
}

func (s *Session) Bell() error {
	xproto.Bell(s.conn, 0)
	return nil
}
