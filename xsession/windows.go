package xsession

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jezek/xgb/xproto"
	"github.com/tidwall/match"

	"xkeysend/inject"
)

var ErrNoWindow = errors.New("xsession: no matching window")

// WindowNames returns the names a window is matched by: the WM_CLASS
// instance and class, then WM_NAME. Missing properties are skipped.
func (s *Session) WindowNames(w xproto.Window) []string {
	var names []string
	if v := s.property(w, xproto.AtomWmClass); len(v) > 0 {
		for _, part := range bytes.Split(bytes.TrimRight(v, "\x00"), []byte{0}) {
			names = append(names, string(part))
		}
	}
	if v := s.property(w, xproto.AtomWmName); len(v) > 0 {
		names = append(names, string(v))
	}
	return names
}

func (s *Session) property(w xproto.Window, atom xproto.Atom) []byte {
	r, err := xproto.GetProperty(s.conn, false, w, atom, xproto.GetPropertyTypeAny, 0, 1024).Reply()
	if err != nil || r.Format != 8 {
		return nil
	}
	return r.Value
}

// FindWindow walks the window tree breadth first and returns the first
// window whose class, instance or title matches the glob pattern.
func (s *Session) FindWindow(ctx context.Context, pattern string) (inject.Target, error) {
	queue := []xproto.Window{s.root}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return inject.Target{}, err
		}
		w := queue[0]
		queue = queue[1:]
		for _, name := range s.WindowNames(w) {
			if match.Match(name, pattern) {
				s.log.Info("window found", "pattern", pattern, "window", w, "name", name)
				return inject.Target{Window: inject.Window(w), Child: s.deepest(w)}, nil
			}
		}
		r, err := xproto.QueryTree(s.conn, w).Reply()
		if err != nil {
			// Windows come and go while we walk.
			continue
		}
		queue = append(queue, r.Children...)
	}
	return inject.Target{}, fmt.Errorf("%w: %s", ErrNoWindow, pattern)
}

// PickTarget takes the window holding the focus, or the one under the
// pointer when focus follows the pointer.
func (s *Session) PickTarget(context.Context) (inject.Target, error) {
	focus, err := s.InputFocus()
	if err != nil {
		return inject.Target{}, err
	}
	w := xproto.Window(focus)
	if focus == inject.None || focus == inject.PointerRoot {
		p, err := s.QueryPointer()
		if err != nil {
			return inject.Target{}, err
		}
		if p.Child == inject.None {
			return inject.Target{}, ErrNoWindow
		}
		w = xproto.Window(p.Child)
	}
	return inject.Target{Window: inject.Window(w), Child: s.deepest(w)}, nil
}

// deepest descends from w through the children under the pointer.
func (s *Session) deepest(w xproto.Window) inject.Window {
	for depth := 0; depth < 32; depth++ {
		r, err := xproto.QueryPointer(s.conn, w).Reply()
		if err != nil || r.Child == xproto.WindowNone {
			break
		}
		w = r.Child
	}
	return inject.Window(w)
}
