// Package memsession is an in-memory display session. It keeps a keyboard
// mapping and a focus, records every input event instead of delivering it,
// and backs the dry-run mode.
package memsession

import (
	"fmt"

	"xkeysend/inject"
	"xkeysend/keymap"
	"xkeysend/keysym"
)

// Root is the id of the simulated root window.
const Root inject.Window = 0x100

type Kind int

const (
	FakeKey Kind = iota
	SentKey
	Button
	Warp
	Focus
	Bell
)

// Event is one recorded request.
type Event struct {
	Kind    Kind
	Keycode keymap.Keycode
	Press   bool
	Window  inject.Window
	State   uint16
	Button  uint8
	X, Y    int16
}

type Session struct {
	Min, Max   keymap.Keycode
	PerKeycode int
	Syms       []keysym.Keysym

	PerModifier int
	Modifiers   []keymap.Keycode

	Focus   inject.Window
	Windows map[inject.Window]bool
	Pointer inject.Pointer
	NoXTest bool

	Events         []Event
	MappingWrites  int
	ModifierWrites int
}

// New returns an empty map of keycodes lo..hi with per levels each.
func New(lo, hi keymap.Keycode, per, perModifier int) *Session {
	return &Session{
		Min:         lo,
		Max:         hi,
		PerKeycode:  per,
		Syms:        make([]keysym.Keysym, (int(hi)-int(lo)+1)*per),
		PerModifier: perModifier,
		Modifiers:   make([]keymap.Keycode, 8*perModifier),
		Focus:       inject.PointerRoot,
		Windows:     map[inject.Window]bool{Root: true},
		Pointer:     inject.Pointer{Root: Root},
	}
}

// SetRow replaces the keysyms of code, padding with NoSymbol.
func (s *Session) SetRow(code keymap.Keycode, syms ...keysym.Keysym) {
	i := (int(code) - int(s.Min)) * s.PerKeycode
	for l := 0; l < s.PerKeycode; l++ {
		s.Syms[i+l] = keysym.NoSymbol
		if l < len(syms) {
			s.Syms[i+l] = syms[l]
		}
	}
}

// Row returns the stored keysyms of code.
func (s *Session) Row(code keymap.Keycode) []keysym.Keysym {
	i := (int(code) - int(s.Min)) * s.PerKeycode
	return append([]keysym.Keysym(nil), s.Syms[i:i+s.PerKeycode]...)
}

// SetModifier fills bucket (0..7) with codes.
func (s *Session) SetModifier(bucket int, codes ...keymap.Keycode) {
	for p := 0; p < s.PerModifier; p++ {
		s.Modifiers[bucket*s.PerModifier+p] = 0
		if p < len(codes) {
			s.Modifiers[bucket*s.PerModifier+p] = codes[p]
		}
	}
}

// Session for keymap.

func (s *Session) KeycodeRange() (keymap.Keycode, keymap.Keycode) { return s.Min, s.Max }

func (s *Session) KeyboardMapping(first keymap.Keycode, count int) (int, []keysym.Keysym, error) {
	if first < s.Min || int(first)+count-1 > int(s.Max) {
		return 0, nil, fmt.Errorf("memsession: keycodes %d+%d out of range", first, count)
	}
	i := (int(first) - int(s.Min)) * s.PerKeycode
	return s.PerKeycode, append([]keysym.Keysym(nil), s.Syms[i:i+count*s.PerKeycode]...), nil
}

func (s *Session) ChangeKeyboardMapping(first keymap.Keycode, per int, syms []keysym.Keysym) error {
	if per != s.PerKeycode || len(syms)%per != 0 {
		return fmt.Errorf("memsession: %d keysyms per keycode, got %d", s.PerKeycode, per)
	}
	count := len(syms) / per
	if first < s.Min || int(first)+count-1 > int(s.Max) {
		return fmt.Errorf("memsession: keycodes %d+%d out of range", first, count)
	}
	copy(s.Syms[(int(first)-int(s.Min))*per:], syms)
	s.MappingWrites++
	return nil
}

func (s *Session) ModifierMapping() (int, []keymap.Keycode, error) {
	return s.PerModifier, append([]keymap.Keycode(nil), s.Modifiers...), nil
}

func (s *Session) SetModifierMapping(per int, codes []keymap.Keycode) error {
	if len(codes) != 8*per {
		return fmt.Errorf("memsession: %d modifier keycodes for %d per modifier", len(codes), per)
	}
	s.PerModifier = per
	s.Modifiers = append([]keymap.Keycode(nil), codes...)
	s.ModifierWrites++
	return nil
}

// Session for inject.

func (s *Session) InputFocus() (inject.Window, error) { return s.Focus, nil }

func (s *Session) SetInputFocus(w inject.Window) error {
	if !s.WindowExists(w) {
		return fmt.Errorf("%w: %#x", inject.ErrBadWindow, uint32(w))
	}
	s.Focus = w
	s.Events = append(s.Events, Event{Kind: Focus, Window: w})
	return nil
}

func (s *Session) WindowExists(w inject.Window) bool { return s.Windows[w] }

func (s *Session) FakeKey(code keymap.Keycode, press bool) error {
	if s.NoXTest {
		return inject.ErrNoXTest
	}
	s.Events = append(s.Events, Event{Kind: FakeKey, Keycode: code, Press: press})
	return nil
}

func (s *Session) FakeButton(button uint8, press bool) error {
	if s.NoXTest {
		return inject.ErrNoXTest
	}
	s.Events = append(s.Events, Event{Kind: Button, Button: button, Press: press})
	return nil
}

func (s *Session) SendKey(w inject.Window, code keymap.Keycode, state uint16, press bool) error {
	if w != inject.PointerRoot && !s.WindowExists(w) {
		return fmt.Errorf("%w: %#x", inject.ErrBadWindow, uint32(w))
	}
	s.Events = append(s.Events, Event{Kind: SentKey, Keycode: code, Press: press, Window: w, State: state})
	return nil
}

func (s *Session) QueryPointer() (inject.Pointer, error) { return s.Pointer, nil }

func (s *Session) WarpPointer(w inject.Window, x, y int16) error {
	if w != inject.None {
		if !s.WindowExists(w) {
			return fmt.Errorf("%w: %#x", inject.ErrBadWindow, uint32(w))
		}
		s.Pointer.Child = w
	} else {
		s.Pointer.RootX, s.Pointer.RootY = x, y
	}
	s.Events = append(s.Events, Event{Kind: Warp, Window: w, X: x, Y: y})
	return nil
}

func (s *Session) Bell() error {
	s.Events = append(s.Events, Event{Kind: Bell})
	return nil
}

// Reset forgets recorded events.
func (s *Session) Reset() { s.Events = nil }

// Bells counts recorded bells.
func (s *Session) Bells() int {
	n := 0
	for _, e := range s.Events {
		if e.Kind == Bell {
			n++
		}
	}
	return n
}

// Keys renders recorded key transitions as "+name"/"-name", naming each
// keycode by its current base keysym.
func (s *Session) Keys() []string {
	var out []string
	for _, e := range s.Events {
		if e.Kind != FakeKey && e.Kind != SentKey {
			continue
		}
		sign := "-"
		if e.Press {
			sign = "+"
		}
		out = append(out, sign+s.name(e.Keycode))
	}
	return out
}

// Trace renders every recorded event, key transitions the way Keys does.
func (s *Session) Trace() []string {
	out := make([]string, 0, len(s.Events))
	for _, e := range s.Events {
		switch e.Kind {
		case FakeKey, SentKey:
			sign := "-"
			if e.Press {
				sign = "+"
			}
			out = append(out, fmt.Sprintf("%s%s\t%v", sign, s.name(e.Keycode), e))
		default:
			out = append(out, e.String())
		}
	}
	return out
}

func (s *Session) name(code keymap.Keycode) string {
	if code < s.Min || code > s.Max {
		return fmt.Sprintf("%d", code)
	}
	row := s.Row(code)
	for _, sym := range row {
		if sym != keysym.NoSymbol {
			return sym.String()
		}
	}
	return fmt.Sprintf("%d", code)
}

func (e Event) String() string {
	sign := "release"
	if e.Press {
		sign = "press"
	}
	switch e.Kind {
	case FakeKey:
		return fmt.Sprintf("xtest %s keycode=%d", sign, e.Keycode)
	case SentKey:
		return fmt.Sprintf("send %s keycode=%d window=%#x state=%#x", sign, e.Keycode, uint32(e.Window), e.State)
	case Button:
		return fmt.Sprintf("button %s %d", sign, e.Button)
	case Warp:
		return fmt.Sprintf("warp window=%#x %d,%d", uint32(e.Window), e.X, e.Y)
	case Focus:
		return fmt.Sprintf("focus window=%#x", uint32(e.Window))
	}
	return "bell"
}
