package keymap

import (
	"fmt"

	"xkeysend/keysym"
)

// Snapshot is an immutable copy of the keycode table and modifier mapping.
type Snapshot struct {
	Min, Max   Keycode
	PerKeycode int

	raw  []keysym.Keysym // as read from the server
	syms []keysym.Keysym // with case pairs filled in

	modPer   int
	modCodes []Keycode
}

// Capture reads the current mapping from sess.
func Capture(sess Session) (*Snapshot, error) {
	lo, hi := sess.KeycodeRange()
	if hi < lo {
		return nil, fmt.Errorf("keymap: bad keycode range %d..%d", lo, hi)
	}
	per, syms, err := sess.KeyboardMapping(lo, int(hi)-int(lo)+1)
	if err != nil {
		return nil, fmt.Errorf("keymap: read keyboard mapping: %w", err)
	}
	if per < 1 || len(syms) < per*(int(hi)-int(lo)+1) {
		return nil, fmt.Errorf("keymap: short keyboard mapping (%d syms, %d per keycode)", len(syms), per)
	}
	modPer, modCodes, err := sess.ModifierMapping()
	if err != nil {
		return nil, fmt.Errorf("keymap: read modifier mapping: %w", err)
	}
	if len(modCodes) < 8*modPer {
		return nil, fmt.Errorf("keymap: short modifier mapping (%d codes, %d per modifier)", len(modCodes), modPer)
	}

	s := &Snapshot{
		Min:        lo,
		Max:        hi,
		PerKeycode: per,
		raw:        append([]keysym.Keysym(nil), syms...),
		syms:       append([]keysym.Keysym(nil), syms...),
		modPer:     modPer,
		modCodes:   append([]Keycode(nil), modCodes[:8*modPer]...),
	}
	s.pairCases()
	return s, nil
}

// pairCases fills an empty Shift level under a lone Latin letter with its
// uppercase form, the way the server itself interprets such rows.
func (s *Snapshot) pairCases() {
	if s.PerKeycode < 2 {
		return
	}
	for i := 0; i+1 < len(s.syms); i += s.PerKeycode {
		base := s.syms[i]
		if s.syms[i+1] == keysym.NoSymbol && base.IsLatinLetter() {
			s.syms[i] = base.Lower()
			s.syms[i+1] = base.Upper()
		}
	}
}

func (s *Snapshot) index(code Keycode, level int) int {
	if code < s.Min || code > s.Max || level < 0 || level >= s.PerKeycode {
		return -1
	}
	return (int(code)-int(s.Min))*s.PerKeycode + level
}

// Level returns the keysym at (code, level), NoSymbol when out of range.
func (s *Snapshot) Level(code Keycode, level int) keysym.Keysym {
	if i := s.index(code, level); i >= 0 {
		return s.syms[i]
	}
	return keysym.NoSymbol
}

// Row returns a copy of the normalized keysyms for code.
func (s *Snapshot) Row(code Keycode) []keysym.Keysym {
	i := s.index(code, 0)
	if i < 0 {
		return nil
	}
	return append([]keysym.Keysym(nil), s.syms[i:i+s.PerKeycode]...)
}

// rawRow returns a copy of the row as the server stored it.
func (s *Snapshot) rawRow(code Keycode) []keysym.Keysym {
	i := s.index(code, 0)
	if i < 0 {
		return nil
	}
	return append([]keysym.Keysym(nil), s.raw[i:i+s.PerKeycode]...)
}

// Keycode returns the lowest keycode carrying sym at any level.
func (s *Snapshot) Keycode(sym keysym.Keysym) (Keycode, bool) {
	if sym == keysym.NoSymbol {
		return 0, false
	}
	for code := int(s.Min); code <= int(s.Max); code++ {
		for level := 0; level < s.PerKeycode; level++ {
			if s.Level(Keycode(code), level) == sym {
				return Keycode(code), true
			}
		}
	}
	return 0, false
}

// Bucket returns the keycodes assigned to modifier bucket i (0..7).
func (s *Snapshot) Bucket(i int) []Keycode {
	if i < 0 || i > 7 {
		return nil
	}
	var out []Keycode
	for _, code := range s.modCodes[i*s.modPer : (i+1)*s.modPer] {
		if code != 0 {
			out = append(out, code)
		}
	}
	return out
}
