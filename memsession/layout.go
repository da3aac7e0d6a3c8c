package memsession

import (
	"xkeysend/keymap"
	"xkeysend/keysym"
)

// Keycodes of the US layout built by NewUS.
const (
	KeyEscape   keymap.Keycode = 9
	KeyTab      keymap.Keycode = 23
	KeyQ        keymap.Keycode = 24
	KeyE        keymap.Keycode = 26
	KeyReturn   keymap.Keycode = 36
	KeyControlL keymap.Keycode = 37
	KeyA        keymap.Keycode = 38
	KeyShiftL   keymap.Keycode = 50
	KeyC        keymap.Keycode = 54
	KeyShiftR   keymap.Keycode = 62
	KeyAltL     keymap.Keycode = 64
	KeySpace    keymap.Keycode = 65
	KeyCapsLock keymap.Keycode = 66
	KeyNumLock  keymap.Keycode = 77
	KeyControlR keymap.Keycode = 105
	KeyLevel3   keymap.Keycode = 108
	KeyDelete   keymap.Keycode = 119
	KeySuperL   keymap.Keycode = 133
)

func row(s string) []keysym.Keysym {
	out := make([]keysym.Keysym, 0, len(s))
	for _, r := range s {
		out = append(out, keysym.FromRune(r))
	}
	return out
}

// NewUS returns a session holding a small US layout: four levels per
// keycode, letters stored in lowercase only, AltGr on ISO_Level3_Shift in
// Mod5 and no Meta modifier.
func NewUS() *Session {
	s := New(8, 255, 4, 2)
	sym := keysym.Lookup

	s.SetRow(KeyEscape, keysym.Escape)
	for i, pair := range []string{"1!", "2@", "3#", "4$", "5%", "6^", "7&", "8*", "9(", "0)", "-_", "=+"} {
		s.SetRow(keymap.Keycode(10+i), row(pair)...)
	}
	s.SetRow(22, keysym.BackSpace)
	s.SetRow(KeyTab, keysym.Tab)
	for i, c := range "qwertyuiop" {
		s.SetRow(KeyQ+keymap.Keycode(i), keysym.FromRune(c))
	}
	s.SetRow(KeyE, 'e', 'E', sym("EuroSign"))
	s.SetRow(34, row("[{")...)
	s.SetRow(35, row("]}")...)
	s.SetRow(KeyReturn, keysym.Return)
	s.SetRow(KeyControlL, keysym.ControlL)
	for i, c := range "asdfghjkl" {
		s.SetRow(KeyA+keymap.Keycode(i), keysym.FromRune(c))
	}
	s.SetRow(47, row(";:")...)
	s.SetRow(48, row("'\"")...)
	s.SetRow(49, row("`~")...)
	s.SetRow(KeyShiftL, keysym.ShiftL)
	s.SetRow(51, row("\\|")...)
	for i, c := range "zxcvbnm" {
		s.SetRow(52+keymap.Keycode(i), keysym.FromRune(c))
	}
	s.SetRow(KeyC, 'c', 'C', sym("ccedilla"), sym("Ccedilla"))
	s.SetRow(59, row(",<")...)
	s.SetRow(60, row(".>")...)
	s.SetRow(61, row("/?")...)
	s.SetRow(KeyShiftR, keysym.ShiftR)
	s.SetRow(KeyAltL, keysym.AltL, keysym.MetaL)
	s.SetRow(KeySpace, ' ')
	s.SetRow(KeyCapsLock, keysym.CapsLock)
	for i := 0; i < 10; i++ {
		s.SetRow(67+keymap.Keycode(i), keysym.FunctionKeyFirst+keysym.Keysym(i))
	}
	s.SetRow(KeyNumLock, keysym.NumLock)
	s.SetRow(KeyControlR, keysym.ControlR)
	s.SetRow(KeyLevel3, keysym.ISOLevel3Shift)
	s.SetRow(KeyDelete, keysym.Delete)
	s.SetRow(KeySuperL, keysym.SuperL)

	s.SetModifier(0, KeyShiftL, KeyShiftR)
	s.SetModifier(1, KeyCapsLock)
	s.SetModifier(2, KeyControlL, KeyControlR)
	s.SetModifier(3, KeyAltL)
	s.SetModifier(4, KeyNumLock)
	s.SetModifier(6, KeySuperL)
	s.SetModifier(7, KeyLevel3)
	return s
}
