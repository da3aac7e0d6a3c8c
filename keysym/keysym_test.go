package keysym

import (
	"fmt"
	"testing"
)

func TestSpecialRange(t *testing.T) {
	for _, tc := range []struct {
		sym     Keysym
		special bool
	}{
		{'a', false},
		{0xe9, false},
		{ISOLevel3Shift, false},
		{BackSpace, true},
		{ShiftL, true},
		{Delete, true},
		{FromRune('ж'), false},
		{Lookup("XF86AudioMute"), true},
	} {
		if got := tc.sym.IsSpecial(); got != tc.special {
			t.Errorf("%v.IsSpecial() = %v", tc.sym, got)
		}
	}
}

func TestPrefersBaseLevel(t *testing.T) {
	if Keysym('a').PrefersBaseLevel() {
		t.Error("a prefers base level")
	}
	if !Lookup("F13").PrefersBaseLevel() {
		t.Error("F13 does not prefer base level")
	}
	if !FromRune('ж').PrefersBaseLevel() {
		t.Error("Unicode keysym does not prefer base level")
	}
}

func TestCase(t *testing.T) {
	if Keysym('Q').Lower() != 'q' || Keysym('q').Upper() != 'Q' {
		t.Error("Latin case mapping broken")
	}
	if Keysym('1').Upper() != '1' || !Keysym('z').IsLatinLetter() || Keysym('@').IsLatinLetter() {
		t.Error("Non-letters must stay untouched")
	}
}

func TestFromRune(t *testing.T) {
	for r, want := range map[rune]Keysym{
		'a':  'a',
		' ':  0x20,
		'é':  0xe9,
		'\n': Return,
		'\t': Tab,
		'\b': BackSpace,
		'€':  0x20ac,
		'ж':  0x01000436,
	} {
		if got := FromRune(r); got != want {
			t.Errorf("FromRune(%q) = %#x, want %#x", r, uint32(got), uint32(want))
		}
	}
}

func TestRuneRoundTrip(t *testing.T) {
	for _, r := range "aZ~é€ж" {
		if got := FromRune(r).Rune(); got != r {
			t.Errorf("%q came back as %q", r, got)
		}
	}
	if BackSpace.Rune() != -1 {
		t.Error("BackSpace has no printable rune")
	}
}

func TestParse(t *testing.T) {
	if k, err := Parse("0x1008ff12"); err != nil || k != Lookup("XF86AudioMute") {
		t.Errorf("Parse hex: %v %v", k, err)
	}
	if k, err := Parse("U0436"); err != nil || k != FromRune('ж') {
		t.Errorf("Parse Unicode: %v %v", k, err)
	}
	if _, err := Parse("NoSuchKey"); err == nil {
		t.Error("Parse must fail on unknown name")
	}
	if _, err := Parse("0xzz"); err == nil {
		t.Error("Parse must fail on bad hex")
	}
}

func ExampleKeysym_String() {
	fmt.Println(Keysym('A'), Return, FromRune('ж'), Keysym(0x12345678))
	// Output: A Return U0436 0x12345678
}

func ExampleLookup() {
	fmt.Printf("%#x %#x\n", uint32(Lookup("Mode_switch")), uint32(Lookup("KP_Enter")))
	// Output: 0xff7e 0xff8d
}
