package keysym

import (
	"testing"
)

func TestLatin1Table(t *testing.T) {
	if len(latin1Names) != 0x100-0x20 {
		t.Errorf("Table misses %d entries", 0x100-0x20-len(latin1Names))
	}
	if latin1Names['A'-0x20] != "A" {
		t.Error("Misalignment before A")
	}
	if latin1Names['a'-0x20] != "a" {
		t.Error("Misalignment between A-a")
	}
	if latin1Names['~'-0x20] != "asciitilde" {
		t.Error("Misalignment between a-asciitilde")
	}
	if latin1Names[0xa0-0x20] != "nobreakspace" {
		t.Error("Misalignment before nobreakspace")
	}
	if latin1Names[0xe9-0x20] != "eacute" {
		t.Error("Misalignment between nobreakspace-eacute")
	}
	if latin1Names[0xff-0x20] != "ydiaeresis" {
		t.Error("Misalignment at ydiaeresis")
	}
}

func TestFunctionKeys(t *testing.T) {
	if Lookup("F1") != 0xffbe {
		t.Error("F1 misplaced")
	}
	if Lookup("F35") != 0xffe0 {
		t.Error("F35 misplaced")
	}
	if Lookup("L1") != Lookup("F11") {
		t.Error("L1 is not F11")
	}
	if Lookup("R15") != Lookup("F35") {
		t.Error("R15 is not F35")
	}
	if Lookup("F36") != NoSymbol {
		t.Error("F36 must not exist")
	}
}

func TestAliasesKeepCanonicalName(t *testing.T) {
	if Lookup("Page_Up") != Lookup("Prior") {
		t.Error("Page_Up is not Prior")
	}
	if Keysym(0xff55).String() != "Prior" {
		t.Errorf("Canonical name of 0xff55 is %q", Keysym(0xff55).String())
	}
	if ModeSwitch.String() != "Mode_switch" {
		t.Errorf("Canonical name of Mode_switch is %q", ModeSwitch.String())
	}
}

func TestNamedConstants(t *testing.T) {
	for name, sym := range map[string]Keysym{
		"BackSpace":        BackSpace,
		"Tab":              Tab,
		"Linefeed":         Linefeed,
		"Return":           Return,
		"Escape":           Escape,
		"Delete":           Delete,
		"Mode_switch":      ModeSwitch,
		"ISO_Level3_Shift": ISOLevel3Shift,
		"Caps_Lock":        CapsLock,
		"Shift_L":          ShiftL,
		"Super_R":          SuperR,
	} {
		if got := Lookup(name); got != sym {
			t.Errorf("%s: got %#x, want %#x", name, uint32(got), uint32(sym))
		}
	}
}
