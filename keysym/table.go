package keysym

import "fmt"

// Names follow X11/keysymdef.h. The first entry for a value is its
// canonical name; later entries are aliases accepted by Lookup.

type entry struct {
	name string
	sym  Keysym
}

// Latin-1, laid out from 0x20 so the offset of each name is its value.
var latin1Names = []string{
	"space", "exclam", "quotedbl", "numbersign", "dollar", "percent", "ampersand", "apostrophe",
	"parenleft", "parenright", "asterisk", "plus", "comma", "minus", "period", "slash",
	"0", "1", "2", "3", "4", "5", "6", "7",
	"8", "9", "colon", "semicolon", "less", "equal", "greater", "question",
	"at", "A", "B", "C", "D", "E", "F", "G",
	"H", "I", "J", "K", "L", "M", "N", "O",
	"P", "Q", "R", "S", "T", "U", "V", "W",
	"X", "Y", "Z", "bracketleft", "backslash", "bracketright", "asciicircum", "underscore",
	"grave", "a", "b", "c", "d", "e", "f", "g",
	"h", "i", "j", "k", "l", "m", "n", "o",
	"p", "q", "r", "s", "t", "u", "v", "w",
	"x", "y", "z", "braceleft", "bar", "braceright", "asciitilde", "",
	"", "", "", "", "", "", "", "",
	"", "", "", "", "", "", "", "",
	"", "", "", "", "", "", "", "",
	"", "", "", "", "", "", "", "",
	"nobreakspace", "exclamdown", "cent", "sterling", "currency", "yen", "brokenbar", "section",
	"diaeresis", "copyright", "ordfeminine", "guillemotleft", "notsign", "hyphen", "registered", "macron",
	"degree", "plusminus", "twosuperior", "threesuperior", "acute", "mu", "paragraph", "periodcentered",
	"cedilla", "onesuperior", "masculine", "guillemotright", "onequarter", "onehalf", "threequarters", "questiondown",
	"Agrave", "Aacute", "Acircumflex", "Atilde", "Adiaeresis", "Aring", "AE", "Ccedilla",
	"Egrave", "Eacute", "Ecircumflex", "Ediaeresis", "Igrave", "Iacute", "Icircumflex", "Idiaeresis",
	"ETH", "Ntilde", "Ograve", "Oacute", "Ocircumflex", "Otilde", "Odiaeresis", "multiply",
	"Oslash", "Ugrave", "Uacute", "Ucircumflex", "Udiaeresis", "Yacute", "THORN", "ssharp",
	"agrave", "aacute", "acircumflex", "atilde", "adiaeresis", "aring", "ae", "ccedilla",
	"egrave", "eacute", "ecircumflex", "ediaeresis", "igrave", "iacute", "icircumflex", "idiaeresis",
	"eth", "ntilde", "ograve", "oacute", "ocircumflex", "otilde", "odiaeresis", "division",
	"oslash", "ugrave", "uacute", "ucircumflex", "udiaeresis", "yacute", "thorn", "ydiaeresis",
}

// Keysyms referenced by name in code.
const (
	BackSpace        Keysym = 0xff08
	Tab              Keysym = 0xff09
	Linefeed         Keysym = 0xff0a
	Return           Keysym = 0xff0d
	Escape           Keysym = 0xff1b
	MultiKey         Keysym = 0xff20
	ModeSwitch       Keysym = 0xff7e
	NumLock          Keysym = 0xff7f
	ShiftL           Keysym = 0xffe1
	ShiftR           Keysym = 0xffe2
	ControlL         Keysym = 0xffe3
	ControlR         Keysym = 0xffe4
	CapsLock         Keysym = 0xffe5
	ShiftLock        Keysym = 0xffe6
	MetaL            Keysym = 0xffe7
	MetaR            Keysym = 0xffe8
	AltL             Keysym = 0xffe9
	AltR             Keysym = 0xffea
	SuperL           Keysym = 0xffeb
	SuperR           Keysym = 0xffec
	ISOLevel3Shift   Keysym = 0xfe03
	ISOLeftTab       Keysym = 0xfe20
	Delete           Keysym = 0xffff
	KPFirst          Keysym = 0xff80
	KPLast           Keysym = 0xffbd
	FunctionKeyFirst Keysym = 0xffbe // F1
)

var special = []entry{
	{"BackSpace", BackSpace},
	{"Tab", Tab},
	{"Linefeed", Linefeed},
	{"Clear", 0xff0b},
	{"Return", Return},
	{"Pause", 0xff13},
	{"Scroll_Lock", 0xff14},
	{"Sys_Req", 0xff15},
	{"Escape", Escape},
	{"Delete", Delete},
	{"Multi_key", MultiKey},
	{"Codeinput", 0xff37},
	{"Kanji", 0xff21},
	{"Muhenkan", 0xff22},
	{"Henkan", 0xff23},
	{"Hiragana", 0xff25},
	{"Katakana", 0xff26},
	{"Zenkaku_Hankaku", 0xff2a},
	{"Hangul", 0xff31},
	{"Home", 0xff50},
	{"Left", 0xff51},
	{"Up", 0xff52},
	{"Right", 0xff53},
	{"Down", 0xff54},
	{"Prior", 0xff55},
	{"Page_Up", 0xff55},
	{"Next", 0xff56},
	{"Page_Down", 0xff56},
	{"End", 0xff57},
	{"Begin", 0xff58},
	{"Select", 0xff60},
	{"Print", 0xff61},
	{"Execute", 0xff62},
	{"Insert", 0xff63},
	{"Undo", 0xff65},
	{"Redo", 0xff66},
	{"Menu", 0xff67},
	{"Find", 0xff68},
	{"Cancel", 0xff69},
	{"Help", 0xff6a},
	{"Break", 0xff6b},
	{"Mode_switch", ModeSwitch},
	{"script_switch", ModeSwitch},
	{"ISO_Group_Shift", ModeSwitch},
	{"Num_Lock", NumLock},

	{"KP_Space", 0xff80},
	{"KP_Tab", 0xff89},
	{"KP_Enter", 0xff8d},
	{"KP_F1", 0xff91},
	{"KP_F2", 0xff92},
	{"KP_F3", 0xff93},
	{"KP_F4", 0xff94},
	{"KP_Home", 0xff95},
	{"KP_Left", 0xff96},
	{"KP_Up", 0xff97},
	{"KP_Right", 0xff98},
	{"KP_Down", 0xff99},
	{"KP_Prior", 0xff9a},
	{"KP_Page_Up", 0xff9a},
	{"KP_Next", 0xff9b},
	{"KP_Page_Down", 0xff9b},
	{"KP_End", 0xff9c},
	{"KP_Begin", 0xff9d},
	{"KP_Insert", 0xff9e},
	{"KP_Delete", 0xff9f},
	{"KP_Multiply", 0xffaa},
	{"KP_Add", 0xffab},
	{"KP_Separator", 0xffac},
	{"KP_Subtract", 0xffad},
	{"KP_Decimal", 0xffae},
	{"KP_Divide", 0xffaf},
	{"KP_0", 0xffb0},
	{"KP_1", 0xffb1},
	{"KP_2", 0xffb2},
	{"KP_3", 0xffb3},
	{"KP_4", 0xffb4},
	{"KP_5", 0xffb5},
	{"KP_6", 0xffb6},
	{"KP_7", 0xffb7},
	{"KP_8", 0xffb8},
	{"KP_9", 0xffb9},
	{"KP_Equal", 0xffbd},

	{"Shift_L", ShiftL},
	{"Shift_R", ShiftR},
	{"Control_L", ControlL},
	{"Control_R", ControlR},
	{"Caps_Lock", CapsLock},
	{"Shift_Lock", ShiftLock},
	{"Meta_L", MetaL},
	{"Meta_R", MetaR},
	{"Alt_L", AltL},
	{"Alt_R", AltR},
	{"Super_L", SuperL},
	{"Super_R", SuperR},
	{"Hyper_L", 0xffed},
	{"Hyper_R", 0xffee},

	{"ISO_Lock", 0xfe01},
	{"ISO_Level2_Latch", 0xfe02},
	{"ISO_Level3_Shift", ISOLevel3Shift},
	{"ISO_Level3_Latch", 0xfe04},
	{"ISO_Level3_Lock", 0xfe05},
	{"ISO_Level5_Shift", 0xfe11},
	{"ISO_Next_Group", 0xfe08},
	{"ISO_Prev_Group", 0xfe0a},
	{"ISO_Left_Tab", ISOLeftTab},

	{"dead_grave", 0xfe50},
	{"dead_acute", 0xfe51},
	{"dead_circumflex", 0xfe52},
	{"dead_tilde", 0xfe53},
	{"dead_macron", 0xfe54},
	{"dead_breve", 0xfe55},
	{"dead_abovedot", 0xfe56},
	{"dead_diaeresis", 0xfe57},
	{"dead_abovering", 0xfe58},
	{"dead_doubleacute", 0xfe59},
	{"dead_caron", 0xfe5a},
	{"dead_cedilla", 0xfe5b},
	{"dead_ogonek", 0xfe5c},

	{"EuroSign", 0x20ac},

	{"XF86AudioLowerVolume", 0x1008ff11},
	{"XF86AudioMute", 0x1008ff12},
	{"XF86AudioRaiseVolume", 0x1008ff13},
	{"XF86AudioPlay", 0x1008ff14},
	{"XF86AudioStop", 0x1008ff15},
	{"XF86AudioPrev", 0x1008ff16},
	{"XF86AudioNext", 0x1008ff17},
	{"XF86HomePage", 0x1008ff18},
	{"XF86Mail", 0x1008ff19},
	{"XF86Search", 0x1008ff1b},
	{"XF86Calculator", 0x1008ff1d},
	{"XF86Back", 0x1008ff26},
	{"XF86Forward", 0x1008ff27},
	{"XF86Refresh", 0x1008ff29},
}

// Characters outside Latin-1 that have a legacy keysym of their own.
var runeKeysyms = map[rune]Keysym{
	'€': 0x20ac,
}

var (
	names  = make(map[Keysym]string, 512)
	values = make(map[string]Keysym, 512)
)

func add(name string, sym Keysym) {
	if name == "" {
		return
	}
	if _, ok := names[sym]; !ok {
		names[sym] = name
	}
	values[name] = sym
}

func init() {
	for i, name := range latin1Names {
		add(name, Keysym(0x20+i))
	}
	for _, e := range special {
		add(e.name, e.sym)
	}
	// F1..F35; L1..L10 and R1..R15 alias F11..F35.
	for i := 0; i < 35; i++ {
		sym := FunctionKeyFirst + Keysym(i)
		add(fmt.Sprintf("F%d", i+1), sym)
		switch {
		case i >= 10 && i < 20:
			add(fmt.Sprintf("L%d", i-9), sym)
		case i >= 20:
			add(fmt.Sprintf("R%d", i-19), sym)
		}
	}
}
