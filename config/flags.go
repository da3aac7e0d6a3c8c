package config

import (
	"os"

	flag "github.com/spf13/pflag" // CLI keys like python's "argparse"
)

// Flags are the command line switches. Environment variables CONFIG,
// DEBUG and VERBOSE seed the matching flags.
type Flags struct {
	Config  string
	Debug   bool
	Verbose bool

	Text      string
	File      string
	Clipboard bool
	Display   string
	Window    string
	DryRun    bool
	Hotkeys   bool

	Delay         int
	XSendEvent    bool
	Uinput        bool
	NoSync        bool
	NoJumpPointer bool
	NoAddKeysym   bool
	AltGrKeycode  int
	Secure        bool

	set *flag.FlagSet
}

// ParseFlags reads args (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{Config: Find()}
	if env, ok := os.LookupEnv("CONFIG"); ok {
		f.Config = env
	}
	_, f.Debug = os.LookupEnv("DEBUG")
	_, f.Verbose = os.LookupEnv("VERBOSE")

	F := flag.NewFlagSet("xkeysend", flag.ContinueOnError)
	F.StringVarP(&f.Config, "conf", "c", f.Config, "Non-default config location")
	F.BoolVarP(&f.Debug, "debug", "d", f.Debug, "Debug log level")
	F.BoolVarP(&f.Verbose, "verbose", "v", f.Verbose, "Increase log level to INFO")

	F.StringVarP(&f.Text, "text", "t", "", "Type this text and exit")
	F.StringVarP(&f.File, "file", "f", "", "Type the contents of this file and exit (\"-\" is stdin)")
	F.BoolVar(&f.Clipboard, "clipboard", false, "Type the clipboard text and exit")
	F.StringVar(&f.Display, "display", "", "X display, $DISPLAY if empty")
	F.StringVarP(&f.Window, "window", "w", "", "Send to the window whose class or title matches this glob")
	F.BoolVar(&f.DryRun, "dry-run", false, "Type into an in-memory US keyboard and print the events")
	F.BoolVar(&f.Hotkeys, "hotkeys", false, "Listen to the [Hotkeys] device")

	F.IntVar(&f.Delay, "delay", 0, "Milliseconds between characters")
	F.BoolVar(&f.XSendEvent, "xsendevent", false, "Deliver with SendEvent instead of XTEST")
	F.BoolVar(&f.Uinput, "uinput", false, "Deliver through a uinput virtual keyboard")
	F.BoolVar(&f.NoSync, "no-sync", false, "Do not wait for the server after each event")
	F.BoolVar(&f.NoJumpPointer, "no-jump-pointer", false, "Do not move the pointer into the target window")
	F.BoolVar(&f.NoAddKeysym, "no-add-keysym", false, "Never write missing keysyms into the keymap")
	F.IntVar(&f.AltGrKeycode, "altgr-keycode", 0, "Keycode to press for AltGr")
	F.BoolVar(&f.Secure, "secure", false, "Refuse to run macro commands")

	if err := F.Parse(args); err != nil {
		return nil, err
	}
	f.set = F
	return f, nil
}

func (f *Flags) changed(name string) bool { return f.set != nil && f.set.Changed(name) }

// Apply overrides c with the switches given on the command line.
func (f *Flags) Apply(c *Config) {
	if f.changed("delay") {
		c.Text.Delay = f.Delay
	}
	switch {
	case f.Uinput:
		c.Delivery.Channel = "uinput"
	case f.XSendEvent:
		c.Delivery.Channel = "sendevent"
	}
	if f.NoSync {
		c.Delivery.NoSync = true
	}
	if f.NoJumpPointer {
		c.Delivery.JumpPointer = false
	}
	if f.NoAddKeysym {
		c.Keymap.AutoAddKeysym = false
	}
	if f.changed("altgr-keycode") {
		c.Delivery.AltGrKeycode = f.AltGrKeycode
	}
	if f.Secure {
		c.Security.Secure = true
	}
}

// OneShot reports whether some text is to be typed before exiting.
func (f *Flags) OneShot() bool {
	return f.Text != "" || f.File != "" || f.Clipboard
}
