// Package config reads the TOML configuration, falling back to the
// built-in one, and layers environment and command line overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"

	"xkeysend/embeddedConfig"
	"xkeysend/inject"
	"xkeysend/keyboard"
	"xkeysend/keymap"
)

var ErrInvalid = errors.New("config: invalid")

type TDelivery struct {
	Channel         string `toml:"Channel" default:"xtest"`
	NoSync          bool   `toml:"NoSync"`
	JumpPointer     bool   `toml:"JumpPointer" default:"true"`
	JumpPointerBack bool   `toml:"JumpPointerBack" default:"true"`
	AltGrKeycode    int    `toml:"AltGrKeycode"`
	CapsLockGuard   bool   `toml:"CapsLockGuard" default:"true"`
	UinputDelay     int    `toml:"UinputDelay" default:"200"` // ms
}

type TKeymap struct {
	AutoAddKeysym     bool `toml:"AutoAddKeysym" default:"true"`
	PromoteModeSwitch bool `toml:"PromoteModeSwitch" default:"true"`
	KeypadKeysym      bool `toml:"KeypadKeysym"`
}

type TSticky struct {
	ShiftLock     bool `toml:"ShiftLock"`
	ModifiersLock bool `toml:"ModifiersLock"`
	AltGrLock     bool `toml:"AltGrLock"`
}

type TText struct {
	Delay int `toml:"Delay" default:"10"` // ms
}

type TSecurity struct {
	Secure         bool `toml:"Secure"`
	CommandTimeout int  `toml:"CommandTimeout" default:"10"` // s
}

type THotkeys struct {
	Device string            `toml:"Device"`
	Grab   bool              `toml:"Grab"`
	Keys   map[string]string `toml:"Keys"`
}

type Config struct {
	Delivery TDelivery         `toml:"Delivery"`
	Keymap   TKeymap           `toml:"Keymap"`
	Sticky   TSticky           `toml:"Sticky"`
	Text     TText             `toml:"Text"`
	Security TSecurity         `toml:"Security"`
	Macros   map[string]string `toml:"Macros"`
	Hotkeys  THotkeys          `toml:"Hotkeys"`

	// Source is the file the config came from, empty for the built-in one.
	Source string `toml:"-"`
}

// Parse decodes and validates TOML text.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	c, err := Parse([]byte(embeddedConfig.Toml))
	if err != nil {
		panic(err) // Broken build.
	}
	return c
}

var channels = map[string]bool{"xtest": true, "sendevent": true, "uinput": true}

// prefixes a macro name may carry.
var macroPrefixes = "scamw"

func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if !channels[c.Delivery.Channel] {
		bad("[Delivery] Channel %q, want xtest, sendevent or uinput", c.Delivery.Channel)
	}
	if c.Delivery.AltGrKeycode != 0 && (c.Delivery.AltGrKeycode < 8 || c.Delivery.AltGrKeycode > 255) {
		bad("[Delivery] AltGrKeycode %d out of 8..255", c.Delivery.AltGrKeycode)
	}
	if c.Delivery.UinputDelay < 0 {
		bad("[Delivery] UinputDelay %d is negative", c.Delivery.UinputDelay)
	}
	if c.Text.Delay < 0 {
		bad("[Text] Delay %d is negative", c.Text.Delay)
	}
	if c.Security.CommandTimeout < 0 {
		bad("[Security] CommandTimeout %d is negative", c.Security.CommandTimeout)
	}
	for name := range c.Macros {
		if len(name) > 2 && name[1] == ':' && !strings.ContainsRune(macroPrefixes, rune(name[0])) {
			bad("[Macros] %q: unknown modifier prefix %q", name, name[:2])
		}
		if strings.TrimSpace(name) == "" {
			bad("[Macros] empty name")
		}
	}
	return errors.Join(errs...)
}

// SearchPath lists the config files tried in order.
func SearchPath() []string {
	paths := []string{"/etc/xkeysend/xkeysend.conf"}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		}
	}
	if dir != "" {
		paths = append(paths, filepath.Join(dir, "xkeysend", "xkeysend.conf"))
	}
	return paths
}

// Find returns the first existing file of SearchPath, or "".
func Find() string {
	for _, p := range SearchPath() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads path. An unreadable file falls back to the built-in config
// with a notice on stderr; a file that does not parse is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		fmt.Fprintln(os.Stderr, "* No config file, using defaults!")
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("Config error: unable to read config file:\n%w", err))
		fmt.Fprintln(os.Stderr, "* Using defaults!")
		return Default(), nil
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Source = path
	return c, nil
}

// Keymap options.
func (c *Config) KeymapOptions() keymap.Options {
	return keymap.Options{
		AutoAddKeysym:     c.Keymap.AutoAddKeysym,
		PromoteModeSwitch: c.Keymap.PromoteModeSwitch,
	}
}

// Injector options, without the caller's own windows.
func (c *Config) InjectOptions() inject.Options {
	return inject.Options{
		JumpPointer:     c.Delivery.JumpPointer,
		JumpPointerBack: c.Delivery.JumpPointerBack,
		AltGrKeycode:    keymap.Keycode(c.Delivery.AltGrKeycode),
		CapsLockGuard:   c.Delivery.CapsLockGuard,
	}
}

func (c *Config) Policy() keyboard.Policy {
	return keyboard.Policy{
		ShiftLock:      c.Sticky.ShiftLock,
		ModifiersLock:  c.Sticky.ModifiersLock,
		AltGrLock:      c.Sticky.AltGrLock,
		KeypadKeysym:   c.Keymap.KeypadKeysym,
		Secure:         c.Security.Secure,
		Macros:         c.Macros,
		CommandTimeout: time.Duration(c.Security.CommandTimeout) * time.Second,
		TextDelay:      time.Duration(c.Text.Delay) * time.Millisecond,
	}
}

func (c *Config) UinputDelay() time.Duration {
	return time.Duration(c.Delivery.UinputDelay) * time.Millisecond
}
