// Package hotkeys turns the keys of an evdev device, typically a macro pad,
// into key names for the virtual keyboard.
package hotkeys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	evdev "github.com/holoplot/go-evdev"
	"github.com/tidwall/match"
)

var ErrNoDevice = errors.New("hotkeys: no such input device")

// Key event values: 0 release, 1 press, 2 autorepeat.
const keyPress int32 = 1

// Bindings maps kernel key names (KEY_F13) onto key names; a key name
// bound to a macro runs the macro.
type Bindings map[string]string

// Lookup returns the binding for an event code name. Names of aliased
// codes come joined with "/", any of them may be bound.
func (b Bindings) Lookup(codeName string) (string, bool) {
	for _, name := range strings.Split(codeName, "/") {
		if v, ok := b[name]; ok {
			return v, true
		}
	}
	return "", false
}

type Listener struct {
	dev  *evdev.InputDevice
	name string
	keys Bindings
	log  *slog.Logger
}

// Find resolves device: a path is used as is, anything else is a glob
// over device names.
func Find(device string) (string, error) {
	if strings.HasPrefix(device, "/") {
		return device, nil
	}
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return "", fmt.Errorf("hotkeys: list devices: %w", err)
	}
	for _, p := range paths {
		if match.Match(p.Name, device) {
			return p.Path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoDevice, device)
}

// Open opens device and grabs it if asked, so its keys reach no one else.
func Open(device string, keys Bindings, grab bool, log *slog.Logger) (*Listener, error) {
	if log == nil {
		log = slog.Default()
	}
	path, err := Find(device)
	if err != nil {
		return nil, err
	}
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hotkeys: open %s: %w", path, err)
	}
	name, _ := dev.Name()
	l := &Listener{dev: dev, name: name, keys: keys, log: log.With("component", "hotkeys", "device", name)}
	if grab {
		if err := dev.Grab(); err != nil {
			dev.Close()
			return nil, fmt.Errorf("hotkeys: grab %s: %w", path, err)
		}
	}
	l.log.Info("listening", "path", path, "grab", grab, "bindings", len(keys))
	return l, nil
}

// Run sends the binding of every pressed key to out until the device
// fails or ctx ends. It closes the device on return.
func (l *Listener) Run(ctx context.Context, out chan<- string) {
	stop := context.AfterFunc(ctx, func() { l.dev.Close() })
	defer func() {
		if stop() {
			l.dev.Close()
		}
	}()
	for {
		ev, err := l.dev.ReadOne()
		if err != nil {
			if ctx.Err() == nil {
				l.log.Warn("closing device", "err", err)
			}
			return
		}
		if ev.Type != evdev.EV_KEY || ev.Value != keyPress {
			continue
		}
		name := ev.CodeName()
		action, ok := l.keys.Lookup(name)
		if !ok {
			l.log.Debug("unbound key", "code", name)
			continue
		}
		select {
		case out <- action:
		case <-ctx.Done():
			return
		}
	}
}
