package main
/*
 xkeysend
 Types text and named keys into the focused X.Org window, whatever the
 current keyboard layout is.
/////////////////////////////////////////////////////////////////////////////
 Copyright (C) 2020-2021 Dmitry Svyatogorov ds@vo-ix.ru
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Affero General Public License as
    published by the Free Software Foundation, either version 3 of the
    License, or (at your option) any later version.
    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU Affero General Public License for more details.
    You should have received a copy of the GNU Affero General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
/////////////////////////////////////////////////////////////////////////////

  One-shot mode: "xkeysend -t 'text'", "-f file" or "--clipboard" types the
text, escapes included, and exits.
  Long-running mode reads stdin: every line is a key name to activate, or
"text ..." to type the rest of the line. With --hotkeys the keys of an
evdev device are bound to key names as well.

  A missing symbol is written into a spare keycode of the live keymap, so
everything with a keysym can be typed.

  Look "xkeysend.conf" config file for details.

Referrers:
 https://www.x.org/releases/current/doc/xproto/x11protocol.html#Keyboards
 https://www.x.org/releases/current/doc/xextproto/xtest.html
 https://www.kernel.org/doc/html/latest/input/uinput.html
*/

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"
	"golang.design/x/clipboard" // --clipboard

	"xkeysend/config"
	"xkeysend/hotkeys"
	"xkeysend/inject"
	"xkeysend/keyboard"
	"xkeysend/keymap"
	"xkeysend/logger"
	"xkeysend/memsession"
	"xkeysend/xsession"
)

type session interface {
	keymap.Session
	inject.Session
}

type app struct {
	flags *config.Flags
	conf  *config.Config
	log   *slog.Logger

	km  *keymap.State
	inj *inject.Injector
	kb  *keyboard.Keyboard

	x   *xsession.Session   // nil along --dry-run
	mem *memsession.Session // only along --dry-run
}

func main() {
	os.Exit(run())
}

func run() int {
	flags, err := config.ParseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	log := logger.New(os.Stderr, flags.Debug, flags.Verbose)

	conf, err := config.Load(flags.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	flags.Apply(conf)
	if err := conf.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if flags.Debug {
		log.Debug("config", "source", conf.Source, "delivery", conf.Delivery, "keymap", conf.Keymap)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{flags: flags, conf: conf, log: log}
	if err := a.connect(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.close()

	if flags.Window != "" {
		if a.x == nil {
			log.Warn("--window needs a display, ignored along --dry-run")
		} else {
			t, err := a.x.FindWindow(ctx, flags.Window)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			a.kb.SetFocusTarget(t)
		}
	}

	if flags.OneShot() {
		text, err := oneShotText(flags)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := a.kb.SendText(ctx, text); err != nil {
			log.Warn("not everything was typed", "err", err)
		}
		a.flush()
		return 0
	}

	if err := a.serve(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func (a *app) connect() error {
	var sess session
	if a.flags.DryRun {
		a.mem = memsession.NewUS()
		sess = a.mem
	} else {
		x, err := xsession.Open(a.flags.Display, !a.conf.Delivery.NoSync, a.log)
		if err != nil {
			return err
		}
		a.x = x
		sess = x
	}

	ch, err := inject.NewChannel(a.conf.Delivery.Channel, sess, a.conf.UinputDelay())
	if err != nil {
		a.close()
		return err
	}
	a.km = keymap.NewState(sess, a.conf.KeymapOptions(), a.log)
	a.inj = inject.New(sess, a.km, ch, a.conf.InjectOptions(), a.log)
	a.kb = keyboard.New(a.km, a.inj, a.conf.Policy(), a.log)
	if a.x != nil {
		a.kb.SetPicker(a.x)
	}
	return nil
}

func (a *app) close() {
	if a.x != nil {
		a.x.Close()
	}
}

// flush prints what a dry run would have sent.
func (a *app) flush() {
	if a.mem == nil {
		return
	}
	for _, line := range a.mem.Trace() {
		fmt.Println(line)
	}
	a.mem.Reset()
}

// reconfigure applies a reloaded config. The delivery channel and the
// display stay as they were at startup.
func (a *app) reconfigure(c *config.Config) {
	a.flags.Apply(c)
	if err := c.Validate(); err != nil {
		a.log.Warn("reloaded config rejected", "err", err)
		return
	}
	if c.Delivery.Channel != a.conf.Delivery.Channel {
		a.log.Warn("delivery channel changes need a restart", "channel", a.inj.Channel().Name())
	}
	a.conf = c
	a.km.SetOptions(c.KeymapOptions())
	a.inj.SetOptions(c.InjectOptions())
	a.kb.SetPolicy(c.Policy())
}

// serve is the main loop. Everything that types runs here, one request
// after another.
func (a *app) serve(ctx context.Context) error {
	var mapping <-chan struct{}
	if a.x != nil {
		mapping = a.x.MappingChanges()
	}

	var keys chan string
	if a.flags.Hotkeys {
		if a.conf.Hotkeys.Device == "" {
			return errors.New("--hotkeys: no [Hotkeys] Device configured")
		}
		l, err := hotkeys.Open(a.conf.Hotkeys.Device, a.conf.Hotkeys.Keys, a.conf.Hotkeys.Grab, a.log)
		if err != nil {
			return err
		}
		keys = make(chan string, 16)
		go l.Run(ctx, keys)
	}

	var reloads <-chan *config.Config
	if a.conf.Source != "" {
		var err error
		if reloads, err = config.Watch(ctx, a.conf.Source, a.log); err != nil {
			a.log.Warn("config changes will not be noticed", "err", err)
		}
	}

	lines := make(chan string, 16)
	go readLines(os.Stdin, lines)

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-mapping:
			if !ok {
				return errors.New("display connection closed")
			}
			a.kb.MappingInvalidated()
		case c, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			a.reconfigure(c)
		case name := <-keys:
			a.activate(ctx, name)
		case line, ok := <-lines:
			if !ok {
				if keys == nil {
					return nil // Nothing left to listen to.
				}
				lines = nil
				continue
			}
			if text, ok := strings.CutPrefix(line, "text "); ok {
				if err := a.kb.SendText(ctx, text); err != nil {
					a.log.Info("text not fully typed", "err", err)
				}
				a.flush()
				continue
			}
			if line = strings.TrimSpace(line); line != "" {
				a.activate(ctx, line)
			}
		}
	}
}

func (a *app) activate(ctx context.Context, name string) {
	if err := a.kb.OnSymbolicKeyActivated(ctx, name); err != nil {
		a.log.Info("key not typed", "name", name, "err", err)
	}
	a.flush()
}

func readLines(r io.Reader, out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out <- sc.Text()
	}
}

func oneShotText(f *config.Flags) (string, error) {
	switch {
	case f.Text != "":
		return f.Text, nil
	case f.File == "-":
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	case f.File != "":
		b, err := os.ReadFile(f.File)
		return string(b), err
	}
	if err := clipboard.Init(); err != nil {
		return "", fmt.Errorf("clipboard: %w", err)
	}
	return string(clipboard.Read(clipboard.FmtText)), nil
}
