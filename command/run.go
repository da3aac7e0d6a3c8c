package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"xkeysend/inject"
	"xkeysend/keymap"
	"xkeysend/keysym"
)

// Executor carries out the steps of a command string.
type Executor interface {
	// TypeKeysym produces sym with the given modifiers held.
	TypeKeysym(ctx context.Context, sym keysym.Keysym, mods keymap.Mods) error
	// Activate handles a key name as if it were pressed on the keyboard.
	// It receives the current latch and returns the latch to continue with.
	Activate(ctx context.Context, name string, latch keymap.Mods) (keymap.Mods, error)
	// Direct presses and/or releases the keysym named name.
	Direct(ctx context.Context, name string, action inject.Action) error
	Click(button uint8) error
	MovePointer(axis inject.Axis, value int, relative bool) error
}

// Runner runs command strings through an Executor, pausing Delay before
// each step.
type Runner struct {
	Exec  Executor
	Delay time.Duration
	Log   *slog.Logger
}

func NewRunner(exec Executor, delay time.Duration, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{Exec: exec, Delay: delay, Log: log.With("component", "command")}
}

// Run parses and executes text. Malformed escapes and failed steps are
// logged and skipped; they are also returned, joined, once the whole
// string has been processed. Only a cancelled context stops it early.
func (r *Runner) Run(ctx context.Context, text string) error {
	ops, errs := Parse(text)
	for _, err := range errs {
		r.Log.Warn("skipping malformed escape", "err", err)
	}

	var latch keymap.Mods
	for _, op := range ops {
		if err := sleep(ctx, r.Delay); err != nil {
			return err
		}
		var err error
		switch op.Kind {
		case Char:
			err = r.Exec.TypeKeysym(ctx, op.Sym, latch)
			latch = 0
		case Activate:
			latch, err = r.Exec.Activate(ctx, op.Name, latch)
		case Direct:
			err = r.Exec.Direct(ctx, op.Name, op.Action)
		case Latch:
			latch |= op.Mod
		case Delay:
			err = sleep(ctx, time.Duration(op.N)*100*time.Millisecond)
		case Click:
			err = r.Exec.Click(uint8(op.N))
		case Move:
			err = r.Exec.MovePointer(op.Axis, op.N, op.Relative)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			r.Log.Warn("step failed", "pos", op.Pos, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
