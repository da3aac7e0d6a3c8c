// Package logger sets up the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
)

// Level maps the DEBUG and VERBOSE switches onto a level. Warnings are
// always shown.
func Level(debug, verbose bool) slog.Level {
	switch {
	case debug:
		return slog.LevelDebug
	case verbose:
		return slog.LevelInfo
	}
	return slog.LevelWarn
}

// New returns a text logger on w and makes it the default one.
func New(w io.Writer, debug, verbose bool) *slog.Logger {
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     Level(debug, verbose),
		AddSource: debug,
	}))
	slog.SetDefault(l)
	return l
}
