package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// Watch reloads path whenever it is written and sends every config that
// parses. Broken rewrites are logged and skipped. Both channels close
// when ctx ends.
func Watch(ctx context.Context, path string, log *slog.Logger) (<-chan *Config, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "config")
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}
	// Editors replace files, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("config: watch %s: %w", filepath.Dir(path), err)
	}

	out := make(chan *Config)
	reload := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()
		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				if debounce != nil {
					debounce.Stop()
				}
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != filepath.Base(path) || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDelay, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			case <-reload:
				c, err := Load(path)
				if err != nil {
					log.Warn("config not reloaded", "err", err)
					continue
				}
				log.Info("config reloaded", "path", path)
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher", "err", err)
			}
		}
	}()
	return out, nil
}
