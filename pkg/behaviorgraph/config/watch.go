package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher holds the current Settings and reloads them when the file changes.
type Watcher struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	current  Settings
	onChange []func(Settings)
}

// NewWatcher loads path and returns a Watcher holding the result.
// A nil logger uses slog.Default().
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	s, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{path: path, logger: logger, current: s}, nil
}

// Settings returns the latest valid settings.
func (w *Watcher) Settings() Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked after every successful reload.
func (w *Watcher) OnChange(fn func(Settings)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Reload re-reads the file. Invalid files leave the current settings in place.
func (w *Watcher) Reload() (Settings, error) {
	s, err := LoadSettings(w.path)
	if err != nil {
		return w.Settings(), err
	}

	w.mu.Lock()
	w.current = s
	callbacks := make([]func(Settings), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.Unlock()

	for _, fn := range callbacks {
		fn(s)
	}
	return s, nil
}

// Watch reloads settings in the background whenever the file is written.
// The directory is watched rather than the file so editors that replace the
// file on save are still seen. Call stop to end watching.
func (w *Watcher) Watch() (stop func(), err error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("settings watcher add %s: %w", dir, err)
	}

	target := filepath.Clean(w.path)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer fw.Close()
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if _, err := w.Reload(); err != nil {
					w.logger.Warn("settings reload failed, keeping previous settings",
						slog.String("path", w.path),
						slog.String("error", err.Error()),
					)
					continue
				}
				w.logger.Info("settings reloaded", slog.String("path", w.path))
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("settings watcher error", slog.String("error", err.Error()))
			case <-done:
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }, nil
}
