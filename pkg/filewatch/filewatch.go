// Package filewatch reports changes to a fixed set of files. It watches the
// parent directories so editors that save via rename are still seen, and
// collapses bursts of events into a single callback per file.
package filewatch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher delivers debounced change notifications for registered files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
}

// New watches paths. Empty paths are ignored.
func New(debounce time.Duration, paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filewatch: %w", err)
	}
	w := &Watcher{fsw: fsw, files: make(map[string]struct{}), debounce: debounce}
	dirs := make(map[string]struct{})
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("filewatch: %s: %w", p, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("filewatch: watch %s: %w", d, err)
		}
	}
	return w, nil
}

// Files returns the absolute paths being watched.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

// Run blocks until ctx is done or the watcher is closed, calling onChange
// with the absolute path of each file that was written, created or renamed
// into place. onError may be nil.
func (w *Watcher) Run(ctx context.Context, onChange func(path string), onError func(error)) error {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(ev.Name)
			if _, watched := w.files[name]; !watched {
				continue
			}
			if !ev.Has(fsnotify.Write | fsnotify.Create | fsnotify.Rename) {
				continue
			}
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			for p := range pending {
				onChange(p)
			}
			clear(pending)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

// Close stops watching. Run returns once its channels drain.
func (w *Watcher) Close() error { return w.fsw.Close() }
