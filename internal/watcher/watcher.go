// Package watcher reports debounced changes to files on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when no debounce option is given.
const DefaultDebounce = 150 * time.Millisecond

const meaningfulOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher calls back once per burst of file events.
type Watcher struct {
	fsw      *fsnotify.Watcher
	callback func()
	debounce time.Duration
	match    func(name string) bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before the callback fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithFilter restricts events to names accepted by match.
func WithFilter(match func(name string) bool) Option {
	return func(w *Watcher) {
		w.match = match
	}
}

// MatchPrefix accepts files in any directory whose base name starts with the
// base name of path, e.g. "board.db" matches "board.db-journal".
func MatchPrefix(path string) func(string) bool {
	base := filepath.Base(path)
	return func(name string) bool {
		return strings.HasPrefix(filepath.Base(name), base)
	}
}

// New watches every path (files or directories) and calls callback after
// changes settle.
func New(paths []string, callback func(), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	for _, path := range paths {
		if err := fsw.Add(path); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
	}
	w := &Watcher{fsw: fsw, callback: callback, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	if w.callback == nil {
		w.callback = func() {}
	}
	return w, nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
// errFn, when set, receives fsnotify errors.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if w.debounce == 0 {
				w.callback()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		case <-fire:
			fire = nil
			w.callback()
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&meaningfulOps == 0 {
		return false
	}
	return w.match == nil || w.match(ev.Name)
}
