package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change reported by a Watcher.
type Op int

const (
	// Changed means the scene file was created or rewritten.
	Changed Op = iota
	// Removed means the scene file is gone.
	Removed
)

func (o Op) String() string {
	if o == Removed {
		return "removed"
	}
	return "changed"
}

// Event reports a change to one scene of a FileStore directory.
type Event struct {
	ID string
	Op Op
}

// Watcher reports scene file changes in a directory.
type Watcher struct {
	dir string
	w   *fsnotify.Watcher
}

// NewWatcher starts watching dir. Changes made after NewWatcher returns are
// delivered by Run.
func NewWatcher(dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("store: watch %s: %w", dir, err)
	}
	return &Watcher{dir: dir, w: w}, nil
}

// Run calls fn for every scene change until ctx is done, then closes the
// watcher. Temporary files written by FileStore.Save are filtered out; the
// final rename is reported as Changed.
func (w *Watcher) Run(ctx context.Context, fn func(Event)) error {
	defer w.w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			id, ok := sceneIDFromFile(filepath.Base(ev.Name))
			if !ok {
				continue
			}
			switch {
			case ev.Op&fsnotify.Remove == fsnotify.Remove,
				ev.Op&fsnotify.Rename == fsnotify.Rename:
				fn(Event{ID: id, Op: Removed})
			case ev.Op&fsnotify.Create == fsnotify.Create,
				ev.Op&fsnotify.Write == fsnotify.Write:
				fn(Event{ID: id, Op: Changed})
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("scene watcher error", "dir", w.dir, "err", err)
		}
	}
}

// Close stops the watcher without waiting for Run.
func (w *Watcher) Close() error { return w.w.Close() }

// Watch watches the store's directory and calls fn until ctx is done.
func (s *FileStore) Watch(ctx context.Context, fn func(Event)) error {
	w, err := NewWatcher(s.dir)
	if err != nil {
		return err
	}
	return w.Run(ctx, fn)
}
