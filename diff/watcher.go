package diff

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies a callback when a tracked spec source file's content
// changes, so an external watch loop can re-invoke the static parser and
// feed the result into a Tracker. It does not parse files itself — that
// stays on the collaborator side of the differ's interface boundary.
//
// Grounded on raveheart1-autospec's LogTailer (internal/dag/tailer.go):
// watch the parent directory for create events,
// poll as a backup in case events are missed, and treat write/create on
// the tracked path as "changed".
type Watcher struct {
	watcher *fsnotify.Watcher
	mu      sync.Mutex
	closed  bool
	watched map[string]bool
}

// NewWatcher creates a Watcher backed by a fresh fsnotify.Watcher.
func NewWatcher() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{watcher: w, watched: make(map[string]bool)}, nil
}

// Add begins watching path for changes. Safe to call more than once for
// the same path.
func (w *Watcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched[path] {
		return nil
	}
	dir := filepath.Dir(path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	w.watched[path] = true
	return nil
}

// Watch blocks, invoking onChange(path) whenever a watched file is
// created or written, until ctx is cancelled or Close is called. A
// 250ms poll runs alongside fsnotify events as backup for missed events,
// the same belt-and-suspenders raveheart1-autospec's tailer uses.
func (w *Watcher) Watch(ctx context.Context, onChange func(path string)) error {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	lastSeen := make(map[string]time.Time)
	checkAll := func() {
		w.mu.Lock()
		paths := make([]string, 0, len(w.watched))
		for p := range w.watched {
			paths = append(paths, p)
		}
		w.mu.Unlock()

		for _, p := range paths {
			info, err := os.Stat(p)
			if err != nil {
				continue
			}
			if mt := info.ModTime(); mt.After(lastSeen[p]) {
				lastSeen[p] = mt
				onChange(p)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.mu.Lock()
				tracked := w.watched[event.Name]
				w.mu.Unlock()
				if tracked {
					if info, err := os.Stat(event.Name); err == nil {
						lastSeen[event.Name] = info.ModTime()
					}
					onChange(event.Name)
				}
			}
		case <-ticker.C:
			checkAll()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			_ = err // dropped; the poll above still catches changes an error hid
		}
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}
