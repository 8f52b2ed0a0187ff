// internal/watcher/watcher.go
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind says what happened to the reference image on disk.
type ChangeKind string

const (
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
	ChangeReplaced ChangeKind = "replaced"
)

// Change is one debounced reference-image change.
type Change struct {
	Path string
	Kind ChangeKind
}

// ReferenceWatcher watches the session's reference image file. Exploration
// results are only meaningful against the image they were generated from, so
// when the file changes on disk the client marks the loaded session stale.
//
// fsnotify watches the parent directory rather than the file itself; editors
// that save via rename would otherwise silently detach the watch. Rapid
// bursts of writes are debounced into a single callback.
type ReferenceWatcher struct {
	path     string
	debounce time.Duration
	callback func(Change)
	watcher  *fsnotify.Watcher
	done     chan struct{}

	mu      sync.Mutex
	started bool
	closed  bool
	timer   *time.Timer
	pending Change
}

// New creates a watcher for the given image path.
func New(path string, debounce time.Duration, callback func(Change)) (*ReferenceWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch directory of %s: %w", path, err)
	}

	return &ReferenceWatcher{
		path:     path,
		debounce: debounce,
		callback: callback,
		watcher:  fsw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins delivering changes.
func (w *ReferenceWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher is closed")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}
	w.started = true

	go w.watch()
	return nil
}

// Close stops watching. Closing twice is a no-op.
func (w *ReferenceWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.started {
		close(w.done)
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	return w.watcher.Close()
}

// watch is the event loop.
func (w *ReferenceWatcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			fmt.Printf("reference watcher error: %v\n", err)

		case <-w.done:
			return
		}
	}
}

// handleEvent filters directory events down to the reference image and maps
// them to a change kind.
func (w *ReferenceWatcher) handleEvent(event fsnotify.Event) {
	if event.Name != w.path {
		return
	}

	var kind ChangeKind
	switch {
	case event.Op&fsnotify.Write == fsnotify.Write:
		kind = ChangeModified
	case event.Op&fsnotify.Create == fsnotify.Create:
		// A create at the watched path after a save-via-rename.
		kind = ChangeReplaced
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		kind = ChangeRemoved
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		kind = ChangeRemoved
	default:
		return
	}

	w.schedule(Change{Path: w.path, Kind: kind})
}

// schedule debounces changes; only the most recent one within the window is
// delivered.
func (w *ReferenceWatcher) schedule(c Change) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	w.pending = c
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		change := w.pending
		w.timer = nil
		closed := w.closed
		w.mu.Unlock()

		if !closed {
			w.callback(change)
		}
	})
}
