package filesystem

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ChangeType classifies a file change
type ChangeType string

const (
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// Change is emitted when a watched document changes on disk
type Change struct {
	Path string     `json:"path"`
	Type ChangeType `json:"type"`
}

// Watcher reports changes to the backing files of open tabs
type Watcher struct {
	fs      *fsnotify.Watcher
	logger  *zap.Logger
	changes chan Change

	mu    sync.Mutex
	files map[string]int
}

// NewWatcher creates a watcher. Call Run to start delivering changes.
func NewWatcher(logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		fs:      fw,
		logger:  logger,
		changes: make(chan Change, 64),
		files:   make(map[string]int),
	}, nil
}

// Changes delivers file changes until Run returns
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Add starts watching path. Each file's directory is watched so that
// atomic saves (rename over the file) are still seen.
func (w *Watcher) Add(path string) error {
	path = filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.files[path] == 0 {
		if err := w.fs.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
	w.files[path]++
	return nil
}

// Remove stops watching path once every Add has been matched
func (w *Watcher) Remove(path string) {
	path = filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.files[path] == 0 {
		return
	}
	w.files[path]--
	if w.files[path] > 0 {
		return
	}
	delete(w.files, path)

	dir := filepath.Dir(path)
	for other := range w.files {
		if filepath.Dir(other) == dir {
			return
		}
	}
	_ = w.fs.Remove(dir)
}

// Watched returns the number of watched files
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.files)
}

// Run forwards changes until ctx is cancelled, then closes the watcher
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.changes)
	defer w.fs.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			change, ok := w.handleEvent(ev)
			if !ok {
				continue
			}
			select {
			case w.changes <- change:
			default:
				w.logger.Warn("Dropping file change, consumer is slow", zap.String("path", change.Path))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) (Change, bool) {
	path := filepath.Clean(ev.Name)
	w.mu.Lock()
	_, watched := w.files[path]
	w.mu.Unlock()
	if !watched {
		return Change{}, false
	}

	switch {
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
		return Change{Path: path, Type: ChangeModified}, true
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Change{Path: path, Type: ChangeRemoved}, true
	}
	return Change{}, false
}
