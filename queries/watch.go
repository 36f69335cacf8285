package queries

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// LoadOverrides returns a copy of base with the templates found under dir
// layered on top, and the number of files read.
func LoadOverrides(base *Registry, dir, pattern string) (*Registry, int, error) {
	reg := base.Clone()
	templates, err := LoadDir(os.DirFS(dir), pattern)
	if err != nil {
		return nil, 0, err
	}
	if err := reg.Load(templates); err != nil {
		return nil, 0, err
	}
	return reg, len(templates), nil
}

// Reload is the outcome of re-reading a template directory. Err holds load
// or validation errors; Registry is nil only when loading failed.
type Reload struct {
	Registry *Registry
	Files    int
	Err      error
}

// Watcher reloads and validates a template directory whenever a template file
// changes. Changes are collected for the debounce delay before reloading.
type Watcher struct {
	base     *Registry
	dir      string
	pattern  string
	debounce time.Duration
	logger   *slog.Logger
	fsw      *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long to wait for more changes before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a watcher layering dir over base. No file system watch
// is held until Run.
func NewWatcher(base *Registry, dir, pattern string, opts ...WatcherOption) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template directory: %s is not a directory", dir)
	}
	w := &Watcher{
		base:     base,
		dir:      dir,
		pattern:  pattern,
		debounce: 300 * time.Millisecond,
		logger:   slog.Default(),
		pending:  make(map[string]fsnotify.Op),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Reload reads the directory once and validates the result.
func (w *Watcher) Reload() Reload {
	reg, n, err := LoadOverrides(w.base, w.dir, w.pattern)
	if err != nil {
		return Reload{Err: err}
	}
	return Reload{Registry: reg, Files: n, Err: reg.Validate()}
}

// Run reloads once, then calls onReload after every batch of changes until
// ctx is done. The file system watch lives for the duration of Run.
func (w *Watcher) Run(ctx context.Context, onReload func(Reload)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	defer fsw.Close()
	w.fsw = fsw

	if err := w.addWatchesRecursive(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("Template watcher started", "dir", w.dir, "debounce", w.debounce)
	onReload(w.Reload())

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			if w.flushPending() {
				onReload(w.Reload())
			}
		}
	}
}

// addWatchesRecursive adds watches to all directories.
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		// Skip hidden directories
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && path != root {
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if !strings.EqualFold(filepath.Ext(path), ".rq") {
		// New directories need their own watch
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				if err := w.addWatchesRecursive(path); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
				}
				w.markPending(path, event.Op)
			}
		}
		return
	}
	w.markPending(path, event.Op)
}

func (w *Watcher) markPending(path string, op fsnotify.Op) {
	w.pendingMu.Lock()
	w.pending[path] = op
	w.pendingMu.Unlock()
	w.logger.Debug("Template change detected", "path", path, "op", op.String())
}

// flushPending clears pending changes and reports whether there were any.
func (w *Watcher) flushPending() bool {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if len(w.pending) == 0 {
		return false
	}
	w.pending = make(map[string]fsnotify.Op)
	return true
}
