// Package watch re-validates .sql files when they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
)

// DefaultDebounce is how long a burst of writes is coalesced before files
// are re-validated.
const DefaultDebounce = 100 * time.Millisecond

// Event is the validation outcome of one file.
type Event struct {
	Path   string         `json:"path"`
	Result sqltext.Result `json:"result"`
	Time   time.Time      `json:"time"`
}

// Config holds watcher settings.
type Config struct {
	// Paths are files or directories. Directories are watched recursively.
	Paths    []string
	Lint     *lint.Config
	Logger   *slog.Logger
	Debounce time.Duration
	// Notifier receives events. A new one is created when nil.
	Notifier *Notifier
}

// Watcher validates .sql files and broadcasts the results.
type Watcher struct {
	fsw      *fsnotify.Watcher
	lint     *lint.Config
	logger   *slog.Logger
	debounce time.Duration
	notifier *Notifier

	files map[string]bool // explicitly watched files
	dirs  []string        // recursively watched roots

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
}

// New creates a watcher and registers all paths with the OS.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("no paths to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		lint:     cfg.Lint,
		logger:   cfg.Logger,
		debounce: cfg.Debounce,
		notifier: cfg.Notifier,
		files:    make(map[string]bool),
		pending:  make(map[string]struct{}),
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.notifier == nil {
		w.notifier = NewNotifier()
	}

	for _, p := range cfg.Paths {
		if err := w.add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	if info.IsDir() {
		w.dirs = append(w.dirs, abs)
		return watchDirRecursive(w.fsw, abs)
	}
	// Editors often replace files on save, so watch the directory.
	w.files[abs] = true
	return w.fsw.Add(filepath.Dir(abs))
}

// Notifier returns the notifier events are broadcast on.
func (w *Watcher) Notifier() *Notifier {
	return w.notifier
}

// Close releases the OS watches.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

// Files returns the .sql files currently covered by the watcher, sorted.
// Hidden directories below a watched directory are skipped.
func (w *Watcher) Files() ([]string, error) {
	paths := make([]string, 0, len(w.files)+len(w.dirs))
	for f := range w.files {
		paths = append(paths, f)
	}
	paths = append(paths, w.dirs...)
	return FindFiles(paths)
}

// FindFiles expands paths into the .sql files they cover: files are kept
// as given and directories are walked recursively. The result is sorted
// and free of duplicates.
func FindFiles(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && path != p && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			if !d.IsDir() && isSQLFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", p, err)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Check validates one file and broadcasts the result.
func (w *Watcher) Check(path string) (Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Event{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	ev := Event{
		Path:   path,
		Result: sqltext.ValidateWithConfig(string(data), w.lint),
		Time:   time.Now(),
	}
	w.notifier.Broadcast(ev)
	return ev, nil
}

// CheckAll validates every covered file.
func (w *Watcher) CheckAll() ([]Event, error) {
	files, err := w.Files()
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(files))
	for _, f := range files {
		ev, err := w.Check(f)
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// Run processes file system events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if isHidden(filepath.Base(event.Name)) || !w.inWatchedDir(event.Name) {
				return
			}
			if err := watchDirRecursive(w.fsw, event.Name); err != nil {
				w.logger.Error("failed to watch new directory", "dir", event.Name, "error", err)
			}
			return
		}
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !w.covers(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(paths)
	for _, p := range paths {
		w.logger.Debug("file changed, re-validating", "file", p)
		if _, err := w.Check(p); err != nil {
			w.logger.Error("validation failed", "file", p, "error", err)
		}
	}
}

func (w *Watcher) covers(path string) bool {
	if w.files[path] {
		return true
	}
	return isSQLFile(path) && w.inWatchedDir(path)
}

// inWatchedDir reports whether path lies below a watched directory without
// passing through a hidden directory.
func (w *Watcher) inWatchedDir(path string) bool {
	for _, dir := range w.dirs {
		rel, err := filepath.Rel(dir, path)
		if err == nil && rel != ".." && !startsWithParent(rel) && !inHiddenDir(rel) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".") && name != ".."
}

// inHiddenDir reports whether any directory of the relative path rel is hidden.
func inHiddenDir(rel string) bool {
	for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if isHidden(part) {
			return true
		}
	}
	return false
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

func isSQLFile(path string) bool {
	return filepath.Ext(path) == ".sql"
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
