package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/policyshield/internal/logger"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls a handler when a watched file or directory changes.
// Files are watched through their parent directory so atomic renames are seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	targets []watchTarget
	timers  map[int]*time.Timer
	dirs    map[string]bool
}

type watchTarget struct {
	path     string
	isDir    bool
	onChange func()
}

// NewWatcher creates a watcher. A non-positive debounce uses DefaultDebounce.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fs:       fsw,
		debounce: debounce,
		timers:   make(map[int]*time.Timer),
		dirs:     make(map[string]bool),
	}, nil
}

// Watch registers onChange for path. If path is a directory, any change inside it fires.
func (w *Watcher) Watch(path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	dir := abs
	if !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.dirs[dir] {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.targets = append(w.targets, watchTarget{path: abs, isDir: info.IsDir(), onChange: onChange})
	logger.Debug("watching %s", abs)
	return nil
}

// Run dispatches events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			w.dispatch(event.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher: %v", err)
		}
	}
}

// dispatch schedules the handlers whose target covers name.
func (w *Watcher) dispatch(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, t := range w.targets {
		if !t.matches(name) {
			continue
		}
		if timer, ok := w.timers[i]; ok {
			timer.Reset(w.debounce)
			continue
		}
		onChange := t.onChange
		path := t.path
		idx := i
		w.timers[i] = time.AfterFunc(w.debounce, func() {
			w.mu.Lock()
			delete(w.timers, idx)
			w.mu.Unlock()

			logger.Debug("change detected: %s", path)
			onChange()
		})
	}
}

func (t watchTarget) matches(name string) bool {
	if t.isDir {
		return filepath.Dir(name) == t.path
	}
	return name == t.path
}

// Close stops the watcher and any pending handlers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for i, timer := range w.timers {
		timer.Stop()
		delete(w.timers, i)
	}
	w.mu.Unlock()
	return w.fs.Close()
}
