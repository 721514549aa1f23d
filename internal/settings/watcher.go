package settings

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is the quiet period used when none is configured.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watcher calls a function when a file changes, once per burst of writes.
//
// The containing directory is watched rather than the file itself so
// editors that save by rename are still seen.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	onChange  func()
	logger    Logger

	mu       sync.Mutex
	running  bool
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for path. onChange runs on the watcher's
// goroutine, never concurrently with itself.
func NewWatcher(path string, debounce time.Duration, onChange func(), logger Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	if logger == nil {
		logger = noopLogger{}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		path:      filepath.Clean(path),
		debounce:  debounce,
		onChange:  onChange,
		logger:    logger,
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}, nil
}

// Start begins watching. Calling it again while running is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	w.running = true
	go w.loop()
	return nil
}

// Stop terminates the watcher and waits for its goroutine to exit, if
// Start launched one. It is safe to call more than once, and on a watcher
// that was never started.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		running := w.running
		close(w.done)
		err = w.fsWatcher.Close()
		w.mu.Unlock()

		if running {
			<-w.stopped
		}
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.stopped)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.onChange()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("schema watcher error", "path", w.path, "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}

// WatchSchema reloads the schema at path whenever it changes. Reload
// failures are logged and the previous schema stays active.
func (s *Service) WatchSchema(ctx context.Context, path string, debounce time.Duration) (*Watcher, error) {
	w, err := NewWatcher(path, debounce, func() {
		if err := s.ReloadFile(ctx, path); err != nil {
			s.logger.Error("settings schema reload failed", "path", path, "error", err)
			return
		}
		s.logger.Info("settings schema reloaded from file", "path", path)
	}, s.logger)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		_ = w.Stop()
		return nil, err
	}
	return w, nil
}
