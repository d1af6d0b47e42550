package assets

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// DefaultDebounce coalesces the burst of events an image editor produces
// when it saves a file.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes to a fixed set of files.
//
// It watches the parent directories rather than the files themselves, so a
// file that is replaced by rename (the way most editors save) keeps being
// tracked.
type Watcher struct {
	w        *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
}

// NewWatcher starts watching files. A debounce of zero uses DefaultDebounce.
func NewWatcher(debounce time.Duration, files ...string) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		w:        fw,
		files:    make(map[string]struct{}, len(files)),
		debounce: debounce,
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	return w, nil
}

// Run delivers one onChange call per debounced burst of writes to a watched
// file. It blocks until ctx is cancelled or the watcher is closed, and
// returns nil in both cases. onChange runs on a timer goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	log := logger.Named("assets")

	d := newDebouncer(w.debounce, onChange)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			path, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			if _, watched := w.files[path]; !watched {
				continue
			}

			log.Debug("asset changed", zap.String("path", path), zap.Stringer("op", ev.Op))

			d.trigger(path)

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}

// debouncer calls fire once per path after delay has passed without another
// trigger for that path.
type debouncer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	delay  time.Duration
	fire   func(path string)
}

func newDebouncer(delay time.Duration, fire func(path string)) *debouncer {
	return &debouncer{
		timers: make(map[string]*time.Timer),
		delay:  delay,
		fire:   fire,
	}
}

func (d *debouncer) trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.arm(path)
}

// arm replaces the pending timer for path. A timer that already fired but
// is still waiting for mu finds it was replaced and does nothing.
// Callers hold mu.
func (d *debouncer) arm(path string) {
	if old, ok := d.timers[path]; ok {
		old.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.timers[path] == t
		if current {
			delete(d.timers, path)
		}
		d.mu.Unlock()

		if current {
			d.fire(path)
		}
	})
	d.timers[path] = t
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.w.Close()
}
