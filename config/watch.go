package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/simora-app/planner/errors"
	"github.com/simora-app/planner/logging"
)

// Watcher reloads a config file when it changes on disk.
//
// The parent directory is watched rather than the file so that editors
// which save by rename are picked up. Changes are debounced, and a file
// that fails to load or validate is logged and otherwise ignored.
type Watcher struct {
	path     string
	onChange func(*Config)
	log      *logging.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for path. onChange receives each valid
// reloaded config.
func NewWatcher(path string, onChange func(*Config), log *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create config watcher")
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		log:      log.WithComponent("config"),
		debounce: 200 * time.Millisecond,
		watcher:  fw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It returns once the directory is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return errors.Wrap(err, "watch "+filepath.Dir(w.path))
	}
	w.running = true
	go w.run(ctx)
	return nil
}

// Stop stops watching and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch_error", map[string]interface{}{"path": w.path, "error": err.Error()})

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFile(w.path)
	if err != nil {
		w.log.Warn("reload_failed", map[string]interface{}{"path": w.path, "error": err.Error()})
		return
	}
	w.log.Info("config_reloaded", map[string]interface{}{"path": w.path})
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
