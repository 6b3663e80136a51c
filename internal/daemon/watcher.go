package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/waybell/waybell/internal/config"
)

// reloadDebounce coalesces the event bursts editors produce when
// saving a file.
const reloadDebounce = 250 * time.Millisecond

// ConfigWatcher reloads the daemon configuration when its file changes
// on disk. A file that fails to load leaves the previous configuration
// in place.
type ConfigWatcher struct {
	logger   *slog.Logger
	path     string
	onReload func(*config.DaemonConfig)

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	running bool
	doneCh  chan struct{}
}

// NewConfigWatcher creates a watcher for path. Empty path means the
// default config location.
func NewConfigWatcher(path string, onReload func(*config.DaemonConfig), logger *slog.Logger) *ConfigWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = config.DaemonConfigPath()
	}
	return &ConfigWatcher{
		logger:   logger,
		path:     path,
		onReload: onReload,
	}
}

// Start begins watching. The parent directory is watched rather than
// the file itself so atomic rename-style saves are seen.
func (w *ConfigWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.running = true
	w.doneCh = make(chan struct{})

	go w.watchLoop(ctx, watcher, w.doneCh)

	w.logger.Debug("config watcher started", "path", w.path)
	return nil
}

// Stop stops the watcher.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	watcher := w.watcher
	w.watcher = nil
	done := w.doneCh
	w.mu.Unlock()

	_ = watcher.Close()
	<-done
}

func (w *ConfigWatcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, w.reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *ConfigWatcher) reload() {
	cfg, err := config.LoadDaemonConfig(w.path)
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous", "path", w.path, "error", err)
		return
	}
	w.logger.Info("config file changed, reloading", "path", w.path)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
