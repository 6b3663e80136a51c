package audio

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates the player's cache when a watched sound file
// changes on disk.
type Watcher struct {
	mu     sync.Mutex
	logger *slog.Logger
	player *Player

	watcher *fsnotify.Watcher
	watched map[string]bool
	running bool
	doneCh  chan struct{}
}

// NewWatcher creates a sound file watcher.
func NewWatcher(player *Player, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:  logger,
		player:  player,
		watched: make(map[string]bool),
	}
}

// Watch adds a path to the watch list. Paths added before Start are
// registered once the watcher runs.
func (w *Watcher) Watch(path string) {
	if path == "" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watched[path] {
		return
	}
	w.watched[path] = true

	if w.watcher != nil {
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch sound file", "path", path, "error", err)
		}
	}
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher
	w.running = true
	w.doneCh = make(chan struct{})

	for path := range w.watched {
		if err := watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch sound file", "path", path, "error", err)
		}
	}

	go w.watchLoop(ctx)

	w.logger.Debug("audio watcher started", "paths", len(w.watched))
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
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
	w.logger.Debug("audio watcher stopped")
}

func (w *Watcher) watchLoop(ctx context.Context) {
	w.mu.Lock()
	watcher := w.watcher
	done := w.doneCh
	w.mu.Unlock()
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) != 0 {
				w.logger.Debug("sound file changed, invalidating cache", "path", event.Name)
				if w.player != nil {
					w.player.InvalidateCache(event.Name)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("audio watcher error", "error", err)
		}
	}
}
