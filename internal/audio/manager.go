package audio

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/waybell/waybell/internal/config"
	"github.com/waybell/waybell/internal/model"
)

// Manager plays notification sounds. A notification's own sound-file
// hint wins over the per-urgency sounds from the configuration; the
// suppress-sound hint silences both.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher
	config  *config.DaemonConfig

	sounds map[model.Urgency]string
}

// NewManager creates an audio manager.
func NewManager(cfg *config.DaemonConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	player := NewPlayer(logger)

	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, logger),
		config:  cfg,
		sounds:  make(map[model.Urgency]string),
	}
	m.loadSoundConfig()
	return m
}

func (m *Manager) loadSoundConfig() {
	if m.config == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.player.SetVolume(float64(m.config.Audio.Volume) / 100.0)

	m.sounds = make(map[model.Urgency]string)
	for _, urgency := range []model.Urgency{model.UrgencyLow, model.UrgencyNormal, model.UrgencyCritical} {
		path := m.config.SoundFor(urgency)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "urgency", urgency.String(), "path", path)
			continue
		}
		m.sounds[urgency] = path
		m.logger.Debug("loaded sound", "urgency", urgency.String(), "path", path)
	}
}

// Start preloads configured sounds and starts the file watcher.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.RLock()
	sounds := make(map[model.Urgency]string, len(m.sounds))
	maps.Copy(sounds, m.sounds)
	m.mu.RUnlock()

	for _, path := range sounds {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}

	if err := m.watcher.Start(ctx); err != nil {
		return err
	}

	m.logger.Info("audio manager started", "sounds", len(sounds))
	return nil
}

// Stop shuts down playback and the watcher.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

// PlayFor plays the sound for a notification, honoring its hints.
func (m *Manager) PlayFor(n *model.Notification) error {
	if !m.enabled() {
		return nil
	}

	if hv, ok := n.Hint("suppress-sound"); ok && hv.Kind == model.HintBool && hv.Bool {
		return nil
	}
	if hv, ok := n.Hint("sound-file"); ok && hv.Kind == model.HintString && hv.Str != "" {
		return m.player.Play(hv.Str)
	}

	m.mu.RLock()
	path, ok := m.sounds[n.Urgency]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return m.player.Play(path)
}

// PlayFile plays a specific sound file.
func (m *Manager) PlayFile(path string) error {
	if !m.enabled() {
		return nil
	}
	return m.player.Play(path)
}

func (m *Manager) enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config != nil && m.config.Audio.Enabled
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (m *Manager) SetVolume(volume float64) {
	m.player.SetVolume(volume)
}

// UpdateConfig applies a new configuration and reloads sounds. Called
// on config hot reload.
func (m *Manager) UpdateConfig(cfg *config.DaemonConfig) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	m.player.ClearCache()
	m.loadSoundConfig()

	m.mu.RLock()
	sounds := make(map[model.Urgency]string, len(m.sounds))
	maps.Copy(sounds, m.sounds)
	m.mu.RUnlock()

	for _, path := range sounds {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound on reload", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}

	m.logger.Debug("audio manager config updated")
}
