package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/waybell/waybell/internal/model"
)

// Duration is a time.Duration that unmarshals from human-readable
// strings like "5s", "1m30s", or bare integer milliseconds. Zero means
// never expire.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m30s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DaemonConfig is the configuration for waybelld, loaded from
// <config>/waybell/waybelld.toml.
type DaemonConfig struct {
	Display  DisplayConfig `toml:"display"`
	Timeouts TimeoutConfig `toml:"timeouts"`
	Socket   SocketConfig  `toml:"socket"`
	Dnd      DndConfig     `toml:"dnd"`
	Audio    AudioConfig   `toml:"audio"`
}

// DisplayConfig contains popup display settings.
type DisplayConfig struct {
	Position   string `toml:"position"`    // "top-right", "top-left", etc.
	OffsetX    int    `toml:"offset_x"`    // Pixels from screen edge
	OffsetY    int    `toml:"offset_y"`    // Pixels from screen edge
	Width      int    `toml:"width"`       // Popup width in pixels
	MaxVisible int    `toml:"max_visible"` // Maximum simultaneous popups
	Gap        int    `toml:"gap"`         // Gap between stacked popups
}

// TimeoutConfig contains the server-default expiry per urgency level.
// These apply only when a notification requests the server default; an
// explicit expire_timeout always wins. Zero means never expire.
type TimeoutConfig struct {
	Low      Duration `toml:"low"`
	Normal   Duration `toml:"normal"`
	Critical Duration `toml:"critical"`
}

// SocketConfig contains the control socket settings.
type SocketConfig struct {
	Path string `toml:"path"` // Empty = default under the runtime dir
}

// DndConfig contains Do Not Disturb settings. Only the initial state is
// configurable; the live flag is never written back.
type DndConfig struct {
	Enabled bool `toml:"enabled"`
}

// AudioConfig contains sound playback settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-urgency fallback sound file paths, used when
// a notification carries no sound hint of its own.
type SoundConfig struct {
	Low      string `toml:"low"`
	Normal   string `toml:"normal"`
	Critical string `toml:"critical"`
}

// Position represents a popup anchor on screen.
type Position string

const (
	PositionTopLeft      Position = "top-left"
	PositionTopRight     Position = "top-right"
	PositionTopCenter    Position = "top-center"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomCenter Position = "bottom-center"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopRight,
		PositionTopCenter,
		PositionBottomLeft,
		PositionBottomRight,
		PositionBottomCenter,
	}
}

// DefaultDaemonConfig returns a DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Display: DisplayConfig{
			Position:   string(PositionTopRight),
			OffsetX:    10,
			OffsetY:    10,
			Width:      350,
			MaxVisible: 5,
			Gap:        5,
		},
		Timeouts: TimeoutConfig{
			Low:      Duration(model.DefaultExpireMillis * time.Millisecond),
			Normal:   Duration(model.DefaultExpireMillis * time.Millisecond),
			Critical: Duration(0), // Critical stays until acted on
		},
		Socket: SocketConfig{},
		Dnd:    DndConfig{Enabled: false},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  80,
			Sounds:  SoundConfig{},
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "waybell", "waybelld.toml")
}

// LoadDaemonConfig loads the daemon configuration from path, or the
// default location when path is empty. A missing file yields defaults.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		path = DaemonConfigPath()
	}

	cfg := DefaultDaemonConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SaveDaemonConfig writes the daemon configuration to path, or the
// default location when path is empty. The write is atomic.
func SaveDaemonConfig(cfg *DaemonConfig, path string) error {
	if path == "" {
		path = DaemonConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	validPos := false
	for _, p := range ValidPositions() {
		if c.Display.Position == string(p) {
			validPos = true
			break
		}
	}
	if !validPos {
		return fmt.Errorf("invalid position %q, must be one of: %v", c.Display.Position, ValidPositions())
	}

	if c.Display.Width < 100 || c.Display.Width > 1000 {
		return fmt.Errorf("width must be between 100 and 1000, got %d", c.Display.Width)
	}
	if c.Display.MaxVisible < 1 || c.Display.MaxVisible > 20 {
		return fmt.Errorf("max_visible must be between 1 and 20, got %d", c.Display.MaxVisible)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}
	return nil
}

// TimeoutFor returns the server-default display duration for the given
// urgency. Zero means never expire.
func (c *DaemonConfig) TimeoutFor(urgency model.Urgency) time.Duration {
	switch urgency {
	case model.UrgencyLow:
		return c.Timeouts.Low.Duration()
	case model.UrgencyCritical:
		return c.Timeouts.Critical.Duration()
	default:
		return c.Timeouts.Normal.Duration()
	}
}

// SoundFor returns the configured fallback sound file for the given
// urgency, with ~ expanded. Empty means no sound.
func (c *DaemonConfig) SoundFor(urgency model.Urgency) string {
	var path string
	switch urgency {
	case model.UrgencyLow:
		path = c.Audio.Sounds.Low
	case model.UrgencyCritical:
		path = c.Audio.Sounds.Critical
	default:
		path = c.Audio.Sounds.Normal
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
