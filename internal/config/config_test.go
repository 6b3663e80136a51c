package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waybell/waybell/internal/model"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
	}{
		{"5s", 5 * time.Second},
		{"1m30s", 90 * time.Second},
		{"0", 0},
		{"5000", 5 * time.Second}, // bare integers are milliseconds
		{"250", 250 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			require.NoError(t, d.UnmarshalText([]byte(tt.input)))
			assert.Equal(t, tt.expected, d.Duration())
		})
	}

	var d Duration
	assert.Error(t, d.UnmarshalText([]byte("not a duration")))
}

func TestDefaultDaemonConfig(t *testing.T) {
	cfg := DefaultDaemonConfig()

	assert.Equal(t, string(PositionTopRight), cfg.Display.Position)
	assert.Equal(t, 350, cfg.Display.Width)
	assert.Equal(t, 5, cfg.Display.MaxVisible)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Normal.Duration())
	assert.Equal(t, time.Duration(0), cfg.Timeouts.Critical.Duration())
	assert.False(t, cfg.Dnd.Enabled)
	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, 80, cfg.Audio.Volume)
	require.NoError(t, cfg.Validate())
}

func TestLoadDaemonConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadDaemonConfig("/nonexistent/path/waybelld.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultDaemonConfig().Display.Width, cfg.Display.Width)
}

func TestLoadDaemonConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waybelld.toml")

	content := `
[display]
position = "bottom-left"
width = 400
max_visible = 3

[timeouts]
low = "3s"
normal = 10000
critical = "0"

[socket]
path = "/tmp/waybell-test.sock"

[dnd]
enabled = true

[audio]
enabled = false
volume = 50
[audio.sounds]
critical = "~/sounds/alert.oga"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadDaemonConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "bottom-left", cfg.Display.Position)
	assert.Equal(t, 400, cfg.Display.Width)
	assert.Equal(t, 3, cfg.Display.MaxVisible)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Low.Duration())
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Normal.Duration())
	assert.Equal(t, time.Duration(0), cfg.Timeouts.Critical.Duration())
	assert.Equal(t, "/tmp/waybell-test.sock", cfg.Socket.Path)
	assert.True(t, cfg.Dnd.Enabled)
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, 50, cfg.Audio.Volume)
}

func TestLoadDaemonConfig_PartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waybelld.toml")

	require.NoError(t, os.WriteFile(path, []byte("[display]\nwidth = 500\n"), 0o644))

	cfg, err := LoadDaemonConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Display.Width)
	assert.Equal(t, string(PositionTopRight), cfg.Display.Position)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Normal.Duration())
}

func TestLoadDaemonConfig_InvalidValuesRejected(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"bad position", "[display]\nposition = \"middle\"\n"},
		{"bad width", "[display]\nwidth = 50\n"},
		{"bad volume", "[audio]\nvolume = 150\n"},
		{"bad toml", "this is not valid toml ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "waybelld.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadDaemonConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveDaemonConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "waybelld.toml")

	cfg := DefaultDaemonConfig()
	cfg.Display.Position = string(PositionBottomRight)
	cfg.Timeouts.Low = Duration(2 * time.Second)

	require.NoError(t, SaveDaemonConfig(cfg, path))

	loaded, err := LoadDaemonConfig(path)
	require.NoError(t, err)
	assert.Equal(t, string(PositionBottomRight), loaded.Display.Position)
	assert.Equal(t, 2*time.Second, loaded.Timeouts.Low.Duration())
}

func TestDaemonConfig_TimeoutFor(t *testing.T) {
	cfg := DefaultDaemonConfig()
	cfg.Timeouts.Low = Duration(3 * time.Second)
	cfg.Timeouts.Normal = Duration(8 * time.Second)
	cfg.Timeouts.Critical = Duration(0)

	assert.Equal(t, 3*time.Second, cfg.TimeoutFor(model.UrgencyLow))
	assert.Equal(t, 8*time.Second, cfg.TimeoutFor(model.UrgencyNormal))
	assert.Equal(t, time.Duration(0), cfg.TimeoutFor(model.UrgencyCritical))
}

func TestDaemonConfig_SoundFor(t *testing.T) {
	cfg := DefaultDaemonConfig()
	cfg.Audio.Sounds.Normal = "/usr/share/sounds/ping.oga"
	cfg.Audio.Sounds.Critical = "~/sounds/alert.oga"

	assert.Equal(t, "/usr/share/sounds/ping.oga", cfg.SoundFor(model.UrgencyNormal))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "sounds/alert.oga"), cfg.SoundFor(model.UrgencyCritical))

	assert.Empty(t, cfg.SoundFor(model.UrgencyLow))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotEmpty(t, cfg.Templates.List)
	assert.NotEmpty(t, cfg.Templates.Full)
	assert.NotEmpty(t, cfg.Templates.Body)
	assert.True(t, cfg.TUI.ShowHelp)
	assert.True(t, cfg.TUI.RelativeTimes)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[socket]
path = "/tmp/custom.sock"

[templates]
list = "{{.Summary}}"

[templates.custom]
slack = "{{.Summary}}: {{.Body}}"

[tui]
show_help = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.sock", cfg.Socket.Path)
	assert.Equal(t, "{{.Summary}}", cfg.Templates.List)
	assert.Equal(t, "{{.Summary}}: {{.Body}}", cfg.Templates.Custom["slack"])
	assert.False(t, cfg.TUI.ShowHelp)
}

func TestConfig_GetTemplate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Templates.Custom["mine"] = "custom: {{.Body}}"

	tests := []struct {
		name     string
		expected string
	}{
		{"list", cfg.Templates.List},
		{"full", cfg.Templates.Full},
		{"body", cfg.Templates.Body},
		{"mine", "custom: {{.Body}}"},
		{"nonexistent", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cfg.GetTemplate(tt.name))
		})
	}
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.toml")

	cfg := DefaultConfig()
	cfg.Templates.Custom["test"] = "custom template"

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "custom template", loaded.Templates.Custom["test"])
}

func TestConfigPaths(t *testing.T) {
	assert.Contains(t, ConfigPath(), filepath.Join("waybell", "config.toml"))
	assert.Contains(t, DaemonConfigPath(), filepath.Join("waybell", "waybelld.toml"))
}
