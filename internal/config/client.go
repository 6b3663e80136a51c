// Package config handles configuration file loading and parsing for the
// daemon and the client.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// Default client configuration values.
const (
	DefaultListTmpl = "{{.AppName}} | {{.Summary}} | {{.RelativeTime}}"
	DefaultFullTmpl = "{{.CreatedAt | formatTime}} {{.AppName}}: {{.Summary}}\n{{.Body}}"
	DefaultBodyTmpl = "{{.Body}}"
)

// Config represents the waybell client configuration, loaded from
// <config>/waybell/config.toml.
type Config struct {
	Socket    SocketConfig    `toml:"socket"`
	Templates TemplatesConfig `toml:"templates"`
	TUI       TUIConfig       `toml:"tui"`
}

// TemplatesConfig holds output templates for the get subcommand.
type TemplatesConfig struct {
	List   string            `toml:"list"`
	Full   string            `toml:"full"`
	Body   string            `toml:"body"`
	Custom map[string]string `toml:"custom"`
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	ShowHelp      bool `toml:"show_help"`
	RelativeTimes bool `toml:"relative_times"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Socket: SocketConfig{},
		Templates: TemplatesConfig{
			List:   DefaultListTmpl,
			Full:   DefaultFullTmpl,
			Body:   DefaultBodyTmpl,
			Custom: make(map[string]string),
		},
		TUI: TUIConfig{
			ShowHelp:      true,
			RelativeTimes: true,
		},
	}
}

// ConfigPath returns the path to the client config file.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "waybell", "config.toml")
}

// LoadConfig loads configuration from the specified path, or the
// default location when path is empty. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified path, creating parent
// directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// GetTemplate returns the template for the given name, checking custom
// templates before built-in ones. Returns empty string if not found.
func (c *Config) GetTemplate(name string) string {
	if tmpl, ok := c.Templates.Custom[name]; ok {
		return tmpl
	}

	switch name {
	case "list":
		return c.Templates.List
	case "full":
		return c.Templates.Full
	case "body":
		return c.Templates.Body
	default:
		return ""
	}
}
