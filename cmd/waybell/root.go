// Package main provides the CLI entrypoint for waybell.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/waybell/waybell/internal/config"
	"github.com/waybell/waybell/internal/socket"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		socketPath string
		configPath string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "waybell",
	Short: "Notification history client for waybelld",
	Long: `waybell is the history client for the waybelld notification daemon.

It talks to the daemon over its control socket to browse history, invoke
notification actions, and manage Do Not Disturb.

Running waybell without a subcommand launches the interactive TUI.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.socketPath, "socket", "",
		"Path to daemon socket (default: $XDG_RUNTIME_DIR/waybell/socket)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/waybell/config.toml)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// socketPath resolves the daemon socket path from flags, config, and the
// built-in default, in that order.
func socketPath() string {
	if globalOpts.socketPath != "" {
		return globalOpts.socketPath
	}
	if cfg != nil && cfg.Socket.Path != "" {
		return cfg.Socket.Path
	}
	return socket.DefaultSocketPath()
}

// dialDaemon opens a request-only connection to the daemon.
func dialDaemon() (*socket.Client, error) {
	client, err := socket.Dial(socketPath(), nil, logger)
	if err != nil {
		return nil, fmt.Errorf("is waybelld running? %w", err)
	}
	return client, nil
}

func main() {
	Execute()
}
