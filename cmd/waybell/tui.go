package main

import (
	"github.com/spf13/cobra"

	"github.com/waybell/waybell/internal/tui"
)

// tuiCmd launches the interactive TUI explicitly.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive TUI",
	Long: `Launch the interactive terminal user interface.

The TUI shows live notification history from waybelld and lets you view,
close, and act on notifications. This is also the default when waybell is
run without a subcommand.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(tui.RunOptions{
		Config:     cfg,
		SocketPath: socketPath(),
	})
}
