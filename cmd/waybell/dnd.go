package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var dndOpts struct {
	quiet bool // Suppress output, return exit code only
}

// dndCmd represents the dnd command group.
var dndCmd = &cobra.Command{
	Use:   "dnd",
	Short: "Manage Do Not Disturb mode",
	Long: `Manage Do Not Disturb (DND) mode for waybelld.

When DND is enabled, waybelld suppresses notification popups and sounds
while still recording notifications in history.

Use 'waybell dnd status' to check the current state.
Use 'waybell dnd on' to enable DND mode.
Use 'waybell dnd off' to disable DND mode.
Use 'waybell dnd toggle' to toggle DND mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to showing status
		return dndStatusRun(cmd, args)
	},
}

var dndOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable Do Not Disturb mode",
	Long:  `Enable Do Not Disturb mode. Notification popups and sounds will be suppressed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dndSetRun(true)
	},
}

var dndOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable Do Not Disturb mode",
	Long:  `Disable Do Not Disturb mode. Notification popups and sounds will resume.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dndSetRun(false)
	},
}

var dndToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle Do Not Disturb mode",
	Long:  `Toggle Do Not Disturb mode between enabled and disabled.`,
	RunE:  dndToggleRun,
}

var dndStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Do Not Disturb status",
	Long:  `Show whether Do Not Disturb mode is currently enabled or disabled.`,
	RunE:  dndStatusRun,
}

func init() {
	dndCmd.AddCommand(dndOnCmd)
	dndCmd.AddCommand(dndOffCmd)
	dndCmd.AddCommand(dndToggleCmd)
	dndCmd.AddCommand(dndStatusCmd)

	for _, cmd := range []*cobra.Command{dndCmd, dndOnCmd, dndOffCmd, dndToggleCmd, dndStatusCmd} {
		cmd.Flags().BoolVarP(&dndOpts.quiet, "quiet", "q", false,
			"Suppress output, return exit code only (0=off, 1=on)")
	}

	rootCmd.AddCommand(dndCmd)
}

// reportDnd prints the state and exits with 1 when DND is on, matching
// the convention status-bar scripts expect.
func reportDnd(enabled bool) error {
	if !dndOpts.quiet {
		if enabled {
			fmt.Println("Do Not Disturb: enabled")
		} else {
			fmt.Println("Do Not Disturb: disabled")
		}
	}
	if enabled {
		os.Exit(1)
	}
	return nil
}

func dndSetRun(enabled bool) error {
	client, err := dialDaemon()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := client.SetDndState(ctx, enabled)
	if err != nil {
		return fmt.Errorf("failed to set DND state: %w", err)
	}
	return reportDnd(result)
}

func dndToggleRun(cmd *cobra.Command, args []string) error {
	client, err := dialDaemon()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	current, err := client.DndState(ctx)
	if err != nil {
		return fmt.Errorf("failed to get DND state: %w", err)
	}

	result, err := client.SetDndState(ctx, !current)
	if err != nil {
		return fmt.Errorf("failed to set DND state: %w", err)
	}
	return reportDnd(result)
}

func dndStatusRun(cmd *cobra.Command, args []string) error {
	client, err := dialDaemon()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	enabled, err := client.DndState(ctx)
	if err != nil {
		return fmt.Errorf("failed to get DND state: %w", err)
	}
	return reportDnd(enabled)
}
