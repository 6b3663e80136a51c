package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <id> [action-key]",
	Short: "Invoke a notification action",
	Long: `Invoke an action on a notification.

Without an action key, the notification's default action is invoked.
Invoking an action closes the notification.

Examples:
  waybell invoke 42
  waybell invoke 42 open`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInvoke,
}

var closeCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close a notification",
	Long: `Close a notification and remove it from history.

Closing an id that no longer exists is not an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runClose,
}

var markReadCmd = &cobra.Command{
	Use:   "mark-read <id>",
	Short: "Mark a notification as read",
	Long:  `Mark a notification as read. The record stays in history.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runMarkRead,
}

func init() {
	rootCmd.AddCommand(invokeCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(markReadCmd)
}

func parseID(arg string) (uint32, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid notification id %q", arg)
	}
	return uint32(id), nil
}

func runInvoke(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	actionKey := "default"
	if len(args) > 1 {
		actionKey = args[1]
	}

	client, err := dialDaemon()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InvokeAction(ctx, id, actionKey); err != nil {
		return fmt.Errorf("failed to invoke action: %w", err)
	}

	fmt.Printf("Invoked action %q on notification %d\n", actionKey, id)
	return nil
}

func runClose(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	client, err := dialDaemon()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.CloseNotification(ctx, id); err != nil {
		return fmt.Errorf("failed to close notification: %w", err)
	}

	fmt.Printf("Closed notification %d\n", id)
	return nil
}

func runMarkRead(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	client, err := dialDaemon()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	fmt.Printf("Marked notification %d read\n", id)
	return nil
}
