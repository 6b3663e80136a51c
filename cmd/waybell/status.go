package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/waybell/waybell/internal/model"
)

var statusOpts struct {
	all bool // Count read notifications too
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text       string `json:"text"`
	Alt        string `json:"alt,omitempty"`
	Tooltip    string `json:"tooltip,omitempty"`
	Class      string `json:"class,omitempty"`
	Percentage int    `json:"percentage,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Output Waybar-compatible JSON status",
	Long: `Output notification status in Waybar's custom module JSON format.

By default, counts only unread notifications. Use --all to count the
whole history.

This is designed to be used with Waybar's custom module:

  "custom/notifications": {
    "exec": "waybell status",
    "interval": 5,
    "return-type": "json",
    "on-click": "waybell tui"
  }

The output includes:
  - text: Number of notifications
  - alt: State class (dnd, critical, normal, empty)
  - tooltip: Breakdown by urgency
  - class: CSS class matching alt`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusOpts.all, "all", false,
		"Count read notifications too")
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := dialDaemon()
	if err != nil {
		// A dead daemon should not break the bar.
		return outputStatus(WaybarStatus{Text: "", Alt: "error", Class: "error"})
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notifications, err := client.GetAll(ctx)
	if err != nil {
		return outputStatus(WaybarStatus{Text: "", Alt: "error", Class: "error"})
	}

	dndEnabled, err := client.DndState(ctx)
	if err != nil {
		dndEnabled = false
	}

	return outputStatus(generateStatus(notifications, dndEnabled, statusOpts.all))
}

// generateStatus builds the Waybar payload from the current history.
func generateStatus(notifications []*model.Notification, dndEnabled, includeRead bool) WaybarStatus {
	var counted []*model.Notification
	for _, n := range notifications {
		if !includeRead && n.Read {
			continue
		}
		counted = append(counted, n)
	}

	byUrgency := make(map[model.Urgency]int)
	for _, n := range counted {
		byUrgency[n.Urgency]++
	}

	class := "normal"
	switch {
	case dndEnabled:
		class = "dnd"
	case byUrgency[model.UrgencyCritical] > 0:
		class = "critical"
	case len(counted) == 0:
		class = "empty"
	}

	text := ""
	if len(counted) > 0 {
		text = fmt.Sprintf("%d", len(counted))
	}

	return WaybarStatus{
		Text:       text,
		Alt:        class,
		Tooltip:    buildTooltip(byUrgency, dndEnabled),
		Class:      class,
		Percentage: min(len(counted), 100),
	}
}

// buildTooltip creates a tooltip showing the urgency breakdown.
func buildTooltip(byUrgency map[model.Urgency]int, dndEnabled bool) string {
	var lines []string
	if dndEnabled {
		lines = append(lines, "Do Not Disturb is on")
	}
	for _, u := range []model.Urgency{model.UrgencyCritical, model.UrgencyNormal, model.UrgencyLow} {
		if byUrgency[u] > 0 {
			lines = append(lines, fmt.Sprintf("%s: %d", capitalize(u.String()), byUrgency[u]))
		}
	}
	if len(lines) == 0 {
		return "No notifications"
	}
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// outputStatus writes the status as JSON.
func outputStatus(status WaybarStatus) error {
	encoder := json.NewEncoder(os.Stdout)
	return encoder.Encode(status)
}
