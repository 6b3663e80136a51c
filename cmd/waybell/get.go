package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/waybell/waybell/internal/model"
)

var getOpts struct {
	// Filter options
	app     string
	urgency string
	state   string
	unread  bool
	limit   int
	search  string

	// Output options
	format       string
	templateName string
	templateStr  string
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Query and output notification history",
	Long: `Query notification history from waybelld and output it.

Without arguments, outputs all notifications one per line using the list
template. With an id argument, outputs that notification using the full
template.

Examples:
  # List all notifications
  waybell get

  # Filter by app and urgency
  waybell get --app firefox --urgency critical

  # Unread only, as JSON
  waybell get --unread --format json

  # Single notification body (for scripting)
  waybell get 42 --template body

  # Use with fuzzel for a picker workflow
  waybell get | fuzzel -d`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVar(&getOpts.app, "app", "",
		"Filter by application name (exact match)")
	getCmd.Flags().StringVar(&getOpts.urgency, "urgency", "",
		"Filter by urgency (low, normal, critical)")
	getCmd.Flags().StringVar(&getOpts.state, "state", "",
		"Filter by state (active, expired)")
	getCmd.Flags().BoolVar(&getOpts.unread, "unread", false,
		"Show only unread notifications")
	getCmd.Flags().IntVarP(&getOpts.limit, "limit", "n", 0,
		"Maximum number of notifications to show (0=unlimited)")
	getCmd.Flags().StringVarP(&getOpts.search, "search", "s", "",
		"Search in summary, body, and app name")

	getCmd.Flags().StringVarP(&getOpts.format, "format", "f", "template",
		"Output format (template, json)")
	getCmd.Flags().StringVarP(&getOpts.templateName, "template", "t", "",
		"Named template from config (list, full, body, or a custom name)")
	getCmd.Flags().StringVar(&getOpts.templateStr, "template-string", "",
		"Inline Go template overriding --template")
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := dialDaemon()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notifications, err := client.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch notifications: %w", err)
	}

	// Single notification lookup
	if len(args) > 0 {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid notification id %q", args[0])
		}
		for _, n := range notifications {
			if n.ID == uint32(id) {
				return outputOne(n)
			}
		}
		return fmt.Errorf("notification %d not found", id)
	}

	notifications = applyFilters(notifications)

	// Newest first
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].ID > notifications[j].ID
	})

	if getOpts.limit > 0 && len(notifications) > getOpts.limit {
		notifications = notifications[:getOpts.limit]
	}

	return outputList(notifications)
}

// applyFilters applies filter options to notifications.
func applyFilters(notifications []*model.Notification) []*model.Notification {
	var out []*model.Notification
	for _, n := range notifications {
		if getOpts.app != "" && n.AppName != getOpts.app {
			continue
		}
		if getOpts.urgency != "" && n.Urgency.String() != strings.ToLower(getOpts.urgency) {
			continue
		}
		if getOpts.state != "" && n.State.String() != strings.ToLower(getOpts.state) {
			continue
		}
		if getOpts.unread && n.Read {
			continue
		}
		if getOpts.search != "" && !matchesSearch(n, getOpts.search) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func matchesSearch(n *model.Notification, query string) bool {
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(n.Summary), query) ||
		strings.Contains(strings.ToLower(n.BodySanitized), query) ||
		strings.Contains(strings.ToLower(n.AppName), query)
}

// templateRow is the data handed to output templates. Embedding exposes
// every notification field directly.
type templateRow struct {
	model.Notification
	RelativeTime string
}

func newTemplateRow(n *model.Notification) templateRow {
	return templateRow{
		Notification: *n,
		RelativeTime: humanize.Time(n.CreatedAt),
	}
}

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04:05")
	},
	"relative": humanize.Time,
	"lower":    strings.ToLower,
	"upper":    strings.ToUpper,
}

// resolveTemplate picks the template text: inline string, named config
// template, then the built-in default for the context.
func resolveTemplate(defaultName string) (string, error) {
	if getOpts.templateStr != "" {
		return getOpts.templateStr, nil
	}
	name := getOpts.templateName
	if name == "" {
		name = defaultName
	}
	tmpl := cfg.GetTemplate(name)
	if tmpl == "" {
		return "", fmt.Errorf("unknown template %q", name)
	}
	return tmpl, nil
}

func renderTemplate(text string, n *model.Notification) error {
	tmpl, err := template.New("output").Funcs(templateFuncs).Parse(text)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	if err := tmpl.Execute(os.Stdout, newTemplateRow(n)); err != nil {
		return fmt.Errorf("template execution failed: %w", err)
	}
	fmt.Println()
	return nil
}

func outputOne(n *model.Notification) error {
	if strings.EqualFold(getOpts.format, "json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(n)
	}

	text, err := resolveTemplate("full")
	if err != nil {
		return err
	}
	return renderTemplate(text, n)
}

func outputList(notifications []*model.Notification) error {
	if strings.EqualFold(getOpts.format, "json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(notifications)
	}

	text, err := resolveTemplate("list")
	if err != nil {
		return err
	}
	for _, n := range notifications {
		if err := renderTemplate(text, n); err != nil {
			return err
		}
	}
	return nil
}
