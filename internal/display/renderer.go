package display

import (
	"github.com/waybell/waybell/internal/config"
	"github.com/waybell/waybell/internal/model"
)

// Callbacks carries popup event notifications back to the daemon. A
// popup never decides what happens to the underlying record; it only
// reports what the user or the clock did.
type Callbacks struct {
	// OnTimeout fires when a popup's display time elapses. The popup is
	// already gone from screen when this is called.
	OnTimeout func(id uint32)

	// OnAction fires when the user clicks an action button.
	OnAction func(id uint32, actionKey string)

	// OnDismiss fires when the user dismisses a popup by hand.
	OnDismiss func(id uint32)
}

// Renderer shows and hides notification popups. Implementations assume
// all calls arrive on the GUI thread.
type Renderer interface {
	// Show displays a popup for the notification. Showing an id that is
	// already visible replaces its popup in place.
	Show(n *model.Notification)

	// Hide removes a popup from screen without reporting anything.
	// Hiding an absent id is a no-op.
	Hide(id uint32)

	// HideAll removes every popup and clears the pending queue.
	HideAll()

	// UpdateConfig applies a new configuration to future popups.
	UpdateConfig(cfg *config.DaemonConfig)

	// ActiveCount returns the number of popups currently on screen.
	ActiveCount() int
}
