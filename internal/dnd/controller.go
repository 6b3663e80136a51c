// Package dnd holds the process-wide Do Not Disturb flag.
package dnd

import (
	"log/slog"
	"sync"
)

// Controller owns the DND boolean. The flag lives for the daemon process
// lifetime and resets on restart; it is deliberately not persisted.
// While enabled, popup display and announcement are suppressed for new
// notifications, but registry storage and socket broadcast proceed
// unaffected.
type Controller struct {
	mu       sync.Mutex
	enabled  bool
	onChange []func(enabled bool)
	logger   *slog.Logger
}

// New creates a Controller with the given initial state.
func New(initial bool, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{enabled: initial, logger: logger}
}

// OnChange registers a callback fired whenever the flag actually changes
// value. Callbacks run with the controller lock held and must only
// enqueue work.
func (c *Controller) OnChange(fn func(enabled bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Set updates the flag. Repeated sets to the current value are no-ops and
// produce no broadcast. Returns true if the value changed.
func (c *Controller) Set(enabled bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.enabled == enabled {
		return false
	}
	c.enabled = enabled
	c.logger.Info("dnd state changed", "enabled", enabled)

	for _, fn := range c.onChange {
		fn(enabled)
	}
	return true
}

// Toggle flips the flag and returns the new value. A flip always changes
// the value, so it always broadcasts.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enabled = !c.enabled
	c.logger.Info("dnd state changed", "enabled", c.enabled)

	for _, fn := range c.onChange {
		fn(c.enabled)
	}
	return c.enabled
}

// Get returns the current value.
func (c *Controller) Get() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}
