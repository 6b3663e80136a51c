package display

import (
	"container/list"
	"log/slog"
	"sort"
	"time"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/waybell/waybell/internal/config"
	"github.com/waybell/waybell/internal/model"
)

// queuedNotification is a notification waiting for display space. No
// GTK objects exist until it becomes visible.
type queuedNotification struct {
	notification *model.Notification
	queuedAt     time.Time
}

// popupState is one visible popup.
type popupState struct {
	id        uint32
	popup     *Popup
	urgency   model.Urgency
	createdAt time.Time
	timeoutID glib.SourceHandle // 0 when no timeout scheduled
	paused    bool
}

// Manager implements Renderer on top of GTK4 and layer-shell. At most
// MaxVisible popups hold GTK objects at a time; the rest wait in a
// priority queue. All methods must be called on the GUI thread, so no
// locking happens here.
type Manager struct {
	app       *gtk.Application
	config    *config.DaemonConfig
	logger    *slog.Logger
	callbacks Callbacks

	popups     map[uint32]*popupState
	queue      *list.List // of *queuedNotification, urgency-ordered
	queueIndex map[uint32]*list.Element
}

var _ Renderer = (*Manager)(nil)

// NewManager creates a display manager.
func NewManager(app *gtk.Application, cfg *config.DaemonConfig, callbacks Callbacks, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}
	return &Manager{
		app:        app,
		config:     cfg,
		logger:     logger,
		callbacks:  callbacks,
		popups:     make(map[uint32]*popupState),
		queue:      list.New(),
		queueIndex: make(map[uint32]*list.Element),
	}
}

// Start verifies a display is available.
func (m *Manager) Start() error {
	if gdk.DisplayGetDefault() == nil {
		return &DisplayError{Message: "no display available"}
	}
	m.logger.Info("display manager started")
	return nil
}

// Stop removes all popups.
func (m *Manager) Stop() {
	m.HideAll()
	m.logger.Info("display manager stopped")
}

// Show displays a popup for the notification, replacing any popup the
// id already has. Without display space the notification queues by
// urgency; critical preempts the least urgent visible popup.
func (m *Manager) Show(n *model.Notification) {
	if state, exists := m.popups[n.ID]; exists {
		m.removePopup(state)
		m.showPopup(n)
		return
	}

	if elem, exists := m.queueIndex[n.ID]; exists {
		elem.Value.(*queuedNotification).notification = n
		return
	}

	if len(m.popups) < m.config.Display.MaxVisible {
		m.showPopup(n)
		return
	}

	if n.Urgency == model.UrgencyCritical {
		if victim := m.lowestUrgencyPopup(); victim != nil && victim.urgency < model.UrgencyCritical {
			m.removePopup(victim)
			m.enqueue(victim.popup.Notification())
			m.showPopup(n)
			return
		}
	}

	m.enqueue(n)
	m.logger.Debug("queued notification", "id", n.ID, "urgency", n.Urgency.String(), "queue_size", m.queue.Len())
}

// Hide removes the popup for id, if visible or queued.
func (m *Manager) Hide(id uint32) {
	if elem, inQueue := m.queueIndex[id]; inQueue {
		m.queue.Remove(elem)
		delete(m.queueIndex, id)
		return
	}

	state, exists := m.popups[id]
	if !exists {
		return
	}
	m.removePopup(state)
	m.showNextQueued()
	m.updatePositions()
}

// HideAll removes every popup and clears the queue.
func (m *Manager) HideAll() {
	for _, state := range m.popups {
		m.removePopup(state)
	}
	m.queue.Init()
	m.queueIndex = make(map[uint32]*list.Element)
}

// ActiveCount returns the number of popups on screen.
func (m *Manager) ActiveCount() int {
	return len(m.popups)
}

// QueuedCount returns the number of notifications waiting for space.
func (m *Manager) QueuedCount() int {
	return m.queue.Len()
}

// UpdateConfig applies a new configuration. Existing popups keep their
// geometry; a raised max_visible drains the queue.
func (m *Manager) UpdateConfig(cfg *config.DaemonConfig) {
	oldMax := m.config.Display.MaxVisible
	m.config = cfg

	m.updatePositions()
	for i := oldMax; i < cfg.Display.MaxVisible; i++ {
		m.showNextQueued()
	}
}

func (m *Manager) showPopup(n *model.Notification) {
	popup := NewPopup(m.app, n, m.config, m.logger)

	popup.OnDismiss(func() {
		m.dropAndReport(n.ID, m.callbacks.OnDismiss)
	})
	popup.OnAction(func(actionKey string) {
		if m.callbacks.OnAction != nil {
			m.callbacks.OnAction(n.ID, actionKey)
		}
	})
	popup.OnHover(func(hovering bool) {
		m.handleHover(n.ID, hovering)
	})

	state := &popupState{
		id:        n.ID,
		popup:     popup,
		urgency:   n.Urgency,
		createdAt: time.Now(),
	}
	m.popups[n.ID] = state

	m.scheduleTimeout(state, n)
	popup.Show(m.position(state))

	m.logger.Debug("showed popup", "id", n.ID, "active_popups", len(m.popups))
}

// scheduleTimeout arms the popup's expiry timer on the GTK main loop.
func (m *Manager) scheduleTimeout(state *popupState, n *model.Notification) {
	lifetime := n.Expire.Duration(m.config.TimeoutFor(n.Urgency))
	if lifetime <= 0 {
		return
	}

	id := state.id
	state.timeoutID = glib.TimeoutAdd(uint(lifetime.Milliseconds()), func() bool {
		st, exists := m.popups[id]
		if !exists {
			return false
		}
		// Returning false destroys the source either way, so the stored
		// handle must be cleared even when hover pauses the expiry.
		st.timeoutID = 0
		if st.paused {
			return false
		}
		m.dropAndReport(id, m.callbacks.OnTimeout)
		return false
	})
}

// dropAndReport removes a popup and fires the given callback.
func (m *Manager) dropAndReport(id uint32, report func(uint32)) {
	state, exists := m.popups[id]
	if exists {
		m.removePopup(state)
	}
	if report != nil {
		report(id)
	}
	m.showNextQueued()
	m.updatePositions()
}

// removePopup tears down a popup's GTK objects and timer.
func (m *Manager) removePopup(state *popupState) {
	if state.timeoutID != 0 {
		glib.SourceRemove(state.timeoutID)
		state.timeoutID = 0
	}
	delete(m.popups, state.id)
	state.popup.Close()
}

func (m *Manager) handleHover(id uint32, hovering bool) {
	state, exists := m.popups[id]
	if !exists {
		return
	}
	state.paused = hovering
	if !hovering {
		// Restart the clock with the full configured lifetime.
		if state.timeoutID != 0 {
			glib.SourceRemove(state.timeoutID)
			state.timeoutID = 0
		}
		m.scheduleTimeout(state, state.popup.Notification())
	}
}

// enqueue inserts by urgency, highest first, FIFO within a level.
func (m *Manager) enqueue(n *model.Notification) {
	queued := &queuedNotification{notification: n, queuedAt: time.Now()}

	var insertBefore *list.Element
	for e := m.queue.Front(); e != nil; e = e.Next() {
		existing := e.Value.(*queuedNotification)
		if n.Urgency > existing.notification.Urgency {
			insertBefore = e
			break
		}
	}

	var elem *list.Element
	if insertBefore != nil {
		elem = m.queue.InsertBefore(queued, insertBefore)
	} else {
		elem = m.queue.PushBack(queued)
	}
	m.queueIndex[n.ID] = elem
}

func (m *Manager) showNextQueued() {
	if len(m.popups) >= m.config.Display.MaxVisible {
		return
	}
	elem := m.queue.Front()
	if elem == nil {
		return
	}

	queued := elem.Value.(*queuedNotification)
	m.queue.Remove(elem)
	delete(m.queueIndex, queued.notification.ID)

	m.showPopup(queued.notification)
}

func (m *Manager) lowestUrgencyPopup() *popupState {
	var lowest *popupState
	for _, state := range m.popups {
		if lowest == nil || state.urgency < lowest.urgency {
			lowest = state
		}
	}
	return lowest
}

// position returns a popup's slot in the visible stack, ordered by
// creation time.
func (m *Manager) position(target *popupState) int {
	states := m.sortedStates()
	for i, state := range states {
		if state == target {
			return i
		}
	}
	return len(states) - 1
}

func (m *Manager) updatePositions() {
	for i, state := range m.sortedStates() {
		state.popup.UpdatePosition(i)
	}
}

func (m *Manager) sortedStates() []*popupState {
	states := make([]*popupState, 0, len(m.popups))
	for _, state := range m.popups {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].createdAt.Before(states[j].createdAt)
	})
	return states
}

// DisplayError represents a display-related error.
type DisplayError struct {
	Message string
	Cause   error
}

func (e *DisplayError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DisplayError) Unwrap() error {
	return e.Cause
}
