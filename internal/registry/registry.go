// Package registry implements the authoritative notification store and
// its lifecycle state machine.
package registry

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/waybell/waybell/internal/model"
)

// ErrNotFound is returned by InvokeAction when the id is not present in
// the registry. Absence is deliberately an error only there: a user
// invoking an action they believe exists must see the failure, while
// duplicate Close and MarkRead races stay silent no-ops.
var ErrNotFound = errors.New("notification not found")

// Sink receives registry lifecycle signals. Methods are called with the
// registry lock held, which is what guarantees every subscriber observes
// the same total order (in particular ActionInvoked strictly before
// NotificationClosed). Sinks must not call back into the registry; they
// should enqueue work (socket queues, D-Bus emission, event-loop
// dispatch) and return.
type Sink interface {
	// NotificationCreated fires for every Create, replacement or not.
	NotificationCreated(n *model.Notification, replaced bool)
	// NotificationClosed fires when a record is removed. It never fires
	// for Expire.
	NotificationClosed(id uint32, reason model.CloseReason)
	// ActionInvoked fires before the NotificationClosed that follows it.
	ActionInvoked(id uint32, actionKey string)
}

// CreateParams carries the resolved fields of a Notify call. All wire
// types have been converted to native model values by the caller.
type CreateParams struct {
	AppName    string
	Summary    string
	Body       string
	Actions    []model.Action
	Hints      map[string]model.HintValue
	Icon       model.Icon
	Urgency    model.Urgency
	Expire     model.ExpirePolicy
	ReplacesID uint32
}

// Registry is the single owner of all notification records. Every
// operation is atomic under one mutex and totally ordered with respect
// to every other, and no caller ever observes a partially-updated record.
type Registry struct {
	mu     sync.Mutex
	logger *slog.Logger

	lastID  uint32
	records map[uint32]*model.Notification
	sinks   []Sink

	now func() time.Time
}

// New creates an empty Registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger,
		records: make(map[uint32]*model.Notification),
		now:     time.Now,
	}
}

// AddSink registers a lifecycle signal subscriber. Sinks are notified in
// registration order.
func (r *Registry) AddSink(s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, s)
}

// Create inserts a new notification or replaces an existing one in place.
// If ReplacesID names a present record, that record keeps its id, has all
// fields overwritten, and is forced back to Active (the popup timer
// restarts with it). If ReplacesID is 0 or stale, a fresh monotonic id is
// allocated; stale replace ids are never an error.
func (r *Registry) Create(p CreateParams) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := p.ReplacesID
	_, replacing := r.records[id]
	if id == 0 || !replacing {
		// Ids are monotonic, never 0, and never reused while a record
		// holding them exists. Wraparound after 2^32 allocations in one
		// process lifetime is left undefined.
		r.lastID++
		id = r.lastID
		replacing = false
	}

	n := &model.Notification{
		ID:            id,
		AppName:       p.AppName,
		Summary:       p.Summary,
		Body:          p.Body,
		BodySanitized: model.StripMarkup(p.Body),
		Icon:          p.Icon,
		Actions:       p.Actions,
		Hints:         p.Hints,
		Urgency:       p.Urgency,
		Expire:        p.Expire,
		State:         model.StateActive,
		CreatedAt:     r.now(),
	}
	r.records[id] = n

	r.logger.Debug("notification created",
		"id", id,
		"app", p.AppName,
		"replaced", replacing,
		"urgency", p.Urgency.String(),
	)

	for _, s := range r.sinks {
		s.NotificationCreated(n.Clone(), replacing)
	}
	return id
}

// Expire transitions a record from Active to Expired. The record stays in
// history, its actions remain invokable, and no closure signal is emitted:
// a popup timing out must not look like a close to listeners. Any other
// state, or an absent id, is a no-op.
func (r *Registry) Expire(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.records[id]
	if !ok || n.State != model.StateActive {
		return
	}
	n.State = model.StateExpired
	r.logger.Debug("notification expired", "id", id)
}

// Close removes a record in either state and signals
// NotificationClosed(id, reason) to every sink. Closing an absent id
// silently succeeds; duplicate close races are expected.
func (r *Registry) Close(id uint32, reason model.CloseReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked(id, reason)
}

func (r *Registry) closeLocked(id uint32, reason model.CloseReason) {
	if _, ok := r.records[id]; !ok {
		return
	}
	delete(r.records, id)

	r.logger.Debug("notification closed", "id", id, "reason", reason.String())

	for _, s := range r.sinks {
		s.NotificationClosed(id, reason)
	}
}

// InvokeAction signals ActionInvoked(id, actionKey) and then closes the
// record with reason DismissedByUser. Both signals happen under one lock
// hold, so every subscriber observes them in that order with nothing
// interleaved. Works on Expired records too; only an absent id fails.
func (r *Registry) InvokeAction(id uint32, actionKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return ErrNotFound
	}

	r.logger.Debug("action invoked", "id", id, "action", actionKey)

	for _, s := range r.sinks {
		s.ActionInvoked(id, actionKey)
	}
	r.closeLocked(id, model.CloseReasonDismissed)
	return nil
}

// MarkRead sets the client-local read flag. Absent ids are a no-op and
// nothing is ever signalled.
func (r *Registry) MarkRead(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n, ok := r.records[id]; ok {
		n.Read = true
	}
}

// Snapshot returns clones of all present records ordered by ascending id
// (insertion order). It never mutates registry state.
func (r *Registry) Snapshot() []*model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]uint32, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*model.Notification, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.records[id].Clone())
	}
	return out
}

// Get returns a clone of a single record, or nil if absent.
func (r *Registry) Get(id uint32) *model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n, ok := r.records[id]; ok {
		return n.Clone()
	}
	return nil
}

// Count returns the number of records currently tracked.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
