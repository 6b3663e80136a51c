// Package model defines the core data structures for waybell.
package model

import (
	"time"
)

// Urgency levels matching the freedesktop notification spec.
type Urgency int

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// String returns the human-readable name of the urgency level.
func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// State is the lifecycle state of a notification in the registry.
// There is no Closed state: closing removes the record entirely.
type State int

const (
	// StateActive means the notification's popup has not timed out yet.
	StateActive State = iota
	// StateExpired means the popup timed out but the record is retained
	// in history and its actions remain invokable.
	StateExpired
)

// String returns the string representation of the state.
func (s State) String() string {
	if s == StateExpired {
		return "expired"
	}
	return "active"
}

// CloseReason represents the reason carried by the NotificationClosed
// signal. Values are defined by the freedesktop.org notification spec.
type CloseReason uint32

const (
	// CloseReasonExpired is defined by the protocol but never emitted
	// here: a popup timeout transitions the record to Expired without
	// closing it.
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification,
	// including by invoking one of its actions.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates an explicit CloseNotification or socket
	// close request.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved by the protocol.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Action represents a notification action with key and label.
// Insertion order from the Notify call is preserved.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// DefaultExpireMillis is the popup timeout applied when the sender asks
// for the server default (expire_timeout = -1) and no per-urgency timeout
// is configured.
const DefaultExpireMillis = 5000

// ExpireKind discriminates the expire policy variants.
type ExpireKind int

const (
	// ExpireServerDefault means the sender passed -1.
	ExpireServerDefault ExpireKind = iota
	// ExpireNever means the sender passed 0; the popup never times out.
	ExpireNever
	// ExpireExplicit means the sender passed a positive millisecond value.
	ExpireExplicit
)

// ExpirePolicy is the resolved expire_timeout of a Notify call.
type ExpirePolicy struct {
	Kind   ExpireKind `json:"kind"`
	Millis int32      `json:"millis,omitempty"`
}

// ExpirePolicyFromTimeout maps a raw D-Bus expire_timeout to a policy.
// Negative values mean server default, zero means never.
func ExpirePolicyFromTimeout(timeout int32) ExpirePolicy {
	switch {
	case timeout < 0:
		return ExpirePolicy{Kind: ExpireServerDefault}
	case timeout == 0:
		return ExpirePolicy{Kind: ExpireNever}
	default:
		return ExpirePolicy{Kind: ExpireExplicit, Millis: timeout}
	}
}

// Duration resolves the policy to a concrete popup lifetime.
// serverDefault is the configured fallback: zero means never expire,
// negative means unconfigured.
func (p ExpirePolicy) Duration(serverDefault time.Duration) time.Duration {
	switch p.Kind {
	case ExpireNever:
		return 0
	case ExpireExplicit:
		return time.Duration(p.Millis) * time.Millisecond
	default:
		if serverDefault < 0 {
			return DefaultExpireMillis * time.Millisecond
		}
		return serverDefault
	}
}

// Notification is one history entry tracked by the registry.
// The JSON shape is also the socket wire representation.
type Notification struct {
	ID            uint32               `json:"id"`
	AppName       string               `json:"app_name"`
	Summary       string               `json:"summary"`
	Body          string               `json:"body"`
	BodySanitized string               `json:"body_sanitized"`
	Icon          Icon                 `json:"icon"`
	Actions       []Action             `json:"actions,omitempty"`
	Hints         map[string]HintValue `json:"hints,omitempty"`
	Urgency       Urgency              `json:"urgency"`
	Expire        ExpirePolicy         `json:"expire_policy"`
	State         State                `json:"state"`
	Read          bool                 `json:"read"`
	CreatedAt     time.Time            `json:"created_at"`
}

// HasAction reports whether the notification carries an action with the
// given key.
func (n *Notification) HasAction(key string) bool {
	for _, a := range n.Actions {
		if a.Key == key {
			return true
		}
	}
	return false
}

// Hint returns the resolved hint value for key, if present.
func (n *Notification) Hint(key string) (HintValue, bool) {
	v, ok := n.Hints[key]
	return v, ok
}

// Clone returns a deep copy of the notification. Snapshot results hand
// out clones so callers can never mutate registry state.
func (n *Notification) Clone() *Notification {
	clone := *n
	if n.Actions != nil {
		clone.Actions = make([]Action, len(n.Actions))
		copy(clone.Actions, n.Actions)
	}
	if n.Hints != nil {
		clone.Hints = make(map[string]HintValue, len(n.Hints))
		for k, v := range n.Hints {
			clone.Hints[k] = v
		}
	}
	if n.Icon.Data != nil {
		clone.Icon.Data = make([]byte, len(n.Icon.Data))
		copy(clone.Icon.Data, n.Icon.Data)
	}
	return &clone
}
