// Package socket implements the local history-client protocol: a unix
// socket carrying newline-delimited single-line JSON messages.
//
// Requests carry a client-chosen correlation id in "_request_id"; the
// response echoes it verbatim. Messages without a correlation id are
// unsolicited pushes. Framing is fail-fast: a line that does not parse
// terminates the connection with no resynchronization attempt.
package socket

import (
	"encoding/json"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/waybell/waybell/internal/model"
)

// Request kinds.
const (
	TypeGetAll       = "get_all"
	TypeInvokeAction = "invoke_action"
	TypeClose        = "close"
	TypeMarkRead     = "mark_read"
	TypeGetDndState  = "get_dnd_state"
	TypeSetDndState  = "set_dnd_state"
)

// Response kinds.
const (
	TypeNotificationList = "notification_list"
	TypeActionResult     = "action_result"
	TypeCloseResult      = "close_result"
	TypeMarkReadResult   = "mark_read_result"
	TypeDndState         = "dnd_state"
	TypeError            = "error"
)

// Unsolicited push kinds.
const (
	TypeNewNotification    = "new_notification"
	TypeNotificationClosed = "notification_closed"
	TypeDndStateChanged    = "dnd_state_changed"
)

// Message is the single wire envelope used in both directions. Fields
// are populated per kind; the zero value of unused fields is omitted.
type Message struct {
	Type string `json:"type"`

	// RequestID is the client-chosen correlation id, kept as raw JSON so
	// any client-chosen value (including 0) is echoed byte-for-byte.
	RequestID json.RawMessage `json:"_request_id,omitempty"`

	// Request fields.
	ID      uint32 `json:"id,omitempty"`
	Action  string `json:"action,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`

	// Response and push fields.
	Success       *bool                 `json:"success,omitempty"`
	Error         string                `json:"error,omitempty"`
	Notifications []*model.Notification `json:"notifications,omitempty"`
	Notification  *model.Notification   `json:"notification,omitempty"`
}

// IsPush reports whether the message is an unsolicited push rather than
// a response correlated to a request.
func (m *Message) IsPush() bool {
	return len(m.RequestID) == 0
}

// boolPtr is a helper for the *bool message fields.
func boolPtr(v bool) *bool { return &v }

// DefaultSocketPath returns the daemon socket path under the user
// runtime directory.
func DefaultSocketPath() string {
	return filepath.Join(xdg.RuntimeDir, "waybell", "socket")
}
