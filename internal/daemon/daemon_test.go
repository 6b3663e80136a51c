package daemon

import (
	"sync"
	"testing"

	godbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waybell/waybell/internal/config"
	"github.com/waybell/waybell/internal/dbus"
	"github.com/waybell/waybell/internal/eventloop"
	"github.com/waybell/waybell/internal/model"
)

// fakeRenderer records Show/Hide calls in order.
type fakeRenderer struct {
	mu    sync.Mutex
	shown []uint32
	hides []uint32
}

func (f *fakeRenderer) Show(n *model.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, n.ID)
}

func (f *fakeRenderer) Hide(id uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hides = append(f.hides, id)
}

func (f *fakeRenderer) HideAll()                              {}
func (f *fakeRenderer) UpdateConfig(cfg *config.DaemonConfig) {}
func (f *fakeRenderer) ActiveCount() int                      { return 0 }

func (f *fakeRenderer) shownIDs() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint32(nil), f.shown...)
}

func (f *fakeRenderer) hiddenIDs() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint32(nil), f.hides...)
}

func newTestDaemon(t *testing.T) (*Daemon, *fakeRenderer, *eventloop.Bridge) {
	t.Helper()
	renderer := &fakeRenderer{}
	bridge := eventloop.New(nil)
	d := New(Options{
		Renderer: renderer,
		Bridge:   bridge,
	})
	return d, renderer, bridge
}

func notifyRequest(summary string, replaces uint32) *dbus.NotifyRequest {
	return &dbus.NotifyRequest{
		AppName:       "test-app",
		ReplacesID:    replaces,
		Summary:       summary,
		Body:          "<b>bold</b> body",
		Actions:       []string{"default", "Open"},
		ExpireTimeout: -1,
	}
}

func TestHandleNotify_AssignsIDsAndSanitizes(t *testing.T) {
	d, renderer, bridge := newTestDaemon(t)

	id1 := d.HandleNotify(notifyRequest("first", 0))
	id2 := d.HandleNotify(notifyRequest("second", 0))

	assert.Equal(t, uint32(1), id1)
	assert.Equal(t, uint32(2), id2)

	bridge.Drain()
	assert.Equal(t, []uint32{1, 2}, renderer.shownIDs())

	n := d.Registry().Get(id1)
	require.NotNil(t, n)
	assert.Equal(t, "<b>bold</b> body", n.Body)
	assert.Equal(t, "bold body", n.BodySanitized)
	assert.Equal(t, []model.Action{{Key: "default", Label: "Open"}}, n.Actions)
}

func TestHandleNotify_ReplacePreservesID(t *testing.T) {
	d, renderer, bridge := newTestDaemon(t)

	id := d.HandleNotify(notifyRequest("original", 0))
	replacement := d.HandleNotify(notifyRequest("updated", id))

	assert.Equal(t, id, replacement)
	assert.Equal(t, "updated", d.Registry().Get(id).Summary)

	// Both creates reach the renderer; the second replaces in place.
	bridge.Drain()
	assert.Equal(t, []uint32{id, id}, renderer.shownIDs())
}

func TestHandleNotify_StaleReplaceGetsFreshID(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	id := d.HandleNotify(notifyRequest("x", 99))
	assert.Equal(t, uint32(1), id)
}

func TestHandleNotify_UrgencyFromHints(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	req := notifyRequest("urgent", 0)
	req.Hints = map[string]godbus.Variant{
		"urgency": godbus.MakeVariant(byte(2)),
	}
	id := d.HandleNotify(req)

	assert.Equal(t, model.UrgencyCritical, d.Registry().Get(id).Urgency)
}

func TestDndSuppressesPopups(t *testing.T) {
	d, renderer, bridge := newTestDaemon(t)

	d.SetDndState(true)
	id := d.HandleNotify(notifyRequest("quiet", 0))

	bridge.Drain()
	assert.Empty(t, renderer.shownIDs())

	// The record is still stored and visible to history clients.
	require.NotNil(t, d.Registry().Get(id))
	assert.Len(t, d.Snapshot(), 1)

	// Disabling DND restores popups for subsequent notifications.
	d.SetDndState(false)
	d.HandleNotify(notifyRequest("loud", 0))
	bridge.Drain()
	assert.Len(t, renderer.shownIDs(), 1)
}

func TestDisplayTimeoutExpiresWithoutClosing(t *testing.T) {
	d, renderer, bridge := newTestDaemon(t)
	callbacks := d.DisplayCallbacks()

	id := d.HandleNotify(notifyRequest("fades", 0))
	bridge.Drain()

	callbacks.OnTimeout(id)
	bridge.Drain()

	n := d.Registry().Get(id)
	require.NotNil(t, n)
	assert.Equal(t, model.StateExpired, n.State)

	// No close reached the renderer: the popup removed itself.
	assert.Empty(t, renderer.hiddenIDs())
}

func TestDisplayDismissClosesRecord(t *testing.T) {
	d, renderer, bridge := newTestDaemon(t)
	callbacks := d.DisplayCallbacks()

	id := d.HandleNotify(notifyRequest("dismissed", 0))
	bridge.Drain()

	callbacks.OnDismiss(id)
	bridge.Drain()

	assert.Nil(t, d.Registry().Get(id))
	assert.Contains(t, renderer.hiddenIDs(), id)
}

func TestDisplayActionClosesRecord(t *testing.T) {
	d, _, bridge := newTestDaemon(t)
	callbacks := d.DisplayCallbacks()

	id := d.HandleNotify(notifyRequest("actionable", 0))
	bridge.Drain()

	callbacks.OnAction(id, "default")
	assert.Nil(t, d.Registry().Get(id))

	// A second click on a stale popup is harmless.
	callbacks.OnAction(id, "default")
}

func TestBackend_CloseIsIdempotent(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	id := d.HandleNotify(notifyRequest("gone", 0))
	d.Close(id, model.CloseReasonClosed)
	d.Close(id, model.CloseReasonClosed)
	d.Close(12345, model.CloseReasonClosed)

	assert.Empty(t, d.Snapshot())
}

func TestBackend_MarkRead(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	id := d.HandleNotify(notifyRequest("seen", 0))
	d.MarkRead(id)

	assert.True(t, d.Registry().Get(id).Read)
}

func TestBackend_DndRoundTrip(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	assert.False(t, d.DndState())
	d.SetDndState(true)
	assert.True(t, d.DndState())
}
