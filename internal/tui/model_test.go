package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waybell/waybell/internal/config"
	"github.com/waybell/waybell/internal/model"
	"github.com/waybell/waybell/internal/socket"
)

func testNotification(id uint32, app, summary, body string) *model.Notification {
	return &model.Notification{
		ID:            id,
		AppName:       app,
		Summary:       summary,
		Body:          body,
		BodySanitized: body,
		CreatedAt:     time.Now(),
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		substr   string
		expected bool
	}{
		{"exact", "meeting", "meeting", true},
		{"substring", "team meeting at 3", "meeting", true},
		{"case_insensitive", "Team MEETING", "meeting", true},
		{"mixed_case_query", "team meeting", "MeEtInG", true},
		{"no_match", "lunch break", "meeting", false},
		{"empty_query", "anything", "", true},
		{"query_longer_than_s", "ab", "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, containsIgnoreCase(tt.s, tt.substr))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly te", truncate("exactly te", 10))
	assert.Equal(t, "this is a…", truncate("this is a long string", 10))
	// Multi-byte runes are not split.
	assert.Equal(t, "héllo", truncate("héllo", 5))
}

func TestBuildListItems_NewestFirst(t *testing.T) {
	m := New(config.DefaultConfig(), nil, nil)
	m.notifications = []*model.Notification{
		testNotification(1, "mail", "first", ""),
		testNotification(2, "mail", "second", ""),
		testNotification(3, "mail", "third", ""),
	}

	items := m.buildListItems()
	require.Len(t, items, 3)
	assert.Equal(t, uint32(3), items[0].(notificationItem).notification.ID)
	assert.Equal(t, uint32(1), items[2].(notificationItem).notification.ID)
}

func TestBuildListItems_SearchFilters(t *testing.T) {
	m := New(config.DefaultConfig(), nil, nil)
	m.notifications = []*model.Notification{
		testNotification(1, "discord", "New message", "hello there"),
		testNotification(2, "firefox", "Download complete", "file.zip"),
		testNotification(3, "discord", "Mention", "see you at the meeting"),
	}

	m.searchQuery = "discord"
	items := m.buildListItems()
	require.Len(t, items, 2)

	m.searchQuery = "MEETING"
	items = m.buildListItems()
	require.Len(t, items, 1)
	assert.Equal(t, uint32(3), items[0].(notificationItem).notification.ID)

	m.searchQuery = "nothing matches this"
	assert.Empty(t, m.buildListItems())
}

func TestApplyPush_NewNotificationUpsert(t *testing.T) {
	m := New(config.DefaultConfig(), nil, nil)
	m.notifications = []*model.Notification{
		testNotification(1, "mail", "original", ""),
	}

	m.applyPush(&socket.Message{
		Type:         socket.TypeNewNotification,
		Notification: testNotification(2, "mail", "fresh", ""),
	})
	assert.Len(t, m.notifications, 2)

	// Same id replaces in place.
	m.applyPush(&socket.Message{
		Type:         socket.TypeNewNotification,
		Notification: testNotification(1, "mail", "replaced", ""),
	})
	assert.Len(t, m.notifications, 2)
	assert.Equal(t, "replaced", m.notifications[0].Summary)
}

func TestApplyPush_NotificationClosedRemoves(t *testing.T) {
	m := New(config.DefaultConfig(), nil, nil)
	m.notifications = []*model.Notification{
		testNotification(1, "mail", "a", ""),
		testNotification(2, "mail", "b", ""),
	}
	m.selected = m.notifications[1]
	m.mode = ModeDetail

	m.applyPush(&socket.Message{Type: socket.TypeNotificationClosed, ID: 2})

	require.Len(t, m.notifications, 1)
	assert.Equal(t, uint32(1), m.notifications[0].ID)

	// Closing the selected notification drops back to the list.
	assert.Nil(t, m.selected)
	assert.Equal(t, ModeList, m.mode)
}

func TestApplyPush_DndStateChanged(t *testing.T) {
	m := New(config.DefaultConfig(), nil, nil)

	enabled := true
	m.applyPush(&socket.Message{Type: socket.TypeDndStateChanged, Enabled: &enabled})
	assert.True(t, m.dndEnabled)
	assert.Equal(t, "Notifications [DND]", m.listTitle())

	enabled = false
	m.applyPush(&socket.Message{Type: socket.TypeDndStateChanged, Enabled: &enabled})
	assert.False(t, m.dndEnabled)
	assert.Equal(t, "Notifications", m.listTitle())
}

func TestNotificationItem_UnreadMarker(t *testing.T) {
	n := testNotification(1, "mail", "hello", "")
	item := notificationItem{notification: n}
	assert.Equal(t, "● hello", item.Title())

	n.Read = true
	assert.Equal(t, "hello", item.Title())
}
