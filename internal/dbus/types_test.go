package dbus

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waybell/waybell/internal/model"
)

func TestParsedActions(t *testing.T) {
	tests := []struct {
		name     string
		actions  []string
		expected []model.Action
	}{
		{
			name:     "empty",
			actions:  nil,
			expected: []model.Action{},
		},
		{
			name:     "single action",
			actions:  []string{"default", "Open"},
			expected: []model.Action{{Key: "default", Label: "Open"}},
		},
		{
			name:    "multiple actions",
			actions: []string{"default", "Open", "dismiss", "Dismiss", "reply", "Reply"},
			expected: []model.Action{
				{Key: "default", Label: "Open"},
				{Key: "dismiss", Label: "Dismiss"},
				{Key: "reply", Label: "Reply"},
			},
		},
		{
			name:     "odd number (incomplete pair ignored)",
			actions:  []string{"default", "Open", "orphan"},
			expected: []model.Action{{Key: "default", Label: "Open"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &NotifyRequest{Actions: tt.actions}
			assert.Equal(t, tt.expected, n.ParsedActions())
		})
	}
}

func TestDecodeHints(t *testing.T) {
	n := &NotifyRequest{Hints: map[string]dbus.Variant{
		"urgency":        dbus.MakeVariant(byte(2)),
		"transient":      dbus.MakeVariant(true),
		"value":          dbus.MakeVariant(int32(75)),
		"category":       dbus.MakeVariant("email.arrived"),
		"x-custom-int64": dbus.MakeVariant(int64(9000)),
	}}

	hints := n.DecodeHints()
	require.Len(t, hints, 5)

	assert.Equal(t, model.ByteHint(2), hints["urgency"])
	assert.Equal(t, model.BoolHint(true), hints["transient"])
	assert.Equal(t, model.IntHint(75), hints["value"])
	assert.Equal(t, model.StringHint("email.arrived"), hints["category"])
	assert.Equal(t, model.IntHint(9000), hints["x-custom-int64"])
}

func TestDecodeHints_Empty(t *testing.T) {
	n := &NotifyRequest{}
	assert.Nil(t, n.DecodeHints())
}

func TestDecodeHints_ImageData(t *testing.T) {
	pixels := []byte{0xff, 0x00, 0x00, 0x00, 0xff, 0x00}
	variant := dbus.MakeVariant([]interface{}{
		int32(2), int32(1), int32(6), false, int32(8), int32(3), pixels,
	})
	n := &NotifyRequest{Hints: map[string]dbus.Variant{"image-data": variant}}

	hints := n.DecodeHints()
	hv, ok := hints["image-data"]
	require.True(t, ok)
	require.Equal(t, model.HintImage, hv.Kind)
	require.NotNil(t, hv.Image)
	assert.Equal(t, int32(2), hv.Image.Width)
	assert.Equal(t, int32(1), hv.Image.Height)
	assert.Equal(t, int32(6), hv.Image.Rowstride)
	assert.False(t, hv.Image.HasAlpha)
	assert.Equal(t, int32(8), hv.Image.BitsPerSample)
	assert.Equal(t, int32(3), hv.Image.Channels)
	assert.Equal(t, pixels, hv.Image.Data)
}

func TestDecodeHints_MalformedImageDropped(t *testing.T) {
	variant := dbus.MakeVariant([]interface{}{int32(2), int32(1)})
	n := &NotifyRequest{Hints: map[string]dbus.Variant{"image-data": variant}}

	_, ok := n.DecodeHints()["image-data"]
	assert.False(t, ok)
}

func TestResolveIcon(t *testing.T) {
	t.Run("theme name", func(t *testing.T) {
		n := &NotifyRequest{AppIcon: "mail-unread"}
		icon := n.ResolveIcon(nil)
		assert.Equal(t, model.IconThemeName, icon.Kind)
		assert.Equal(t, "mail-unread", icon.Value)
	})

	t.Run("absolute path", func(t *testing.T) {
		n := &NotifyRequest{AppIcon: "/usr/share/icons/app.png"}
		icon := n.ResolveIcon(nil)
		assert.Equal(t, model.IconPath, icon.Kind)
	})

	t.Run("file uri", func(t *testing.T) {
		n := &NotifyRequest{AppIcon: "file:///tmp/icon.png"}
		icon := n.ResolveIcon(nil)
		assert.Equal(t, model.IconFileURI, icon.Kind)
	})

	t.Run("image data wins over app_icon", func(t *testing.T) {
		n := &NotifyRequest{AppIcon: "mail-unread"}
		hints := map[string]model.HintValue{
			"image-data": model.ImageDataHint(model.ImageHint{Width: 1, Height: 1, Data: []byte{1}}),
		}
		icon := n.ResolveIcon(hints)
		assert.Equal(t, model.IconImageData, icon.Kind)
		assert.Equal(t, []byte{1}, icon.Data)
	})

	t.Run("image-path fallback", func(t *testing.T) {
		n := &NotifyRequest{}
		hints := map[string]model.HintValue{
			"image-path": model.StringHint("/tmp/img.png"),
		}
		icon := n.ResolveIcon(hints)
		assert.Equal(t, model.IconPath, icon.Kind)
		assert.Equal(t, "/tmp/img.png", icon.Value)
	})

	t.Run("nothing supplied", func(t *testing.T) {
		n := &NotifyRequest{}
		assert.True(t, n.ResolveIcon(nil).IsNone())
	})
}

func TestServerCapabilities(t *testing.T) {
	assert.ElementsMatch(t, []string{
		"actions", "body", "body-markup", "icon-static", "persistence", "sound",
	}, ServerCapabilities)
}

func TestDefaultServerInfo(t *testing.T) {
	info := DefaultServerInfo()
	assert.Equal(t, "waybelld", info.Name)
	assert.Equal(t, "waybell", info.Vendor)
	assert.Equal(t, "1.2", info.SpecVersion)
}
