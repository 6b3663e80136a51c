package dbus

import (
	"github.com/godbus/dbus/v5"

	"github.com/waybell/waybell/internal/model"
)

// NotifyRequest carries the raw parameters of one
// org.freedesktop.Notifications.Notify call.
type NotifyRequest struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// ParsedActions converts the flat D-Bus action array to key/label
// pairs. A trailing key without a label is dropped.
func (n *NotifyRequest) ParsedActions() []model.Action {
	actions := make([]model.Action, 0, len(n.Actions)/2)
	for i := 0; i+1 < len(n.Actions); i += 2 {
		actions = append(actions, model.Action{
			Key:   n.Actions[i],
			Label: n.Actions[i+1],
		})
	}
	return actions
}

// DecodeHints converts the D-Bus variant hint map into the typed hint
// values carried on notification records. Variants of unsupported
// signatures are dropped, except image-data which is decoded into its
// structured form.
func (n *NotifyRequest) DecodeHints() map[string]model.HintValue {
	if len(n.Hints) == 0 {
		return nil
	}
	hints := make(map[string]model.HintValue, len(n.Hints))
	for key, variant := range n.Hints {
		switch v := variant.Value().(type) {
		case bool:
			hints[key] = model.BoolHint(v)
		case byte:
			hints[key] = model.ByteHint(v)
		case int16:
			hints[key] = model.IntHint(int64(v))
		case uint16:
			hints[key] = model.IntHint(int64(v))
		case int32:
			hints[key] = model.IntHint(int64(v))
		case uint32:
			hints[key] = model.IntHint(int64(v))
		case int64:
			hints[key] = model.IntHint(v)
		case string:
			hints[key] = model.StringHint(v)
		default:
			if img, ok := decodeImageHint(variant); ok {
				hints[key] = model.ImageDataHint(img)
			}
		}
	}
	return hints
}

// decodeImageHint unpacks the (iiibiiay) image-data struct.
func decodeImageHint(variant dbus.Variant) (model.ImageHint, bool) {
	fields, ok := variant.Value().([]interface{})
	if !ok || len(fields) != 7 {
		return model.ImageHint{}, false
	}

	width, ok1 := fields[0].(int32)
	height, ok2 := fields[1].(int32)
	rowstride, ok3 := fields[2].(int32)
	hasAlpha, ok4 := fields[3].(bool)
	bitsPerSample, ok5 := fields[4].(int32)
	channels, ok6 := fields[5].(int32)
	data, ok7 := fields[6].([]byte)
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
		return model.ImageHint{}, false
	}

	return model.ImageHint{
		Width:         width,
		Height:        height,
		Rowstride:     rowstride,
		HasAlpha:      hasAlpha,
		BitsPerSample: bitsPerSample,
		Channels:      channels,
		Data:          data,
	}, true
}

// ResolveIcon picks the notification icon. Raw image data in the hints
// wins over the app_icon string; image-path is the fallback when
// app_icon is empty.
func (n *NotifyRequest) ResolveIcon(hints map[string]model.HintValue) model.Icon {
	for _, key := range []string{"image-data", "image_data", "icon_data"} {
		if hv, ok := hints[key]; ok && hv.Kind == model.HintImage && hv.Image != nil {
			return model.IconFromImageData(hv.Image.Data)
		}
	}
	if n.AppIcon != "" {
		return model.IconFromString(n.AppIcon)
	}
	if hv, ok := hints["image-path"]; ok && hv.Kind == model.HintString {
		return model.IconFromString(hv.Str)
	}
	return model.Icon{Kind: model.IconNone}
}

// ServerCapabilities is the capability set advertised by waybelld.
var ServerCapabilities = []string{
	"actions",
	"body",
	"body-markup",
	"icon-static",
	"persistence",
	"sound",
}

// ServerInfo is the tuple returned by GetServerInformation.
type ServerInfo struct {
	Name        string
	Vendor      string
	Version     string
	SpecVersion string
}

// DefaultServerInfo returns the identity advertised by default.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "waybelld",
		Vendor:      "waybell",
		Version:     "0.1.0",
		SpecVersion: "1.2",
	}
}
