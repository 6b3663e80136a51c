package model

import "strings"

// IconKind discriminates the icon variants a Notify call can carry.
type IconKind int

const (
	// IconNone means no icon was supplied.
	IconNone IconKind = iota
	// IconThemeName is a named icon resolved via the icon theme.
	IconThemeName
	// IconPath is an absolute filesystem path.
	IconPath
	// IconFileURI is a file:// URI.
	IconFileURI
	// IconImageData is raw image bytes from the image-data hint.
	IconImageData
)

// String returns the name of the icon kind.
func (k IconKind) String() string {
	switch k {
	case IconThemeName:
		return "theme"
	case IconPath:
		return "path"
	case IconFileURI:
		return "file-uri"
	case IconImageData:
		return "image-data"
	default:
		return "none"
	}
}

// Icon is the tagged icon variant of a notification.
type Icon struct {
	Kind  IconKind `json:"kind"`
	Value string   `json:"value,omitempty"`
	Data  []byte   `json:"-"`
}

// IconFromString classifies the app_icon field of a Notify call.
func IconFromString(s string) Icon {
	switch {
	case s == "":
		return Icon{Kind: IconNone}
	case strings.HasPrefix(s, "file://"):
		return Icon{Kind: IconFileURI, Value: s}
	case strings.HasPrefix(s, "/"):
		return Icon{Kind: IconPath, Value: s}
	default:
		return Icon{Kind: IconThemeName, Value: s}
	}
}

// IconFromImageData wraps raw image bytes from the image-data hint.
func IconFromImageData(data []byte) Icon {
	return Icon{Kind: IconImageData, Data: data}
}

// IsNone reports whether no icon was supplied.
func (i Icon) IsNone() bool { return i.Kind == IconNone }
