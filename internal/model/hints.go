package model

import "fmt"

// HintKind discriminates the native hint value variants.
type HintKind int

const (
	HintBool HintKind = iota
	HintInt
	HintByte
	HintString
	HintImage
)

// String returns the name of the hint kind.
func (k HintKind) String() string {
	switch k {
	case HintBool:
		return "bool"
	case HintInt:
		return "int"
	case HintByte:
		return "byte"
	case HintString:
		return "string"
	case HintImage:
		return "image"
	default:
		return "unknown"
	}
}

// ImageHint is the decoded image-data hint struct:
// width, height, rowstride, has_alpha, bits_per_sample, channels, data.
type ImageHint struct {
	Width         int32  `json:"width"`
	Height        int32  `json:"height"`
	Rowstride     int32  `json:"rowstride"`
	HasAlpha      bool   `json:"has_alpha"`
	BitsPerSample int32  `json:"bits_per_sample"`
	Channels      int32  `json:"channels"`
	Data          []byte `json:"-"`
}

// HintValue is a hint resolved to a native tagged value. D-Bus variant
// wrappers are unwrapped exactly once at the protocol boundary; core code
// only ever sees this type.
type HintValue struct {
	Kind  HintKind   `json:"kind"`
	Bool  bool       `json:"bool,omitempty"`
	Int   int64      `json:"int,omitempty"`
	Byte  byte       `json:"byte,omitempty"`
	Str   string     `json:"str,omitempty"`
	Image *ImageHint `json:"image,omitempty"`
}

// BoolHint constructs a boolean hint value.
func BoolHint(v bool) HintValue { return HintValue{Kind: HintBool, Bool: v} }

// IntHint constructs an integer hint value.
func IntHint(v int64) HintValue { return HintValue{Kind: HintInt, Int: v} }

// ByteHint constructs a byte hint value.
func ByteHint(v byte) HintValue { return HintValue{Kind: HintByte, Byte: v} }

// StringHint constructs a string hint value.
func StringHint(v string) HintValue { return HintValue{Kind: HintString, Str: v} }

// ImageDataHint constructs an image hint value.
func ImageDataHint(img ImageHint) HintValue { return HintValue{Kind: HintImage, Image: &img} }

// String returns a loggable representation of the hint value.
func (v HintValue) String() string {
	switch v.Kind {
	case HintBool:
		return fmt.Sprintf("%t", v.Bool)
	case HintInt:
		return fmt.Sprintf("%d", v.Int)
	case HintByte:
		return fmt.Sprintf("0x%02x", v.Byte)
	case HintString:
		return v.Str
	case HintImage:
		if v.Image != nil {
			return fmt.Sprintf("image %dx%d", v.Image.Width, v.Image.Height)
		}
		return "image"
	default:
		return "?"
	}
}

// UrgencyFromHints extracts the urgency hint, defaulting to normal.
func UrgencyFromHints(hints map[string]HintValue) Urgency {
	v, ok := hints["urgency"]
	if !ok {
		return UrgencyNormal
	}
	var level int64
	switch v.Kind {
	case HintByte:
		level = int64(v.Byte)
	case HintInt:
		level = v.Int
	default:
		return UrgencyNormal
	}
	if level < int64(UrgencyLow) || level > int64(UrgencyCritical) {
		return UrgencyNormal
	}
	return Urgency(level)
}
