package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Spec-sanctioned tags are stripped
		{"bold", "<b>Bold</b> text", "Bold text"},
		{"italic", "<i>Italic</i> message", "Italic message"},
		{"underline", "<u>Underline</u> text", "Underline text"},
		{"anchor", "<a href='url'>Link</a> text", "Link text"},
		{"image", "<img src='icon.png' alt='icon'/> text", "text"},
		{"uppercase", "<B>Bold</B> text", "Bold text"},

		// Tags the protocol does not define are preserved
		{"br", "Text with <br> break", "Text with <br> break"},
		{"paragraph", "<p>Paragraph</p> text", "<p>Paragraph</p> text"},
		{"spoiler", "<spoiler>secret text</spoiler>", "<spoiler>secret text</spoiler>"},
		{"mention", "Hey <@user123>", "Hey <@user123>"},
		{"channel", "<#channel-name>", "<#channel-name>"},
		{"mixed", "<b>Bold</b> and <spoiler>hidden</spoiler>", "Bold and <spoiler>hidden</spoiler>"},

		// Entities are decoded
		{"lt entity", "&lt;3", "<3"},
		{"amp entity", "&amp; symbol", "& symbol"},
		{"quot entity", "&quot;quoted&quot;", `"quoted"`},

		// Edge cases
		{"plain", "Normal text", "Normal text"},
		{"bare brackets", "Text < 5 and > 3", "Text < 5 and > 3"},
		{"whitespace collapse", "a  b\n\nc", "a b c"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripMarkup(tt.input))
		})
	}
}
