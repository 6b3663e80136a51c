package model

import (
	"html"
	"regexp"
	"strings"
)

// The freedesktop notification spec allows exactly five markup tags in
// the body: <b>, <i>, <u>, <a href="...">, <img src="..." alt="...">.
// Sanitization strips only those; any other angle-bracket text (chat
// mentions like <@user>, <spoiler>, unknown tags) is left untouched so
// message content survives intact.
var (
	tagB   = regexp.MustCompile(`(?i)</?b(?:\s[^>]*)?\s*>`)
	tagI   = regexp.MustCompile(`(?i)</?i(?:\s[^>]*)?\s*>`)
	tagU   = regexp.MustCompile(`(?i)</?u(?:\s[^>]*)?\s*>`)
	tagA   = regexp.MustCompile(`(?i)</?a(?:\s[^>]*)?\s*>`)
	tagImg = regexp.MustCompile(`(?i)<img(?:\s[^>]*)?\s*/?>`)

	whitespace = regexp.MustCompile(`\s+`)
)

// StripMarkup removes the freedesktop-sanctioned markup tags from a notification
// body, decodes HTML entities, and collapses whitespace. The result is
// used for display and accessibility announcement.
func StripMarkup(text string) string {
	if text == "" {
		return text
	}

	text = tagB.ReplaceAllString(text, "")
	text = tagI.ReplaceAllString(text, "")
	text = tagU.ReplaceAllString(text, "")
	text = tagA.ReplaceAllString(text, "")
	text = tagImg.ReplaceAllString(text, "")

	text = html.UnescapeString(text)

	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}
