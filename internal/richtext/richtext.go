// Package richtext provides helpers for the HTML bodies attached to
// bulletin requests. Both the submission form and the service validate
// bodies the same way, so the helpers live in one place.
package richtext

import (
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripTags removes HTML tags and collapses whitespace, leaving the plain
// text a reader would see.
func StripTags(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Blank reports whether the HTML contains no visible text at all.
func Blank(html string) bool {
	return StripTags(html) == ""
}

// DeriveTitle produces a title from an HTML body when the submitter left the
// title blank: the stripped text truncated to 25 runes plus an ellipsis.
// Falls back to "New request" for an empty body.
func DeriveTitle(html string) string {
	text := StripTags(html)
	if text == "" {
		return "New request"
	}
	runes := []rune(text)
	if len(runes) > 28 {
		return string(runes[:25]) + "..."
	}
	return text
}
