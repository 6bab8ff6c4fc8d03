// Package htmlsanitize removes markup from user-supplied text fields.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict allows no elements at all; script and style bodies are dropped.
var strict = bluemonday.StrictPolicy()

// PlainText strips every tag from s and returns the remaining text with
// entities decoded, so "Tom &amp; Jerry" and "Tom & Jerry" compare equal.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
