// Package normalize canonicalizes user-supplied strings before they are
// compared or stored.
package normalize

import (
	"strings"
)

// Email trims surrounding space and lowercases. Emails are compared and
// stored in this form, so uniqueness is case-insensitive.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding space and collapses inner runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// QueryParam trims a query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Format lowercases and trims an export format selector ("csv", "json").
func Format(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
