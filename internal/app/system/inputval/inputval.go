// Package inputval holds small validators for request fields.
package inputval

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// emailRE is the local@domain.tld shape accepted at registration: no
// whitespace, exactly one @, and at least one dot after it.
var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return emailRE.MatchString(s)
}

// IsValidObjectID reports whether s is a 24-char hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// IsValidYear reports whether y can key a metric entry.
func IsValidYear(y int) bool {
	return y > 0 && y <= 9999
}

// IsValidMeasurement reports whether v is usable as a measurement value.
func IsValidMeasurement(v float64) bool {
	return v >= 0 && v == v // NaN != NaN
}
