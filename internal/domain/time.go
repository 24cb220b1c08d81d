package domain

import (
	"strings"
	"time"
)

// TimestampLayout is the fixed-width UTC layout every stored timestamp uses.
// Fixed width keeps lexicographic order equal to chronological order in SQL.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var acceptedDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Clock returns the current time; services take one so tests can pin "now"
type Clock func() time.Time

// FormatTimestamp renders t in TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts ISO-8601 style inputs and returns them in UTC
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range acceptedDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// NormalizeDate rewrites a client supplied date into TimestampLayout.
// Nil and empty strings normalize to nil.
func NormalizeDate(field string, s *string) (*string, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseTimestamp(*s)
	if err != nil {
		return nil, BadRequest("%s must be an ISO-8601 date", field)
	}
	out := FormatTimestamp(t)
	return &out, nil
}
