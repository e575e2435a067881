package utils

import (
	"strings"
	"time"
)

// DateLayout is the canonical textual date form (YYYY-MM-DD).
const DateLayout = "2006-01-02"

const usDateLayout = "01/02/2006"

// Now returns the current time in UTC timezone
func Now() time.Time {
	return time.Now().UTC()
}

// Today returns the current UTC date truncated to midnight.
func Today() time.Time {
	return TruncateDay(Now())
}

// TruncateDay drops the clock part of t, keeping its calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// CanonicalDate converts MM/DD/YYYY input into YYYY-MM-DD. Any other input is
// returned unchanged.
func CanonicalDate(s string) string {
	trimmed := strings.TrimSpace(s)
	if t, err := time.Parse(usDateLayout, trimmed); err == nil {
		return FormatDate(t)
	}
	return s
}

// FormatISO8601 formats a time.Time to ISO8601 format in UTC
func FormatISO8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
