package model

import (
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// timestampLayouts are tried in order when reading a time value produced
// by the scheduling service.  The "Z07" form covers offsets written
// without minutes ("+03").
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z07",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a full date-time value.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ClockOf extracts HH:MM from a timestamp or a bare time of day.  The
// wall clock of the value's own offset is kept.  Unparseable input is
// returned unchanged.
func ClockOf(s string) string {
	if t, ok := ParseTimestamp(s); ok {
		return t.Format(ClockLayout)
	}
	for _, layout := range []string{"15:04:05", ClockLayout} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.Format(ClockLayout)
		}
	}
	return s
}

// FormatDisplayDate renders YYYY-MM-DD as "Mar 01, 2025".
func FormatDisplayDate(s string) string {
	if len(s) >= 10 {
		if t, err := time.Parse(DateLayout, s[:10]); err == nil {
			return t.Format("Jan 02, 2006")
		}
	}
	return s
}
