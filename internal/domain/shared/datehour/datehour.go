package datehour

import (
	"strings"
	"time"
)

const (
	// DateLayout is the canonical calendar-date form used across the module.
	DateLayout = "2006-01-02"
	// HourLayout is the canonical hour-label form, truncated to the minute.
	HourLayout = "15:04"
)

// instantLayouts covers the timestamp encodings backends have produced over
// time: RFC3339 with zone, without zone, and with a space separator.
var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// DateHour is one parsed reservation instant: a calendar date plus an
// optional hour label. An empty Hour means the entry carries no time of day.
type DateHour struct {
	Date string
	Hour string
}

// ParseInstant parses a timestamp-like string into an absolute instant.
// Strings without a time component are rejected; use ParseDate for those.
func ParseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseDate parses a bare calendar date, returning it in canonical form.
func ParseDate(s string) (string, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return t.Format(DateLayout), true
}

// Split truncates an instant to its calendar date and hour:minute label.
func Split(t time.Time) (date, hour string) {
	t = t.UTC()
	return t.Format(DateLayout), t.Format(HourLayout)
}

// Combine joins a split date and hour pair back into an absolute instant.
// Backends that send {date, hour} fields separately are re-joined this way.
func Combine(date, hour string) (time.Time, bool) {
	return ParseInstant(strings.TrimSpace(date) + "T" + strings.TrimSpace(hour) + ":00Z")
}
