package timezone

import (
	"time"
)

// DateLayout is the wire format for calendar dates (query parameters, form input).
const DateLayout = "2006-01-02"

var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05-0700", // Without colon
	"2006-01-02T15:04-07:00",
	"2006-01-02T15:04:05Z",
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	DateLayout,
}

// ParseTimeWithOffset parses a departure timestamp as the pricing API emits it.
// Values carrying an offset keep it; values without one are read in loc
// (UTC when loc is nil).
func ParseTimeWithOffset(timeStr string, loc *time.Location) (time.Time, error) {
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, timeStr); err == nil {
			return t, nil
		}
	}

	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, timeStr, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   timeStr,
		Message: "unable to parse time string",
	}
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, dateStr, loc)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
