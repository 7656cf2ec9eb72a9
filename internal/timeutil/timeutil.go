package timeutil

import (
	"fmt"
	"time"
)

// maxDayNanos is the nanosecond component of the last representable
// microsecond of a day (23:59:59.999999).
const maxDayNanos = 999999000

// ToUTC converts t to UTC. Idempotent.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// DurationMinutes returns the whole minutes elapsed between start and end,
// rounded toward negative infinity. Both ends are normalized to UTC before
// subtraction. Negative spans are allowed and are not clamped.
func DurationMinutes(start, end time.Time) int {
	elapsed := end.UTC().Sub(start.UTC())
	mins := int(elapsed / time.Minute)
	if elapsed%time.Minute != 0 && elapsed < 0 {
		mins--
	}
	return mins
}

// DayBounds returns the inclusive bounds of t's calendar date in UTC:
// 00:00:00.000000 through 23:59:59.999999.
func DayBounds(t time.Time) (time.Time, time.Time) {
	year, month, day := t.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, month, day, 23, 59, 59, maxDayNanos, time.UTC)
	return start, end
}

// MonthBounds returns the inclusive bounds of t's calendar month in UTC,
// from the first day at midnight through the last day at 23:59:59.999999.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	year, month, _ := t.Date()
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)

	var firstOfNext time.Time
	if month == time.December {
		firstOfNext = time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	} else {
		firstOfNext = time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	}
	lastDay := firstOfNext.AddDate(0, 0, -1)
	end := time.Date(lastDay.Year(), lastDay.Month(), lastDay.Day(), 23, 59, 59, maxDayNanos, time.UTC)
	return start, end
}

// YearBounds returns the inclusive bounds of t's calendar year in UTC,
// January 1 at midnight through December 31 at 23:59:59.999999.
func YearBounds(t time.Time) (time.Time, time.Time) {
	year := t.Year()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, maxDayNanos, time.UTC)
	return start, end
}

// timestampLayouts are tried in order when decoding a timestamp. Values
// without a zone offset are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// Timestamp is a time.Time that additionally accepts JSON timestamps without
// a zone offset, interpreting them as UTC. It always holds a UTC value after
// decoding.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON decodes a quoted timestamp string.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid timestamp %s", s)
	}
	s = s[1 : len(s)-1]

	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			ts.Time = t.UTC()
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("invalid timestamp %q: %w", s, lastErr)
}
