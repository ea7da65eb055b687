package util

import (
	"fmt"
	"time"
)

// DayLayout is the calendar-day key format shared by every series.
const DayLayout = "2006-01-02"

// DayKey returns the UTC calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// DayKeyFromUnix returns the UTC calendar day of an epoch-seconds timestamp.
func DayKeyFromUnix(sec int64) string {
	return DayKey(time.Unix(sec, 0))
}

// DayKeyFromMillis returns the UTC calendar day of an epoch-milliseconds timestamp.
func DayKeyFromMillis(ms int64) string {
	return DayKey(time.UnixMilli(ms))
}

// StartOfDay truncates t to UTC midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD key as UTC midnight.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}
