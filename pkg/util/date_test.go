package util

import (
	"testing"
	"time"
)

func TestDayKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	// 2024-10-11 02:00 in UTC+9 is still 2024-10-10 in UTC.
	got := DayKey(time.Date(2024, 10, 11, 2, 0, 0, 0, loc))
	if got != "2024-10-10" {
		t.Fatalf("unexpected day %s", got)
	}
}

func TestDayKeyFromUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 23, 59, 59, 0, time.UTC).Unix()
	if got := DayKeyFromUnix(ts); got != "2024-10-10" {
		t.Fatalf("unexpected day %s", got)
	}
	if got := DayKeyFromUnix(0); got != "1970-01-01" {
		t.Fatalf("unexpected epoch day %s", got)
	}
}

func TestDayKeyFromMillis(t *testing.T) {
	ms := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC).UnixMilli()
	if got := DayKeyFromMillis(ms); got != "2025-01-02" {
		t.Fatalf("unexpected day %s", got)
	}
}

func TestStartOfDayAndParseDay(t *testing.T) {
	in := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	start := StartOfDay(in)
	parsed, err := ParseDay("2024-10-10")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !start.Equal(parsed) {
		t.Fatalf("expected %v, got %v", parsed, start)
	}
	if _, err := ParseDay("10/10/2024"); err == nil {
		t.Fatalf("expected error for bad layout")
	}
}
