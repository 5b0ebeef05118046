package core

import (
	"fmt"
	"time"
)

// Day and month keys are derived from a record's timestamp converted to the
// local calendar day, never UTC, so that records logged near midnight land on
// the day the user saw on the clock.
const (
	DayKeyFormat   = "2006-01-02"
	MonthKeyFormat = "2006-01"
)

// DayKey returns the YYYY-MM-DD key for t in local time.
func DayKey(t time.Time) string {
	return t.Local().Format(DayKeyFormat)
}

// MonthKey returns the YYYY-MM key for t in local time.
func MonthKey(t time.Time) string {
	return t.Local().Format(MonthKeyFormat)
}

// ParseDayKey parses a YYYY-MM-DD key back into a comparable time. The result
// is pinned at noon local time: re-deriving a date at midnight can slip a day
// across daylight-saving transitions, noon cannot.
func ParseDayKey(key string) (time.Time, error) {
	d, err := time.ParseInLocation(DayKeyFormat, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.Local), nil
}

// WeekStart returns the first day (Sunday) of the week containing t, at noon
// local time so it compares cleanly against ParseDayKey results.
func WeekStart(t time.Time) time.Time {
	t = t.Local()
	start := t.AddDate(0, 0, -int(t.Weekday()))
	return time.Date(start.Year(), start.Month(), start.Day(), 12, 0, 0, 0, time.Local)
}

// SameWeek reports whether a and b fall into the same Sunday-anchored week.
func SameWeek(a, b time.Time) bool {
	return WeekStart(a).Equal(WeekStart(b))
}

// legacyTimestampLayouts are older timestamp forms still found in export
// documents and in rows written before the canonical format: the offset-less
// ISO form and sqlite's datetime() default. Both carry no zone and are read
// as UTC.
var legacyTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a record timestamp. RFC 3339 is the canonical form;
// the legacy layouts are accepted so old rows and old export documents keep
// round-tripping.
func ParseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range legacyTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", s)
}
