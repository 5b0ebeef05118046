package core

import (
	"testing"
	"time"
)

func TestDayKey(t *testing.T) {
	ts := time.Date(2024, 3, 5, 9, 30, 0, 0, time.Local)
	if got := DayKey(ts); got != "2024-03-05" {
		t.Fatalf("expected 2024-03-05, got %q", got)
	}
	if got := MonthKey(ts); got != "2024-03" {
		t.Fatalf("expected 2024-03, got %q", got)
	}
}

func TestParseDayKeyPinsNoon(t *testing.T) {
	d, err := ParseDayKey("2024-03-05")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Hour() != 12 {
		t.Fatalf("expected noon, got hour %d", d.Hour())
	}
	if DayKey(d) != "2024-03-05" {
		t.Fatalf("round trip mismatch: %q", DayKey(d))
	}

	if _, err := ParseDayKey("not-a-date"); err == nil {
		t.Fatal("expected error for malformed key")
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", "2024-03-04T17:30:00Z", time.Date(2024, 3, 4, 17, 30, 0, 0, time.UTC)},
		{"rfc3339 nanos", "2024-03-04T17:30:00.5Z", time.Date(2024, 3, 4, 17, 30, 0, 5e8, time.UTC)},
		{"offset-less iso", "2024-03-04T17:30:00.123456", time.Date(2024, 3, 4, 17, 30, 0, 123456000, time.UTC)},
		{"sqlite datetime", "2024-03-04 17:30:00", time.Date(2024, 3, 4, 17, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTimestamp(tc.in)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.in, err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("ParseTimestamp(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	if _, err := ParseTimestamp("not a time"); err == nil {
		t.Fatal("expected error for unparseable input")
	}
}

func TestWeekStart(t *testing.T) {
	// 2024-03-05 is a Tuesday; its week starts Sunday 2024-03-03.
	d := time.Date(2024, 3, 5, 12, 0, 0, 0, time.Local)
	start := WeekStart(d)
	if start.Weekday() != time.Sunday {
		t.Fatalf("expected Sunday, got %v", start.Weekday())
	}
	if DayKey(start) != "2024-03-03" {
		t.Fatalf("expected 2024-03-03, got %q", DayKey(start))
	}

	sameWeek := time.Date(2024, 3, 9, 12, 0, 0, 0, time.Local) // Saturday
	nextWeek := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	if !SameWeek(d, sameWeek) {
		t.Fatal("Tuesday and Saturday of the same week should match")
	}
	if SameWeek(d, nextWeek) {
		t.Fatal("next Sunday is a different week")
	}
}
