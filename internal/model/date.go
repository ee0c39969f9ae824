package model

import (
	"fmt"
	"iter"
	"time"
)

// DateLayout is the wire and storage format for local calendar days.
const DateLayout = "2006-01-02"

const msPerDay = 24 * 60 * 60 * 1000

// ParseDate parses a YYYY-MM-DD string as midnight of that calendar day in loc.
// The day is never shifted through UTC, so "2025-01-01" is Jan 1 wherever loc is.
// Timestamps such as "2025-01-01T09:30:00Z" are reduced to their date part first.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, NormalizeDate(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// NormalizeDate trims a timestamp down to its YYYY-MM-DD prefix.
func NormalizeDate(s string) string {
	if len(s) > len(DateLayout) && (s[len(DateLayout)] == 'T' || s[len(DateLayout)] == ' ') {
		return s[:len(DateLayout)]
	}
	return s
}

// FormatDate renders the calendar day of t in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the fractional number of days from a to b,
// computed from the millisecond difference. Unlike Sub it does not
// saturate for spans longer than a time.Duration can hold.
func DaysBetween(a, b time.Time) float64 {
	return float64(b.UnixMilli()-a.UnixMilli()) / msPerDay
}

// EachDay yields midnight of every calendar day in [start, end], inclusive.
// Days are stepped with AddDate so DST transitions never skip or repeat a day.
func EachDay(start, end time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		last := StartOfDay(end.In(start.Location()))
		for day := StartOfDay(start); !day.After(last); day = day.AddDate(0, 0, 1) {
			if !yield(day) {
				return
			}
		}
	}
}
