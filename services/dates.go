package services

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate reads YYYY-MM-DD as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, BadRequest("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseMonth reads YYYY-MM and returns the first day of that month and of the next one.
func ParseMonth(s string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01", strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, BadRequest("invalid month %q, expected YYYY-MM", s)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// TruncateDay drops the clock part, keeping the calendar day in UTC.
func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NightsBetween counts nights in [checkIn, checkOut).
func NightsBetween(checkIn, checkOut time.Time) int {
	return int(TruncateDay(checkOut).Sub(TruncateDay(checkIn)).Hours() / 24)
}

// EachDay calls fn for every day in [from, to).
func EachDay(from, to time.Time, fn func(day time.Time)) {
	for d := TruncateDay(from); d.Before(TruncateDay(to)); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// RangesOverlap reports whether half-open ranges [aStart,aEnd) and [bStart,bEnd) intersect.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
