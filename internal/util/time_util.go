package util

import (
	"time"
)

func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ToDate drops the time of day, keeping the calendar date t has in
// its own location
func ToDate(t time.Time) time.Time {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func DateLte(t1, t2 time.Time) bool {
	return t1.Before(t2) || t1.Format(time.DateOnly) == t2.Format(time.DateOnly)
}

func DateGte(t1, t2 time.Time) bool {
	return t1.After(t2) || t1.Format(time.DateOnly) == t2.Format(time.DateOnly)
}

// InDateRange is inclusive on both ends
func InDateRange(t, start, end time.Time) bool {
	return DateGte(t, start) && DateLte(t, end)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}
