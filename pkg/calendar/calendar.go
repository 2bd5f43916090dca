package calendar

import (
	"fmt"
	"time"
)

// Layouts for the day and month keys used throughout plan records.
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// HolidaySet holds the non-working day keys for one location.
type HolidaySet map[string]struct{}

// Contains reports whether the given day is a holiday.
func (s HolidaySet) Contains(day time.Time) bool {
	return s.ContainsKey(FormatDay(day))
}

// ContainsKey reports whether the given day key is a holiday.
func (s HolidaySet) ContainsKey(dayKey string) bool {
	_, ok := s[dayKey]
	return ok
}

// Add records a day key as a holiday.
func (s HolidaySet) Add(dayKey string) {
	s[dayKey] = struct{}{}
}

// ParseDay parses a yyyy-MM-dd day key in UTC.
func ParseDay(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", key, err)
	}
	return t, nil
}

// FormatDay renders a day key for t.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseMonth parses a yyyy-MM month key and returns its first day in UTC.
func ParseMonth(key string) (time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse month %q: %w", key, err)
	}
	return t, nil
}

// FormatMonth renders a month key for t.
func FormatMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

// MonthBounds returns the first and last day of t's month.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWorkingDay reports whether t is a weekday that is not in holidays.
func IsWorkingDay(t time.Time, holidays HolidaySet) bool {
	return !IsWeekend(t) && !holidays.Contains(t)
}

// WorkingDays enumerates every working day from start through end inclusive,
// skipping weekends and the given holidays. An inverted range yields nil.
func WorkingDays(start, end time.Time, holidays HolidaySet) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d, holidays) {
			days = append(days, d)
		}
	}
	return days
}

// CountWorkingDays counts the working days from start through end inclusive.
func CountWorkingDays(start, end time.Time, holidays HolidaySet) int {
	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d, holidays) {
			n++
		}
	}
	return n
}

// WeekdaySpan returns n consecutive weekdays starting at start, rolling over
// weekends. Holidays are not skipped; a blocked day is still a blocked day.
func WeekdaySpan(start time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	for d := start; len(days) < n; d = d.AddDate(0, 0, 1) {
		if IsWeekend(d) {
			continue
		}
		days = append(days, d)
	}
	return days
}

// MatchingWeekdays returns every day of anchor's month whose weekday is in
// the given set, in calendar order.
func MatchingWeekdays(anchor time.Time, weekdays []time.Weekday) []time.Time {
	want := make(map[time.Weekday]struct{}, len(weekdays))
	for _, wd := range weekdays {
		want[wd] = struct{}{}
	}
	first, last := MonthBounds(anchor)
	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if _, ok := want[d.Weekday()]; ok {
			days = append(days, d)
		}
	}
	return days
}

// ISOWeek returns the ISO 8601 week number of t.
func ISOWeek(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}
