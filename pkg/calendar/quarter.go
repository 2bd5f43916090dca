package calendar

import (
	"fmt"
	"time"
)

// QuarterOf returns the calendar quarter (1..4) containing t.
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// QuarterName renders the display name of t's quarter, e.g. "Q3 2025".
func QuarterName(t time.Time) string {
	return fmt.Sprintf("Q%d %d", QuarterOf(t), t.Year())
}

// ParseQuarterName parses a "Qn yyyy" display name.
func ParseQuarterName(name string) (year, quarter int, err error) {
	if _, err = fmt.Sscanf(name, "Q%d %d", &quarter, &year); err != nil {
		return 0, 0, fmt.Errorf("parse quarter %q: %w", name, err)
	}
	if quarter < 1 || quarter > 4 {
		return 0, 0, fmt.Errorf("parse quarter %q: quarter out of range", name)
	}
	return year, quarter, nil
}

// QuarterBounds returns the first and last day of the given quarter.
func QuarterBounds(year, quarter int) (time.Time, time.Time) {
	start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, -1)
	return start, end
}

// QuarterMonths returns the first day of each month of the given quarter.
func QuarterMonths(year, quarter int) []time.Time {
	start, _ := QuarterBounds(year, quarter)
	return []time.Time{start, start.AddDate(0, 1, 0), start.AddDate(0, 2, 0)}
}

// AddQuarters steps the (year, quarter) pair forward by n quarters.
func AddQuarters(year, quarter, n int) (int, int) {
	idx := year*4 + (quarter - 1) + n
	return idx / 4, idx%4 + 1
}

// QuarterOverlap returns the overlapping duration of [start, end] with the
// given quarter. Zero when they do not intersect.
func QuarterOverlap(start, end time.Time, year, quarter int) time.Duration {
	qStart, qEnd := QuarterBounds(year, quarter)
	// the quarter end is inclusive, extend to the end of its last day
	qEnd = qEnd.AddDate(0, 0, 1)
	if start.Before(qStart) {
		start = qStart
	}
	if end.After(qEnd) {
		end = qEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}
