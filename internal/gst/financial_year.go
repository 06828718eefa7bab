package gst

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFinancialYear is returned when a financial year label cannot be parsed
var ErrInvalidFinancialYear = errors.New("invalid financial year")

// FinancialYear returns the April-March financial year containing t,
// formatted as "2024-2025".
func FinancialYear(t time.Time) string {
	y := t.Year()
	if t.Month() >= time.April {
		return fmt.Sprintf("%d-%d", y, y+1)
	}
	return fmt.Sprintf("%d-%d", y-1, y)
}

// FinancialYearBounds returns [start, end) of a financial year label in loc.
func FinancialYearBounds(fy string, loc *time.Location) (time.Time, time.Time, error) {
	var startYear, endYear int
	if _, err := fmt.Sscanf(fy, "%d-%d", &startYear, &endYear); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFinancialYear, fy)
	}
	if endYear != startYear+1 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFinancialYear, fy)
	}
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(startYear, time.April, 1, 0, 0, 0, 0, loc)
	end := time.Date(endYear, time.April, 1, 0, 0, 0, 0, loc)
	return start, end, nil
}
