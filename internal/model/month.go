package model

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// monthRegex matches: {YYYY}-{MM}
// Example: 2025-08
var monthRegex = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// ErrInvalidMonth is returned for month labels that are not YYYY-MM.
var ErrInvalidMonth = errors.New("model: invalid month label")

// ParseMonth validates a monthly entry label and returns the first day of
// that month in UTC.
func ParseMonth(label string) (time.Time, error) {
	if !monthRegex.MatchString(label) {
		return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM)", ErrInvalidMonth, label)
	}
	t, err := time.Parse("2006-01", label)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, label)
	}
	return t, nil
}

// MonthLabel formats t as a YYYY-MM label.
func MonthLabel(t time.Time) string {
	return t.Format("2006-01")
}
