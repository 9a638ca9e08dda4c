package domain

import (
	"fmt"
	"slices"
	"time"
)

// DateLayout is the canonical calendar date format.
const DateLayout = "2006-01-02"

// ScheduleDay is one calendar slot. ItemIDs keeps placement order.
type ScheduleDay struct {
	Date    time.Time
	ItemIDs []string
}

func (d ScheduleDay) Clone() ScheduleDay {
	return ScheduleDay{Date: d.Date, ItemIDs: slices.Clone(d.ItemIDs)}
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, ErrInvalidInput)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
