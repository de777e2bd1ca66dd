package model

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	HoursPerDay   = 24
	MinutesPerDay = HoursPerDay * 60
)

// ClockMinutes converts an "HH:MM" 24h clock into minutes past midnight.
func ClockMinutes(clock string) (int, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil || len(clock) != len(ClockLayout) {
		return 0, fmt.Errorf("invalid clock time %q", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// IsCalendarDate reports whether s is a valid YYYY-MM-DD day.
func IsCalendarDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil && len(s) == len(DateLayout)
}

// SlotInterval is a half-open [Start, End) range in minutes of one day.
type SlotInterval struct {
	Start int
	End   int
}

func NewSlotInterval(clock string, durationHours int) (SlotInterval, error) {
	start, err := ClockMinutes(clock)
	if err != nil {
		return SlotInterval{}, err
	}
	if durationHours <= 0 || durationHours > HoursPerDay {
		return SlotInterval{}, fmt.Errorf("duration must be between 1 and %d hours, got %d", HoursPerDay, durationHours)
	}
	return SlotInterval{Start: start, End: start + durationHours*60}, nil
}

// Overlaps uses strict inequality, so touching intervals do not overlap.
func (i SlotInterval) Overlaps(other SlotInterval) bool {
	return i.Start < other.End && i.End > other.Start
}

// FitsInDay reports whether the interval ends no later than midnight.
func (i SlotInterval) FitsInDay() bool {
	return i.End <= MinutesPerDay
}
