package model

import (
	"fmt"
	"time"
)

// Default operating window.
const (
	DefaultDayStart = 8 * time.Hour
	DefaultDayEnd   = 18 * time.Hour
	DefaultStep     = 30 * time.Minute
)

// TimeSlot is one point on the day's forecasting grid.
type TimeSlot struct {
	Index int
	At    time.Time
}

// Label formats the slot as HH:MM.
func (s TimeSlot) Label() string { return s.At.Format("15:04") }

// Hour returns the slot hour.
func (s TimeSlot) Hour() int { return s.At.Hour() }

// Minute returns the slot minute.
func (s TimeSlot) Minute() int { return s.At.Minute() }

// DayOfWeek returns the weekday index with Monday as 0 and Sunday as 6,
// the encoding the models were trained with.
func (s TimeSlot) DayOfWeek() int {
	return (int(s.At.Weekday()) + 6) % 7
}

// Grid builds the slots from start to end inclusive, step apart, on the
// calendar date of day. Offsets are wall-clock times in day's location, so
// a daylight saving change does not move the labels.
func Grid(day time.Time, start, end, step time.Duration) ([]TimeSlot, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: step %s", ErrInvalidGrid, step)
	}
	if start < 0 || end < start || end >= 24*time.Hour {
		return nil, fmt.Errorf("%w: window %s-%s", ErrInvalidGrid, start, end)
	}

	y, m, d := day.Date()
	n := int((end-start)/step) + 1
	slots := make([]TimeSlot, 0, n)
	for i := 0; i < n; i++ {
		off := start + time.Duration(i)*step
		slots = append(slots, TimeSlot{
			Index: i,
			At: time.Date(y, m, d, int(off/time.Hour), int(off%time.Hour/time.Minute),
				int(off%time.Minute/time.Second), int(off%time.Second), day.Location()),
		})
	}
	return slots, nil
}

// DefaultGrid builds the 08:00-18:00 grid at 30 minute steps (21 slots).
func DefaultGrid(day time.Time) []TimeSlot {
	slots, _ := Grid(day, DefaultDayStart, DefaultDayEnd, DefaultStep)
	return slots
}
