// Package calendar classifies forecast dates as holidays or working days.
package calendar

import "time"

// HolidayFunc reports whether a date is a public holiday. Only the calendar
// date (year, month, day) of the argument is significant.
type HolidayFunc func(date time.Time) bool

// Flags holds the derived holiday status for a forecast date.
type Flags struct {
	// Holiday is set for public holidays, weekends and the year-end closure.
	Holiday bool
	// PrevDayHoliday is set when the preceding day was a public holiday or weekend.
	PrevDayHoliday bool
}

// Classifier derives holiday flags from a public holiday predicate.
type Classifier struct {
	isHoliday HolidayFunc
}

// NewClassifier returns a Classifier using isHoliday for public holidays.
// A nil predicate treats no day as a public holiday.
func NewClassifier(isHoliday HolidayFunc) *Classifier {
	if isHoliday == nil {
		isHoliday = func(time.Time) bool { return false }
	}
	return &Classifier{isHoliday: isHoliday}
}

// Classify returns the holiday flags for date.
func (c *Classifier) Classify(date time.Time) Flags {
	prev := date.AddDate(0, 0, -1)
	return Flags{
		Holiday:        c.offDay(date) || InClosure(date),
		PrevDayHoliday: c.offDay(prev),
	}
}

func (c *Classifier) offDay(date time.Time) bool {
	return c.isHoliday(date) || IsWeekend(date)
}

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// InClosure reports whether date is inside the year-end closure,
// December 29 through January 3 inclusive.
func InClosure(date time.Time) bool {
	switch date.Month() {
	case time.December:
		return date.Day() >= 29
	case time.January:
		return date.Day() <= 3
	default:
		return false
	}
}
