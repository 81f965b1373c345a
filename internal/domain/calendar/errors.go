package calendar

import "errors"

// Sentinel kinds for calendar errors.
var (
	ErrLoadHolidays   = errors.New("load holidays failed")
	ErrInvalidHoliday = errors.New("invalid holiday entry")
)
