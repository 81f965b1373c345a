package calendar

import (
	"sync"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/jp"
)

// Japan is the rule-based Japanese national holiday calendar, including
// substitute holidays. It covers any year.
type Japan struct {
	// jp.VernalEquinoxDay writes to the shared holiday definition while
	// calculating, so lookups are serialized.
	mu  sync.Mutex
	cal *cal.Calendar
}

// NewJapan returns the national holiday calendar.
func NewJapan() *Japan {
	c := &cal.Calendar{Name: "JP", Description: "Japanese national holidays"}
	c.AddHoliday(jp.Holidays...)
	return &Japan{cal: c}
}

// IsHoliday reports whether date is a national or substitute holiday.
// It satisfies HolidayFunc.
func (j *Japan) IsHoliday(date time.Time) bool {
	_, ok := j.Name(date)
	return ok
}

// Name returns the holiday's English name for date, if any.
func (j *Japan) Name(date time.Time) (string, bool) {
	y, m, d := date.Date()
	j.mu.Lock()
	actual, observed, h := j.cal.IsHoliday(time.Date(y, m, d, 0, 0, 0, 0, cal.DefaultLoc))
	j.mu.Unlock()
	if !actual && !observed {
		return "", false
	}
	return h.Name, true
}

// Any combines predicates; a date is a holiday when any of them says so.
func Any(fns ...HolidayFunc) HolidayFunc {
	return func(date time.Time) bool {
		for _, fn := range fns {
			if fn != nil && fn(date) {
				return true
			}
		}
		return false
	}
}
