// Package model contains the forecast domain models passed between layers.
package model

import (
	"fmt"
	"time"

	"github.com/okian/waitcast/internal/domain/calendar"
	"github.com/okian/waitcast/internal/domain/weather"
)

// DateLayout is the wire format of run dates.
const DateLayout = "2006-01-02"

// RunContext is the immutable input shared by every slot of one forecast run.
// Holiday flags are derived from the date; build it with NewRunContext.
type RunContext struct {
	Date           time.Time
	TotalPatients  int
	Weather        weather.Category
	Holiday        bool
	PrevDayHoliday bool
}

// NewRunContext validates the run inputs and derives the holiday flags.
func NewRunContext(date time.Time, totalPatients int, w weather.Category, c *calendar.Classifier) (RunContext, error) {
	if totalPatients < 0 {
		return RunContext{}, fmt.Errorf("%w: total patients %d", ErrNegativeTotal, totalPatients)
	}
	parsed, err := weather.Parse(string(w))
	if err != nil {
		return RunContext{}, err
	}
	if c == nil {
		c = calendar.NewClassifier(nil)
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	flags := c.Classify(day)
	return RunContext{
		Date:           day,
		TotalPatients:  totalPatients,
		Weather:        parsed,
		Holiday:        flags.Holiday,
		PrevDayHoliday: flags.PrevDayHoliday,
	}, nil
}

// WeekOfMonth returns ((day-1)/7)+1 for the run date.
func (r RunContext) WeekOfMonth() int {
	return (r.Date.Day()-1)/7 + 1
}
