package features

import (
	"github.com/okian/waitcast/internal/domain/model"
)

// Build fills a vector for schema from the slot and run context.
//
// Every column starts at zero and is only written when the schema declares
// it, so columns the builder does not know stay zero and features a model was
// not trained with are never sent. lag is nil for the combined model;
// reception and queueAtStart are nil for the reception model.
func Build(schema *Schema, slot model.TimeSlot, run model.RunContext, lag *model.LagState, reception, queueAtStart *int) Vector {
	v := NewVector(schema)

	v.Set(ColHour, float64(slot.Hour()))
	v.Set(ColMinute, float64(slot.Minute()))
	v.Set(ColFirstSlot, flag(slot.Index == 0))
	v.Set(ColSecondSlot, flag(slot.Index == 1))
	v.Set(ColTotalPatients, float64(run.TotalPatients))
	v.Set(ColHoliday, flag(run.Holiday))

	v.Set(ColMonth, float64(slot.At.Month()))
	v.Set(ColWeekOfMonth, float64((slot.At.Day()-1)/7+1))
	v.Set(ColPrevDayHoliday, flag(run.PrevDayHoliday))

	v.Set(ColRain, flag(run.Weather.Rain()))
	v.Set(ColSnow, flag(run.Weather.Snow()))

	if tok := run.Weather.Token(); tok != "" {
		v.Set(WeatherColumn(tok), 1)
	}
	v.Set(DayOfWeekColumn(slot.DayOfWeek()), 1)

	if lag != nil {
		v.Set(ColLag30, lag.Lag30)
		v.Set(ColLag60, lag.Lag60)
		v.Set(ColLag90, lag.Lag90)
	}

	if reception != nil {
		v.Set(ColReception, float64(*reception))
	}
	if queueAtStart != nil {
		v.Set(ColQueueAtStart, float64(*queueAtStart))
	}
	return v
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
