package model_test

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/okian/waitcast/internal/domain/calendar"
	"github.com/okian/waitcast/internal/domain/model"
	"github.com/okian/waitcast/internal/domain/weather"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGrid(t *testing.T) {
	Convey("Given a target date", t, func() {
		day := time.Date(2026, time.October, 20, 13, 45, 0, 0, time.UTC)

		Convey("When building the default grid", func() {
			slots := model.DefaultGrid(day)

			Convey("Then it has 21 strictly increasing slots from 08:00 to 18:00", func() {
				So(len(slots), ShouldEqual, 21)
				So(slots[0].Label(), ShouldEqual, "08:00")
				So(slots[1].Label(), ShouldEqual, "08:30")
				So(slots[20].Label(), ShouldEqual, "18:00")
				for i := 1; i < len(slots); i++ {
					So(slots[i].At.After(slots[i-1].At), ShouldBeTrue)
					So(slots[i].Index, ShouldEqual, i)
				}
			})

			Convey("Then every slot is on the target date", func() {
				for _, s := range slots {
					So(s.At.Day(), ShouldEqual, 20)
				}
			})
		})

		Convey("When building a grid with a non-positive step", func() {
			_, err := model.Grid(day, model.DefaultDayStart, model.DefaultDayEnd, 0)

			Convey("Then it fails with ErrInvalidGrid", func() {
				So(errors.Is(err, model.ErrInvalidGrid), ShouldBeTrue)
			})
		})

		Convey("When the window ends before it starts", func() {
			_, err := model.Grid(day, 10*time.Hour, 9*time.Hour, time.Hour)

			Convey("Then it fails with ErrInvalidGrid", func() {
				So(errors.Is(err, model.ErrInvalidGrid), ShouldBeTrue)
			})
		})

		Convey("When the step does not divide the window", func() {
			slots, err := model.Grid(day, 8*time.Hour, 9*time.Hour, 25*time.Minute)

			Convey("Then the last slot is the final step inside the window", func() {
				So(err, ShouldBeNil)
				So(len(slots), ShouldEqual, 3)
				So(slots[2].Label(), ShouldEqual, "08:50")
			})
		})
	})
}

func TestGridDaylightSaving(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}

	Convey("Given days on which the clocks change", t, func() {
		for _, date := range []string{"2026-03-29", "2026-10-25"} {
			day, err := time.ParseInLocation("2006-01-02", date, berlin)
			So(err, ShouldBeNil)

			Convey("When building the default grid for "+date, func() {
				slots := model.DefaultGrid(day)

				Convey("Then labels and hours follow the wall clock", func() {
					So(len(slots), ShouldEqual, 21)
					So(slots[0].Label(), ShouldEqual, "08:00")
					So(slots[0].Hour(), ShouldEqual, 8)
					So(slots[20].Label(), ShouldEqual, "18:00")
					for i := 1; i < len(slots); i++ {
						So(slots[i].At.Sub(slots[i-1].At), ShouldEqual, 30*time.Minute)
					}
				})
			})
		}
	})
}

func TestDayOfWeek(t *testing.T) {
	Convey("Given slots on every day of one week", t, func() {
		monday := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

		Convey("Then Monday is 0 and Sunday is 6", func() {
			for i := 0; i < 7; i++ {
				s := model.DefaultGrid(monday.AddDate(0, 0, i))[0]
				So(s.DayOfWeek(), ShouldEqual, i)
			}
		})
	})
}

func TestRunContext(t *testing.T) {
	Convey("Given a classifier without public holidays", t, func() {
		c := calendar.NewClassifier(nil)

		Convey("When creating a run for a Tuesday", func() {
			run, err := model.NewRunContext(time.Date(2026, time.October, 20, 9, 0, 0, 0, time.UTC), 1200, weather.Clear, c)

			Convey("Then the flags are derived and the date truncated", func() {
				So(err, ShouldBeNil)
				So(run.Holiday, ShouldBeFalse)
				So(run.PrevDayHoliday, ShouldBeFalse)
				So(run.Date.Hour(), ShouldEqual, 0)
				So(run.TotalPatients, ShouldEqual, 1200)
			})

			Convey("Then the week of month follows ((day-1)/7)+1", func() {
				So(run.WeekOfMonth(), ShouldEqual, 3)
			})
		})

		Convey("When the weather carries surrounding whitespace", func() {
			run, err := model.NewRunContext(time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC), 1200, weather.Category(" 雨\t"), c)

			Convey("Then the normalized category is stored", func() {
				So(err, ShouldBeNil)
				So(run.Weather, ShouldEqual, weather.Rain)
				So(run.Weather.Token(), ShouldEqual, "雨")
			})
		})

		Convey("When creating a run with a negative total", func() {
			_, err := model.NewRunContext(time.Now(), -1, weather.Clear, c)

			Convey("Then it fails with ErrNegativeTotal", func() {
				So(errors.Is(err, model.ErrNegativeTotal), ShouldBeTrue)
			})
		})

		Convey("When creating a run with an unknown weather token", func() {
			_, err := model.NewRunContext(time.Now(), 10, weather.Category("hail"), c)

			Convey("Then it fails with ErrUnknownCategory", func() {
				So(errors.Is(err, weather.ErrUnknownCategory), ShouldBeTrue)
			})
		})

		Convey("When computing week of month at the edges", func() {
			first, _ := model.NewRunContext(time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), 0, weather.Clear, c)
			seventh, _ := model.NewRunContext(time.Date(2026, time.October, 7, 0, 0, 0, 0, time.UTC), 0, weather.Clear, c)
			eighth, _ := model.NewRunContext(time.Date(2026, time.October, 8, 0, 0, 0, 0, time.UTC), 0, weather.Clear, c)
			last, _ := model.NewRunContext(time.Date(2026, time.October, 31, 0, 0, 0, 0, time.UTC), 0, weather.Clear, c)

			Convey("Then days 1-7 are week 1 and day 31 is week 5", func() {
				So(first.WeekOfMonth(), ShouldEqual, 1)
				So(seventh.WeekOfMonth(), ShouldEqual, 1)
				So(eighth.WeekOfMonth(), ShouldEqual, 2)
				So(last.WeekOfMonth(), ShouldEqual, 5)
			})
		})
	})
}

func TestLagState(t *testing.T) {
	Convey("Given an empty lag state", t, func() {
		var lag model.LagState

		Convey("When shifting three values", func() {
			lag = lag.Shift(5).Shift(7).Shift(9)

			Convey("Then the newest is lag30 and the oldest lag90", func() {
				So(lag, ShouldResemble, model.LagState{Lag30: 9, Lag60: 7, Lag90: 5})
			})

			Convey("And a fourth shift drops the oldest", func() {
				lag = lag.Shift(11)
				So(lag, ShouldResemble, model.LagState{Lag30: 11, Lag60: 9, Lag90: 7})
			})
		})
	})
}

func TestReport(t *testing.T) {
	Convey("Given a report", t, func() {
		r := model.Report{Slots: []model.SlotResult{
			{Time: "08:00", Reception: 10, WaitMinutes: 5},
			{Time: "08:30", Reception: 20, WaitMinutes: 30},
			{Time: "09:00", Reception: 15, WaitMinutes: 30},
		}}

		Convey("Then the peak is the first slot with the longest wait", func() {
			peak, ok := r.Peak()
			So(ok, ShouldBeTrue)
			So(peak.Time, ShouldEqual, "08:30")
		})

		Convey("Then the total reception is the sum", func() {
			So(r.TotalReception(), ShouldEqual, 45)
		})

		Convey("Then an empty report has no peak", func() {
			_, ok := model.Report{}.Peak()
			So(ok, ShouldBeFalse)
		})
	})
}
