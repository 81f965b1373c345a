package forecast_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/waitcast/internal/domain/calendar"
	"github.com/okian/waitcast/internal/domain/features"
	"github.com/okian/waitcast/internal/domain/forecast"
	"github.com/okian/waitcast/internal/domain/model"
	"github.com/okian/waitcast/internal/domain/predictor"
	"github.com/okian/waitcast/internal/domain/weather"
	. "github.com/smartystreets/goconvey/convey"
)

var tuesday = time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)

func schemas() forecast.Schemas {
	reception, err := features.NewSchema([]string{
		"hour", "minute", "is_first_slot", "is_second_slot", "total_outpatient_count", "is_holiday",
		"月", "週回数", "前日祝日フラグ", "雨フラグ", "雪フラグ", "天気カテゴリ_晴", "天気カテゴリ_雨",
		"dayofweek_1", "lag_30min", "lag_60min", "lag_90min",
	})
	if err != nil {
		panic(err)
	}
	combined, err := features.NewSchema([]string{
		"hour", "minute", "reception_count", "queue_at_start_of_slot", "total_outpatient_count",
		"is_holiday", "雨フラグ", "雪フラグ",
	})
	if err != nil {
		panic(err)
	}
	return forecast.Schemas{Reception: reception, Combined: combined}
}

func get(v features.Vector, name string) float64 {
	val, _ := v.Get(name)
	return val
}

// models returns deterministic fakes: reception grows by one per slot through
// the lag, the queue accumulates reception, and wait time is twice the queue
// at slot start minus one.
func models() forecast.Models {
	return forecast.Models{
		Reception: predictor.Func(func(_ context.Context, v features.Vector) (float64, error) {
			return get(v, "lag_30min") + 1, nil
		}),
		Queue: predictor.Func(func(_ context.Context, v features.Vector) (float64, error) {
			return get(v, "queue_at_start_of_slot") + get(v, "reception_count") - 0.4, nil
		}),
		WaitTime: predictor.Func(func(_ context.Context, v features.Vector) (float64, error) {
			return 2*get(v, "queue_at_start_of_slot") - 1, nil
		}),
	}
}

func runContext(w weather.Category) model.RunContext {
	run, err := model.NewRunContext(tuesday, 1200, w, calendar.NewClassifier(nil))
	if err != nil {
		panic(err)
	}
	return run
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given a Tuesday run in clear weather with 1200 patients", t, func() {
		run := runContext(weather.Clear)
		slots := model.DefaultGrid(tuesday)

		var steps []forecast.Step
		observe := forecast.WithObserver(func(_ context.Context, s forecast.Step) {
			steps = append(steps, s)
		})

		Convey("When the forecast runs", func() {
			report, err := forecast.Run(ctx, run, slots, schemas(), models(), observe, forecast.WithRunID("run-1"))
			So(err, ShouldBeNil)

			Convey("Then there are 21 slots with strictly increasing labels", func() {
				So(len(report.Slots), ShouldEqual, 21)
				So(report.Slots[0].Time, ShouldEqual, "08:00")
				So(report.Slots[20].Time, ShouldEqual, "18:00")
				for i := 1; i < len(report.Slots); i++ {
					So(report.Slots[i].Time > report.Slots[i-1].Time, ShouldBeTrue)
				}
			})

			Convey("Then the report carries the run context", func() {
				So(report.RunID, ShouldEqual, "run-1")
				So(report.Date, ShouldEqual, "2026-10-20")
				So(report.TotalPatients, ShouldEqual, 1200)
				So(report.Holiday, ShouldBeFalse)
			})

			Convey("Then reception feeds forward through the lag", func() {
				for i, s := range report.Slots {
					So(s.Reception, ShouldEqual, i+1)
				}
			})

			Convey("Then each slot's queue starts from the previous prediction", func() {
				So(steps[0].QueueAtStart, ShouldEqual, 0)
				for i := 1; i < len(steps); i++ {
					So(int(steps[i].QueueAtStart), ShouldEqual, report.Slots[i-1].Queue)
					So(get(steps[i].CombinedVector, "queue_at_start_of_slot"), ShouldEqual, report.Slots[i-1].Queue)
					So(get(steps[i].CombinedVector, "reception_count"), ShouldEqual, report.Slots[i].Reception)
				}
			})

			Convey("Then the lag state holds the previous three receptions", func() {
				recept := func(i int) float64 {
					if i < 0 {
						return 0
					}
					return float64(report.Slots[i].Reception)
				}
				for i, s := range steps {
					So(s.Lag.Lag30, ShouldEqual, recept(i-1))
					So(s.Lag.Lag60, ShouldEqual, recept(i-2))
					So(s.Lag.Lag90, ShouldEqual, recept(i-3))
					So(get(s.ReceptionVector, "lag_60min"), ShouldEqual, recept(i-2))
				}
			})

			Convey("Then the first slot's lag features are zero", func() {
				v := steps[0].ReceptionVector
				So(get(v, "lag_30min"), ShouldEqual, 0)
				So(get(v, "lag_60min"), ShouldEqual, 0)
				So(get(v, "lag_90min"), ShouldEqual, 0)
			})

			Convey("Then only the first slot is flagged as first", func() {
				So(get(steps[0].ReceptionVector, "is_first_slot"), ShouldEqual, 1)
				for _, s := range steps[1:] {
					So(get(s.ReceptionVector, "is_first_slot"), ShouldEqual, 0)
				}
			})

			Convey("Then holiday, rain and snow flags are zero on every slot", func() {
				for _, s := range steps {
					So(get(s.ReceptionVector, "is_holiday"), ShouldEqual, 0)
					So(get(s.ReceptionVector, "雨フラグ"), ShouldEqual, 0)
					So(get(s.ReceptionVector, "雪フラグ"), ShouldEqual, 0)
				}
			})

			Convey("Then all outputs are non-negative", func() {
				// The first slot's raw wait prediction is -1.
				So(report.Slots[0].WaitMinutes, ShouldEqual, 0)
				for _, s := range report.Slots {
					So(s.Reception, ShouldBeGreaterThanOrEqualTo, 0)
					So(s.Queue, ShouldBeGreaterThanOrEqualTo, 0)
					So(s.WaitMinutes, ShouldBeGreaterThanOrEqualTo, 0)
				}
			})
		})

		Convey("When the same forecast runs twice", func() {
			first, err1 := forecast.Run(ctx, run, slots, schemas(), models())
			second, err2 := forecast.Run(ctx, run, slots, schemas(), models())

			Convey("Then the slot sequences are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second.Slots, ShouldResemble, first.Slots)
				So(first.RunID, ShouldNotEqual, second.RunID)
			})
		})
	})

	Convey("Given a run in rain", t, func() {
		run := runContext(weather.Rain)
		var steps []forecast.Step

		_, err := forecast.Run(ctx, run, model.DefaultGrid(tuesday), schemas(), models(),
			forecast.WithObserver(func(_ context.Context, s forecast.Step) { steps = append(steps, s) }))
		So(err, ShouldBeNil)

		Convey("Then every slot has the rain flag set and the snow flag clear", func() {
			So(len(steps), ShouldEqual, 21)
			for _, s := range steps {
				So(get(s.ReceptionVector, "雨フラグ"), ShouldEqual, 1)
				So(get(s.ReceptionVector, "雪フラグ"), ShouldEqual, 0)
				So(get(s.CombinedVector, "雨フラグ"), ShouldEqual, 1)
				So(get(s.ReceptionVector, "天気カテゴリ_雨"), ShouldEqual, 1)
			}
		})
	})

	Convey("Given models that always predict negative values", t, func() {
		negative := predictor.Func(func(context.Context, features.Vector) (float64, error) { return -7.6, nil })
		m := forecast.Models{Reception: negative, Queue: negative, WaitTime: negative}

		report, err := forecast.Run(ctx, runContext(weather.Clear), model.DefaultGrid(tuesday), schemas(), m)

		Convey("Then every output is clamped to zero", func() {
			So(err, ShouldBeNil)
			for _, s := range report.Slots {
				So(s, ShouldResemble, model.SlotResult{Time: s.Time})
			}
		})
	})

	Convey("Given outputs exactly between two integers", t, func() {
		half := func(x float64) predictor.Func {
			return func(context.Context, features.Vector) (float64, error) { return x, nil }
		}
		m := forecast.Models{Reception: half(2.5), Queue: half(3.5), WaitTime: half(0.5)}

		report, err := forecast.Run(ctx, runContext(weather.Clear), model.DefaultGrid(tuesday), schemas(), m)

		Convey("Then they round half to even", func() {
			So(err, ShouldBeNil)
			So(report.Slots[0].Reception, ShouldEqual, 2)
			So(report.Slots[0].Queue, ShouldEqual, 4)
			So(report.Slots[0].WaitMinutes, ShouldEqual, 0)
		})
	})

	Convey("Given models that predict beyond the integer range", t, func() {
		huge := predictor.Func(func(context.Context, features.Vector) (float64, error) { return 1e300, nil })
		m := forecast.Models{Reception: huge, Queue: huge, WaitTime: huge}

		report, err := forecast.Run(ctx, runContext(weather.Clear), model.DefaultGrid(tuesday), schemas(), m)

		Convey("Then every output saturates at the largest int", func() {
			So(err, ShouldBeNil)
			So(report.Slots, ShouldHaveLength, 21)
			for _, s := range report.Slots {
				So(s.Reception, ShouldEqual, math.MaxInt)
				So(s.Queue, ShouldEqual, math.MaxInt)
				So(s.WaitMinutes, ShouldEqual, math.MaxInt)
			}
		})
	})
}

func TestRunFailures(t *testing.T) {
	ctx := context.Background()
	slots := model.DefaultGrid(tuesday)

	Convey("Given a queue model that fails at 13:00", t, func() {
		boom := errors.New("inference backend unavailable")
		m := models()
		inner := m.Queue
		m.Queue = predictor.Func(func(ctx context.Context, v features.Vector) (float64, error) {
			if get(v, "hour") == 13 && get(v, "minute") == 0 {
				return 0, boom
			}
			return inner.Predict(ctx, v)
		})

		var completed []string
		report, err := forecast.Run(ctx, runContext(weather.Clear), slots, schemas(), m,
			forecast.WithObserver(func(_ context.Context, s forecast.Step) { completed = append(completed, s.Result.Time) }))

		Convey("Then the run aborts at slot 10 naming the queue model", func() {
			So(errors.Is(err, forecast.ErrModelInference), ShouldBeTrue)
			So(errors.Is(err, boom), ShouldBeTrue)

			var ie *forecast.InferenceError
			So(errors.As(err, &ie), ShouldBeTrue)
			So(ie.Slot, ShouldEqual, 10)
			So(ie.Time, ShouldEqual, "13:00")
			So(ie.Model, ShouldEqual, predictor.Queue)
			So(err.Error(), ShouldContainSubstring, "slot 10")
		})

		Convey("Then no partial report is returned", func() {
			So(report.Slots, ShouldBeNil)
			So(len(completed), ShouldEqual, 10)
			So(completed[9], ShouldEqual, "12:30")
		})
	})

	Convey("Given a reception model that fails on the first slot", t, func() {
		m := models()
		m.Reception = predictor.Func(func(context.Context, features.Vector) (float64, error) {
			return 0, errors.New("bad model")
		})

		_, err := forecast.Run(ctx, runContext(weather.Clear), slots, schemas(), m)

		Convey("Then the failure names slot 0 and the reception model", func() {
			var ie *forecast.InferenceError
			So(errors.As(err, &ie), ShouldBeTrue)
			So(ie.Slot, ShouldEqual, 0)
			So(ie.Model, ShouldEqual, predictor.Reception)
		})
	})

	Convey("Given a wait time model that fails", t, func() {
		m := models()
		m.WaitTime = predictor.Func(func(context.Context, features.Vector) (float64, error) {
			return 0, errors.New("bad model")
		})

		_, err := forecast.Run(ctx, runContext(weather.Clear), slots, schemas(), m)

		Convey("Then the failure names the wait time model", func() {
			var ie *forecast.InferenceError
			So(errors.As(err, &ie), ShouldBeTrue)
			So(ie.Model, ShouldEqual, predictor.WaitTime)
		})
	})

	Convey("Given models that return non-finite values", t, func() {
		constant := func(x float64) predictor.Func {
			return func(context.Context, features.Vector) (float64, error) { return x, nil }
		}

		Convey("When reception is NaN", func() {
			m := models()
			m.Reception = constant(math.NaN())
			report, err := forecast.Run(ctx, runContext(weather.Clear), slots, schemas(), m)

			Convey("Then the run fails at the first slot with ErrNonNumeric", func() {
				var ie *forecast.InferenceError
				So(errors.As(err, &ie), ShouldBeTrue)
				So(ie.Slot, ShouldEqual, 0)
				So(ie.Model, ShouldEqual, predictor.Reception)
				So(errors.Is(err, predictor.ErrNonNumeric), ShouldBeTrue)
				So(errors.Is(err, forecast.ErrModelInference), ShouldBeTrue)
				So(report.Slots, ShouldBeEmpty)
			})
		})

		Convey("When the queue model returns +Inf from 09:30", func() {
			m := models()
			m.Queue = predictor.Func(func(_ context.Context, v features.Vector) (float64, error) {
				if get(v, "hour") == 9 && get(v, "minute") == 30 {
					return math.Inf(1), nil
				}
				return 1, nil
			})
			_, err := forecast.Run(ctx, runContext(weather.Clear), slots, schemas(), m)

			Convey("Then the failure names that slot and model", func() {
				var ie *forecast.InferenceError
				So(errors.As(err, &ie), ShouldBeTrue)
				So(ie.Slot, ShouldEqual, 3)
				So(ie.Time, ShouldEqual, "09:30")
				So(ie.Model, ShouldEqual, predictor.Queue)
				So(errors.Is(err, predictor.ErrNonNumeric), ShouldBeTrue)
			})
		})

		Convey("When wait time is -Inf", func() {
			m := models()
			m.WaitTime = constant(math.Inf(-1))
			_, err := forecast.Run(ctx, runContext(weather.Clear), slots, schemas(), m)

			Convey("Then the run fails instead of clamping", func() {
				var ie *forecast.InferenceError
				So(errors.As(err, &ie), ShouldBeTrue)
				So(ie.Model, ShouldEqual, predictor.WaitTime)
				So(errors.Is(err, predictor.ErrNonNumeric), ShouldBeTrue)
			})
		})
	})

	Convey("Given a context canceled mid-run", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		_, err := forecast.Run(cctx, runContext(weather.Clear), slots, schemas(), models(),
			forecast.WithObserver(func(_ context.Context, s forecast.Step) {
				if s.Slot.Index == 4 {
					cancel()
				}
			}))

		Convey("Then the run stops between slots", func() {
			So(errors.Is(err, forecast.ErrCanceled), ShouldBeTrue)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "slot 5")
		})
	})

	Convey("Given invalid inputs", t, func() {
		run := runContext(weather.Clear)

		Convey("An empty slot list is rejected", func() {
			_, err := forecast.Run(ctx, run, nil, schemas(), models())
			So(errors.Is(err, forecast.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("Out of order slots are rejected", func() {
			bad := []model.TimeSlot{slots[1], slots[0]}
			_, err := forecast.Run(ctx, run, bad, schemas(), models())
			So(errors.Is(err, forecast.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("A missing model is rejected", func() {
			m := models()
			m.WaitTime = nil
			_, err := forecast.Run(ctx, run, slots, schemas(), m)
			So(errors.Is(err, forecast.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("A missing schema is rejected", func() {
			s := schemas()
			s.Combined = nil
			_, err := forecast.Run(ctx, run, slots, s, models())
			So(errors.Is(err, forecast.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("A negative patient total is rejected", func() {
			r := run
			r.TotalPatients = -5
			_, err := forecast.Run(ctx, r, slots, schemas(), models())
			So(errors.Is(err, forecast.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("An unknown weather token is rejected", func() {
			r := run
			r.Weather = "fog"
			_, err := forecast.Run(ctx, r, slots, schemas(), models())
			So(errors.Is(err, forecast.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("No model is called when validation fails", func() {
			called := false
			spy := predictor.Func(func(context.Context, features.Vector) (float64, error) {
				called = true
				return 0, nil
			})
			_, err := forecast.Run(ctx, run, nil, schemas(), forecast.Models{Reception: spy, Queue: spy, WaitTime: spy})
			So(err, ShouldNotBeNil)
			So(called, ShouldBeFalse)
		})
	})
}
