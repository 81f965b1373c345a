// Package forecast runs the autoregressive slot-by-slot forecast.
//
// Each slot's reception prediction feeds the next three slots through the lag
// state and each slot's queue prediction becomes the next slot's starting
// queue, so slots are evaluated strictly in order on a single goroutine.
// Independent runs share nothing mutable and may execute concurrently.
package forecast

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/okian/waitcast/internal/domain/features"
	"github.com/okian/waitcast/internal/domain/model"
	"github.com/okian/waitcast/internal/domain/predictor"
	"github.com/okian/waitcast/internal/domain/weather"
	"github.com/okian/waitcast/pkg/logger"
)

// Schemas are the feature schemas for the two model families.
type Schemas struct {
	Reception *features.Schema
	Combined  *features.Schema
}

// Models are the three chained regressors.
type Models struct {
	Reception predictor.Model
	Queue     predictor.Model
	WaitTime  predictor.Model
}

// Step describes one completed slot. State is the lag and queue state the
// slot was predicted from.
type Step struct {
	Slot            model.TimeSlot
	Lag             model.LagState
	QueueAtStart    model.QueueState
	ReceptionVector features.Vector
	CombinedVector  features.Vector
	Result          model.SlotResult
}

// Observer is called after each slot completes.
type Observer func(ctx context.Context, step Step)

type runner struct {
	runID    string
	observer Observer
	logger   logger.Logger
}

// Option configures a single run.
type Option func(*runner)

// WithObserver registers a per-slot observer.
func WithObserver(o Observer) Option {
	return func(r *runner) {
		r.observer = o
	}
}

// WithLogger sets the logger used for per-slot debug output.
func WithLogger(l logger.Logger) Option {
	return func(r *runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(r *runner) {
		if id != "" {
			r.runID = id
		}
	}
}

// Run forecasts every slot in order. Inputs are validated before the first
// slot. A model failure aborts the run with an *InferenceError and no report;
// cancellation of ctx is honored between slots.
func Run(ctx context.Context, run model.RunContext, slots []model.TimeSlot, schemas Schemas, models Models, opts ...Option) (model.Report, error) {
	r := &runner{logger: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}

	if err := validate(run, slots, schemas, models); err != nil {
		return model.Report{}, err
	}

	var (
		lag     model.LagState
		queue   model.QueueState
		results = make([]model.SlotResult, 0, len(slots))
	)

	for i, slot := range slots {
		if err := ctx.Err(); err != nil {
			return model.Report{}, fmt.Errorf("%w before slot %d: %w", ErrCanceled, i, err)
		}

		lagIn := lag
		receptionVec := features.Build(schemas.Reception, slot, run, &lagIn, nil, nil)
		raw, err := predict(ctx, models.Reception, predictor.Reception, receptionVec, i, slot)
		if err != nil {
			return model.Report{}, err
		}
		reception := clampRound(raw)

		queueIn := int(queue)
		combinedVec := features.Build(schemas.Combined, slot, run, nil, &reception, &queueIn)
		raw, err = predict(ctx, models.Queue, predictor.Queue, combinedVec, i, slot)
		if err != nil {
			return model.Report{}, err
		}
		queueLen := clampRound(raw)

		raw, err = predict(ctx, models.WaitTime, predictor.WaitTime, combinedVec, i, slot)
		if err != nil {
			return model.Report{}, err
		}
		wait := clampRound(raw)

		result := model.SlotResult{
			Time:        slot.Label(),
			Reception:   reception,
			Queue:       queueLen,
			WaitMinutes: wait,
		}
		results = append(results, result)

		r.logger.Debug(ctx, "slot forecast",
			logger.String("run_id", r.runID),
			logger.String("time", result.Time),
			logger.Int("reception", reception),
			logger.Int("queue", queueLen),
			logger.Int("wait_minutes", wait),
		)
		if r.observer != nil {
			r.observer(ctx, Step{
				Slot:            slot,
				Lag:             lagIn,
				QueueAtStart:    queue,
				ReceptionVector: receptionVec,
				CombinedVector:  combinedVec,
				Result:          result,
			})
		}

		lag = lag.Shift(reception)
		queue = model.QueueState(queueLen)
	}

	return model.Report{
		RunID:          r.runID,
		Date:           run.Date.Format(model.DateLayout),
		TotalPatients:  run.TotalPatients,
		Weather:        string(run.Weather),
		Holiday:        run.Holiday,
		PrevDayHoliday: run.PrevDayHoliday,
		Slots:          results,
	}, nil
}

// predict calls m and rejects non-finite output as an inference failure.
func predict(ctx context.Context, m predictor.Model, kind predictor.Kind, v features.Vector, i int, slot model.TimeSlot) (float64, error) {
	out, err := m.Predict(ctx, v)
	if err == nil && (math.IsNaN(out) || math.IsInf(out, 0)) {
		err = fmt.Errorf("%w: %v", predictor.ErrNonNumeric, out)
	}
	if err != nil {
		return 0, &InferenceError{Slot: i, Time: slot.Label(), Model: kind, Err: err}
	}
	return out, nil
}

// clampRound rounds half to even into [0, math.MaxInt].
func clampRound(x float64) int {
	v := math.RoundToEven(x)
	switch {
	case !(v > 0):
		return 0
	case v >= math.MaxInt:
		return math.MaxInt
	}
	return int(v)
}

func validate(run model.RunContext, slots []model.TimeSlot, schemas Schemas, models Models) error {
	switch {
	case run.TotalPatients < 0:
		return fmt.Errorf("%w: total patients %d", ErrInvalidInput, run.TotalPatients)
	case schemas.Reception == nil || schemas.Combined == nil:
		return fmt.Errorf("%w: missing feature schema", ErrInvalidInput)
	case models.Reception == nil || models.Queue == nil || models.WaitTime == nil:
		return fmt.Errorf("%w: missing model", ErrInvalidInput)
	case len(slots) == 0:
		return fmt.Errorf("%w: no time slots", ErrInvalidInput)
	}
	if _, err := weather.Parse(string(run.Weather)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	for i := 1; i < len(slots); i++ {
		if !slots[i].At.After(slots[i-1].At) {
			return fmt.Errorf("%w: slot %d (%s) does not follow slot %d (%s)",
				ErrInvalidInput, i, slots[i].Label(), i-1, slots[i-1].Label())
		}
	}
	return nil
}
