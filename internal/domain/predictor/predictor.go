// Package predictor defines the contract for the trained regressors that
// drive a forecast run.
package predictor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/waitcast/internal/domain/features"
	"github.com/okian/waitcast/pkg/metrics"
)

// Kind names one of the three chained models.
type Kind string

// Model kinds.
const (
	Reception Kind = "reception"
	Queue     Kind = "queue"
	WaitTime  Kind = "waittime"
)

// Model wraps one pretrained regressor. Predict is deterministic for fixed
// weights and input and returns the raw output; callers round and clamp.
type Model interface {
	Predict(ctx context.Context, v features.Vector) (float64, error)
}

// Func adapts an ordinary function to Model.
type Func func(ctx context.Context, v features.Vector) (float64, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, v features.Vector) (float64, error) {
	return f(ctx, v)
}

// Instrumented records latency and failures per model kind and rejects
// non-finite outputs.
type Instrumented struct {
	kind  Kind
	model Model
}

// Instrument wraps m for kind.
func Instrument(kind Kind, m Model) *Instrumented {
	return &Instrumented{kind: kind, model: m}
}

// Kind returns the wrapped model's kind.
func (i *Instrumented) Kind() Kind { return i.kind }

// Predict calls the wrapped model.
func (i *Instrumented) Predict(ctx context.Context, v features.Vector) (float64, error) {
	start := time.Now()
	out, err := i.model.Predict(ctx, v)
	metrics.RecordInferenceLatency(string(i.kind), float64(time.Since(start).Microseconds())/1000)

	if err == nil && (math.IsNaN(out) || math.IsInf(out, 0)) {
		err = fmt.Errorf("%w: %v", ErrNonNumeric, out)
	}
	if err != nil {
		metrics.RecordInferenceError(string(i.kind))
		return 0, err
	}
	return out, nil
}
