package forecast

import (
	"errors"
	"fmt"

	"github.com/okian/waitcast/internal/domain/predictor"
)

// Sentinel kinds for forecast errors.
var (
	ErrInvalidInput   = errors.New("invalid forecast input")
	ErrModelInference = errors.New("model inference failed")
	ErrCanceled       = errors.New("forecast canceled")
)

// InferenceError reports the slot and model at which a run aborted.
// It matches ErrModelInference and the underlying model error with errors.Is.
type InferenceError struct {
	Slot  int
	Time  string
	Model predictor.Kind
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s model failed at slot %d (%s): %v", e.Model, e.Slot, e.Time, e.Err)
}

// Unwrap exposes both the sentinel and the model's error.
func (e *InferenceError) Unwrap() []error {
	return []error{ErrModelInference, e.Err}
}
