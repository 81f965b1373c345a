package service

import (
	"fmt"
	"time"

	"github.com/okian/waitcast/internal/domain/model"
	"github.com/okian/waitcast/internal/domain/types"
	"github.com/okian/waitcast/internal/domain/weather"
)

// Request is one forecast request as received over the wire.
type Request = types.ForecastRequest

// BatchResult is the outcome of one request within a batch. Exactly one of
// Report and Err is set.
type BatchResult struct {
	Index  int
	Report *model.Report
	Err    error
}

// runContext validates req and derives the run context.
func (s *Service) runContext(req Request) (model.RunContext, error) {
	date, err := time.ParseInLocation(model.DateLayout, req.Date, s.location)
	if err != nil {
		return model.RunContext{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, req.Date)
	}
	if req.TotalPatients < 0 || req.TotalPatients > s.maxTotalPatients {
		return model.RunContext{}, fmt.Errorf("%w: total_patients %d outside [0, %d]",
			ErrInvalidInput, req.TotalPatients, s.maxTotalPatients)
	}
	w, err := weather.Parse(req.Weather)
	if err != nil {
		return model.RunContext{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	run, err := model.NewRunContext(date, req.TotalPatients, w, s.classifier)
	if err != nil {
		return model.RunContext{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return run, nil
}
