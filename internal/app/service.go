// Package service wires the forecast loop to its models, calendar, cache,
// and batch worker pool, and implements the dependencies of the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/waitcast/internal/adapters/mq/queue"
	"github.com/okian/waitcast/internal/adapters/mq/worker"
	"github.com/okian/waitcast/internal/adapters/repository"
	"github.com/okian/waitcast/internal/domain/calendar"
	"github.com/okian/waitcast/internal/domain/features"
	"github.com/okian/waitcast/internal/domain/forecast"
	"github.com/okian/waitcast/internal/domain/model"
	"github.com/okian/waitcast/internal/domain/predictor"
	"github.com/okian/waitcast/pkg/logger"
	"github.com/okian/waitcast/pkg/metrics"
)

// Service runs forecasts for the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Artifacts
	receptionModelPath  string
	queueModelPath      string
	waitTimeModelPath   string
	receptionSchemaPath string
	combinedSchemaPath  string
	holidaysFile        string

	// Configuration
	dayStart         time.Duration
	dayEnd           time.Duration
	step             time.Duration
	location         *time.Location
	maxTotalPatients int
	maxBatchSize     int
	workerCount      int
	queueSize        int
	cacheSize        int
	cacheTTL         time.Duration

	// Components, read-only once started
	schemas     forecast.Schemas
	models      forecast.Models
	holidayFunc calendar.HolidayFunc
	holidays    int
	classifier  *calendar.Classifier
	cache       repository.Store
	jobs        *queue.InMemoryQueue
	pool        *worker.Pool

	// State
	started bool
	cancel  context.CancelFunc
	runs    atomic.Int64
	failed  atomic.Int64
	cached  atomic.Int64

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dayStart:         model.DefaultDayStart,
		dayEnd:           model.DefaultDayEnd,
		step:             model.DefaultStep,
		location:         time.Local,
		maxTotalPatients: 5000,
		maxBatchSize:     64,
		workerCount:      runtime.NumCPU(),
		queueSize:        1024,
		cacheSize:        256,
		cacheTTL:         10 * time.Minute,
		logger:           nil,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads schemas, models, and the holiday calendar, then starts the
// batch workers. Artifacts that fail to load or disagree with their schema
// abort startup.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting forecast service...")

	if err := s.loadSchemas(); err != nil {
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	if err := s.loadModels(); err != nil {
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	if err := s.loadCalendar(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	if _, err := model.Grid(time.Now().In(s.location), s.dayStart, s.dayEnd, s.step); err != nil {
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}

	if s.cacheSize > 0 {
		s.cache = repository.NewLRUStore(repository.WithSize(s.cacheSize), repository.WithTTL(s.cacheTTL))
	}

	// Workers outlive the Start call; they stop with Stop.
	poolCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.jobs, worker.RunnerFunc(s.execute),
		worker.WithPoolLogger(s.logger.Named("worker")))
	s.pool.Start(poolCtx)

	s.started = true
	s.logger.Info(ctx, "forecast service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("cacheSize", s.cacheSize),
		logger.Int("receptionColumns", s.schemas.Reception.Len()),
		logger.Int("combinedColumns", s.schemas.Combined.Len()),
		logger.Int("siteHolidays", s.holidays),
	)
	return nil
}

func (s *Service) loadSchemas() error {
	var err error
	if s.schemas.Reception == nil {
		if s.schemas.Reception, err = features.LoadSchema(s.receptionSchemaPath); err != nil {
			return fmt.Errorf("reception schema: %w", err)
		}
	}
	if s.schemas.Combined == nil {
		if s.schemas.Combined, err = features.LoadSchema(s.combinedSchemaPath); err != nil {
			return fmt.Errorf("combined schema: %w", err)
		}
	}
	return nil
}

func (s *Service) loadModels() error {
	load := func(kind predictor.Kind, current predictor.Model, path string, schema *features.Schema) (predictor.Model, error) {
		if current == nil {
			m, err := predictor.LoadXGBoost(path)
			if err != nil {
				return nil, fmt.Errorf("%s model: %w", kind, err)
			}
			if err := m.CheckSchema(schema); err != nil {
				return nil, fmt.Errorf("%s model: %w", kind, err)
			}
			current = m
		}
		if inst, ok := current.(*predictor.Instrumented); ok {
			return inst, nil
		}
		return predictor.Instrument(kind, current), nil
	}

	var err error
	if s.models.Reception, err = load(predictor.Reception, s.models.Reception, s.receptionModelPath, s.schemas.Reception); err != nil {
		return err
	}
	if s.models.Queue, err = load(predictor.Queue, s.models.Queue, s.queueModelPath, s.schemas.Combined); err != nil {
		return err
	}
	if s.models.WaitTime, err = load(predictor.WaitTime, s.models.WaitTime, s.waitTimeModelPath, s.schemas.Combined); err != nil {
		return err
	}
	return nil
}

func (s *Service) loadCalendar(ctx context.Context) error {
	if s.holidayFunc == nil {
		s.holidayFunc = calendar.NewJapan().IsHoliday
		if s.holidaysFile != "" {
			site, err := calendar.LoadHolidays(ctx, s.holidaysFile)
			if err != nil {
				return err
			}
			s.holidayFunc = calendar.Any(s.holidayFunc, site.IsHoliday)
			s.holidays = site.Len()
		}
	}
	s.classifier = calendar.NewClassifier(s.holidayFunc)
	return nil
}

// Stop shuts down the batch workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping forecast service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "forecast service stopped")
}

// Forecast runs one forecast synchronously.
func (s *Service) Forecast(ctx context.Context, req Request) (model.Report, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return model.Report{}, ErrNotStarted
	}

	run, err := s.runContext(req)
	if err != nil {
		metrics.RecordForecastRun(metrics.OutcomeInvalidInput)
		return model.Report{}, err
	}
	return s.execute(ctx, run)
}

// ForecastBatch runs independent forecasts concurrently on the worker pool.
// Per-request failures are reported in the results; the returned error is
// reserved for failures of the batch as a whole.
func (s *Service) ForecastBatch(ctx context.Context, reqs []Request) ([]BatchResult, error) {
	s.mu.RLock()
	started, jobs := s.started, s.jobs
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrInvalidInput)
	}
	if len(reqs) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: batch of %d exceeds %d", ErrInvalidInput, len(reqs), s.maxBatchSize)
	}

	batchID := uuid.NewString()
	results := make([]BatchResult, len(reqs))
	done := make(chan model.JobResult, len(reqs))
	pending := 0

	for i, req := range reqs {
		results[i].Index = i
		run, err := s.runContext(req)
		if err != nil {
			metrics.RecordForecastRun(metrics.OutcomeInvalidInput)
			results[i].Err = err
			continue
		}
		job := model.Job{ID: fmt.Sprintf("%s-%d", batchID, i), Index: i, Run: run, Result: done}
		if err := jobs.Enqueue(ctx, job); err != nil {
			if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
				err = fmt.Errorf("%w: %w", ErrBusy, err)
			}
			results[i].Err = err
			continue
		}
		pending++
	}

	for ; pending > 0; pending-- {
		select {
		case res := <-done:
			if res.Err != nil {
				results[res.Index].Err = res.Err
				continue
			}
			report := res.Report
			results[res.Index].Report = &report
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.logger.Debug(ctx, "batch complete", logger.String("batch_id", batchID), logger.Int("size", len(reqs)))
	return results, nil
}

// execute runs one validated forecast, consulting the cache first.
func (s *Service) execute(ctx context.Context, run model.RunContext) (model.Report, error) {
	key := repository.KeyFor(run)
	if s.cache != nil {
		if report, err := s.cache.Get(ctx, key); err == nil {
			s.cached.Add(1)
			return report, nil
		}
	}

	slots, err := model.Grid(run.Date, s.dayStart, s.dayEnd, s.step)
	if err != nil {
		metrics.RecordForecastRun(metrics.OutcomeInvalidInput)
		return model.Report{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	start := time.Now()
	report, err := forecast.Run(ctx, run, slots, s.schemas, s.models,
		forecast.WithLogger(s.logger.Named("forecast")))
	metrics.RecordForecastLatency(float64(time.Since(start).Microseconds()) / 1000)
	s.runs.Add(1)

	if err != nil {
		s.failed.Add(1)
		metrics.RecordForecastRun(outcome(err))
		var infErr *forecast.InferenceError
		if errors.As(err, &infErr) {
			s.logger.Error(ctx, "forecast aborted",
				logger.String("model", string(infErr.Model)),
				logger.Int("slot", infErr.Slot),
				logger.String("date", key.Date),
				logger.Error(infErr.Err),
			)
		}
		return model.Report{}, err
	}

	metrics.RecordForecastRun(metrics.OutcomeSuccess)
	metrics.RecordSlotsForecast(len(report.Slots))
	if peak, ok := report.Peak(); ok {
		metrics.UpdateLastRun(peak.WaitMinutes, report.TotalReception())
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, key, report); err != nil {
			s.logger.Warn(ctx, "forecast not cached", logger.String("key", key.String()), logger.Error(err))
		}
	}

	s.logger.Info(ctx, "forecast complete",
		logger.String("run_id", report.RunID),
		logger.String("date", report.Date),
		logger.Int("total_patients", report.TotalPatients),
		logger.String("weather", report.Weather),
		logger.Bool("is_holiday", report.Holiday),
	)
	return report, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, forecast.ErrInvalidInput):
		return metrics.OutcomeInvalidInput
	case errors.Is(err, forecast.ErrModelInference):
		return metrics.OutcomeInferenceError
	case errors.Is(err, forecast.ErrCanceled):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeError
	}
}

// SlotCount returns the number of slots in one day's grid.
func (s *Service) SlotCount() int {
	return int((s.dayEnd-s.dayStart)/s.step) + 1
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"queueSize":        s.queueSize,
		"cacheSize":        s.cacheSize,
		"maxTotalPatients": s.maxTotalPatients,
		"slotsPerDay":      s.SlotCount(),
		"runs":             s.runs.Load(),
		"failedRuns":       s.failed.Load(),
		"cachedRuns":       s.cached.Load(),
	}

	if s.started {
		queueLen := s.jobs.Len(ctx)
		stats["queueLength"] = queueLen
		stats["siteHolidays"] = s.holidays
		stats["receptionColumns"] = s.schemas.Reception.Len()
		stats["combinedColumns"] = s.schemas.Combined.Len()
		if s.cache != nil {
			entries := s.cache.Len(ctx)
			stats["cacheEntries"] = entries
			metrics.UpdateCacheEntries(entries)
		}
		metrics.UpdateWorkerCount(s.pool.Size())
	}
	return stats
}
