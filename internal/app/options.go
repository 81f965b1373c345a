package service

import (
	"time"

	"github.com/okian/waitcast/internal/domain/calendar"
	"github.com/okian/waitcast/internal/domain/forecast"
	"github.com/okian/waitcast/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModelPaths sets the XGBoost JSON artifacts loaded by Start.
func WithModelPaths(reception, queue, waitTime string) Option {
	return func(s *Service) {
		s.receptionModelPath = reception
		s.queueModelPath = queue
		s.waitTimeModelPath = waitTime
	}
}

// WithSchemaPaths sets the feature schema artifacts loaded by Start.
func WithSchemaPaths(reception, combined string) Option {
	return func(s *Service) {
		s.receptionSchemaPath = reception
		s.combinedSchemaPath = combined
	}
}

// WithSchemas installs in-memory schemas; Start then skips the schema files.
func WithSchemas(schemas forecast.Schemas) Option {
	return func(s *Service) {
		s.schemas = schemas
	}
}

// WithModels installs in-memory models; Start then skips the model files.
func WithModels(models forecast.Models) Option {
	return func(s *Service) {
		s.models = models
	}
}

// WithHolidaysFile adds the closure days listed in a YAML file to the
// national holiday calendar.
func WithHolidaysFile(path string) Option {
	return func(s *Service) {
		s.holidaysFile = path
	}
}

// WithHolidayFunc installs a public-holiday predicate; Start then skips the holiday table.
func WithHolidayFunc(fn calendar.HolidayFunc) Option {
	return func(s *Service) {
		s.holidayFunc = fn
	}
}

// WithDayWindow sets the inclusive slot window as offsets from midnight.
func WithDayWindow(start, end, step time.Duration) Option {
	return func(s *Service) {
		if step > 0 && end >= start {
			s.dayStart, s.dayEnd, s.step = start, end, step
		}
	}
}

// WithLocation sets the time zone request dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithMaxTotalPatients caps the expected daily total accepted per request.
func WithMaxTotalPatients(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTotalPatients = n
		}
	}
}

// WithMaxBatchSize caps the number of requests in one batch.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithWorkerCount sets the number of batch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the batch job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithCache bounds the report cache. A zero size disables caching.
func WithCache(size int, ttl time.Duration) Option {
	return func(s *Service) {
		if size >= 0 {
			s.cacheSize = size
		}
		if ttl >= 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
