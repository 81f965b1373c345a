// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load(ctx) layers a YAML file and environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"
	_ "time/tzdata"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: json or text.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Model artifacts (XGBoost JSON) for the three predictors.
	ReceptionModelPath string `koanf:"reception_model_path"`
	QueueModelPath     string `koanf:"queue_model_path"`
	WaitTimeModelPath  string `koanf:"waittime_model_path"`

	// Feature schemas (JSON arrays of column names).
	ReceptionSchemaPath string `koanf:"reception_schema_path"`
	CombinedSchemaPath  string `koanf:"combined_schema_path"`

	// HolidaysFile adds site-specific closure days to the national calendar.
	HolidaysFile string `koanf:"holidays_file"`

	// Location is the IANA time zone request dates and slot times are in.
	Location string `koanf:"location"`

	// DayStart and DayEnd bound the slot grid, both inclusive, as "HH:MM".
	DayStart string `koanf:"day_start"`
	DayEnd   string `koanf:"day_end"`

	// SlotMinutes is the grid step.
	SlotMinutes int `koanf:"slot_minutes"`

	// MaxTotalPatients caps the expected daily total accepted per request.
	MaxTotalPatients int `koanf:"max_total_patients"`

	// MaxBatchSize caps the number of requests in one batch call.
	MaxBatchSize int `koanf:"max_batch_size"`

	// WorkerCount sets the number of batch forecast workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory batch job queue.
	QueueSize int `koanf:"queue_size"`

	// CacheSize bounds the number of cached reports; zero disables caching.
	CacheSize int `koanf:"cache_size"`

	// CacheTTLSeconds expires cached reports.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "json",
		Addr:                ":9080",
		ReceptionModelPath:  "models/model_A_timeseries.json",
		QueueModelPath:      "models/model_A_queue_30min.json",
		WaitTimeModelPath:   "models/model_A_waittime_30min.json",
		ReceptionSchemaPath: "models/columns_A_timeseries.json",
		CombinedSchemaPath:  "models/columns_A_multi_30min.json",
		Location:            "Asia/Tokyo",
		DayStart:            "08:00",
		DayEnd:              "18:00",
		SlotMinutes:         30,
		MaxTotalPatients:    5000,
		MaxBatchSize:        64,
		WorkerCount:         runtime.NumCPU(),
		QueueSize:           1024,
		CacheSize:           256,
		CacheTTLSeconds:     600,
	}
}

// Window returns the day window as offsets from midnight and the slot step.
func (c *Config) Window() (start, end, step time.Duration, err error) {
	start, err = parseClock(c.DayStart)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: day_start: %w", ErrInvalidConfig, err)
	}
	end, err = parseClock(c.DayEnd)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: day_end: %w", ErrInvalidConfig, err)
	}
	if c.SlotMinutes <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: slot_minutes must be positive", ErrInvalidConfig)
	}
	if end < start {
		return 0, 0, 0, fmt.Errorf("%w: day_end %s before day_start %s", ErrInvalidConfig, c.DayEnd, c.DayStart)
	}
	return start, end, time.Duration(c.SlotMinutes) * time.Minute, nil
}

// TimeZone resolves Location. An empty value means the host's local zone.
func (c *Config) TimeZone() (*time.Location, error) {
	if c.Location == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: location: %w", ErrInvalidConfig, err)
	}
	return loc, nil
}

// CacheTTL returns the cache expiry as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate checks values the service cannot start without.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MaxTotalPatients <= 0 {
		return fmt.Errorf("%w: max_total_patients must be positive", ErrInvalidConfig)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.CacheSize < 0 || c.CacheTTLSeconds < 0 {
		return fmt.Errorf("%w: cache settings must not be negative", ErrInvalidConfig)
	}
	if _, _, _, err := c.Window(); err != nil {
		return err
	}
	if _, err := c.TimeZone(); err != nil {
		return err
	}
	return nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
