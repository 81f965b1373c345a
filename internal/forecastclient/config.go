// Package forecastclient requests forecasts from a waitcast server and
// renders them for a terminal.
package forecastclient

import (
	"fmt"
	"time"

	"github.com/okian/waitcast/internal/domain/model"
	"github.com/okian/waitcast/internal/domain/types"
	"github.com/okian/waitcast/internal/domain/weather"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config holds one client invocation.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	Date          string
	TotalPatients int
	Weather       string
	// Days > 1 requests consecutive dates starting at Date as one batch.
	Days   int
	Format string
}

// Validate checks the invocation before any request is sent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: url must not be empty", ErrInvalidConfig)
	}
	if _, err := time.Parse(model.DateLayout, c.Date); err != nil {
		return fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidConfig, c.Date)
	}
	if c.TotalPatients < 0 {
		return fmt.Errorf("%w: patients must not be negative", ErrInvalidConfig)
	}
	if _, err := weather.Parse(c.Weather); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Days < 1 {
		return fmt.Errorf("%w: days must be at least 1", ErrInvalidConfig)
	}
	if c.Format != FormatTable && c.Format != FormatJSON {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	return nil
}

// Requests expands the config into one request per day.
func (c *Config) Requests() []types.ForecastRequest {
	start, _ := time.Parse(model.DateLayout, c.Date)
	reqs := make([]types.ForecastRequest, c.Days)
	for i := range reqs {
		reqs[i] = types.ForecastRequest{
			Date:          start.AddDate(0, 0, i).Format(model.DateLayout),
			TotalPatients: c.TotalPatients,
			Weather:       c.Weather,
		}
	}
	return reqs
}
