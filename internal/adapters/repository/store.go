// Package repository caches forecast reports keyed by their run inputs.
package repository

import (
	"context"
	"fmt"

	"github.com/okian/waitcast/internal/domain/model"
	"github.com/okian/waitcast/internal/domain/weather"
)

// Key identifies a forecast run. A run is deterministic in these inputs, so
// two requests with the same key produce the same slots.
type Key struct {
	Date          string
	TotalPatients int
	Weather       weather.Category
}

// KeyFor derives the cache key of a run context.
func KeyFor(run model.RunContext) Key {
	return Key{
		Date:          run.Date.Format(model.DateLayout),
		TotalPatients: run.TotalPatients,
		Weather:       run.Weather,
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s", k.Date, k.TotalPatients, k.Weather)
}

// Store provides read/write access to cached reports.
type Store interface {
	// Get returns the cached report for key.
	// Returns ErrNotFound if nothing is cached or the entry expired.
	Get(ctx context.Context, key Key) (model.Report, error)

	// Put caches report under key, replacing any previous entry.
	Put(ctx context.Context, key Key, report model.Report) error

	// Len returns the number of live entries.
	Len(ctx context.Context) int
}
