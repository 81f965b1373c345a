package repository

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/okian/waitcast/internal/domain/model"
	"github.com/okian/waitcast/pkg/metrics"
)

const (
	defaultSize = 256
	defaultTTL  = 10 * time.Minute
)

// LRUStore is a size-bounded, TTL-expiring in-memory Store.
type LRUStore struct {
	size  int
	ttl   time.Duration
	cache *expirable.LRU[Key, model.Report]
}

var _ Store = (*LRUStore)(nil)

// NewLRUStore creates a cache with the given options.
func NewLRUStore(opts ...Option) *LRUStore {
	s := &LRUStore{size: defaultSize, ttl: defaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = expirable.NewLRU[Key, model.Report](s.size, nil, s.ttl)
	return s
}

// Get implements Store. Returned reports never alias cached slot storage.
func (s *LRUStore) Get(ctx context.Context, key Key) (model.Report, error) {
	if err := ctx.Err(); err != nil {
		return model.Report{}, err
	}
	report, ok := s.cache.Get(key)
	if !ok {
		metrics.RecordCacheMiss()
		return model.Report{}, ErrNotFound
	}
	metrics.RecordCacheHit()
	report.Slots = slices.Clone(report.Slots)
	return report, nil
}

// Put implements Store.
func (s *LRUStore) Put(ctx context.Context, key Key, report model.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(report.Slots) == 0 {
		return ErrEmptyReport
	}
	report.Slots = slices.Clone(report.Slots)
	s.cache.Add(key, report)
	metrics.UpdateCacheEntries(s.cache.Len())
	return nil
}

// Len implements Store.
func (s *LRUStore) Len(_ context.Context) int {
	return s.cache.Len()
}

// Purge drops every entry, e.g. after models are reloaded.
func (s *LRUStore) Purge() {
	s.cache.Purge()
	metrics.UpdateCacheEntries(0)
}
