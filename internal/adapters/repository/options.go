package repository

import "time"

// Option applies a configuration option to the LRUStore.
type Option func(*LRUStore)

// WithSize bounds the number of cached reports. Zero or less means unbounded.
func WithSize(size int) Option {
	return func(s *LRUStore) {
		s.size = size
	}
}

// WithTTL expires entries after ttl. Zero or less disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *LRUStore) {
		s.ttl = ttl
	}
}
