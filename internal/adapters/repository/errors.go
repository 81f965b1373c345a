package repository

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrNotFound    = errors.New("forecast not cached")
	ErrEmptyReport = errors.New("refusing to cache empty report")
)
