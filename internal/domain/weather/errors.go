package weather

import "errors"

// Sentinel kinds for weather errors.
var (
	ErrUnknownCategory = errors.New("unknown weather category")
)
