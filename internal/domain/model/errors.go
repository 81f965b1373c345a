package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrNegativeTotal = errors.New("total patients must not be negative")
	ErrInvalidGrid   = errors.New("invalid slot grid")
)
