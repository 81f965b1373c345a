package features

import "errors"

// Sentinel kinds for schema errors.
var (
	ErrEmptySchema     = errors.New("feature schema is empty")
	ErrDuplicateColumn = errors.New("duplicate feature column")
	ErrLoadSchema      = errors.New("load feature schema failed")
)
