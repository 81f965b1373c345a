package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidInput = errors.New("invalid forecast request")
	ErrNotStarted   = errors.New("service not started")
	ErrBusy         = errors.New("forecast queue is full")
	ErrStartup      = errors.New("service startup failed")
)
