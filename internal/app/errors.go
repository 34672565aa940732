package service

import "errors"

// Sentinel errors returned by the service. Errors from the rating engine
// (rating.ErrInvalidInput, b50.ErrMissingEra) are passed through wrapped.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate upload")
	ErrBackpressure = errors.New("recompute queue full")
)
