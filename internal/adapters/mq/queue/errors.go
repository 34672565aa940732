package queue

import "errors"

// Sentinel errors returned by queue operations.
var (
	ErrClosed = errors.New("queue closed")
	ErrFull   = errors.New("queue full")
)
