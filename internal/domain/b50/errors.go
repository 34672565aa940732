package b50

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrMissingEra means a result arrived without an era tag while the
	// aggregator is configured to fail closed.
	ErrMissingEra = errors.New("missing era classification")
)
