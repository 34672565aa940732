package catalog

import "errors"

// Sentinel error kinds for this package.
var (
	ErrFetch     = errors.New("catalog fetch failed")
	ErrMalformed = errors.New("malformed catalog data")
)
