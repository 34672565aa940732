package repository

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrNotFound      = errors.New("player not ranked")
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
	ErrInvalidRegion = errors.New("invalid region")
)
