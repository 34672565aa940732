// Package repository holds the in-memory regional leaderboards of player
// ratings.
package repository

import (
	"context"

	"github.com/okian/maidx/internal/domain/types"
)

// Store provides read/write access to the per-region ranking state.
type Store interface {
	// Set records a player's current B50 total in region, replacing any
	// previous value. Returns true if the stored value changed.
	Set(ctx context.Context, region, player string, rating int) (bool, error)
	// Remove drops a player from region. Removing an unknown player is a no-op.
	Remove(ctx context.Context, region, player string) error
	// Rank returns the player's entry. Returns ErrNotFound if the player is
	// not ranked in region.
	Rank(ctx context.Context, region, player string) (types.Entry, error)
	// TopN returns the best n entries, rating desc then player asc.
	TopN(ctx context.Context, region string, n int) ([]types.Entry, error)
	// Count returns the number of ranked players in region.
	Count(ctx context.Context, region string) int
}
