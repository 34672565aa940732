package loadtest

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/okian/maidx/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	rankAttempts   = 3
	rankRetryDelay = 100 * time.Millisecond
)

// retrieveRanks fetches every player's leaderboard entry and checks it
// against the player's B50 total. A mismatch is retried briefly since a
// recompute may still be in flight.
func retrieveRanks(ctx context.Context, c *apiClient, cfg *Config, uploads []Upload, stats *Stats) ([]Entry, error) {
	log := logger.Get().Named("loadtest")
	entries := make([]Entry, len(uploads))
	var retrieved, mismatches atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, u := range uploads {
		g.Go(func() error {
			for attempt := 1; ; attempt++ {
				e, err := c.rank(gctx, u.Player)
				if err != nil {
					if cfg.Verbose {
						log.Warn(gctx, "rank not retrieved", logger.String("player", u.Player), logger.Error(err))
					}
					return gctx.Err()
				}
				total, err := c.b50Total(gctx, u.Player)
				if err != nil {
					return gctx.Err()
				}
				if e.Rating == total {
					entries[i] = e
					retrieved.Add(1)
					return nil
				}
				if attempt == rankAttempts {
					mismatches.Add(1)
					log.Warn(gctx, "leaderboard rating differs from b50 total",
						logger.String("player", u.Player),
						logger.Int("rating", e.Rating),
						logger.Int("total", total))
					return nil
				}
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-time.After(rankRetryDelay):
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	valid := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Player != "" {
			valid = append(valid, e)
		}
	}
	stats.RanksRetrieved = len(valid)
	stats.Mismatches = int(mismatches.Load())
	return valid, nil
}

// verifyLeaderboard checks that the top of the leaderboard is ordered by
// rating with dense ranks, and that it agrees with the ranks fetched per
// player.
func verifyLeaderboard(ranks, leaderboard []Entry) error {
	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}
	if leaderboard[0].Rank != 1 {
		return fmt.Errorf("top leaderboard entry has rank %d", leaderboard[0].Rank)
	}
	for i := 1; i < len(leaderboard); i++ {
		prev, cur := leaderboard[i-1], leaderboard[i]
		switch {
		case cur.Rating > prev.Rating:
			return fmt.Errorf("leaderboard not sorted: entry %d rates %d above entry %d's %d", i, cur.Rating, i-1, prev.Rating)
		case cur.Rating == prev.Rating && cur.Rank != prev.Rank:
			return fmt.Errorf("entries %d and %d tie at %d but rank %d and %d", i-1, i, cur.Rating, prev.Rank, cur.Rank)
		case cur.Rating < prev.Rating && cur.Rank != prev.Rank+1:
			return fmt.Errorf("entry %d has rank %d after rank %d", i, cur.Rank, prev.Rank)
		}
	}

	byPlayer := make(map[string]Entry, len(ranks))
	for _, e := range ranks {
		byPlayer[e.Player] = e
	}
	for _, e := range leaderboard {
		r, ok := byPlayer[e.Player]
		if !ok {
			continue
		}
		if r.Rank != e.Rank || r.Rating != e.Rating {
			return fmt.Errorf("player %s: leaderboard says #%d (%d), rank says #%d (%d)",
				e.Player, e.Rank, e.Rating, r.Rank, r.Rating)
		}
	}
	return nil
}
