package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/maidx/internal/adapters/catalog"
	"github.com/okian/maidx/pkg/logger"
)

const (
	directoryPermission = 0750
	drainPollInterval   = 50 * time.Millisecond
	defaultDrainTimeout = 2 * time.Minute
)

// Run executes a complete load test against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("loadtest")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting maidx load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("region", cfg.Region),
		logger.Int("players", cfg.Players),
		logger.Int("scoresPerPlayer", cfg.ScoresPerPlayer),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	c := newAPIClient(cfg.BaseURL, cfg.Region, cfg.Timeout)
	if err := c.health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	songs, err := catalog.NewClient(catalog.WithURL(cfg.MusicDataURL)).Fetch(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch music data: %w", err)
	}
	charts := playable(songs)
	if len(charts) == 0 {
		return stats, fmt.Errorf("music data has no playable charts")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	uploads := generateUploads(rand.New(rand.NewPCG(seed, seed)), charts, cfg.Players, cfg.ScoresPerPlayer)
	stats.PlayersGenerated = len(uploads)
	log.Info(ctx, "generated uploads", logger.Int("players", len(uploads)), logger.Any("seed", seed))

	if err := submitUploads(ctx, c, cfg, uploads, stats); err != nil {
		return stats, fmt.Errorf("upload submission failed: %w", err)
	}

	if err := waitForDrain(ctx, c, cfg.DrainTimeout); err != nil {
		return stats, err
	}

	ranks, err := retrieveRanks(ctx, c, cfg, uploads, stats)
	if err != nil {
		return stats, fmt.Errorf("rank retrieval failed: %w", err)
	}

	leaderboard, err := c.leaderboard(ctx, cfg.TopN)
	if err != nil {
		return stats, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	stats.LeaderboardEntries = len(leaderboard)

	if err := verifyLeaderboard(ranks, leaderboard); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}
	if stats.Mismatches > 0 {
		return stats, fmt.Errorf("result verification failed: %d players' ratings differ from their b50", stats.Mismatches)
	}

	if cfg.OutputFile != "" {
		if err := saveUploads(cfg.OutputFile, uploads); err != nil {
			log.Warn(ctx, "failed to save uploads", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logStats(ctx, stats)
	return stats, nil
}

// waitForDrain polls /stats until the recompute queue is empty.
func waitForDrain(ctx context.Context, c *apiClient, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultDrainTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	t := time.NewTicker(drainPollInterval)
	defer t.Stop()
	for {
		n, err := c.queueLength(ctx)
		if err == nil && n == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("recompute queue not drained: %w", ctx.Err())
		case <-t.C:
		}
	}
}

func saveUploads(filename string, uploads []Upload) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(uploads); err != nil {
		_ = f.Close()
		return fmt.Errorf("write uploads: %w", err)
	}
	return f.Close()
}

func logStats(ctx context.Context, stats *Stats) {
	var uploadsPerSecond float64
	if stats.Duration > 0 {
		uploadsPerSecond = float64(stats.UploadsSubmitted) / stats.Duration.Seconds()
	}
	logger.Get().Named("loadtest").Info(ctx, "final statistics",
		logger.Int("playersGenerated", stats.PlayersGenerated),
		logger.Int("uploadsSubmitted", stats.UploadsSubmitted),
		logger.Int("uploadsSuccessful", stats.UploadsSuccessful),
		logger.Int("uploadsDuplicate", stats.UploadsDuplicate),
		logger.Int("uploadsFailed", stats.UploadsFailed),
		logger.Int("scoresStored", stats.ScoresStored),
		logger.Int("ranksRetrieved", stats.RanksRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Duration("duration", stats.Duration),
		logger.Float64("uploadsPerSecond", uploadsPerSecond))
}
