package service

import (
	"time"

	"github.com/okian/maidx/internal/adapters/catalog"
	"github.com/okian/maidx/internal/domain/b50"
	"github.com/okian/maidx/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of recompute workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the recompute queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many upload ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDBPath sets the SQLite database path. ":memory:" keeps everything in
// memory.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithDefaultRegion sets the region used when a request names none.
func WithDefaultRegion(region string) Option {
	return func(s *Service) {
		if region != "" {
			s.defaultRegion = region
		}
	}
}

// WithMaxLeaderboardLimit caps leaderboard page sizes.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLeaderboardLimit = n
		}
	}
}

// WithAggregatorOptions configures B50 aggregation (era policy, tie-break,
// bucket sizes).
func WithAggregatorOptions(opts ...b50.Option) Option {
	return func(s *Service) {
		s.aggregatorOpts = append(s.aggregatorOpts, opts...)
	}
}

// WithMusicDataURL sets where the music list is fetched from.
func WithMusicDataURL(u string) Option {
	return func(s *Service) {
		if u != "" {
			s.musicDataURL = u
		}
	}
}

// WithCatalogCacheTTL sets how long a fetched music list is reused.
func WithCatalogCacheTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.catalogTTL = d
		}
	}
}

// WithCatalogFetcher replaces the HTTP music list client.
func WithCatalogFetcher(f catalog.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithCatalogSyncOnStart makes Start sync the default region's catalog.
func WithCatalogSyncOnStart(enabled bool) Option {
	return func(s *Service) {
		s.syncOnStart = enabled
	}
}
