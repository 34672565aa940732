// Package service wires the rating engine to storage, the catalog, the
// recompute pipeline and the leaderboards, and exposes the use cases the
// HTTP API and the CLI call.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/maidx/internal/adapters/catalog"
	"github.com/okian/maidx/internal/adapters/mq/queue"
	"github.com/okian/maidx/internal/adapters/mq/worker"
	"github.com/okian/maidx/internal/adapters/repository"
	"github.com/okian/maidx/internal/adapters/repository/sqlite"
	"github.com/okian/maidx/internal/domain/b50"
	"github.com/okian/maidx/internal/domain/dedupe"
	"github.com/okian/maidx/internal/domain/types"
	"github.com/okian/maidx/pkg/logger"
	"github.com/okian/maidx/pkg/metrics"
)

var regions = []string{types.RegionJP, types.RegionEX, types.RegionCN}

// Service implements the use cases behind the HTTP API.
type Service struct {
	mu sync.RWMutex

	db          *sql.DB
	charts      *sqlite.CatalogRepository
	scores      *sqlite.ScoreRepository
	players     *sqlite.PlayerRepository
	leaderboard repository.Store
	deduper     dedupe.Deduper
	jobs        *queue.InMemoryQueue
	pool        *worker.Pool
	syncer      *catalog.Syncer
	fetcher     catalog.Fetcher
	aggregator  *b50.Aggregator

	workerCount         int
	queueSize           int
	dedupeSize          int
	dbPath              string
	defaultRegion       string
	maxLeaderboardLimit int
	aggregatorOpts      []b50.Option
	musicDataURL        string
	catalogTTL          time.Duration
	syncOnStart         bool

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Nothing is opened until Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:         runtime.NumCPU(),
		queueSize:           10000,
		dedupeSize:          50000,
		dbPath:              ":memory:",
		defaultRegion:       types.RegionJP,
		maxLeaderboardLimit: 1000,
		musicDataURL:        catalog.DefaultMusicDataURL,
		catalogTTL:          6 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.aggregator = b50.New(s.aggregatorOpts...)
	return s
}

// Start opens the database, restores the leaderboards and starts the
// recompute workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting rating service...")

	db, err := sqlite.Open(ctx, s.dbPath)
	if err != nil {
		return err
	}
	s.db = db
	s.charts = sqlite.NewCatalogRepository(db)
	s.scores = sqlite.NewScoreRepository(db)
	s.players = sqlite.NewPlayerRepository(db)

	s.leaderboard = repository.NewTreapStore(
		repository.WithRegions(regions...),
		repository.WithMaxLimit(s.maxLeaderboardLimit),
	)
	if err := s.restoreLeaderboards(ctx); err != nil {
		_ = db.Close()
		return err
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	if s.fetcher == nil {
		s.fetcher = catalog.NewClient(catalog.WithURL(s.musicDataURL), catalog.WithTTL(s.catalogTTL))
	}
	s.syncer = catalog.NewSyncer(s.fetcher, s.charts)

	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	r := &recomputer{s: s}
	s.pool = worker.NewPool(s.workerCount, s.jobs, r, r)

	// Workers outlive the request that started the service.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	if n, err := s.charts.CountCharts(ctx); err == nil {
		metrics.UpdateCatalogCharts(n)
	}

	s.started = true
	s.logger.Info(ctx, "rating service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("db", s.dbPath))

	if s.syncOnStart {
		if _, err := s.syncCatalog(ctx, s.defaultRegion); err != nil {
			s.logger.Warn(ctx, "initial catalog sync failed", logger.Error(err))
		}
	}
	return nil
}

func (s *Service) restoreLeaderboards(ctx context.Context) error {
	for _, region := range regions {
		rs, err := s.players.Ratings(ctx, region)
		if err != nil {
			return fmt.Errorf("restore %s leaderboard: %w", region, err)
		}
		for _, r := range rs {
			if _, err := s.leaderboard.Set(ctx, region, r.Player, r.Rating); err != nil {
				return err
			}
		}
		metrics.UpdateLeaderboardPlayers(region, len(rs))
	}
	return nil
}

// Stop drains the recompute queue and closes the database.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping rating service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.cancel()
	if err := s.db.Close(); err != nil {
		s.logger.Error(ctx, "close database", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "rating service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// region applies the default and validates.
func (s *Service) region(r string) (string, error) {
	if r == "" {
		return s.defaultRegion, nil
	}
	if !types.ValidRegion(r) {
		return "", fmt.Errorf("%w: unknown region %q", ErrInvalidInput, r)
	}
	return r, nil
}

// notFound maps the storage layers' not-found errors onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sqlite.ErrNotFound) || errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"defaultRegion": s.defaultRegion,
	}
	prior, current := s.aggregator.Limits()
	stats["limits"] = map[string]int{"past": prior, "new": current}

	if s.started {
		ctx := context.Background()
		queueLen := s.jobs.Len()
		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()
		if n, err := s.charts.CountCharts(ctx); err == nil {
			stats["charts"] = n
		}
		players := make(map[string]int, len(regions))
		for _, r := range regions {
			players[r] = s.leaderboard.Count(ctx, r)
		}
		stats["rankedPlayers"] = players

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())
	}
	return stats
}
