package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/okian/maidx/internal/adapters/catalog"
	"github.com/okian/maidx/internal/adapters/repository"
	"github.com/okian/maidx/internal/domain/b50"
	"github.com/okian/maidx/internal/domain/model"
	"github.com/okian/maidx/internal/domain/rating"
	"github.com/okian/maidx/internal/domain/types"
	"github.com/okian/maidx/pkg/logger"
	"github.com/okian/maidx/pkg/metrics"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RecomputeReport summarises a RecomputeAll run.
type RecomputeReport struct {
	Region     string `json:"region"`
	Recomputed int    `json:"recomputed"`
	// Skipped counts players whose results include charts the catalog
	// cannot place in an era (under the fail policy). They are dropped from
	// the leaderboard until a recompute succeeds.
	Skipped int `json:"skipped"`
}

// SyncResult is the outcome of SyncCatalog.
type SyncResult struct {
	catalog.SyncReport
	Recompute RecomputeReport `json:"recompute"`
}

// recomputer adapts the service to the worker pool.
type recomputer struct {
	s *Service
}

func (r *recomputer) Calculate(ctx context.Context, playerID int64, region string) (int, error) {
	sum, _, err := r.s.calculate(ctx, playerID, region)
	if errors.Is(err, b50.ErrMissingEra) {
		if uerr := r.s.unrank(ctx, playerID, region); uerr != nil {
			return 0, errors.Join(err, uerr)
		}
	}
	return sum.Total, err
}

func (r *recomputer) UpdateRating(ctx context.Context, playerID int64, region string, total int) error {
	return r.s.updateRating(ctx, playerID, region, total)
}

// calculate builds a player's B50 from storage. n is the number of results
// considered.
func (s *Service) calculate(ctx context.Context, playerID int64, region string) (sum model.B50Summary, n int, err error) {
	start := time.Now()
	results, err := s.scores.ListByPlayer(ctx, playerID, region)
	if err != nil {
		return model.B50Summary{}, 0, err
	}
	sum, err = s.aggregator.Aggregate(results)
	if err != nil {
		return model.B50Summary{}, len(results), err
	}
	metrics.RecordRatingsComputed(len(results))
	metrics.RecordB50Computed(region, float64(time.Since(start).Microseconds())/1000)
	return sum, len(results), nil
}

func (s *Service) updateRating(ctx context.Context, playerID int64, region string, total int) error {
	if err := s.players.SetRating(ctx, playerID, region, total); err != nil {
		return err
	}
	p, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return err
	}
	if _, err := s.leaderboard.Set(ctx, region, p.Name, total); err != nil {
		return err
	}
	metrics.UpdateLeaderboardPlayers(region, s.leaderboard.Count(ctx, region))
	return nil
}

// unrank drops a player whose total can no longer be computed, so the
// leaderboard never shows a stale rating. The player comes back with the
// next successful recompute.
func (s *Service) unrank(ctx context.Context, playerID int64, region string) error {
	if err := s.players.ClearRating(ctx, playerID, region); err != nil {
		return err
	}
	p, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return err
	}
	if err := s.leaderboard.Remove(ctx, region, p.Name); err != nil {
		return err
	}
	metrics.UpdateLeaderboardPlayers(region, s.leaderboard.Count(ctx, region))
	return nil
}

// B50 computes a player's Best 50 for region from stored results.
func (s *Service) B50(ctx context.Context, player, region string) (model.B50Summary, error) {
	if err := s.ready(); err != nil {
		return model.B50Summary{}, err
	}
	region, err := s.region(region)
	if err != nil {
		return model.B50Summary{}, err
	}
	p, err := s.players.Get(ctx, player)
	if err != nil {
		return model.B50Summary{}, notFound(err)
	}
	sum, _, err := s.calculate(ctx, p.ID, region)
	return sum, err
}

// Leaderboard returns the top n players of region.
func (s *Service) Leaderboard(ctx context.Context, region string, n int) ([]types.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	region, err := s.region(region)
	if err != nil {
		return nil, err
	}
	entries, err := s.leaderboard.TopN(ctx, region, n)
	if errors.Is(err, repository.ErrInvalidLimit) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return entries, err
}

// Rank returns a player's leaderboard entry in region.
func (s *Service) Rank(ctx context.Context, region, player string) (types.Entry, error) {
	if err := s.ready(); err != nil {
		return types.Entry{}, err
	}
	region, err := s.region(region)
	if err != nil {
		return types.Entry{}, err
	}
	e, err := s.leaderboard.Rank(ctx, region, player)
	if err != nil {
		return types.Entry{}, notFound(err)
	}
	return e, nil
}

// Rate computes a single chart rating and the achievement's rank.
func (s *Service) Rate(achievement, ds decimal.Decimal) (int, rating.Rank, error) {
	r, err := rating.RatingStrict(achievement, ds)
	if err != nil {
		return 0, "", err
	}
	metrics.RecordRatingsComputed(1)
	return r, rating.RankOf(achievement), nil
}

// Curve lists the achievements at which a chart of constant ds gains
// rating. With current set, only the next steps up from it are kept.
func (s *Service) Curve(ds decimal.Decimal, current *decimal.Decimal) ([]rating.Breakpoint, error) {
	if !ds.IsPositive() {
		return nil, fmt.Errorf("%w: ds must be positive", rating.ErrInvalidInput)
	}
	if current != nil && current.IsNegative() {
		return nil, fmt.Errorf("%w: achievement must not be negative", rating.ErrInvalidInput)
	}
	return rating.DetailedBreakpoints(ds, current), nil
}

// AggregateStateless computes a B50 from caller-supplied results without
// touching storage.
func (s *Service) AggregateStateless(results []model.ClassifiedResult) (model.B50Summary, error) {
	for i, c := range results {
		if err := rating.Validate(c.Result.Achievement, c.Result.DS); err != nil {
			return model.B50Summary{}, fmt.Errorf("%w: record %d: %v", ErrInvalidInput, i, err)
		}
	}
	sum, err := s.aggregator.Aggregate(results)
	if err != nil {
		return model.B50Summary{}, err
	}
	metrics.RecordRatingsComputed(len(results))
	return sum, nil
}

// RecomputeAll rebuilds every player's rating for region, using as many
// goroutines as there are workers.
func (s *Service) RecomputeAll(ctx context.Context, region string) (RecomputeReport, error) {
	if err := s.ready(); err != nil {
		return RecomputeReport{}, err
	}
	region, err := s.region(region)
	if err != nil {
		return RecomputeReport{}, err
	}
	return s.recomputeAll(ctx, region)
}

func (s *Service) recomputeAll(ctx context.Context, region string) (RecomputeReport, error) {
	start := time.Now()
	players, err := s.players.List(ctx)
	if err != nil {
		return RecomputeReport{}, err
	}

	var done, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount)
	for _, p := range players {
		g.Go(func() error {
			sum, n, err := s.calculate(gctx, p.ID, region)
			if errors.Is(err, b50.ErrMissingEra) {
				skipped.Add(1)
				s.logger.Warn(gctx, "player unranked, rating not computable",
					logger.String("player", p.Name), logger.String("region", region), logger.Error(err))
				return s.unrank(gctx, p.ID, region)
			}
			if err != nil {
				return fmt.Errorf("player %s: %w", p.Name, err)
			}
			if n == 0 {
				return nil
			}
			if err := s.updateRating(gctx, p.ID, region, sum.Total); err != nil {
				return fmt.Errorf("player %s: %w", p.Name, err)
			}
			done.Add(1)
			return nil
		})
	}
	err = g.Wait()
	rep := RecomputeReport{Region: region, Recomputed: int(done.Load()), Skipped: int(skipped.Load())}
	if err != nil {
		metrics.RecordRecomputeError()
		return rep, err
	}
	metrics.RecordRecompute(float64(time.Since(start).Microseconds()) / 1000)
	s.logger.Info(ctx, "ratings recomputed",
		logger.String("region", region),
		logger.Int("players", rep.Recomputed),
		logger.Int("skipped", rep.Skipped),
		logger.Duration("took", time.Since(start)))
	return rep, nil
}

// Versions lists region's catalog versions, oldest first.
func (s *Service) Versions(ctx context.Context, region string) ([]model.Version, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	region, err := s.region(region)
	if err != nil {
		return nil, err
	}
	return s.charts.Versions(ctx, region)
}

// Chart returns the catalog chart stored under id.
func (s *Service) Chart(ctx context.Context, id int64) (model.CatalogChart, error) {
	if err := s.ready(); err != nil {
		return model.CatalogChart{}, err
	}
	c, err := s.charts.ChartByID(ctx, id)
	if err != nil {
		return model.CatalogChart{}, notFound(err)
	}
	return c, nil
}

// SyncCatalog refreshes region's catalog from the music list and then
// recomputes every rating in region, since eras and constants may have
// moved.
func (s *Service) SyncCatalog(ctx context.Context, region string) (SyncResult, error) {
	if err := s.ready(); err != nil {
		return SyncResult{}, err
	}
	region, err := s.region(region)
	if err != nil {
		return SyncResult{}, err
	}
	return s.syncCatalog(ctx, region)
}

func (s *Service) syncCatalog(ctx context.Context, region string) (SyncResult, error) {
	rep, err := s.syncer.Sync(ctx, region)
	if err != nil {
		return SyncResult{}, err
	}
	if n, err := s.charts.CountCharts(ctx); err == nil {
		metrics.UpdateCatalogCharts(n)
	}
	rc, err := s.recomputeAll(ctx, region)
	return SyncResult{SyncReport: rep, Recompute: rc}, err
}
