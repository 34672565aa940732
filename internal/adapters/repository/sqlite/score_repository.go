package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/okian/maidx/internal/domain/model"
)

// ScoreRepository stores each player's best known result per chart.
type ScoreRepository struct {
	db *sql.DB
}

// NewScoreRepository creates a ScoreRepository.
func NewScoreRepository(db *sql.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Upsert writes res for (playerID, chartID), overwriting any earlier row.
func (r *ScoreRepository) Upsert(ctx context.Context, playerID, chartID int64, res model.ChartResult) error {
	defer observe("scores.upsert", time.Now())

	var playCount sql.NullInt64
	if res.PlayCount != nil {
		playCount = sql.NullInt64{Int64: int64(*res.PlayCount), Valid: true}
	}
	q, args, err := sqlBuilder.Insert("scores").
		Columns("player_id", "chart_id", "achievements", "dx_score", "combo_stat", "sync_stat", "play_count", "updated_at").
		Values(playerID, chartID, model.NormalizeAchievement(res.Achievement).StringFixed(4),
			res.DXScore, string(res.Combo), string(res.Sync), playCount, time.Now().UTC()).
		Suffix(`ON CONFLICT (player_id, chart_id) DO UPDATE SET
achievements = excluded.achievements, dx_score = excluded.dx_score,
combo_stat = excluded.combo_stat, sync_stat = excluded.sync_stat,
play_count = COALESCE(excluded.play_count, scores.play_count), updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

// ListByPlayer returns a player's results with DS taken from the catalog and
// the era each chart has in region. A chart is current-era when it belongs
// to region's latest version, prior-era when it belongs to any other version
// of region, and unknown otherwise.
func (r *ScoreRepository) ListByPlayer(ctx context.Context, playerID int64, region string) ([]model.ClassifiedResult, error) {
	defer observe("scores.list_by_player", time.Now())

	latest, err := NewCatalogRepository(r.db).LatestVersion(ctx, region)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	q, args, err := sqlBuilder.Select(
		"c.song_id", "c.title", "c.type", "c.difficulty", "c.internal_level",
		"s.achievements", "s.dx_score", "s.combo_stat", "s.sync_stat", "s.play_count",
	).
		Column(squirrel.Alias(squirrel.Expr(`(SELECT COUNT(*) FROM chart_versions cv
JOIN versions v ON v.id = cv.version_id WHERE cv.chart_id = c.id AND v.region = ?)`, region), "known_versions")).
		Column(squirrel.Alias(squirrel.Expr(`(SELECT COUNT(*) FROM chart_versions cv
WHERE cv.chart_id = c.id AND cv.version_id = ?)`, latest.ID), "in_latest")).
		From("scores s").
		Join("charts c ON c.id = s.chart_id").
		Where(squirrel.Eq{"s.player_id": playerID}).
		OrderBy("s.id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	out := []model.ClassifiedResult{}
	for rows.Next() {
		var (
			res             model.ChartResult
			playCount       sql.NullInt64
			known, inLatest int
		)
		if err := rows.Scan(&res.Chart.SongID, &res.Chart.Title, &res.Chart.Type, &res.Chart.Difficulty, &res.DS,
			&res.Achievement, &res.DXScore, &res.Combo, &res.Sync, &playCount, &known, &inLatest); err != nil {
			return nil, err
		}
		if playCount.Valid {
			n := int(playCount.Int64)
			res.PlayCount = &n
		}
		era := model.EraUnknown
		switch {
		case inLatest > 0:
			era = model.EraCurrent
		case known > 0:
			era = model.EraPrior
		}
		out = append(out, model.ClassifiedResult{Result: res, Era: era})
	}
	return out, rows.Err()
}

// CountByPlayer returns how many charts a player has a result for.
func (r *ScoreRepository) CountByPlayer(ctx context.Context, playerID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores WHERE player_id = ?`, playerID).Scan(&n)
	return n, err
}
