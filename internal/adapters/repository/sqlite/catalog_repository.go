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

// CatalogRepository stores versions and charts.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a CatalogRepository.
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Import writes a catalog snapshot in one transaction. Charts are upserted
// by (title, type, difficulty); a chart's version links for the snapshot's
// region are replaced by the snapshot's.
func (r *CatalogRepository) Import(ctx context.Context, snap model.CatalogSnapshot) error {
	defer observe("catalog.import", time.Now())

	return tx(ctx, r.db, func(t *sql.Tx) error {
		versionIDs := make(map[string]int64, len(snap.Versions))
		for _, v := range snap.Versions {
			id, err := upsertVersion(ctx, t, snap.Region, v)
			if err != nil {
				return err
			}
			versionIDs[v.Name] = id
		}

		for _, c := range snap.Charts {
			chartID, err := upsertChart(ctx, t, c)
			if err != nil {
				return err
			}
			if _, err := t.ExecContext(ctx, `
DELETE FROM chart_versions
WHERE chart_id = ? AND version_id IN (SELECT id FROM versions WHERE region = ?)
`, chartID, snap.Region); err != nil {
				return fmt.Errorf("clear versions of chart %s: %w", c.Chart, err)
			}
			for _, name := range c.Versions {
				vid, ok := versionIDs[name]
				if !ok {
					continue
				}
				if _, err := t.ExecContext(ctx,
					`INSERT OR IGNORE INTO chart_versions (chart_id, version_id) VALUES (?, ?)`, chartID, vid); err != nil {
					return fmt.Errorf("link chart %s to %q: %w", c.Chart, name, err)
				}
			}
		}
		return nil
	})
}

func upsertVersion(ctx context.Context, t *sql.Tx, region string, v model.Version) (int64, error) {
	q, args, err := sqlBuilder.Insert("versions").
		Columns("region", "name", "release_date").
		Values(region, v.Name, nullTime(v.ReleaseDate)).
		Suffix("ON CONFLICT (region, name) DO UPDATE SET release_date = excluded.release_date RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := t.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert version %q: %w", v.Name, err)
	}
	return id, nil
}

func upsertChart(ctx context.Context, t *sql.Tx, c model.CatalogChart) (int64, error) {
	q, args, err := sqlBuilder.Insert("charts").
		Columns("song_id", "title", "type", "difficulty", "level", "internal_level").
		Values(c.Chart.SongID, c.Chart.Title, string(c.Chart.Type), string(c.Chart.Difficulty), c.Level, c.DS.StringFixed(1)).
		Suffix(`ON CONFLICT (title, type, difficulty) DO UPDATE SET
song_id = excluded.song_id, level = excluded.level, internal_level = excluded.internal_level
RETURNING id`).
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := t.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert chart %s: %w", c.Chart, err)
	}
	return id, nil
}

// LatestVersion returns region's newest version by release date.
func (r *CatalogRepository) LatestVersion(ctx context.Context, region string) (model.Version, error) {
	defer observe("catalog.latest_version", time.Now())

	q, args, err := sqlBuilder.Select("id", "region", "name", "release_date").
		From("versions").
		Where(squirrel.Eq{"region": region}).
		OrderBy("release_date DESC", "name ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return model.Version{}, err
	}
	var (
		v  model.Version
		rd sql.NullTime
	)
	err = r.db.QueryRowContext(ctx, q, args...).Scan(&v.ID, &v.Region, &v.Name, &rd)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Version{}, fmt.Errorf("latest version of %q: %w", region, ErrNotFound)
	}
	if err != nil {
		return model.Version{}, err
	}
	v.ReleaseDate = rd.Time
	return v, nil
}

// Versions lists region's versions, oldest first.
func (r *CatalogRepository) Versions(ctx context.Context, region string) ([]model.Version, error) {
	defer observe("catalog.versions", time.Now())

	q, args, err := sqlBuilder.Select("id", "region", "name", "release_date").
		From("versions").
		Where(squirrel.Eq{"region": region}).
		OrderBy("release_date ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Version
	for rows.Next() {
		var (
			v  model.Version
			rd sql.NullTime
		)
		if err := rows.Scan(&v.ID, &v.Region, &v.Name, &rd); err != nil {
			return nil, err
		}
		v.ReleaseDate = rd.Time
		out = append(out, v)
	}
	return out, rows.Err()
}

// FindChart resolves an identity to a catalog chart. Identities with a
// title match on (title, type, difficulty); identities without one match on
// (song id, difficulty).
func (r *CatalogRepository) FindChart(ctx context.Context, id model.ChartIdentity) (model.CatalogChart, error) {
	defer observe("catalog.find_chart", time.Now())

	query := sqlBuilder.Select("id", "song_id", "title", "type", "difficulty", "level", "internal_level").
		From("charts").
		Where(squirrel.Eq{"difficulty": string(id.Difficulty)})
	if id.Title != "" {
		query = query.Where(squirrel.Eq{"title": id.Title, "type": string(id.Type)})
	} else {
		query = query.Where(squirrel.Eq{"song_id": id.SongID})
	}
	q, args, err := query.Limit(1).ToSql()
	if err != nil {
		return model.CatalogChart{}, err
	}

	var c model.CatalogChart
	err = r.db.QueryRowContext(ctx, q, args...).Scan(
		&c.ID, &c.Chart.SongID, &c.Chart.Title, &c.Chart.Type, &c.Chart.Difficulty, &c.Level, &c.DS)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CatalogChart{}, fmt.Errorf("chart %s: %w", id, ErrNotFound)
	}
	return c, err
}

// CountCharts returns the number of charts in the catalog.
func (r *CatalogRepository) CountCharts(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM charts`).Scan(&n)
	return n, err
}

// ChartByID returns the catalog chart stored under id.
func (r *CatalogRepository) ChartByID(ctx context.Context, id int64) (model.CatalogChart, error) {
	q, args, err := sqlBuilder.Select("id", "song_id", "title", "type", "difficulty", "level", "internal_level").
		From("charts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.CatalogChart{}, err
	}
	var c model.CatalogChart
	err = r.db.QueryRowContext(ctx, q, args...).Scan(
		&c.ID, &c.Chart.SongID, &c.Chart.Title, &c.Chart.Type, &c.Chart.Difficulty, &c.Level, &c.DS)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CatalogChart{}, fmt.Errorf("chart %d: %w", id, ErrNotFound)
	}
	return c, err
}
