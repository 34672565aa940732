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

// PlayerRepository stores players and their per-region B50 totals.
type PlayerRepository struct {
	db *sql.DB
}

// NewPlayerRepository creates a PlayerRepository.
func NewPlayerRepository(db *sql.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Ensure returns the player called name, creating it if needed.
func (r *PlayerRepository) Ensure(ctx context.Context, name string) (model.Player, error) {
	defer observe("players.ensure", time.Now())

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO players (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name); err != nil {
		return model.Player{}, fmt.Errorf("ensure player %q: %w", name, err)
	}
	return r.Get(ctx, name)
}

// Get returns the player called name.
func (r *PlayerRepository) Get(ctx context.Context, name string) (model.Player, error) {
	return r.getBy(ctx, squirrel.Eq{"name": name}, name)
}

// GetByID returns the player with the given id.
func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (model.Player, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id}, fmt.Sprint(id))
}

func (r *PlayerRepository) getBy(ctx context.Context, where squirrel.Eq, label string) (model.Player, error) {
	defer observe("players.get", time.Now())

	q, args, err := sqlBuilder.Select("id", "name", "created_at").From("players").Where(where).ToSql()
	if err != nil {
		return model.Player{}, err
	}
	var p model.Player
	err = r.db.QueryRowContext(ctx, q, args...).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Player{}, fmt.Errorf("player %s: %w", label, ErrNotFound)
	}
	return p, err
}

// List returns every player ordered by id.
func (r *PlayerRepository) List(ctx context.Context) ([]model.Player, error) {
	defer observe("players.list", time.Now())

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM players ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Player
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetRating stores a player's B50 total for region, replacing the old one.
func (r *PlayerRepository) SetRating(ctx context.Context, playerID int64, region string, rating int) error {
	defer observe("players.set_rating", time.Now())

	q, args, err := sqlBuilder.Insert("player_ratings").
		Columns("player_id", "region", "rating", "updated_at").
		Values(playerID, region, rating, time.Now().UTC()).
		Suffix("ON CONFLICT (player_id, region) DO UPDATE SET rating = excluded.rating, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	return nil
}

// ClearRating forgets a player's total for region. Clearing a missing total
// is a no-op.
func (r *PlayerRepository) ClearRating(ctx context.Context, playerID int64, region string) error {
	defer observe("players.clear_rating", time.Now())

	q, args, err := sqlBuilder.Delete("player_ratings").
		Where(squirrel.Eq{"player_id": playerID, "region": region}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("clear rating: %w", err)
	}
	return nil
}

// Ratings returns every stored total for region, highest first.
func (r *PlayerRepository) Ratings(ctx context.Context, region string) ([]model.PlayerRating, error) {
	defer observe("players.ratings", time.Now())

	q, args, err := sqlBuilder.Select("pr.player_id", "p.name", "pr.region", "pr.rating", "pr.updated_at").
		From("player_ratings pr").
		Join("players p ON p.id = pr.player_id").
		Where(squirrel.Eq{"pr.region": region}).
		OrderBy("pr.rating DESC", "p.name ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerRating
	for rows.Next() {
		var pr model.PlayerRating
		if err := rows.Scan(&pr.PlayerID, &pr.Player, &pr.Region, &pr.Rating, &pr.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}
