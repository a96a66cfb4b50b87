package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// WorldRow is one generated world as recorded by the server.
type WorldRow struct {
	Seed          string
	CreatedAt     time.Time
	LastOpenedAt  time.Time
	OpenCount     int32
	POICount      int32
	RiverCount    int32
	FallbackEdges int32
}

// WorldStats carries the generation report figures stored per world.
type WorldStats struct {
	POIs          int
	Rivers        int
	FallbackEdges int
}

type WorldRepo struct {
	db *DB
}

func NewWorldRepo(db *DB) *WorldRepo {
	return &WorldRepo{db: db}
}

// Touch records that the world for seed was opened, creating the row on first
// use, and returns the updated row.
func (r *WorldRepo) Touch(ctx context.Context, seed string, stats WorldStats) (*WorldRow, error) {
	w := &WorldRow{}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO worlds (seed, poi_count, river_count, fallback_edges)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (seed) DO UPDATE SET
		     last_opened_at = now(),
		     open_count     = worlds.open_count + 1,
		     poi_count      = EXCLUDED.poi_count,
		     river_count    = EXCLUDED.river_count,
		     fallback_edges = EXCLUDED.fallback_edges
		 RETURNING seed, created_at, last_opened_at, open_count, poi_count, river_count, fallback_edges`,
		seed, stats.POIs, stats.Rivers, stats.FallbackEdges,
	).Scan(&w.Seed, &w.CreatedAt, &w.LastOpenedAt, &w.OpenCount, &w.POICount, &w.RiverCount, &w.FallbackEdges)
	if err != nil {
		return nil, fmt.Errorf("touch world %q: %w", seed, err)
	}
	return w, nil
}

// Load returns the row for seed, or nil if the world was never opened.
func (r *WorldRepo) Load(ctx context.Context, seed string) (*WorldRow, error) {
	w := &WorldRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT seed, created_at, last_opened_at, open_count, poi_count, river_count, fallback_edges
		 FROM worlds WHERE seed = $1`, seed,
	).Scan(&w.Seed, &w.CreatedAt, &w.LastOpenedAt, &w.OpenCount, &w.POICount, &w.RiverCount, &w.FallbackEdges)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load world %q: %w", seed, err)
	}
	return w, nil
}

// RecordWeek replaces the mutator set stored for one ISO week in a single
// transaction.
func (r *WorldRepo) RecordWeek(ctx context.Context, seed string, year, week int, mutators []string) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM world_weeks WHERE seed = $1 AND iso_year = $2 AND iso_week = $3`,
			seed, year, week,
		); err != nil {
			return fmt.Errorf("week clear: %w", err)
		}
		for _, m := range mutators {
			if _, err := tx.Exec(ctx,
				`INSERT INTO world_weeks (seed, iso_year, iso_week, mutator) VALUES ($1, $2, $3, $4)`,
				seed, year, week, m,
			); err != nil {
				return fmt.Errorf("week insert %s: %w", m, err)
			}
		}
		return nil
	})
}

// Week returns the mutators recorded for one ISO week in name order.
func (r *WorldRepo) Week(ctx context.Context, seed string, year, week int) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT mutator FROM world_weeks
		 WHERE seed = $1 AND iso_year = $2 AND iso_week = $3
		 ORDER BY mutator`, seed, year, week,
	)
	if err != nil {
		return nil, fmt.Errorf("query week: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan week: %w", err)
	}
	return names, nil
}
