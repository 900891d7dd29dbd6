// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking. Only the optional publish stage talks to
// Postgres; the pipeline itself is file-based.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/champions-data/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection. The schema must
	// exist first or preparing the upsert fails.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, Schema); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Schema creates the publish table when missing.
const Schema = `
CREATE TABLE IF NOT EXISTS ` + config.HeroCooccurrenceTable + ` (
	hero_code             TEXT PRIMARY KEY,
	hero_name             TEXT NOT NULL,
	total_decks           INTEGER NOT NULL,
	total_weighted_decks  DOUBLE PRECISION NOT NULL,
	most_recent_deck_date DATE NOT NULL,
	payload               JSONB NOT NULL,
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Prepared statement names.
const (
	StmtUpsertHeroCooccurrence = "upsert_hero_cooccurrence"
)

// registerPreparedStatements registers every statement the publish stage
// uses. Prepared statements eliminate parse overhead on every row.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Publish: one row per canonical hero, fully replaced on rerun
		StmtUpsertHeroCooccurrence: `
			INSERT INTO ` + config.HeroCooccurrenceTable + ` (
				hero_code, hero_name, total_decks, total_weighted_decks,
				most_recent_deck_date, payload
			) VALUES ($1, $2, $3, $4, $5::date, $6)
			ON CONFLICT (hero_code) DO UPDATE SET
				hero_name = EXCLUDED.hero_name,
				total_decks = EXCLUDED.total_decks,
				total_weighted_decks = EXCLUDED.total_weighted_decks,
				most_recent_deck_date = EXCLUDED.most_recent_deck_date,
				payload = EXCLUDED.payload,
				updated_at = NOW()`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
