package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scavin/discourse-bilibili-onebox/internal/analytics"
)

// Schema creates the table Postgres writes into.
const Schema = `
	CREATE TABLE IF NOT EXISTS link_resolutions (
		id          BIGSERIAL PRIMARY KEY,
		cache_key   TEXT        NOT NULL,
		target      TEXT        NOT NULL,
		outcome     TEXT        NOT NULL,
		value       TEXT,
		reason      TEXT,
		duration_ms BIGINT      NOT NULL,
		resolved_at TIMESTAMPTZ NOT NULL
	)
`

// Postgres is a PostgreSQL implementation of analytics.Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new PostgreSQL-backed analytics store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the events table when missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, Schema)

	return err
}

func (p *Postgres) SaveResolution(ctx context.Context, event *analytics.ResolutionEvent) error {
	query := `
		INSERT INTO link_resolutions (cache_key, target, outcome, value, reason, duration_ms, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := p.pool.Exec(ctx, query,
		event.Key,
		event.Target,
		event.Outcome,
		nullableString(event.Value),
		nullableString(event.Reason),
		event.DurationMs,
		event.ResolvedAt,
	)

	return err
}

// CountByOutcome returns how many events were recorded for key per outcome.
func (p *Postgres) CountByOutcome(ctx context.Context, key string) (map[string]int64, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT outcome, COUNT(*)
		FROM link_resolutions
		WHERE cache_key = $1
		GROUP BY outcome
	`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)

	for rows.Next() {
		var (
			outcome string
			count   int64
		)

		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, err
		}

		counts[outcome] = count
	}

	return counts, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
