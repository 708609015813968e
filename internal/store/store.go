// Package store persists fetched inventory rows to Postgres so runs can be
// compared and re-exported later. Entirely optional: the batch loop only
// writes snapshots when a database URL is configured.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"sanmar-inventory/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS inventory_snapshots (
	id              BIGSERIAL PRIMARY KEY,
	run_at          TIMESTAMPTZ NOT NULL,
	backend         TEXT        NOT NULL,
	style           TEXT        NOT NULL,
	part_id         TEXT        NOT NULL DEFAULT '',
	color           TEXT        NOT NULL DEFAULT '',
	size            TEXT        NOT NULL DEFAULT '',
	description     TEXT        NOT NULL DEFAULT '',
	warehouse_id    TEXT        NOT NULL,
	warehouse       TEXT        NOT NULL,
	qty             INTEGER     NOT NULL,
	total_available INTEGER,
	price           NUMERIC(12,2)
);
CREATE INDEX IF NOT EXISTS inventory_snapshots_style_run_idx
	ON inventory_snapshots (style, run_at DESC);
`

// Store wraps a Postgres pool holding inventory snapshots.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database, verifies the connection, and creates the
// snapshot table on first use.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure snapshot schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// SaveRows inserts one snapshot row per canonical row under a shared run
// timestamp.
func (s *Store) SaveRows(ctx context.Context, runAt time.Time, backend string, rows []core.Row) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		_, err := tx.Exec(ctx, `
			INSERT INTO inventory_snapshots
				(run_at, backend, style, part_id, color, size, description,
				 warehouse_id, warehouse, qty, total_available, price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, runAt, backend, row.Style, row.PartID, row.Color, row.Size, row.Description,
			row.WarehouseID, row.Warehouse, row.Qty, row.TotalAvailable, row.Price)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot row for %s: %w", row.Style, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LatestRows returns the rows of the most recent run for a style, in
// insertion order.
func (s *Store) LatestRows(ctx context.Context, style string) ([]core.Row, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT style, part_id, color, size, description,
		       warehouse_id, warehouse, qty, total_available, price
		FROM inventory_snapshots
		WHERE style = $1
		  AND run_at = (SELECT MAX(run_at) FROM inventory_snapshots WHERE style = $1)
		ORDER BY id
	`, style)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []core.Row
	for rows.Next() {
		var r core.Row
		var total *int
		var price *decimal.Decimal
		if err := rows.Scan(&r.Style, &r.PartID, &r.Color, &r.Size, &r.Description,
			&r.WarehouseID, &r.Warehouse, &r.Qty, &total, &price); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		r.TotalAvailable = total
		r.Price = price
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	return out, nil
}
