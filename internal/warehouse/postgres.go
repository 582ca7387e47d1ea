//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-lakehouse/internal/logging"
)

const catalogTable = "snapshot_catalog"

// PostgresStore materializes snapshots as PostgreSQL tables. A replace
// bulk-loads into a staging table, then swaps it in with a single
// drop-and-rename transaction: readers see the old table or the new
// one, never a partial load. Snapshot metadata lives in a per-schema
// catalog table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store over an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Replace materializes a snapshot under the table's schema and name.
// A failure at any step leaves the previously committed table and its
// catalog row untouched.
func (s *PostgresStore) Replace(ctx context.Context, table Table, snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot for %s", ErrWriteFailure, table)
	}
	codec, err := codecFor(table.Name)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, table, err)
	}
	values, err := codec.encodeAll(snap.rows)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, table, err)
	}

	if err := s.ensureSchema(ctx, table.Schema); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, table, err)
	}

	staging := table.Name + "_staging"
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(
		"DROP TABLE IF EXISTS %s", qualify(table.Schema, staging))); err != nil {
		return fmt.Errorf("%w: dropping stale staging for %s: %v", ErrWriteFailure, table, err)
	}
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(
		"CREATE TABLE %s (%s)", qualify(table.Schema, staging), codec.columnDefs())); err != nil {
		return fmt.Errorf("%w: creating staging for %s: %v", ErrWriteFailure, table, err)
	}

	if _, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{table.Schema, staging},
		codec.columnNames(),
		pgx.CopyFromSlice(len(values), func(i int) ([]any, error) {
			return values[i], nil
		})); err != nil {
		return fmt.Errorf("%w: loading staging for %s: %v", ErrWriteFailure, table, err)
	}

	// The swap and the catalog update commit together.
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, fmt.Sprintf(
			"DROP TABLE IF EXISTS %s", qualify(table.Schema, table.Name))); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf(
			"ALTER TABLE %s RENAME TO %s",
			qualify(table.Schema, staging), pgx.Identifier{table.Name}.Sanitize())); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, fmt.Sprintf(`
            INSERT INTO %s (table_name, batch_id, committed_at, row_count)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (table_name) DO UPDATE
            SET batch_id = EXCLUDED.batch_id,
                committed_at = EXCLUDED.committed_at,
                row_count = EXCLUDED.row_count
        `, qualify(table.Schema, catalogTable)),
			table.Name, snap.BatchID, snap.CommittedAt, snap.Count)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: swapping %s: %v", ErrWriteFailure, table, err)
	}

	logging.Info().
		Str("table", table.String()).
		Str("batch_id", snap.BatchID).
		Int("rows", snap.Count).
		Msg("Committed relation snapshot")
	return nil
}

// Snapshot reads a committed relation back into a typed snapshot.
func (s *PostgresStore) Snapshot(ctx context.Context, table Table) (*Snapshot, error) {
	codec, err := codecFor(table.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, table)
	}

	snap := &Snapshot{}
	err = s.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT batch_id, committed_at FROM %s WHERE table_name = $1
    `, qualify(table.Schema, catalogTable)), table.Name).
		Scan(&snap.BatchID, &snap.CommittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, table)
		}
		// An absent catalog table means nothing was ever committed in
		// this schema.
		return nil, fmt.Errorf("%w: %s", ErrNotFound, table)
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT %s FROM %s",
		codec.columnList(), qualify(table.Schema, table.Name)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	snap.rows, snap.Count, err = codec.scanAll(rows)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", table, err)
	}
	return snap, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context, schema string) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(
		"CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{schema}.Sanitize())); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            table_name   TEXT PRIMARY KEY,
            batch_id     TEXT NOT NULL,
            committed_at TIMESTAMPTZ NOT NULL,
            row_count    BIGINT NOT NULL
        )`, qualify(schema, catalogTable)))
	return err
}

func qualify(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}
