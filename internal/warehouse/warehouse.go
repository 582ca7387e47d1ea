//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse stores committed relation snapshots. A relation is
// only ever replaced wholesale: readers observe either the previous
// complete snapshot or the new complete snapshot, never a partial mix.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a relation has no committed snapshot.
var ErrNotFound = errors.New("relation not found")

// ErrWriteFailure is returned when an atomic replace cannot complete.
// The previous snapshot is always preserved.
var ErrWriteFailure = errors.New("relation write failure")

// Table addresses a relation by namespace (schema) and name.
type Table struct {
	Schema string
	Name   string
}

func (t Table) String() string {
	return t.Schema + "." + t.Name
}

// Snapshot is an immutable committed version of a relation. The row
// slice must not be mutated after the snapshot is constructed.
type Snapshot struct {
	rows        any
	Count       int
	BatchID     string
	CommittedAt time.Time
}

// NewSnapshot wraps a typed row slice into a snapshot.
func NewSnapshot[T any](rows []T, batchID string, committedAt time.Time) *Snapshot {
	return &Snapshot{
		rows:        rows,
		Count:       len(rows),
		BatchID:     batchID,
		CommittedAt: committedAt,
	}
}

// Rows extracts the typed row slice from a snapshot.
func Rows[T any](s *Snapshot) ([]T, error) {
	rows, ok := s.rows.([]T)
	if !ok {
		return nil, fmt.Errorf("snapshot holds %T, not %T", s.rows, []T(nil))
	}
	return rows, nil
}

// Store is a snapshot catalog. Implementations must make Replace atomic
// per table and must never expose a partially written relation.
type Store interface {
	// Replace atomically swaps the committed snapshot for a table.
	Replace(ctx context.Context, table Table, snap *Snapshot) error

	// Snapshot returns the current committed snapshot for a table, or
	// ErrNotFound when the relation has never been committed.
	Snapshot(ctx context.Context, table Table) (*Snapshot, error)
}

// ReadRows loads a table's snapshot and extracts its typed rows.
func ReadRows[T any](ctx context.Context, store Store, table Table) ([]T, error) {
	snap, err := store.Snapshot(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	return Rows[T](snap)
}
