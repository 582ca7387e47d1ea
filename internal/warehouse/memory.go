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
	"fmt"
	"sync"
)

// MemoryStore is an in-process snapshot catalog. Replace swaps an
// immutable snapshot pointer under a lock, so concurrent readers always
// see a complete relation.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[Table]*Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[Table]*Snapshot),
	}
}

// Replace atomically swaps the committed snapshot for a table.
func (s *MemoryStore) Replace(ctx context.Context, table Table, snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot for %s", ErrWriteFailure, table)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, table, err)
	}

	s.mu.Lock()
	s.tables[table] = snap
	s.mu.Unlock()
	return nil
}

// Snapshot returns the current committed snapshot for a table.
func (s *MemoryStore) Snapshot(ctx context.Context, table Table) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	snap, ok := s.tables[table]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, table)
	}
	return snap, nil
}

// Tables returns the addresses of all committed relations.
func (s *MemoryStore) Tables() []Table {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := make([]Table, 0, len(s.tables))
	for t := range s.tables {
		tables = append(tables, t)
	}
	return tables
}
