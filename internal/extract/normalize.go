//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package extract ingests the raw base relations into the bronze
// layer: rows are normalized (null keys dropped, duplicate keys
// collapsed), stamped with lineage and committed as whole snapshots.
package extract

import (
	"github.com/rs/zerolog"
)

// NormalizeStats counts what normalization did to one relation.
type NormalizeStats struct {
	Input      int
	NullKeys   int
	Duplicates int
	Output     int
}

// MarshalZerologObject lets stats be logged as a structured field.
func (s NormalizeStats) MarshalZerologObject(e *zerolog.Event) {
	e.Int("input", s.Input).
		Int("null_keys", s.NullKeys).
		Int("duplicates", s.Duplicates).
		Int("output", s.Output)
}

// Normalize drops rows without a usable primary key and collapses
// duplicate keys, keeping the last occurrence in source order. The
// surviving row sits at the position of the key's first occurrence, so
// output order is stable across runs. key returns the row's primary
// key and whether it is usable.
func Normalize[T any](rows []T, key func(T) (string, bool)) ([]T, NormalizeStats) {
	stats := NormalizeStats{Input: len(rows)}

	out := make([]T, 0, len(rows))
	position := make(map[string]int, len(rows))

	for _, row := range rows {
		k, ok := key(row)
		if !ok {
			stats.NullKeys++
			continue
		}
		if at, seen := position[k]; seen {
			stats.Duplicates++
			out[at] = row
			continue
		}
		position[k] = len(out)
		out = append(out, row)
	}

	stats.Output = len(out)
	return out, stats
}
