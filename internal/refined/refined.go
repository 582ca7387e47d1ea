//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package refined builds the silver relations from committed bronze
// snapshots. Builders are pure functions: identical inputs produce
// identical outputs, in a stable sorted order. Join misses are dropped
// and counted; a miss fraction above the configured threshold aborts
// the build.
package refined

import (
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
)

// ErrUnresolvedJoins is returned when the fraction of rows dropped for
// unresolved foreign keys exceeds the configured threshold.
var ErrUnresolvedJoins = errors.New("unresolved join fraction above threshold")

// Options configures a silver build.
type Options struct {
	// AsOf anchors recency and tenure computations. Builders never read
	// the wall clock.
	AsOf time.Time

	// MaxUnresolvedFraction is the tolerated fraction of input rows
	// dropped for unresolved joins before the build aborts.
	MaxUnresolvedFraction float64

	// BatchID and RefinedAt are stamped onto every output row.
	BatchID   string
	RefinedAt time.Time
}

func (o Options) refined() model.Refined {
	return model.Refined{RefinedAt: o.RefinedAt, BatchID: o.BatchID}
}

// JoinStats counts what a silver build did with its input rows.
type JoinStats struct {
	Input      int
	Unresolved int
	Filtered   int
	Output     int
}

// UnresolvedFraction is the share of input rows dropped for join
// misses.
func (s JoinStats) UnresolvedFraction() float64 {
	if s.Input == 0 {
		return 0
	}
	return float64(s.Unresolved) / float64(s.Input)
}

// MarshalZerologObject lets stats be logged as a structured field.
func (s JoinStats) MarshalZerologObject(e *zerolog.Event) {
	e.Int("input", s.Input).
		Int("unresolved", s.Unresolved).
		Int("filtered", s.Filtered).
		Int("output", s.Output)
}

func (s JoinStats) check(max float64) error {
	if f := s.UnresolvedFraction(); f > max {
		return ErrUnresolvedJoins
	}
	return nil
}

// geography resolves nation keys to nation and region names.
type geography struct {
	nation map[int64]string
	region map[int64]string
}

func newGeography(nations []model.BronzeNation, regions []model.BronzeRegion) geography {
	regionByKey := make(map[int64]string, len(regions))
	for _, r := range regions {
		regionByKey[r.RegionKey] = r.Name
	}

	g := geography{
		nation: make(map[int64]string, len(nations)),
		region: make(map[int64]string, len(nations)),
	}
	for _, n := range nations {
		g.nation[n.NationKey] = n.Name
		g.region[n.NationKey] = regionByKey[n.RegionKey]
	}
	return g
}

// lookup returns nation and region names for a nation key. Both names
// must resolve for the join to count as resolved.
func (g geography) lookup(nationKey int64) (nation, region string, ok bool) {
	nation, okN := g.nation[nationKey]
	region, okR := g.region[nationKey]
	if region == "" {
		okR = false
	}
	return nation, region, okN && okR
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// daysBetween returns whole days from a to b. Inputs are date values
// at UTC midnight.
func daysBetween(a, b time.Time) int32 {
	return int32(b.Sub(a) / (24 * time.Hour))
}
