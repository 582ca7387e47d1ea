//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package views computes the gold analytical projections. Views are
// pure read-time functions over silver rows: no storage, no wall
// clock, bit-for-bit reproducible for unchanged inputs. Metrics that
// can be undefined (growth against a missing or zero baseline, moving
// averages before a full window) are nil pointers, never zero.
package views

import "math"

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func ptr(v float64) *float64 {
	return &v
}

// growth returns (current-baseline)/baseline, or nil when the
// baseline is absent or zero.
func growth(current float64, baseline *float64) *float64 {
	if baseline == nil || *baseline == 0 {
		return nil
	}
	return ptr(round4((current - *baseline) / *baseline))
}
