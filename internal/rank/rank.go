//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package rank implements ordered-set primitives used by the refined
// and view layers: dense ranks, competition ranks, percent ranks and
// quintile buckets. All functions operate on a slice already sorted
// into ranking order; ties are detected with a caller-supplied
// equality predicate on adjacent elements.
package rank

// Dense assigns dense ranks to a sorted slice: tied elements share a
// rank and the next distinct element gets rank+1. Ranks start at 1.
func Dense[T any](sorted []T, tied func(a, b T) bool) []int32 {
	ranks := make([]int32, len(sorted))
	rank := int32(0)
	for i := range sorted {
		if i == 0 || !tied(sorted[i-1], sorted[i]) {
			rank++
		}
		ranks[i] = rank
	}
	return ranks
}

// Competition assigns standard competition ranks to a sorted slice:
// tied elements share a rank and the following distinct element skips
// past the tie group. Ranks start at 1.
func Competition[T any](sorted []T, tied func(a, b T) bool) []int32 {
	ranks := make([]int32, len(sorted))
	rank := int32(1)
	for i := range sorted {
		if i > 0 && !tied(sorted[i-1], sorted[i]) {
			rank = int32(i) + 1
		}
		ranks[i] = rank
	}
	return ranks
}

// PercentRank returns the relative rank of position i in a population
// of n, as rank/(n-1). A population of one ranks 0.
func PercentRank(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// Ntile returns the 1-based bucket for position index in a population
// of total split into buckets groups. Earlier buckets receive the
// remainder rows, matching SQL NTILE.
func Ntile(total, buckets, index int) int32 {
	if total <= 0 || buckets <= 0 {
		return 0
	}
	if buckets > total {
		buckets = total
	}
	base := total / buckets
	remainder := total % buckets

	// The first remainder buckets hold base+1 rows.
	boundary := remainder * (base + 1)
	if index < boundary {
		return int32(index/(base+1)) + 1
	}
	return int32(remainder) + int32((index-boundary)/base) + 1
}

// Quintile returns the 1-based quintile for position index in a
// population of total.
func Quintile(total, index int) int32 {
	return Ntile(total, 5, index)
}
