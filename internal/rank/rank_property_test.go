//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package rank

import (
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDenseRankProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	sortedGen := gen.SliceOf(gen.IntRange(0, 50)).Map(func(xs []int) []int {
		sort.Sort(sort.Reverse(sort.IntSlice(xs)))
		return xs
	})

	properties.Property("dense ranks are contiguous from 1", prop.ForAll(
		func(sorted []int) bool {
			ranks := Dense(sorted, intTied)
			seen := make(map[int32]bool)
			maxRank := int32(0)
			for _, r := range ranks {
				seen[r] = true
				if r > maxRank {
					maxRank = r
				}
			}
			for r := int32(1); r <= maxRank; r++ {
				if !seen[r] {
					return false
				}
			}
			return len(ranks) == len(sorted)
		},
		sortedGen,
	))

	properties.Property("equal values always share a dense rank", prop.ForAll(
		func(sorted []int) bool {
			ranks := Dense(sorted, intTied)
			for i := 1; i < len(sorted); i++ {
				if sorted[i] == sorted[i-1] && ranks[i] != ranks[i-1] {
					return false
				}
				if sorted[i] != sorted[i-1] && ranks[i] != ranks[i-1]+1 {
					return false
				}
			}
			return true
		},
		sortedGen,
	))

	properties.Property("competition rank never exceeds position plus one", prop.ForAll(
		func(sorted []int) bool {
			ranks := Competition(sorted, intTied)
			for i, r := range ranks {
				if r < 1 || r > int32(i)+1 {
					return false
				}
			}
			return true
		},
		sortedGen,
	))

	properties.Property("quintile sizes differ by at most one", prop.ForAll(
		func(total int) bool {
			counts := make(map[int32]int)
			for i := 0; i < total; i++ {
				counts[Quintile(total, i)]++
			}
			minSize, maxSize := total, 0
			for _, c := range counts {
				if c < minSize {
					minSize = c
				}
				if c > maxSize {
					maxSize = c
				}
			}
			return maxSize-minSize <= 1
		},
		gen.IntRange(1, 500),
	))

	properties.TestingRun(t)
}
