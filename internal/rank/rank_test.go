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
	"reflect"
	"testing"
)

func intTied(a, b int) bool { return a == b }

func TestDense(t *testing.T) {
	tests := []struct {
		name   string
		sorted []int
		want   []int32
	}{
		{
			name:   "no ties",
			sorted: []int{30, 20, 10},
			want:   []int32{1, 2, 3},
		},
		{
			name:   "ties share rank and next is rank plus one",
			sorted: []int{50, 40, 40, 30},
			want:   []int32{1, 2, 2, 3},
		},
		{
			name:   "all tied",
			sorted: []int{7, 7, 7},
			want:   []int32{1, 1, 1},
		},
		{
			name:   "empty",
			sorted: nil,
			want:   []int32{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dense(tt.sorted, intTied)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected ranks %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCompetition(t *testing.T) {
	tests := []struct {
		name   string
		sorted []int
		want   []int32
	}{
		{
			name:   "no ties",
			sorted: []int{30, 20, 10},
			want:   []int32{1, 2, 3},
		},
		{
			name:   "ties skip following ranks",
			sorted: []int{50, 40, 40, 30},
			want:   []int32{1, 2, 2, 4},
		},
		{
			name:   "leading tie",
			sorted: []int{9, 9, 5},
			want:   []int32{1, 1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Competition(tt.sorted, intTied)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected ranks %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPercentRank(t *testing.T) {
	tests := []struct {
		name  string
		i, n  int
		want  float64
	}{
		{"first of many", 0, 5, 0},
		{"last of many", 4, 5, 1},
		{"middle", 2, 5, 0.5},
		{"single row", 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentRank(tt.i, tt.n)
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNtileBucketSizes(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		buckets int
		sizes   []int
	}{
		{"even split", 10, 5, []int{2, 2, 2, 2, 2}},
		{"remainder goes to early buckets", 12, 5, []int{3, 3, 2, 2, 2}},
		{"fewer rows than buckets", 3, 5, []int{1, 1, 1}},
		{"single bucket", 4, 1, []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts := make(map[int32]int)
			for i := 0; i < tt.total; i++ {
				b := Ntile(tt.total, tt.buckets, i)
				if b < 1 {
					t.Fatalf("Expected bucket >= 1, got %d at index %d", b, i)
				}
				counts[b]++
			}
			for bi, want := range tt.sizes {
				if counts[int32(bi+1)] != want {
					t.Errorf("Expected bucket %d size %d, got %d", bi+1, want, counts[int32(bi+1)])
				}
			}
		})
	}
}

func TestNtileMonotonic(t *testing.T) {
	prev := int32(0)
	for i := 0; i < 17; i++ {
		b := Quintile(17, i)
		if b < prev {
			t.Fatalf("Expected non-decreasing buckets, got %d after %d at index %d", b, prev, i)
		}
		prev = b
	}
	if prev != 5 {
		t.Errorf("Expected last bucket 5, got %d", prev)
	}
}
