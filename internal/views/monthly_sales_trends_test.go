//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package views

import (
	"math"
	"testing"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
)

// monthDetail builds one order detail worth revenue in a given month.
func monthDetail(orderKey int64, year, month int32, revenue float64) model.OrderDetail {
	return model.OrderDetail{
		OrderKey:    orderKey,
		LineNumber:  1,
		CustomerKey: orderKey,
		PartKey:     1,
		SupplierKey: 1,
		NetRevenue:  revenue,
		Quantity:    1,
		OrderYear:   year,
		OrderMonth:  month,
	}
}

// flatSeries returns numMonths consecutive months starting 1997-01,
// each with a single line of the given revenue.
func flatSeries(numMonths int, revenue float64) []model.OrderDetail {
	var details []model.OrderDetail
	for i := 0; i < numMonths; i++ {
		year := int32(1997 + i/12)
		month := int32(i%12 + 1)
		details = append(details, monthDetail(int64(i+1), year, month, revenue))
	}
	return details
}

func TestMonthlySalesTrendsMovingAverageWindows(t *testing.T) {
	out := MonthlySalesTrends(flatSeries(14, 100))
	if len(out) != 14 {
		t.Fatalf("Expected 14 months, got %d", len(out))
	}

	for i, r := range out {
		if i+1 < 3 && r.MovingAvg3 != nil {
			t.Errorf("Expected nil 3-month MA at index %d", i)
		}
		if i+1 >= 3 && (r.MovingAvg3 == nil || *r.MovingAvg3 != 100) {
			t.Errorf("Expected 3-month MA 100 at index %d, got %v", i, r.MovingAvg3)
		}
		if i+1 < 12 && r.MovingAvg12 != nil {
			t.Errorf("Expected nil 12-month MA before a full year at index %d", i)
		}
		if i+1 >= 12 && (r.MovingAvg12 == nil || *r.MovingAvg12 != 100) {
			t.Errorf("Expected 12-month MA 100 at index %d, got %v", i, r.MovingAvg12)
		}
	}

	// Seasonal index only exists with a full 12-month window; flat
	// revenue makes it 1.
	if out[10].SeasonalIndex != nil {
		t.Error("Expected nil seasonal index before a full year")
	}
	if out[11].SeasonalIndex == nil || *out[11].SeasonalIndex != 1 {
		t.Errorf("Expected seasonal index 1, got %v", out[11].SeasonalIndex)
	}
}

func TestMonthlySalesTrendsGrowth(t *testing.T) {
	details := []model.OrderDetail{
		monthDetail(1, 1997, 1, 100),
		monthDetail(2, 1997, 2, 150),
		monthDetail(3, 1998, 2, 300),
	}

	out := MonthlySalesTrends(details)
	if len(out) != 3 {
		t.Fatalf("Expected 3 months, got %d", len(out))
	}

	if out[0].MoMGrowth != nil {
		t.Error("Expected nil MoM for first month")
	}
	if out[1].MoMGrowth == nil || math.Abs(*out[1].MoMGrowth-0.5) > 1e-9 {
		t.Errorf("Expected MoM 0.5, got %v", out[1].MoMGrowth)
	}
	if out[0].YoYGrowth != nil || out[1].YoYGrowth != nil {
		t.Error("Expected nil YoY without a prior year")
	}

	// 1998-02 vs 1997-02: 300 vs 150. The gap in the series does not
	// matter for the calendar lookup.
	if out[2].YoYGrowth == nil || math.Abs(*out[2].YoYGrowth-1.0) > 1e-9 {
		t.Errorf("Expected YoY 1.0, got %v", out[2].YoYGrowth)
	}
}

func TestMonthlySalesTrendsYTDResetsPerYear(t *testing.T) {
	details := []model.OrderDetail{
		monthDetail(1, 1997, 11, 100),
		monthDetail(2, 1997, 12, 100),
		monthDetail(3, 1998, 1, 50),
	}

	out := MonthlySalesTrends(details)
	if out[0].YTDRevenue != 100 || out[1].YTDRevenue != 200 {
		t.Errorf("Expected YTD 100/200 in 1997, got %v/%v", out[0].YTDRevenue, out[1].YTDRevenue)
	}
	if out[2].YTDRevenue != 50 {
		t.Errorf("Expected YTD reset to 50 in 1998, got %v", out[2].YTDRevenue)
	}
}

func TestMonthlySalesTrendsRevenueRankInYear(t *testing.T) {
	details := []model.OrderDetail{
		monthDetail(1, 1997, 1, 100),
		monthDetail(2, 1997, 2, 300),
		monthDetail(3, 1997, 3, 300),
		monthDetail(4, 1997, 4, 50),
	}

	out := MonthlySalesTrends(details)
	ranks := make(map[int32]int32)
	for _, r := range out {
		ranks[r.Month] = r.RevenueRankInYear
	}

	// Tied months share rank 1 and the next rank skips.
	if ranks[2] != 1 || ranks[3] != 1 || ranks[1] != 3 || ranks[4] != 4 {
		t.Errorf("Expected ranks feb:1 mar:1 jan:3 apr:4, got %v", ranks)
	}
}

func TestMonthlySalesTrendsGrowthAcceleration(t *testing.T) {
	details := []model.OrderDetail{
		monthDetail(1, 1997, 1, 100),
		monthDetail(2, 1997, 2, 200),
		monthDetail(3, 1997, 3, 220),
	}

	out := MonthlySalesTrends(details)
	if out[0].GrowthAcceleration != nil || out[1].GrowthAcceleration != nil {
		t.Error("Expected nil acceleration before two growth points")
	}

	// MoM feb = 1.0, MoM mar = 0.1.
	if out[2].GrowthAcceleration == nil || math.Abs(*out[2].GrowthAcceleration-(-0.9)) > 1e-9 {
		t.Errorf("Expected acceleration -0.9, got %v", out[2].GrowthAcceleration)
	}
}

func TestMonthlySalesTrendsDistinctCountsAndReturns(t *testing.T) {
	details := []model.OrderDetail{
		{OrderKey: 1, LineNumber: 1, CustomerKey: 5, SupplierKey: 2, PartKey: 9, NetRevenue: 10, OrderYear: 1997, OrderMonth: 1, ReturnFlag: "R"},
		{OrderKey: 1, LineNumber: 2, CustomerKey: 5, SupplierKey: 3, PartKey: 9, NetRevenue: 10, OrderYear: 1997, OrderMonth: 1, ReturnFlag: "N"},
		{OrderKey: 2, LineNumber: 1, CustomerKey: 6, SupplierKey: 2, PartKey: 8, NetRevenue: 10, OrderYear: 1997, OrderMonth: 1, ReturnFlag: "A"},
	}

	out := MonthlySalesTrends(details)
	if len(out) != 1 {
		t.Fatalf("Expected 1 month, got %d", len(out))
	}

	m := out[0]
	if m.OrderCount != 2 || m.LineCount != 3 {
		t.Errorf("Expected 2 orders / 3 lines, got %d / %d", m.OrderCount, m.LineCount)
	}
	if m.DistinctCustomers != 2 || m.DistinctSuppliers != 2 || m.DistinctParts != 2 {
		t.Errorf("Expected distinct 2/2/2, got %d/%d/%d",
			m.DistinctCustomers, m.DistinctSuppliers, m.DistinctParts)
	}
	if m.ReturnedLines != 1 {
		t.Errorf("Expected 1 returned line, got %d", m.ReturnedLines)
	}
}

func TestMonthlySalesTrendsReproducible(t *testing.T) {
	details := flatSeries(20, 100)
	first := MonthlySalesTrends(details)
	second := MonthlySalesTrends(details)

	if len(first) != len(second) {
		t.Fatalf("Expected identical lengths, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Year != b.Year || a.Month != b.Month || a.TotalRevenue != b.TotalRevenue ||
			a.RevenueRankInYear != b.RevenueRankInYear {
			t.Fatalf("Expected identical row %d, got %+v vs %+v", i, a, b)
		}
	}
}
