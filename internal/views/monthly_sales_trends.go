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
	"sort"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
	"github.com/pgEdge/pgedge-lakehouse/internal/rank"
)

// MonthlyTrend is one row of the monthly-sales-trends view: a month of
// the sales series with windowed growth metrics.
type MonthlyTrend struct {
	Year  int32
	Month int32

	OrderCount        int64
	LineCount         int64
	TotalRevenue      float64
	TotalQuantity     float64
	DistinctCustomers int64
	DistinctSuppliers int64
	DistinctParts     int64
	ReturnedLines     int64
	ReturnRate        float64

	// MoMGrowth compares against the previous row in the series;
	// YoYGrowth against the same calendar month one year earlier.
	// Both are nil when the baseline is absent or zero.
	MoMGrowth *float64
	YoYGrowth *float64

	// Trailing moving averages include the current month and are nil
	// until a full window exists.
	MovingAvg3  *float64
	MovingAvg6  *float64
	MovingAvg12 *float64

	// YTDRevenue accumulates within the calendar year.
	YTDRevenue float64

	// SeasonalIndex is this month's revenue over the trailing
	// 12-month average.
	SeasonalIndex *float64

	// GrowthAcceleration is the change in MoM growth between
	// consecutive months.
	GrowthAcceleration *float64

	// RevenueRankInYear ranks revenue descending within the calendar
	// year; ties share a rank.
	RevenueRankInYear int32
}

// MonthlySalesTrends aggregates order details into a chronological
// monthly series with growth, moving-average and seasonality metrics.
func MonthlySalesTrends(details []model.OrderDetail) []MonthlyTrend {
	type monthKey struct {
		year  int32
		month int32
	}
	type accum struct {
		orders    map[int64]struct{}
		customers map[int64]struct{}
		suppliers map[int64]struct{}
		parts     map[int64]struct{}
		lines     int64
		revenue   float64
		quantity  float64
		returned  int64
	}

	months := make(map[monthKey]*accum)
	for _, d := range details {
		k := monthKey{d.OrderYear, d.OrderMonth}
		m := months[k]
		if m == nil {
			m = &accum{
				orders:    make(map[int64]struct{}),
				customers: make(map[int64]struct{}),
				suppliers: make(map[int64]struct{}),
				parts:     make(map[int64]struct{}),
			}
			months[k] = m
		}
		m.orders[d.OrderKey] = struct{}{}
		m.customers[d.CustomerKey] = struct{}{}
		m.suppliers[d.SupplierKey] = struct{}{}
		m.parts[d.PartKey] = struct{}{}
		m.lines++
		m.revenue += d.NetRevenue
		m.quantity += d.Quantity
		if d.ReturnFlag == "R" {
			m.returned++
		}
	}

	out := make([]MonthlyTrend, 0, len(months))
	for k, m := range months {
		out = append(out, MonthlyTrend{
			Year:              k.year,
			Month:             k.month,
			OrderCount:        int64(len(m.orders)),
			LineCount:         m.lines,
			TotalRevenue:      round2(m.revenue),
			TotalQuantity:     m.quantity,
			DistinctCustomers: int64(len(m.customers)),
			DistinctSuppliers: int64(len(m.suppliers)),
			DistinctParts:     int64(len(m.parts)),
			ReturnedLines:     m.returned,
			ReturnRate:        round4(float64(m.returned) / float64(m.lines)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})

	revenueAt := make(map[monthKey]float64, len(out))
	for _, r := range out {
		revenueAt[monthKey{r.Year, r.Month}] = r.TotalRevenue
	}

	var ytd float64
	for i := range out {
		r := &out[i]

		if i > 0 {
			prev := out[i-1].TotalRevenue
			r.MoMGrowth = growth(r.TotalRevenue, &prev)
		}
		if prevYear, ok := revenueAt[monthKey{r.Year - 1, r.Month}]; ok {
			r.YoYGrowth = growth(r.TotalRevenue, &prevYear)
		}

		r.MovingAvg3 = trailingAvg(out, i, 3)
		r.MovingAvg6 = trailingAvg(out, i, 6)
		r.MovingAvg12 = trailingAvg(out, i, 12)

		if i == 0 || out[i-1].Year != r.Year {
			ytd = 0
		}
		ytd += r.TotalRevenue
		r.YTDRevenue = round2(ytd)

		if r.MovingAvg12 != nil && *r.MovingAvg12 != 0 {
			r.SeasonalIndex = ptr(round4(r.TotalRevenue / *r.MovingAvg12))
		}
		if r.MoMGrowth != nil && out[i-1].MoMGrowth != nil {
			r.GrowthAcceleration = ptr(round4(*r.MoMGrowth - *out[i-1].MoMGrowth))
		}
	}

	rankWithinYears(out)
	return out
}

// trailingAvg averages revenue over the window ending at index i, or
// nil when fewer than window rows precede it.
func trailingAvg(series []MonthlyTrend, i, window int) *float64 {
	if i+1 < window {
		return nil
	}
	var sum float64
	for j := i - window + 1; j <= i; j++ {
		sum += series[j].TotalRevenue
	}
	return ptr(round2(sum / float64(window)))
}

func rankWithinYears(series []MonthlyTrend) {
	byYear := make(map[int32][]int)
	for i, r := range series {
		byYear[r.Year] = append(byYear[r.Year], i)
	}
	for _, members := range byYear {
		sort.SliceStable(members, func(x, y int) bool {
			a, b := series[members[x]], series[members[y]]
			if a.TotalRevenue != b.TotalRevenue {
				return a.TotalRevenue > b.TotalRevenue
			}
			return a.Month < b.Month
		})
		ranks := rank.Competition(members, func(x, y int) bool {
			return series[x].TotalRevenue == series[y].TotalRevenue
		})
		for pos, i := range members {
			series[i].RevenueRankInYear = ranks[pos]
		}
	}
}
