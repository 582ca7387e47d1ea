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
)

// RegionRevenue is one row of the revenue-by-region view: revenue
// grouped by geography, market segment and calendar month.
type RegionRevenue struct {
	Region        string
	Nation        string
	MarketSegment string
	Year          int32
	Quarter       int32
	Month         int32

	OrderCount    int64
	LineCount     int64
	TotalQuantity float64
	TotalRevenue  float64
	AvgRevenue    float64
	AvgDiscount   float64

	LateShipments    int64
	LateShipmentRate float64

	// YoYGrowth compares against the same group and month one year
	// earlier; nil when that month is absent or had zero revenue.
	YoYGrowth *float64

	// RevenueShare is this row's share of all revenue in its
	// (region, year, quarter).
	RevenueShare float64
}

// RevenueByRegion groups order details by customer geography, market
// segment and month. Details whose customer has no silver profile are
// skipped. Output is sorted by (region, nation, segment, year, month).
func RevenueByRegion(details []model.OrderDetail, customers []model.CustomerOrder) []RegionRevenue {
	customerByKey := make(map[int64]model.CustomerOrder, len(customers))
	for _, c := range customers {
		customerByKey[c.CustomerKey] = c
	}

	type groupKey struct {
		region  string
		nation  string
		segment string
		year    int32
		month   int32
	}
	type accum struct {
		orders   map[int64]struct{}
		lines    int64
		quantity float64
		revenue  float64
		discount float64
		late     int64
		quarter  int32
	}

	groups := make(map[groupKey]*accum)
	for _, d := range details {
		c, ok := customerByKey[d.CustomerKey]
		if !ok {
			continue
		}
		k := groupKey{c.RegionName, c.NationName, c.MarketSegment, d.OrderYear, d.OrderMonth}
		g := groups[k]
		if g == nil {
			g = &accum{orders: make(map[int64]struct{}), quarter: d.OrderQuarter}
			groups[k] = g
		}
		g.orders[d.OrderKey] = struct{}{}
		g.lines++
		g.quantity += d.Quantity
		g.revenue += d.NetRevenue
		g.discount += d.DiscountPct
		if d.IsLateShipment {
			g.late++
		}
	}

	out := make([]RegionRevenue, 0, len(groups))
	for k, g := range groups {
		out = append(out, RegionRevenue{
			Region:           k.region,
			Nation:           k.nation,
			MarketSegment:    k.segment,
			Year:             k.year,
			Quarter:          g.quarter,
			Month:            k.month,
			OrderCount:       int64(len(g.orders)),
			LineCount:        g.lines,
			TotalQuantity:    g.quantity,
			TotalRevenue:     round2(g.revenue),
			AvgRevenue:       round2(g.revenue / float64(len(g.orders))),
			AvgDiscount:      round4(g.discount / float64(g.lines)),
			LateShipments:    g.late,
			LateShipmentRate: round4(float64(g.late) / float64(g.lines)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		if a.Nation != b.Nation {
			return a.Nation < b.Nation
		}
		if a.MarketSegment != b.MarketSegment {
			return a.MarketSegment < b.MarketSegment
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	// Year-over-year growth against the same group twelve months back.
	type seriesKey struct {
		region  string
		nation  string
		segment string
		year    int32
		month   int32
	}
	revenueAt := make(map[seriesKey]float64, len(out))
	for _, r := range out {
		revenueAt[seriesKey{r.Region, r.Nation, r.MarketSegment, r.Year, r.Month}] = r.TotalRevenue
	}
	for i := range out {
		r := out[i]
		if prev, ok := revenueAt[seriesKey{r.Region, r.Nation, r.MarketSegment, r.Year - 1, r.Month}]; ok {
			out[i].YoYGrowth = growth(r.TotalRevenue, &prev)
		}
	}

	// Revenue share within (region, year, quarter).
	type shareKey struct {
		region  string
		year    int32
		quarter int32
	}
	totals := make(map[shareKey]float64)
	for _, r := range out {
		totals[shareKey{r.Region, r.Year, r.Quarter}] += r.TotalRevenue
	}
	for i := range out {
		r := out[i]
		if total := totals[shareKey{r.Region, r.Year, r.Quarter}]; total > 0 {
			out[i].RevenueShare = round4(r.TotalRevenue / total)
		}
	}

	return out
}
