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
	"fmt"
	"sort"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
	"github.com/pgEdge/pgedge-lakehouse/internal/rank"
)

// CLVParams tunes the lifetime-value projection.
type CLVParams struct {
	// HorizonYears is how far out the projection extends.
	HorizonYears float64

	// DaysPerYear converts order frequency into orders per year.
	DaysPerYear float64
}

// DefaultCLVParams projects three years out.
func DefaultCLVParams() CLVParams {
	return CLVParams{HorizonYears: 3, DaysPerYear: 365}
}

// CustomerValue is one row of the customer-lifetime-value view.
type CustomerValue struct {
	CustomerKey   int64
	CustomerName  string
	MarketSegment string
	Nation        string
	Region        string
	RFMSegment    string

	TotalOrders   int64
	TotalRevenue  float64
	AvgOrderValue float64

	// AcquisitionCohort is the calendar quarter of the first order,
	// formatted YYYY-Qn.
	AcquisitionCohort string

	DistinctBrands    int64
	DistinctPartTypes int64
	DistinctShipModes int64
	AvgShippingDelay  float64
	AvgDiscount       float64
	ReturnRate        float64
	TotalTaxPaid      float64

	ProjectedCLV float64

	// RevenuePercentile is the customer's rank by total revenue over
	// the whole population, 0 to 1.
	RevenuePercentile float64
	ValueTier         string
}

// CustomerLifetimeValue enriches each silver customer profile with
// purchasing-behavior metrics from order details and a projected
// lifetime value. Output is sorted by customer key.
func CustomerLifetimeValue(
	customers []model.CustomerOrder,
	details []model.OrderDetail,
	params CLVParams,
) []CustomerValue {
	type behavior struct {
		brands    map[string]struct{}
		partTypes map[string]struct{}
		shipModes map[string]struct{}
		lines     int64
		returned  int64
		shipDelay int64
		discount  float64
		tax       float64
	}

	byCustomer := make(map[int64]*behavior)
	for _, d := range details {
		b := byCustomer[d.CustomerKey]
		if b == nil {
			b = &behavior{
				brands:    make(map[string]struct{}),
				partTypes: make(map[string]struct{}),
				shipModes: make(map[string]struct{}),
			}
			byCustomer[d.CustomerKey] = b
		}
		b.brands[d.PartBrand] = struct{}{}
		b.partTypes[d.PartType] = struct{}{}
		b.shipModes[d.ShipMode] = struct{}{}
		b.lines++
		if d.ReturnFlag == "R" {
			b.returned++
		}
		b.shipDelay += int64(d.ShippingDelayDays)
		b.discount += d.DiscountPct
		b.tax += d.TaxAmount
	}

	out := make([]CustomerValue, 0, len(customers))
	for _, c := range customers {
		first := c.FirstOrderDate
		row := CustomerValue{
			CustomerKey:   c.CustomerKey,
			CustomerName:  c.CustomerName,
			MarketSegment: c.MarketSegment,
			Nation:        c.NationName,
			Region:        c.RegionName,
			RFMSegment:    c.Segment,
			TotalOrders:   c.TotalOrders,
			TotalRevenue:  c.TotalRevenue,
			AvgOrderValue: c.AvgOrderValue,
			AcquisitionCohort: fmt.Sprintf("%d-Q%d",
				first.Year(), (int(first.Month())-1)/3+1),
			ProjectedCLV: projectCLV(c, params),
		}
		if b := byCustomer[c.CustomerKey]; b != nil {
			row.DistinctBrands = int64(len(b.brands))
			row.DistinctPartTypes = int64(len(b.partTypes))
			row.DistinctShipModes = int64(len(b.shipModes))
			row.AvgShippingDelay = round2(float64(b.shipDelay) / float64(b.lines))
			row.AvgDiscount = round4(b.discount / float64(b.lines))
			row.ReturnRate = round4(float64(b.returned) / float64(b.lines))
			row.TotalTaxPaid = round2(b.tax)
		}
		out = append(out, row)
	}

	// Percentile over ascending revenue, customer key as tie-break so
	// the full order is total.
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool {
		a, b := out[order[x]], out[order[y]]
		if a.TotalRevenue != b.TotalRevenue {
			return a.TotalRevenue < b.TotalRevenue
		}
		return a.CustomerKey < b.CustomerKey
	})
	for pos, i := range order {
		p := round4(rank.PercentRank(pos, len(order)))
		out[i].RevenuePercentile = p
		out[i].ValueTier = valueTier(p)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CustomerKey < out[j].CustomerKey
	})
	return out
}

// projectCLV estimates revenue over the projection horizon from the
// observed order cadence. A single-order customer projects at one
// order per year.
func projectCLV(c model.CustomerOrder, params CLVParams) float64 {
	ordersPerYear := 1.0
	if c.TotalOrders >= 2 && c.OrderFrequencyDays > 0 {
		ordersPerYear = params.DaysPerYear / c.OrderFrequencyDays
	}
	return round2(c.AvgOrderValue * ordersPerYear * params.HorizonYears)
}

func valueTier(percentile float64) string {
	switch {
	case percentile >= 0.9:
		return "Platinum"
	case percentile >= 0.7:
		return "Gold"
	case percentile >= 0.4:
		return "Silver"
	default:
		return "Bronze"
	}
}
