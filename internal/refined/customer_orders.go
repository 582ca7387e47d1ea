//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package refined

import (
	"fmt"
	"sort"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
	"github.com/pgEdge/pgedge-lakehouse/internal/rank"
)

// BuildCustomerOrders aggregates orders and order details into one
// profile row per customer with at least one order, then scores the
// population with RFM quintiles and assigns a segment. Output is
// sorted by customer key.
func BuildCustomerOrders(
	customers []model.BronzeCustomer,
	orders []model.BronzeOrder,
	details []model.OrderDetail,
	nations []model.BronzeNation,
	regions []model.BronzeRegion,
	opts Options,
) ([]model.CustomerOrder, JoinStats, error) {
	customerByKey := make(map[int64]model.BronzeCustomer, len(customers))
	for _, c := range customers {
		customerByKey[c.CustKey] = c
	}
	geo := newGeography(nations, regions)

	revenueByCustomer := make(map[int64]float64)
	for _, d := range details {
		revenueByCustomer[d.CustomerKey] += d.NetRevenue
	}

	stats := JoinStats{Input: len(orders)}
	ordersByCustomer := make(map[int64][]model.BronzeOrder)
	for _, o := range orders {
		if _, ok := customerByKey[o.CustKey]; !ok {
			stats.Unresolved++
			continue
		}
		ordersByCustomer[o.CustKey] = append(ordersByCustomer[o.CustKey], o)
	}

	refined := opts.refined()
	out := make([]model.CustomerOrder, 0, len(ordersByCustomer))

	for custKey, custOrders := range ordersByCustomer {
		customer := customerByKey[custKey]
		nation, region, ok := geo.lookup(customer.NationKey)
		if !ok {
			stats.Unresolved += len(custOrders)
			continue
		}

		row := model.CustomerOrder{
			CustomerKey:    custKey,
			CustomerName:   customer.Name,
			MarketSegment:  customer.MktSegment,
			NationName:     nation,
			RegionName:     region,
			AccountBalance: customer.AcctBal,
			TotalOrders:    int64(len(custOrders)),
			FirstOrderDate: custOrders[0].OrderDate,
			LastOrderDate:  custOrders[0].OrderDate,
			Refined:        refined,
		}

		for _, o := range custOrders {
			if o.OrderDate.Before(row.FirstOrderDate) {
				row.FirstOrderDate = o.OrderDate
			}
			if o.OrderDate.After(row.LastOrderDate) {
				row.LastOrderDate = o.OrderDate
			}
			switch o.OrderStatus {
			case "F":
				row.FulfilledOrders++
			case "O":
				row.OpenOrders++
			case "P":
				row.PartialOrders++
			}
		}

		row.TotalRevenue = round2(revenueByCustomer[custKey])
		row.AvgOrderValue = round2(row.TotalRevenue / float64(row.TotalOrders))
		row.FulfillmentRate = round4(float64(row.FulfilledOrders) / float64(row.TotalOrders))
		row.DaysSinceLastOrder = daysBetween(row.LastOrderDate, opts.AsOf)
		row.CustomerTenureDays = daysBetween(row.FirstOrderDate, opts.AsOf)
		if row.TotalOrders >= 2 {
			row.OrderFrequencyDays = round2(
				float64(daysBetween(row.FirstOrderDate, row.LastOrderDate)) /
					float64(row.TotalOrders-1))
		}

		out = append(out, row)
	}
	stats.Output = len(out)

	if err := stats.check(opts.MaxUnresolvedFraction); err != nil {
		return nil, stats, fmt.Errorf("%w: %d of %d orders (max %.2f)",
			err, stats.Unresolved, stats.Input, opts.MaxUnresolvedFraction)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CustomerKey < out[j].CustomerKey
	})

	scoreRFM(out)
	for i := range out {
		out[i].Segment = segmentFor(out[i].RecencyScore, out[i].FrequencyScore, out[i].MonetaryScore)
	}

	return out, stats, nil
}

// scoreRFM assigns population-rank quintile scores, 5 best. Ties break
// on ascending customer key so scoring is deterministic.
func scoreRFM(rows []model.CustomerOrder) {
	n := len(rows)

	score := func(better func(a, b *model.CustomerOrder) bool, assign func(r *model.CustomerOrder, s int32)) {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(x, y int) bool {
			a, b := &rows[order[x]], &rows[order[y]]
			if better(a, b) {
				return true
			}
			if better(b, a) {
				return false
			}
			return a.CustomerKey < b.CustomerKey
		})
		for pos, i := range order {
			assign(&rows[i], 6-rank.Quintile(n, pos))
		}
	}

	score(func(a, b *model.CustomerOrder) bool {
		return a.DaysSinceLastOrder < b.DaysSinceLastOrder
	}, func(r *model.CustomerOrder, s int32) { r.RecencyScore = s })

	score(func(a, b *model.CustomerOrder) bool {
		return a.TotalOrders > b.TotalOrders
	}, func(r *model.CustomerOrder, s int32) { r.FrequencyScore = s })

	score(func(a, b *model.CustomerOrder) bool {
		return a.TotalRevenue > b.TotalRevenue
	}, func(r *model.CustomerOrder, s int32) { r.MonetaryScore = s })
}

// segmentFor maps RFM scores to a named segment. Rules are evaluated
// top to bottom, first match wins.
func segmentFor(r, f, m int32) string {
	switch {
	case r == 5 && f >= 4 && m >= 4:
		return "Champions"
	case r >= 4 && f >= 3:
		return "Loyal Customers"
	case m == 5 && f <= 2:
		return "Big Spenders"
	case r >= 4 && f <= 2 && m <= 3:
		return "Potential Loyalists"
	case r <= 2 && f >= 4 && m >= 4:
		return "Cannot Lose Them"
	case r <= 2 && f >= 3:
		return "At Risk"
	default:
		return "Standard"
	}
}
