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
)

// BuildOrderDetails joins line items with their order header and part,
// derives the revenue and delay columns, and drops rows failing the
// base quality gate (non-positive quantity or price). Output is sorted
// by (order key, line number).
func BuildOrderDetails(
	orders []model.BronzeOrder,
	items []model.BronzeLineItem,
	parts []model.BronzePart,
	opts Options,
) ([]model.OrderDetail, JoinStats, error) {
	orderByKey := make(map[int64]model.BronzeOrder, len(orders))
	for _, o := range orders {
		orderByKey[o.OrderKey] = o
	}
	partByKey := make(map[int64]model.BronzePart, len(parts))
	for _, p := range parts {
		partByKey[p.PartKey] = p
	}

	stats := JoinStats{Input: len(items)}
	refined := opts.refined()
	out := make([]model.OrderDetail, 0, len(items))

	for _, li := range items {
		order, okO := orderByKey[li.OrderKey]
		part, okP := partByKey[li.PartKey]
		if !okO || !okP {
			stats.Unresolved++
			continue
		}

		netRevenue := round2(li.ExtendedPrice * (1 - li.Discount))
		if li.Quantity <= 0 || li.ExtendedPrice <= 0 || netRevenue < 0 {
			stats.Filtered++
			continue
		}
		taxAmount := round2(netRevenue * li.Tax)

		out = append(out, model.OrderDetail{
			OrderKey:      li.OrderKey,
			LineNumber:    li.LineNumber,
			CustomerKey:   order.CustKey,
			PartKey:       li.PartKey,
			SupplierKey:   li.SuppKey,
			OrderDate:     order.OrderDate,
			OrderStatus:   order.OrderStatus,
			OrderPriority: order.OrderPriority,
			PartName:      part.Name,
			PartBrand:     part.Brand,
			PartType:      part.Type,

			Quantity:      li.Quantity,
			UnitPrice:     round4(li.ExtendedPrice / li.Quantity),
			ExtendedPrice: li.ExtendedPrice,
			DiscountPct:   li.Discount,
			TaxPct:        li.Tax,
			NetRevenue:    netRevenue,
			TaxAmount:     taxAmount,
			TotalCharge:   round2(netRevenue + taxAmount),

			ShipDate:    li.ShipDate,
			CommitDate:  li.CommitDate,
			ReceiptDate: li.ReceiptDate,
			ShipMode:    li.ShipMode,

			ShippingDelayDays: daysBetween(order.OrderDate, li.ShipDate),
			DeliveryDelayDays: daysBetween(li.ShipDate, li.ReceiptDate),
			CommitSlipDays:    daysBetween(li.CommitDate, li.ReceiptDate),
			IsLateShipment:    li.ShipDate.After(li.CommitDate),

			ReturnFlag:   li.ReturnFlag,
			OrderYear:    int32(order.OrderDate.Year()),
			OrderMonth:   int32(order.OrderDate.Month()),
			OrderQuarter: int32((int(order.OrderDate.Month())-1)/3 + 1),

			Refined: refined,
		})
	}
	stats.Output = len(out)

	if err := stats.check(opts.MaxUnresolvedFraction); err != nil {
		return nil, stats, fmt.Errorf("%w: %d of %d line items (max %.2f)",
			err, stats.Unresolved, stats.Input, opts.MaxUnresolvedFraction)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderKey != out[j].OrderKey {
			return out[i].OrderKey < out[j].OrderKey
		}
		return out[i].LineNumber < out[j].LineNumber
	})

	return out, stats, nil
}
