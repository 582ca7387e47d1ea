//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package quality

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
	"github.com/pgEdge/pgedge-lakehouse/internal/warehouse"
)

// keySet loads a relation and collects a key column into a set. A
// missing snapshot yields an empty, non-nil set and is reported by the
// row-count check, not here.
func keySet[T any](ctx context.Context, store warehouse.Store, table warehouse.Table, key func(T) int64) map[int64]struct{} {
	set := make(map[int64]struct{})
	rows, err := warehouse.ReadRows[T](ctx, store, table)
	if err != nil {
		return set
	}
	for _, r := range rows {
		set[key(r)] = struct{}{}
	}
	return set
}

// orphanCheck counts rows whose foreign key misses the parent set.
func orphanCheck[T any](
	ctx context.Context,
	store warehouse.Store,
	table warehouse.Table,
	check string,
	parents map[int64]struct{},
	fk func(T) int64,
) CheckResult {
	res := CheckResult{Check: check, Relation: table.String(), Status: StatusPass}

	rows, err := warehouse.ReadRows[T](ctx, store, table)
	if err != nil {
		res.Status = StatusFail
		res.Detail = "no committed snapshot"
		return res
	}

	for _, r := range rows {
		if _, ok := parents[fk(r)]; !ok {
			res.Violations++
		}
	}
	if res.Violations > 0 {
		res.Status = StatusFail
		res.Detail = fmt.Sprintf("%d orphaned rows", res.Violations)
	}
	return res
}

func (v *Validator) checkOrphans(ctx context.Context) []CheckResult {
	customers := keySet(ctx, v.store, v.bronzeTable("customers"),
		func(c model.BronzeCustomer) int64 { return c.CustKey })
	orders := keySet(ctx, v.store, v.bronzeTable("orders"),
		func(o model.BronzeOrder) int64 { return o.OrderKey })
	suppliers := keySet(ctx, v.store, v.bronzeTable("suppliers"),
		func(s model.BronzeSupplier) int64 { return s.SuppKey })
	parts := keySet(ctx, v.store, v.bronzeTable("parts"),
		func(p model.BronzePart) int64 { return p.PartKey })
	nations := keySet(ctx, v.store, v.bronzeTable("nation"),
		func(n model.BronzeNation) int64 { return n.NationKey })
	regions := keySet(ctx, v.store, v.bronzeTable("region"),
		func(r model.BronzeRegion) int64 { return r.RegionKey })

	return []CheckResult{
		orphanCheck(ctx, v.store, v.bronzeTable("orders"), "fk_customer",
			customers, func(o model.BronzeOrder) int64 { return o.CustKey }),
		orphanCheck(ctx, v.store, v.bronzeTable("lineitem"), "fk_order",
			orders, func(li model.BronzeLineItem) int64 { return li.OrderKey }),
		orphanCheck(ctx, v.store, v.bronzeTable("lineitem"), "fk_part",
			parts, func(li model.BronzeLineItem) int64 { return li.PartKey }),
		orphanCheck(ctx, v.store, v.bronzeTable("lineitem"), "fk_supplier",
			suppliers, func(li model.BronzeLineItem) int64 { return li.SuppKey }),
		orphanCheck(ctx, v.store, v.bronzeTable("partsupp"), "fk_part",
			parts, func(ps model.BronzePartSupp) int64 { return ps.PartKey }),
		orphanCheck(ctx, v.store, v.bronzeTable("partsupp"), "fk_supplier",
			suppliers, func(ps model.BronzePartSupp) int64 { return ps.SuppKey }),
		orphanCheck(ctx, v.store, v.bronzeTable("customers"), "fk_nation",
			nations, func(c model.BronzeCustomer) int64 { return c.NationKey }),
		orphanCheck(ctx, v.store, v.bronzeTable("suppliers"), "fk_nation",
			nations, func(s model.BronzeSupplier) int64 { return s.NationKey }),
		orphanCheck(ctx, v.store, v.bronzeTable("nation"), "fk_region",
			regions, func(n model.BronzeNation) int64 { return n.RegionKey }),

		orphanCheck(ctx, v.store, v.silverTable("order_details"), "fk_customer",
			customers, func(d model.OrderDetail) int64 { return d.CustomerKey }),
		orphanCheck(ctx, v.store, v.silverTable("customer_orders"), "fk_customer",
			customers, func(c model.CustomerOrder) int64 { return c.CustomerKey }),
		orphanCheck(ctx, v.store, v.silverTable("supplier_parts"), "fk_supplier",
			suppliers, func(sp model.SupplierPart) int64 { return sp.SupplierKey }),
	}
}

// criticalCheck counts rows whose critical columns carry the type's
// null sentinel. Ingestion normalizes these away, so a violation here
// means a relation was committed outside the normalizer.
func criticalCheck[T any](
	ctx context.Context,
	store warehouse.Store,
	table warehouse.Table,
	unusable func(T) bool,
) CheckResult {
	res := CheckResult{Check: "critical_columns", Relation: table.String(), Status: StatusPass}

	rows, err := warehouse.ReadRows[T](ctx, store, table)
	if err != nil {
		res.Status = StatusFail
		res.Detail = "no committed snapshot"
		return res
	}

	for _, r := range rows {
		if unusable(r) {
			res.Violations++
		}
	}
	if res.Violations > 0 {
		res.Status = StatusFail
		res.Detail = fmt.Sprintf("%d rows with null critical columns", res.Violations)
	}
	return res
}

// checkCriticalColumns applies the same key predicates ingestion uses
// to every committed relation, one result per relation. Nation and
// region keys are 0-based, so their sentinel is an empty name.
func (v *Validator) checkCriticalColumns(ctx context.Context) []CheckResult {
	return []CheckResult{
		criticalCheck(ctx, v.store, v.bronzeTable("customers"),
			func(c model.BronzeCustomer) bool { return c.CustKey <= 0 }),
		criticalCheck(ctx, v.store, v.bronzeTable("orders"),
			func(o model.BronzeOrder) bool { return o.OrderKey <= 0 || o.CustKey <= 0 }),
		criticalCheck(ctx, v.store, v.bronzeTable("lineitem"),
			func(li model.BronzeLineItem) bool { return li.OrderKey <= 0 || li.LineNumber <= 0 }),
		criticalCheck(ctx, v.store, v.bronzeTable("suppliers"),
			func(s model.BronzeSupplier) bool { return s.SuppKey <= 0 }),
		criticalCheck(ctx, v.store, v.bronzeTable("parts"),
			func(p model.BronzePart) bool { return p.PartKey <= 0 }),
		criticalCheck(ctx, v.store, v.bronzeTable("partsupp"),
			func(ps model.BronzePartSupp) bool { return ps.PartKey <= 0 || ps.SuppKey <= 0 }),
		criticalCheck(ctx, v.store, v.bronzeTable("nation"),
			func(n model.BronzeNation) bool { return n.NationKey < 0 || n.Name == "" }),
		criticalCheck(ctx, v.store, v.bronzeTable("region"),
			func(r model.BronzeRegion) bool { return r.RegionKey < 0 || r.Name == "" }),

		criticalCheck(ctx, v.store, v.silverTable("order_details"),
			func(d model.OrderDetail) bool {
				return d.OrderKey <= 0 || d.LineNumber <= 0 || d.CustomerKey <= 0
			}),
		criticalCheck(ctx, v.store, v.silverTable("customer_orders"),
			func(c model.CustomerOrder) bool { return c.CustomerKey <= 0 }),
		criticalCheck(ctx, v.store, v.silverTable("supplier_parts"),
			func(sp model.SupplierPart) bool { return sp.SupplierKey <= 0 || sp.PartKey <= 0 }),
	}
}

// ruleCheck counts rows violating a predicate.
func ruleCheck[T any](
	ctx context.Context,
	store warehouse.Store,
	table warehouse.Table,
	check string,
	violates func(T) bool,
) CheckResult {
	res := CheckResult{Check: check, Relation: table.String(), Status: StatusPass}

	rows, err := warehouse.ReadRows[T](ctx, store, table)
	if err != nil {
		res.Status = StatusFail
		res.Detail = "no committed snapshot"
		return res
	}

	for _, r := range rows {
		if violates(r) {
			res.Violations++
		}
	}
	if res.Violations > 0 {
		res.Status = StatusFail
		res.Detail = fmt.Sprintf("%d rows out of bounds", res.Violations)
	}
	return res
}

func (v *Validator) checkBusinessRules(ctx context.Context) []CheckResult {
	details := v.silverTable("order_details")
	customers := v.silverTable("customer_orders")

	inScoreRange := func(s int32) bool { return s >= 1 && s <= 5 }

	return []CheckResult{
		ruleCheck(ctx, v.store, details, "revenue_non_negative",
			func(d model.OrderDetail) bool { return d.NetRevenue < 0 }),
		ruleCheck(ctx, v.store, details, "quantity_positive",
			func(d model.OrderDetail) bool { return d.Quantity <= 0 }),
		ruleCheck(ctx, v.store, details, "discount_in_range",
			func(d model.OrderDetail) bool { return d.DiscountPct < 0 || d.DiscountPct > 1 }),
		ruleCheck(ctx, v.store, details, "tax_in_range",
			func(d model.OrderDetail) bool { return d.TaxPct < 0 || d.TaxPct > 1 }),
		ruleCheck(ctx, v.store, customers, "segment_assigned",
			func(c model.CustomerOrder) bool { return c.Segment == "" }),
		ruleCheck(ctx, v.store, customers, "rfm_scores_in_range",
			func(c model.CustomerOrder) bool {
				return !inScoreRange(c.RecencyScore) ||
					!inScoreRange(c.FrequencyScore) ||
					!inScoreRange(c.MonetaryScore)
			}),
	}
}
