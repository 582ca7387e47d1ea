//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
)

// A codec maps one relation's row struct onto its PostgreSQL table.
// Column order must match the struct's field order because reads scan
// by position.
type codec interface {
	columnNames() []string
	columnDefs() string
	columnList() string
	encodeAll(rows any) ([][]any, error)
	scanAll(rows pgx.Rows) (any, int, error)
}

type column struct {
	name    string
	sqlType string
}

type tableCodec[T any] struct {
	cols   []column
	encode func(T) []any
}

func newCodec[T any](cols []column, encode func(T) []any) *tableCodec[T] {
	return &tableCodec[T]{cols: cols, encode: encode}
}

func (c *tableCodec[T]) columnNames() []string {
	names := make([]string, len(c.cols))
	for i, col := range c.cols {
		names[i] = col.name
	}
	return names
}

func (c *tableCodec[T]) columnDefs() string {
	defs := make([]string, len(c.cols))
	for i, col := range c.cols {
		defs[i] = col.name + " " + col.sqlType
	}
	return strings.Join(defs, ", ")
}

func (c *tableCodec[T]) columnList() string {
	return strings.Join(c.columnNames(), ", ")
}

func (c *tableCodec[T]) encodeAll(rows any) ([][]any, error) {
	typed, ok := rows.([]T)
	if !ok {
		return nil, fmt.Errorf("codec expects %T, got %T", []T(nil), rows)
	}
	values := make([][]any, len(typed))
	for i, row := range typed {
		values[i] = c.encode(row)
	}
	return values, nil
}

func (c *tableCodec[T]) scanAll(rows pgx.Rows) (any, int, error) {
	typed, err := pgx.CollectRows(rows, pgx.RowToStructByPos[T])
	if err != nil {
		return nil, 0, err
	}
	return typed, len(typed), nil
}

func codecFor(tableName string) (codec, error) {
	c, ok := codecs[tableName]
	if !ok {
		return nil, fmt.Errorf("no codec for relation %q", tableName)
	}
	return c, nil
}

var lineageCols = []column{
	{"ingested_at", "TIMESTAMPTZ NOT NULL"},
	{"source_system", "TEXT NOT NULL"},
	{"batch_id", "TEXT NOT NULL"},
}

var refinedCols = []column{
	{"refined_at", "TIMESTAMPTZ NOT NULL"},
	{"batch_id", "TEXT NOT NULL"},
}

func withLineage(cols []column) []column {
	return append(cols, lineageCols...)
}

func withRefined(cols []column) []column {
	return append(cols, refinedCols...)
}

var codecs = map[string]codec{
	"customers": newCodec(withLineage([]column{
		{"c_custkey", "BIGINT NOT NULL"},
		{"c_name", "TEXT NOT NULL"},
		{"c_address", "TEXT NOT NULL"},
		{"c_nationkey", "BIGINT NOT NULL"},
		{"c_phone", "TEXT NOT NULL"},
		{"c_acctbal", "DOUBLE PRECISION NOT NULL"},
		{"c_mktsegment", "TEXT NOT NULL"},
		{"c_comment", "TEXT"},
	}), func(c model.BronzeCustomer) []any {
		return []any{c.CustKey, c.Name, c.Address, c.NationKey, c.Phone,
			c.AcctBal, c.MktSegment, c.Comment,
			c.IngestedAt, c.SourceSystem, c.BatchID}
	}),

	"orders": newCodec(withLineage([]column{
		{"o_orderkey", "BIGINT NOT NULL"},
		{"o_custkey", "BIGINT NOT NULL"},
		{"o_orderstatus", "TEXT NOT NULL"},
		{"o_totalprice", "DOUBLE PRECISION NOT NULL"},
		{"o_orderdate", "DATE NOT NULL"},
		{"o_orderpriority", "TEXT NOT NULL"},
		{"o_clerk", "TEXT NOT NULL"},
		{"o_shippriority", "INTEGER NOT NULL"},
		{"o_comment", "TEXT"},
	}), func(o model.BronzeOrder) []any {
		return []any{o.OrderKey, o.CustKey, o.OrderStatus, o.TotalPrice, o.OrderDate,
			o.OrderPriority, o.Clerk, o.ShipPriority, o.Comment,
			o.IngestedAt, o.SourceSystem, o.BatchID}
	}),

	"lineitem": newCodec(withLineage([]column{
		{"l_orderkey", "BIGINT NOT NULL"},
		{"l_partkey", "BIGINT NOT NULL"},
		{"l_suppkey", "BIGINT NOT NULL"},
		{"l_linenumber", "INTEGER NOT NULL"},
		{"l_quantity", "DOUBLE PRECISION NOT NULL"},
		{"l_extendedprice", "DOUBLE PRECISION NOT NULL"},
		{"l_discount", "DOUBLE PRECISION NOT NULL"},
		{"l_tax", "DOUBLE PRECISION NOT NULL"},
		{"l_returnflag", "TEXT NOT NULL"},
		{"l_linestatus", "TEXT NOT NULL"},
		{"l_shipdate", "DATE NOT NULL"},
		{"l_commitdate", "DATE NOT NULL"},
		{"l_receiptdate", "DATE NOT NULL"},
		{"l_shipinstruct", "TEXT NOT NULL"},
		{"l_shipmode", "TEXT NOT NULL"},
		{"l_comment", "TEXT"},
	}), func(li model.BronzeLineItem) []any {
		return []any{li.OrderKey, li.PartKey, li.SuppKey, li.LineNumber, li.Quantity,
			li.ExtendedPrice, li.Discount, li.Tax, li.ReturnFlag, li.LineStatus,
			li.ShipDate, li.CommitDate, li.ReceiptDate, li.ShipInstruct,
			li.ShipMode, li.Comment,
			li.IngestedAt, li.SourceSystem, li.BatchID}
	}),

	"suppliers": newCodec(withLineage([]column{
		{"s_suppkey", "BIGINT NOT NULL"},
		{"s_name", "TEXT NOT NULL"},
		{"s_address", "TEXT NOT NULL"},
		{"s_nationkey", "BIGINT NOT NULL"},
		{"s_phone", "TEXT NOT NULL"},
		{"s_acctbal", "DOUBLE PRECISION NOT NULL"},
		{"s_comment", "TEXT"},
	}), func(s model.BronzeSupplier) []any {
		return []any{s.SuppKey, s.Name, s.Address, s.NationKey, s.Phone,
			s.AcctBal, s.Comment,
			s.IngestedAt, s.SourceSystem, s.BatchID}
	}),

	"parts": newCodec(withLineage([]column{
		{"p_partkey", "BIGINT NOT NULL"},
		{"p_name", "TEXT NOT NULL"},
		{"p_mfgr", "TEXT NOT NULL"},
		{"p_brand", "TEXT NOT NULL"},
		{"p_type", "TEXT NOT NULL"},
		{"p_size", "INTEGER NOT NULL"},
		{"p_container", "TEXT NOT NULL"},
		{"p_retailprice", "DOUBLE PRECISION NOT NULL"},
		{"p_comment", "TEXT"},
	}), func(p model.BronzePart) []any {
		return []any{p.PartKey, p.Name, p.Mfgr, p.Brand, p.Type, p.Size,
			p.Container, p.RetailPrice, p.Comment,
			p.IngestedAt, p.SourceSystem, p.BatchID}
	}),

	"partsupp": newCodec(withLineage([]column{
		{"ps_partkey", "BIGINT NOT NULL"},
		{"ps_suppkey", "BIGINT NOT NULL"},
		{"ps_availqty", "INTEGER NOT NULL"},
		{"ps_supplycost", "DOUBLE PRECISION NOT NULL"},
		{"ps_comment", "TEXT"},
	}), func(ps model.BronzePartSupp) []any {
		return []any{ps.PartKey, ps.SuppKey, ps.AvailQty, ps.SupplyCost, ps.Comment,
			ps.IngestedAt, ps.SourceSystem, ps.BatchID}
	}),

	"nation": newCodec(withLineage([]column{
		{"n_nationkey", "BIGINT NOT NULL"},
		{"n_name", "TEXT NOT NULL"},
		{"n_regionkey", "BIGINT NOT NULL"},
		{"n_comment", "TEXT"},
	}), func(n model.BronzeNation) []any {
		return []any{n.NationKey, n.Name, n.RegionKey, n.Comment,
			n.IngestedAt, n.SourceSystem, n.BatchID}
	}),

	"region": newCodec(withLineage([]column{
		{"r_regionkey", "BIGINT NOT NULL"},
		{"r_name", "TEXT NOT NULL"},
		{"r_comment", "TEXT"},
	}), func(r model.BronzeRegion) []any {
		return []any{r.RegionKey, r.Name, r.Comment,
			r.IngestedAt, r.SourceSystem, r.BatchID}
	}),

	"order_details": newCodec(withRefined([]column{
		{"order_key", "BIGINT NOT NULL"},
		{"line_number", "INTEGER NOT NULL"},
		{"customer_key", "BIGINT NOT NULL"},
		{"part_key", "BIGINT NOT NULL"},
		{"supplier_key", "BIGINT NOT NULL"},
		{"order_date", "DATE NOT NULL"},
		{"order_status", "TEXT NOT NULL"},
		{"order_priority", "TEXT NOT NULL"},
		{"part_name", "TEXT NOT NULL"},
		{"part_brand", "TEXT NOT NULL"},
		{"part_type", "TEXT NOT NULL"},
		{"quantity", "DOUBLE PRECISION NOT NULL"},
		{"unit_price", "DOUBLE PRECISION NOT NULL"},
		{"extended_price", "DOUBLE PRECISION NOT NULL"},
		{"discount_pct", "DOUBLE PRECISION NOT NULL"},
		{"tax_pct", "DOUBLE PRECISION NOT NULL"},
		{"net_revenue", "DOUBLE PRECISION NOT NULL"},
		{"tax_amount", "DOUBLE PRECISION NOT NULL"},
		{"total_charge", "DOUBLE PRECISION NOT NULL"},
		{"ship_date", "DATE NOT NULL"},
		{"commit_date", "DATE NOT NULL"},
		{"receipt_date", "DATE NOT NULL"},
		{"ship_mode", "TEXT NOT NULL"},
		{"shipping_delay_days", "INTEGER NOT NULL"},
		{"delivery_delay_days", "INTEGER NOT NULL"},
		{"commit_slip_days", "INTEGER NOT NULL"},
		{"is_late_shipment", "BOOLEAN NOT NULL"},
		{"return_flag", "TEXT NOT NULL"},
		{"order_year", "INTEGER NOT NULL"},
		{"order_month", "INTEGER NOT NULL"},
		{"order_quarter", "INTEGER NOT NULL"},
	}), func(d model.OrderDetail) []any {
		return []any{d.OrderKey, d.LineNumber, d.CustomerKey, d.PartKey, d.SupplierKey,
			d.OrderDate, d.OrderStatus, d.OrderPriority,
			d.PartName, d.PartBrand, d.PartType,
			d.Quantity, d.UnitPrice, d.ExtendedPrice, d.DiscountPct, d.TaxPct,
			d.NetRevenue, d.TaxAmount, d.TotalCharge,
			d.ShipDate, d.CommitDate, d.ReceiptDate, d.ShipMode,
			d.ShippingDelayDays, d.DeliveryDelayDays, d.CommitSlipDays, d.IsLateShipment,
			d.ReturnFlag, d.OrderYear, d.OrderMonth, d.OrderQuarter,
			d.RefinedAt, d.BatchID}
	}),

	"customer_orders": newCodec(withRefined([]column{
		{"customer_key", "BIGINT NOT NULL"},
		{"customer_name", "TEXT NOT NULL"},
		{"market_segment", "TEXT NOT NULL"},
		{"nation_name", "TEXT NOT NULL"},
		{"region_name", "TEXT NOT NULL"},
		{"account_balance", "DOUBLE PRECISION NOT NULL"},
		{"total_orders", "BIGINT NOT NULL"},
		{"total_revenue", "DOUBLE PRECISION NOT NULL"},
		{"avg_order_value", "DOUBLE PRECISION NOT NULL"},
		{"first_order_date", "DATE NOT NULL"},
		{"last_order_date", "DATE NOT NULL"},
		{"days_since_last_order", "INTEGER NOT NULL"},
		{"order_frequency_days", "DOUBLE PRECISION NOT NULL"},
		{"fulfilled_orders", "BIGINT NOT NULL"},
		{"open_orders", "BIGINT NOT NULL"},
		{"partial_orders", "BIGINT NOT NULL"},
		{"fulfillment_rate", "DOUBLE PRECISION NOT NULL"},
		{"customer_tenure_days", "INTEGER NOT NULL"},
		{"recency_score", "INTEGER NOT NULL"},
		{"frequency_score", "INTEGER NOT NULL"},
		{"monetary_score", "INTEGER NOT NULL"},
		{"segment", "TEXT NOT NULL"},
	}), func(c model.CustomerOrder) []any {
		return []any{c.CustomerKey, c.CustomerName, c.MarketSegment,
			c.NationName, c.RegionName, c.AccountBalance,
			c.TotalOrders, c.TotalRevenue, c.AvgOrderValue,
			c.FirstOrderDate, c.LastOrderDate, c.DaysSinceLastOrder, c.OrderFrequencyDays,
			c.FulfilledOrders, c.OpenOrders, c.PartialOrders, c.FulfillmentRate,
			c.CustomerTenureDays,
			c.RecencyScore, c.FrequencyScore, c.MonetaryScore, c.Segment,
			c.RefinedAt, c.BatchID}
	}),

	"supplier_parts": newCodec(withRefined([]column{
		{"supplier_key", "BIGINT NOT NULL"},
		{"supplier_name", "TEXT NOT NULL"},
		{"supplier_nation", "TEXT NOT NULL"},
		{"supplier_region", "TEXT NOT NULL"},
		{"supplier_acctbal", "DOUBLE PRECISION NOT NULL"},
		{"part_key", "BIGINT NOT NULL"},
		{"part_name", "TEXT NOT NULL"},
		{"part_brand", "TEXT NOT NULL"},
		{"part_type", "TEXT NOT NULL"},
		{"part_size", "INTEGER NOT NULL"},
		{"retail_price", "DOUBLE PRECISION NOT NULL"},
		{"supply_cost", "DOUBLE PRECISION NOT NULL"},
		{"avail_qty", "INTEGER NOT NULL"},
		{"cost_margin", "DOUBLE PRECISION NOT NULL"},
		{"margin_pct", "DOUBLE PRECISION NOT NULL"},
		{"cost_rank_in_region", "INTEGER NOT NULL"},
		{"is_cheapest_in_region", "BOOLEAN NOT NULL"},
		{"avg_region_cost", "DOUBLE PRECISION NOT NULL"},
		{"cost_vs_region_avg", "DOUBLE PRECISION NOT NULL"},
	}), func(sp model.SupplierPart) []any {
		return []any{sp.SupplierKey, sp.SupplierName, sp.SupplierNation,
			sp.SupplierRegion, sp.SupplierAcctBal,
			sp.PartKey, sp.PartName, sp.PartBrand, sp.PartType, sp.PartSize,
			sp.RetailPrice, sp.SupplyCost, sp.AvailQty,
			sp.CostMargin, sp.MarginPct,
			sp.CostRankInRegion, sp.IsCheapestInRegion,
			sp.AvgRegionCost, sp.CostVsRegionAvg,
			sp.RefinedAt, sp.BatchID}
	}),
}
