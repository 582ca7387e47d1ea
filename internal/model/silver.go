//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package model

import "time"

// OrderDetail is a silver fact row: one row per order line item,
// denormalized across orders, line items, and parts.
type OrderDetail struct {
	OrderKey      int64
	LineNumber    int32
	CustomerKey   int64
	PartKey       int64
	SupplierKey   int64
	OrderDate     time.Time
	OrderStatus   string
	OrderPriority string
	PartName      string
	PartBrand     string
	PartType      string

	Quantity      float64
	UnitPrice     float64
	ExtendedPrice float64
	DiscountPct   float64
	TaxPct        float64
	NetRevenue    float64
	TaxAmount     float64
	TotalCharge   float64

	ShipDate    time.Time
	CommitDate  time.Time
	ReceiptDate time.Time
	ShipMode    string

	// The delay columns are a stable read contract. ShippingDelayDays
	// measures dispatch latency (ship_date - order_date), not slip
	// against the committed date; the receipt_date - commit_date
	// quantity is CommitSlipDays.
	ShippingDelayDays int32
	// DeliveryDelayDays is receipt_date - ship_date.
	DeliveryDelayDays int32
	// CommitSlipDays is receipt_date - commit_date.
	CommitSlipDays int32
	// IsLateShipment is true when ship_date > commit_date.
	IsLateShipment bool

	ReturnFlag   string
	OrderYear    int32
	OrderMonth   int32
	OrderQuarter int32

	Refined
}

// CustomerOrder is a silver profile row: one row per customer with at
// least one order, carrying RFM scores and a derived segment.
type CustomerOrder struct {
	CustomerKey    int64
	CustomerName   string
	MarketSegment  string
	NationName     string
	RegionName     string
	AccountBalance float64

	TotalOrders   int64
	TotalRevenue  float64
	AvgOrderValue float64

	FirstOrderDate     time.Time
	LastOrderDate      time.Time
	DaysSinceLastOrder int32
	// OrderFrequencyDays is the mean gap between consecutive orders;
	// zero when the customer has a single order.
	OrderFrequencyDays float64

	FulfilledOrders    int64
	OpenOrders         int64
	PartialOrders      int64
	FulfillmentRate    float64
	CustomerTenureDays int32

	// RFM scores are population-rank quintiles, 1 (worst) to 5 (best).
	RecencyScore   int32
	FrequencyScore int32
	MonetaryScore  int32
	Segment        string

	Refined
}

// SupplierPart is a silver catalog row: one row per supplier-part
// combination with cost metrics and regional competitiveness.
type SupplierPart struct {
	SupplierKey     int64
	SupplierName    string
	SupplierNation  string
	SupplierRegion  string
	SupplierAcctBal float64

	PartKey   int64
	PartName  string
	PartBrand string
	PartType  string
	PartSize  int32

	RetailPrice float64
	SupplyCost  float64
	AvailQty    int32

	CostMargin float64
	MarginPct  float64

	// CostRankInRegion is the dense rank of supply cost ascending within
	// the (region, part type) partition; ties share a rank.
	CostRankInRegion   int32
	IsCheapestInRegion bool
	AvgRegionCost      float64
	CostVsRegionAvg    float64

	Refined
}
