//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package model declares the typed row schemas for every relation the
// lakehouse produces: the 8 raw TPC-H base relations, their bronze
// (normalized) counterparts, and the silver (business-enriched) relations.
package model

import "time"

// Lineage is stamped onto every bronze row during ingestion.
type Lineage struct {
	IngestedAt   time.Time
	SourceSystem string
	BatchID      string
}

// Refined is stamped onto every silver row during transformation.
type Refined struct {
	RefinedAt time.Time
	BatchID   string
}

// Customer is a raw customer dimension row.
type Customer struct {
	CustKey    int64
	Name       string
	Address    string
	NationKey  int64
	Phone      string
	AcctBal    float64
	MktSegment string
	Comment    string
}

// Order is a raw order header row.
type Order struct {
	OrderKey      int64
	CustKey       int64
	OrderStatus   string
	TotalPrice    float64
	OrderDate     time.Time
	OrderPriority string
	Clerk         string
	ShipPriority  int32
	Comment       string
}

// LineItem is a raw order line row. (OrderKey, LineNumber) is unique.
type LineItem struct {
	OrderKey      int64
	PartKey       int64
	SuppKey       int64
	LineNumber    int32
	Quantity      float64
	ExtendedPrice float64
	Discount      float64
	Tax           float64
	ReturnFlag    string
	LineStatus    string
	ShipDate      time.Time
	CommitDate    time.Time
	ReceiptDate   time.Time
	ShipInstruct  string
	ShipMode      string
	Comment       string
}

// Supplier is a raw supplier dimension row.
type Supplier struct {
	SuppKey   int64
	Name      string
	Address   string
	NationKey int64
	Phone     string
	AcctBal   float64
	Comment   string
}

// Part is a raw part dimension row.
type Part struct {
	PartKey     int64
	Name        string
	Mfgr        string
	Brand       string
	Type        string
	Size        int32
	Container   string
	RetailPrice float64
	Comment     string
}

// PartSupp is a raw part-supplier bridge row. (PartKey, SuppKey) is unique.
type PartSupp struct {
	PartKey    int64
	SuppKey    int64
	AvailQty   int32
	SupplyCost float64
	Comment    string
}

// Nation is a raw nation reference row.
type Nation struct {
	NationKey int64
	Name      string
	RegionKey int64
	Comment   string
}

// Region is a raw region reference row.
type Region struct {
	RegionKey int64
	Name      string
	Comment   string
}

// Bronze rows are normalized raw rows with lineage attached.

type BronzeCustomer struct {
	Customer
	Lineage
}

type BronzeOrder struct {
	Order
	Lineage
}

type BronzeLineItem struct {
	LineItem
	Lineage
}

type BronzeSupplier struct {
	Supplier
	Lineage
}

type BronzePart struct {
	Part
	Lineage
}

type BronzePartSupp struct {
	PartSupp
	Lineage
}

type BronzeNation struct {
	Nation
	Lineage
}

type BronzeRegion struct {
	Region
	Lineage
}
