//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package source supplies the 8 raw TPC-H base relations to the
// ingestion stage. Sources are read-only: a failed read never affects
// previously committed relations.
package source

import (
	"context"
	"errors"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
)

// ErrUnavailable is returned when the raw source cannot be reached.
var ErrUnavailable = errors.New("source unavailable")

// ErrSchemaMismatch is returned when a source relation does not match
// its declared column contract.
var ErrSchemaMismatch = errors.New("source schema mismatch")

// Source supplies the raw base relations. Implementations must return
// rows in a deterministic order for identical underlying data.
type Source interface {
	Customers(ctx context.Context) ([]model.Customer, error)
	Orders(ctx context.Context) ([]model.Order, error)
	LineItems(ctx context.Context) ([]model.LineItem, error)
	Suppliers(ctx context.Context) ([]model.Supplier, error)
	Parts(ctx context.Context) ([]model.Part, error)
	PartSupps(ctx context.Context) ([]model.PartSupp, error)
	Nations(ctx context.Context) ([]model.Nation, error)
	Regions(ctx context.Context) ([]model.Region, error)
}
