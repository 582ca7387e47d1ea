//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
	"github.com/pgEdge/pgedge-lakehouse/internal/source"
	"github.com/pgEdge/pgedge-lakehouse/internal/warehouse"
)

func testDeps(src source.Source, store warehouse.Store) Deps {
	return Deps{
		Source:                src,
		Store:                 store,
		BronzeSchema:          "test_lakehouse_bronze",
		SilverSchema:          "test_lakehouse_silver",
		SourceSystem:          "tpch",
		BatchID:               "batch_test_0001",
		AsOf:                  time.Date(1998, 12, 1, 0, 0, 0, 0, time.UTC),
		MaxUnresolvedFraction: 0.05,
		Staleness:             25 * time.Hour,
		Now:                   func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestRegistryHasNamedPipelines(t *testing.T) {
	for _, name := range []string{"sales-analytics", "supplier-analytics", "full"} {
		if _, err := Get(name); err != nil {
			t.Errorf("Expected pipeline %q registered, got %v", name, err)
		}
	}
	if _, err := Get("nope"); err == nil {
		t.Error("Expected error for unknown pipeline")
	}

	names := List()
	if len(names) < 3 {
		t.Errorf("Expected at least 3 pipelines, got %v", names)
	}
}

func TestFullPipelineEndToEnd(t *testing.T) {
	store := warehouse.NewMemoryStore()
	deps := testDeps(source.NewSynthetic(50, 42), store)

	p, err := Get("full")
	if err != nil {
		t.Fatalf("Expected full pipeline, got %v", err)
	}

	summary, err := p.Execute(context.Background(), deps)
	if err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}
	if len(summary.Failed()) != 0 {
		t.Fatalf("Expected no failed stages, got %v", summary.Failed())
	}
	if len(summary.Stages) != 5 {
		t.Fatalf("Expected 5 stages, got %d", len(summary.Stages))
	}

	ctx := context.Background()
	details, err := warehouse.ReadRows[model.OrderDetail](ctx, store,
		warehouse.Table{Schema: deps.SilverSchema, Name: "order_details"})
	if err != nil {
		t.Fatalf("Expected committed order_details, got %v", err)
	}
	if len(details) == 0 {
		t.Fatal("Expected order detail rows")
	}

	customers, err := warehouse.ReadRows[model.CustomerOrder](ctx, store,
		warehouse.Table{Schema: deps.SilverSchema, Name: "customer_orders"})
	if err != nil {
		t.Fatalf("Expected committed customer_orders, got %v", err)
	}
	for _, c := range customers {
		if c.Segment == "" {
			t.Fatalf("Expected segment assigned for customer %d", c.CustomerKey)
		}
	}

	if _, err := warehouse.ReadRows[model.SupplierPart](ctx, store,
		warehouse.Table{Schema: deps.SilverSchema, Name: "supplier_parts"}); err != nil {
		t.Fatalf("Expected committed supplier_parts, got %v", err)
	}
}

func TestPipelineReproducibleAcrossRuns(t *testing.T) {
	run := func() []model.OrderDetail {
		store := warehouse.NewMemoryStore()
		deps := testDeps(source.NewSynthetic(30, 7), store)
		p, _ := Get("sales-analytics")
		if _, err := p.Execute(context.Background(), deps); err != nil {
			t.Fatalf("Expected clean run, got %v", err)
		}
		rows, err := warehouse.ReadRows[model.OrderDetail](context.Background(), store,
			warehouse.Table{Schema: deps.SilverSchema, Name: "order_details"})
		if err != nil {
			t.Fatalf("Expected committed order_details, got %v", err)
		}
		return rows
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("Expected identical row counts, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Expected identical row %d, got %+v vs %+v", i, first[i], second[i])
		}
	}
}

type deadSource struct{ source.Source }

func (deadSource) Orders(ctx context.Context) ([]model.Order, error) {
	return nil, source.ErrUnavailable
}

func TestPipelineFailFastSkipsCriticalStages(t *testing.T) {
	store := warehouse.NewMemoryStore()
	deps := testDeps(deadSource{source.NewSynthetic(10, 7)}, store)

	p, _ := Get("full")
	summary, err := p.Execute(context.Background(), deps)
	if err == nil {
		t.Fatal("Expected error from dead source")
	}
	if !errors.Is(err, source.ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable in chain, got %v", err)
	}

	status := make(map[string]StageStatus)
	for _, st := range summary.Stages {
		status[st.Name] = st.Status
	}
	if status["extract"] != StageFailed {
		t.Errorf("Expected extract failed, got %v", status["extract"])
	}
	for _, name := range []string{"order_details", "customer_orders", "supplier_parts"} {
		if status[name] != StageSkipped {
			t.Errorf("Expected %s skipped, got %v", name, status[name])
		}
	}

	// The validator still runs and reports.
	if status["validate"] != StageFailed {
		t.Errorf("Expected validate to run and fail, got %v", status["validate"])
	}
}
