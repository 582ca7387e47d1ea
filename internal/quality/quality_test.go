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
	"strings"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
	"github.com/pgEdge/pgedge-lakehouse/internal/warehouse"
)

const (
	testBronze = "test_lakehouse_bronze"
	testSilver = "test_lakehouse_silver"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		BronzeSchema: testBronze,
		SilverSchema: testSilver,
		Staleness:    25 * time.Hour,
		Now:          func() time.Time { return testNow },
	}
}

// seedStore commits a minimal consistent set of bronze and silver
// relations.
func seedStore(t *testing.T) *warehouse.MemoryStore {
	t.Helper()
	store := warehouse.NewMemoryStore()
	ctx := context.Background()
	committedAt := testNow.Add(-time.Hour)

	commit := func(name, schema string, rows any) {
		t.Helper()
		snap := &warehouse.Snapshot{}
		switch typed := rows.(type) {
		case []model.BronzeCustomer:
			snap = warehouse.NewSnapshot(typed, "batch_test", committedAt)
		case []model.BronzeOrder:
			snap = warehouse.NewSnapshot(typed, "batch_test", committedAt)
		case []model.BronzeLineItem:
			snap = warehouse.NewSnapshot(typed, "batch_test", committedAt)
		case []model.BronzeSupplier:
			snap = warehouse.NewSnapshot(typed, "batch_test", committedAt)
		case []model.BronzePart:
			snap = warehouse.NewSnapshot(typed, "batch_test", committedAt)
		case []model.BronzePartSupp:
			snap = warehouse.NewSnapshot(typed, "batch_test", committedAt)
		case []model.BronzeNation:
			snap = warehouse.NewSnapshot(typed, "batch_test", committedAt)
		case []model.BronzeRegion:
			snap = warehouse.NewSnapshot(typed, "batch_test", committedAt)
		case []model.OrderDetail:
			snap = warehouse.NewSnapshot(typed, "batch_test", committedAt)
		case []model.CustomerOrder:
			snap = warehouse.NewSnapshot(typed, "batch_test", committedAt)
		case []model.SupplierPart:
			snap = warehouse.NewSnapshot(typed, "batch_test", committedAt)
		default:
			t.Fatalf("unhandled row type %T", rows)
		}
		table := warehouse.Table{Schema: schema, Name: name}
		if err := store.Replace(ctx, table, snap); err != nil {
			t.Fatalf("seeding %s: %v", table, err)
		}
	}

	commit("customers", testBronze, []model.BronzeCustomer{
		{Customer: model.Customer{CustKey: 1, Name: "c", NationKey: 0}},
	})
	commit("orders", testBronze, []model.BronzeOrder{
		{Order: model.Order{OrderKey: 1, CustKey: 1, OrderStatus: "F"}},
	})
	commit("lineitem", testBronze, []model.BronzeLineItem{
		{LineItem: model.LineItem{OrderKey: 1, PartKey: 1, SuppKey: 1, LineNumber: 1, Quantity: 1, ExtendedPrice: 10}},
	})
	commit("suppliers", testBronze, []model.BronzeSupplier{
		{Supplier: model.Supplier{SuppKey: 1, Name: "s", NationKey: 0}},
	})
	commit("parts", testBronze, []model.BronzePart{
		{Part: model.Part{PartKey: 1, Name: "p", RetailPrice: 10}},
	})
	commit("partsupp", testBronze, []model.BronzePartSupp{
		{PartSupp: model.PartSupp{PartKey: 1, SuppKey: 1, AvailQty: 1, SupplyCost: 5}},
	})
	commit("nation", testBronze, []model.BronzeNation{
		{Nation: model.Nation{NationKey: 0, Name: "ALGERIA", RegionKey: 0}},
	})
	commit("region", testBronze, []model.BronzeRegion{
		{Region: model.Region{RegionKey: 0, Name: "AFRICA"}},
	})

	commit("order_details", testSilver, []model.OrderDetail{
		{OrderKey: 1, LineNumber: 1, CustomerKey: 1, PartKey: 1, SupplierKey: 1,
			Quantity: 1, NetRevenue: 10, DiscountPct: 0.05, TaxPct: 0.08},
	})
	commit("customer_orders", testSilver, []model.CustomerOrder{
		{CustomerKey: 1, TotalOrders: 1, Segment: "Standard",
			RecencyScore: 3, FrequencyScore: 3, MonetaryScore: 3},
	})
	commit("supplier_parts", testSilver, []model.SupplierPart{
		{SupplierKey: 1, PartKey: 1, SupplyCost: 5, RetailPrice: 10},
	})

	return store
}

func resultFor(report *Report, check, relation string) (CheckResult, bool) {
	for _, res := range report.Results {
		if res.Check == check && res.Relation == relation {
			return res, true
		}
	}
	return CheckResult{}, false
}

func TestValidatorAllChecksPass(t *testing.T) {
	store := seedStore(t)
	report := New(store, testConfig()).Run(context.Background())

	if !report.Passed() {
		for _, res := range report.Results {
			if res.Status == StatusFail {
				t.Errorf("Unexpected failure: %s %s (%s)", res.Check, res.Relation, res.Detail)
			}
		}
	}
}

func TestValidatorEmptyRelationFailsRowCount(t *testing.T) {
	store := seedStore(t)
	empty := warehouse.NewSnapshot([]model.BronzeRegion{}, "batch_test", testNow.Add(-time.Hour))
	table := warehouse.Table{Schema: testBronze, Name: "region"}
	if err := store.Replace(context.Background(), table, empty); err != nil {
		t.Fatalf("replacing region: %v", err)
	}

	report := New(store, testConfig()).Run(context.Background())

	res, ok := resultFor(report, "row_count", table.String())
	if !ok || res.Status != StatusFail {
		t.Errorf("Expected row_count failure for empty region, got %+v", res)
	}
}

func TestValidatorDetectsNullCriticalColumns(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	// A zero customer key is the null sentinel for bronze customers.
	bad := warehouse.NewSnapshot([]model.BronzeCustomer{
		{Customer: model.Customer{CustKey: 1, Name: "c", NationKey: 0}},
		{Customer: model.Customer{CustKey: 0, Name: "ghost", NationKey: 0}},
	}, "batch_test", testNow.Add(-time.Hour))
	custTable := warehouse.Table{Schema: testBronze, Name: "customers"}
	if err := store.Replace(ctx, custTable, bad); err != nil {
		t.Fatalf("replacing customers: %v", err)
	}

	// Nation keys are 0-based, so the sentinel there is an empty name.
	unnamed := warehouse.NewSnapshot([]model.BronzeNation{
		{Nation: model.Nation{NationKey: 0, Name: "ALGERIA", RegionKey: 0}},
		{Nation: model.Nation{NationKey: 1, Name: "", RegionKey: 0}},
	}, "batch_test", testNow.Add(-time.Hour))
	nationTable := warehouse.Table{Schema: testBronze, Name: "nation"}
	if err := store.Replace(ctx, nationTable, unnamed); err != nil {
		t.Fatalf("replacing nation: %v", err)
	}

	report := New(store, testConfig()).Run(ctx)

	res, ok := resultFor(report, "critical_columns", custTable.String())
	if !ok {
		t.Fatal("Expected critical_columns result for customers")
	}
	if res.Status != StatusFail || res.Violations != 1 {
		t.Errorf("Expected 1 null-key violation for customers, got %+v", res)
	}

	nationRes, _ := resultFor(report, "critical_columns", nationTable.String())
	if nationRes.Status != StatusFail || nationRes.Violations != 1 {
		t.Errorf("Expected 1 empty-name violation for nation, got %+v", nationRes)
	}

	// Valid zero-based keys are not violations.
	regionRes, _ := resultFor(report, "critical_columns", testBronze+".region")
	if regionRes.Status != StatusPass {
		t.Errorf("Expected region key 0 to pass, got %+v", regionRes)
	}

	// Every relation gets its own independently reported result.
	for _, name := range silverRelations {
		if _, ok := resultFor(report, "critical_columns", testSilver+"."+name); !ok {
			t.Errorf("Expected critical_columns result for %s", name)
		}
	}
}

func TestValidatorDetectsOrphans(t *testing.T) {
	store := seedStore(t)
	orphans := warehouse.NewSnapshot([]model.BronzeOrder{
		{Order: model.Order{OrderKey: 1, CustKey: 1}},
		{Order: model.Order{OrderKey: 2, CustKey: 999}},
	}, "batch_test", testNow.Add(-time.Hour))
	table := warehouse.Table{Schema: testBronze, Name: "orders"}
	if err := store.Replace(context.Background(), table, orphans); err != nil {
		t.Fatalf("replacing orders: %v", err)
	}

	report := New(store, testConfig()).Run(context.Background())

	res, ok := resultFor(report, "fk_customer", table.String())
	if !ok {
		t.Fatal("Expected fk_customer result for orders")
	}
	if res.Status != StatusFail || res.Violations != 1 {
		t.Errorf("Expected 1 orphan violation, got %+v", res)
	}
}

func TestValidatorDetectsStaleSnapshot(t *testing.T) {
	store := seedStore(t)
	stale := warehouse.NewSnapshot([]model.BronzeRegion{
		{Region: model.Region{RegionKey: 0, Name: "AFRICA"}},
	}, "batch_old", testNow.Add(-48*time.Hour))
	table := warehouse.Table{Schema: testBronze, Name: "region"}
	if err := store.Replace(context.Background(), table, stale); err != nil {
		t.Fatalf("replacing region: %v", err)
	}

	report := New(store, testConfig()).Run(context.Background())

	res, ok := resultFor(report, "freshness", table.String())
	if !ok || res.Status != StatusFail {
		t.Errorf("Expected freshness failure for 48h-old snapshot, got %+v", res)
	}

	// Within the window passes.
	fresh, _ := resultFor(report, "freshness", testBronze+".customers")
	if fresh.Status != StatusPass {
		t.Errorf("Expected fresh customers to pass, got %+v", fresh)
	}
}

func TestValidatorBusinessRuleBounds(t *testing.T) {
	store := seedStore(t)
	bad := warehouse.NewSnapshot([]model.OrderDetail{
		{OrderKey: 1, LineNumber: 1, CustomerKey: 1, Quantity: 1, NetRevenue: 10, DiscountPct: 1.5, TaxPct: 0.05},
		{OrderKey: 1, LineNumber: 2, CustomerKey: 1, Quantity: 1, NetRevenue: 10, DiscountPct: 0.05, TaxPct: 0.05},
	}, "batch_test", testNow.Add(-time.Hour))
	table := warehouse.Table{Schema: testSilver, Name: "order_details"}
	if err := store.Replace(context.Background(), table, bad); err != nil {
		t.Fatalf("replacing order_details: %v", err)
	}

	report := New(store, testConfig()).Run(context.Background())

	res, ok := resultFor(report, "discount_in_range", table.String())
	if !ok || res.Status != StatusFail || res.Violations != 1 {
		t.Errorf("Expected 1 discount violation, got %+v", res)
	}
	taxRes, _ := resultFor(report, "tax_in_range", table.String())
	if taxRes.Status != StatusPass {
		t.Errorf("Expected tax check to pass, got %+v", taxRes)
	}
}

func TestValidatorChecksAreIndependent(t *testing.T) {
	// Only bronze committed: silver checks fail but bronze checks
	// still run and pass.
	store := warehouse.NewMemoryStore()
	full := seedStore(t)
	ctx := context.Background()
	for _, name := range bronzeRelations {
		table := warehouse.Table{Schema: testBronze, Name: name}
		snap, err := full.Snapshot(ctx, table)
		if err != nil {
			t.Fatalf("reading seed %s: %v", table, err)
		}
		if err := store.Replace(ctx, table, snap); err != nil {
			t.Fatalf("committing %s: %v", table, err)
		}
	}

	report := New(store, testConfig()).Run(ctx)

	if report.Passed() {
		t.Fatal("Expected failures with silver missing")
	}
	bronzeRes, _ := resultFor(report, "row_count", testBronze+".customers")
	if bronzeRes.Status != StatusPass {
		t.Errorf("Expected bronze row_count to pass, got %+v", bronzeRes)
	}
	silverRes, _ := resultFor(report, "row_count", testSilver+".order_details")
	if silverRes.Status != StatusFail {
		t.Errorf("Expected silver row_count to fail, got %+v", silverRes)
	}
}

func TestReportRender(t *testing.T) {
	store := seedStore(t)
	report := New(store, testConfig()).Run(context.Background())

	var buf strings.Builder
	report.Render(&buf)

	out := buf.String()
	if !strings.Contains(out, "row_count") {
		t.Error("Expected rendered report to list checks")
	}
	if !strings.Contains(out, "checks passed") {
		t.Errorf("Expected summary line, got:\n%s", out)
	}
}
