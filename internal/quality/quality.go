//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package quality validates committed bronze and silver relations
// after a pipeline run. Checks are independent and always all
// evaluated; a failure is reported, never rolled back.
package quality

import (
	"context"
	"time"

	"github.com/pgEdge/pgedge-lakehouse/internal/warehouse"
)

// Status is the outcome of a single check on a single relation.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// CheckResult is one check evaluated against one relation.
type CheckResult struct {
	Check      string
	Relation   string
	Status     Status
	Violations int64
	Detail     string
}

// Report is the full outcome of a validation run.
type Report struct {
	RunAt   time.Time
	Results []CheckResult
}

// Failed returns the number of failing results.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusFail {
			n++
		}
	}
	return n
}

// Passed reports whether every check passed.
func (r *Report) Passed() bool {
	return r.Failed() == 0
}

// Config configures a Validator.
type Config struct {
	BronzeSchema string
	SilverSchema string

	// Staleness is the maximum age of a committed snapshot before the
	// freshness check fails.
	Staleness time.Duration

	// Now supplies the validation reference time. Defaults to
	// time.Now.
	Now func() time.Time
}

// Validator evaluates the quality checks against a warehouse.
type Validator struct {
	store  warehouse.Store
	bronze string
	silver string
	window time.Duration
	now    func() time.Time
}

// New creates a Validator over the given store.
func New(store warehouse.Store, cfg Config) *Validator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	window := cfg.Staleness
	if window <= 0 {
		window = 25 * time.Hour
	}
	return &Validator{
		store:  store,
		bronze: cfg.BronzeSchema,
		silver: cfg.SilverSchema,
		window: window,
		now:    now,
	}
}

// Run evaluates every check and returns the combined report. Checks
// never short-circuit: a failing relation still lets every other
// check run.
func (v *Validator) Run(ctx context.Context) *Report {
	report := &Report{RunAt: v.now().UTC()}

	report.Results = append(report.Results, v.checkRowCounts(ctx)...)
	report.Results = append(report.Results, v.checkCriticalColumns(ctx)...)
	report.Results = append(report.Results, v.checkFreshness(ctx)...)
	report.Results = append(report.Results, v.checkOrphans(ctx)...)
	report.Results = append(report.Results, v.checkBusinessRules(ctx)...)

	return report
}

func (v *Validator) bronzeTable(name string) warehouse.Table {
	return warehouse.Table{Schema: v.bronze, Name: name}
}

func (v *Validator) silverTable(name string) warehouse.Table {
	return warehouse.Table{Schema: v.silver, Name: name}
}

var bronzeRelations = []string{
	"customers", "orders", "lineitem", "suppliers",
	"parts", "partsupp", "nation", "region",
}

var silverRelations = []string{
	"order_details", "customer_orders", "supplier_parts",
}

func (v *Validator) allTables() []warehouse.Table {
	tables := make([]warehouse.Table, 0, len(bronzeRelations)+len(silverRelations))
	for _, name := range bronzeRelations {
		tables = append(tables, v.bronzeTable(name))
	}
	for _, name := range silverRelations {
		tables = append(tables, v.silverTable(name))
	}
	return tables
}

func (v *Validator) checkRowCounts(ctx context.Context) []CheckResult {
	var results []CheckResult
	for _, table := range v.allTables() {
		res := CheckResult{Check: "row_count", Relation: table.String(), Status: StatusPass}

		snap, err := v.store.Snapshot(ctx, table)
		switch {
		case err != nil:
			res.Status = StatusFail
			res.Detail = "no committed snapshot"
		case snap.Count == 0:
			res.Status = StatusFail
			res.Detail = "relation is empty"
		}
		results = append(results, res)
	}
	return results
}

func (v *Validator) checkFreshness(ctx context.Context) []CheckResult {
	now := v.now().UTC()
	var results []CheckResult
	for _, table := range v.allTables() {
		res := CheckResult{Check: "freshness", Relation: table.String(), Status: StatusPass}

		snap, err := v.store.Snapshot(ctx, table)
		switch {
		case err != nil:
			res.Status = StatusFail
			res.Detail = "no committed snapshot"
		case now.Sub(snap.CommittedAt) > v.window:
			res.Status = StatusFail
			res.Violations = 1
			res.Detail = "snapshot committed " + snap.CommittedAt.Format(time.RFC3339)
		}
		results = append(results, res)
	}
	return results
}
