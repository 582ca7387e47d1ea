//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-lakehouse/internal/logging"
	"github.com/pgEdge/pgedge-lakehouse/internal/model"
	"github.com/pgEdge/pgedge-lakehouse/internal/source"
	"github.com/pgEdge/pgedge-lakehouse/internal/warehouse"
)

// Extractor stages the 8 raw relations into the bronze schema. Each
// relation is staged independently: a failure leaves that relation's
// previous snapshot committed and does not stop the others.
type Extractor struct {
	src     source.Source
	store   warehouse.Store
	schema  string
	system  string
	batchID string
	retries int
	now     func() time.Time
}

// Options configures an Extractor.
type Options struct {
	// Schema is the bronze schema relations are committed under.
	Schema string

	// System identifies the raw source in lineage columns.
	System string

	// BatchID tags every row staged by this run.
	BatchID string

	// Retries is how many times a relation read is retried when the
	// source is unavailable.
	Retries int

	// Now supplies ingestion timestamps. Defaults to time.Now.
	Now func() time.Time
}

// New creates an Extractor staging from src into store.
func New(src source.Source, store warehouse.Store, opts Options) *Extractor {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Extractor{
		src:     src,
		store:   store,
		schema:  opts.Schema,
		system:  opts.System,
		batchID: opts.BatchID,
		retries: opts.Retries,
		now:     now,
	}
}

// Summary reports what a full extraction run did.
type Summary struct {
	Relations map[string]NormalizeStats
	Failed    []string
}

// Run stages all 8 relations. It returns an error only when at least
// one relation failed; the summary always reflects every relation that
// committed.
func (e *Extractor) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{Relations: make(map[string]NormalizeStats)}

	var errs []error
	run := func(name string, fn func(context.Context) (NormalizeStats, error)) {
		stats, err := fn(ctx)
		if err != nil {
			summary.Failed = append(summary.Failed, name)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			logging.Error().Err(err).Str("relation", name).Msg("Relation staging failed")
			return
		}
		summary.Relations[name] = stats
	}

	run("customers", e.stageCustomers)
	run("orders", e.stageOrders)
	run("lineitem", e.stageLineItems)
	run("suppliers", e.stageSuppliers)
	run("parts", e.stageParts)
	run("partsupp", e.stagePartSupps)
	run("nation", e.stageNations)
	run("region", e.stageRegions)

	if len(errs) > 0 {
		return summary, errors.Join(errs...)
	}
	return summary, nil
}

func (e *Extractor) lineage() model.Lineage {
	return model.Lineage{
		IngestedAt:   e.now().UTC(),
		SourceSystem: e.system,
		BatchID:      e.batchID,
	}
}

func (e *Extractor) stageCustomers(ctx context.Context) (NormalizeStats, error) {
	return stage(ctx, e, "customers", e.src.Customers,
		func(c model.Customer) (string, bool) {
			return fmt.Sprint(c.CustKey), c.CustKey > 0
		},
		func(c model.Customer, l model.Lineage) model.BronzeCustomer {
			return model.BronzeCustomer{Customer: c, Lineage: l}
		})
}

func (e *Extractor) stageOrders(ctx context.Context) (NormalizeStats, error) {
	return stage(ctx, e, "orders", e.src.Orders,
		func(o model.Order) (string, bool) {
			return fmt.Sprint(o.OrderKey), o.OrderKey > 0
		},
		func(o model.Order, l model.Lineage) model.BronzeOrder {
			return model.BronzeOrder{Order: o, Lineage: l}
		})
}

func (e *Extractor) stageLineItems(ctx context.Context) (NormalizeStats, error) {
	return stage(ctx, e, "lineitem", e.src.LineItems,
		func(li model.LineItem) (string, bool) {
			return fmt.Sprintf("%d:%d", li.OrderKey, li.LineNumber),
				li.OrderKey > 0 && li.LineNumber > 0
		},
		func(li model.LineItem, l model.Lineage) model.BronzeLineItem {
			return model.BronzeLineItem{LineItem: li, Lineage: l}
		})
}

func (e *Extractor) stageSuppliers(ctx context.Context) (NormalizeStats, error) {
	return stage(ctx, e, "suppliers", e.src.Suppliers,
		func(s model.Supplier) (string, bool) {
			return fmt.Sprint(s.SuppKey), s.SuppKey > 0
		},
		func(s model.Supplier, l model.Lineage) model.BronzeSupplier {
			return model.BronzeSupplier{Supplier: s, Lineage: l}
		})
}

func (e *Extractor) stageParts(ctx context.Context) (NormalizeStats, error) {
	return stage(ctx, e, "parts", e.src.Parts,
		func(p model.Part) (string, bool) {
			return fmt.Sprint(p.PartKey), p.PartKey > 0
		},
		func(p model.Part, l model.Lineage) model.BronzePart {
			return model.BronzePart{Part: p, Lineage: l}
		})
}

func (e *Extractor) stagePartSupps(ctx context.Context) (NormalizeStats, error) {
	return stage(ctx, e, "partsupp", e.src.PartSupps,
		func(ps model.PartSupp) (string, bool) {
			return fmt.Sprintf("%d:%d", ps.PartKey, ps.SuppKey),
				ps.PartKey > 0 && ps.SuppKey > 0
		},
		func(ps model.PartSupp, l model.Lineage) model.BronzePartSupp {
			return model.BronzePartSupp{PartSupp: ps, Lineage: l}
		})
}

func (e *Extractor) stageNations(ctx context.Context) (NormalizeStats, error) {
	// Nation and region keys are 0-based, so a missing name marks the
	// unusable row instead of a zero key.
	return stage(ctx, e, "nation", e.src.Nations,
		func(n model.Nation) (string, bool) {
			return fmt.Sprint(n.NationKey), n.NationKey >= 0 && n.Name != ""
		},
		func(n model.Nation, l model.Lineage) model.BronzeNation {
			return model.BronzeNation{Nation: n, Lineage: l}
		})
}

func (e *Extractor) stageRegions(ctx context.Context) (NormalizeStats, error) {
	return stage(ctx, e, "region", e.src.Regions,
		func(r model.Region) (string, bool) {
			return fmt.Sprint(r.RegionKey), r.RegionKey >= 0 && r.Name != ""
		},
		func(r model.Region, l model.Lineage) model.BronzeRegion {
			return model.BronzeRegion{Region: r, Lineage: l}
		})
}

func stage[R, B any](
	ctx context.Context,
	e *Extractor,
	name string,
	fetch func(context.Context) ([]R, error),
	key func(R) (string, bool),
	wrap func(R, model.Lineage) B,
) (NormalizeStats, error) {
	raw, err := fetchWithRetry(ctx, fetch, e.retries)
	if err != nil {
		return NormalizeStats{}, err
	}

	normalized, stats := Normalize(raw, key)

	lineage := e.lineage()
	bronze := make([]B, len(normalized))
	for i, row := range normalized {
		bronze[i] = wrap(row, lineage)
	}

	table := warehouse.Table{Schema: e.schema, Name: name}
	snap := warehouse.NewSnapshot(bronze, e.batchID, lineage.IngestedAt)
	if err := e.store.Replace(ctx, table, snap); err != nil {
		return stats, err
	}

	logging.Info().
		Str("table", table.String()).
		Str("batch_id", e.batchID).
		Object("stats", stats).
		Msg("Staged bronze relation")

	return stats, nil
}

func fetchWithRetry[R any](ctx context.Context, fetch func(context.Context) ([]R, error), retries int) ([]R, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			logging.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Msg("Retrying source read")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
			}
		}

		rows, err := fetch(ctx)
		if err == nil {
			return rows, nil
		}
		lastErr = err

		// Schema mismatches are permanent; retrying cannot help.
		if errors.Is(err, source.ErrSchemaMismatch) {
			return nil, err
		}
	}
	return nil, lastErr
}
