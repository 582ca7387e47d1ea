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
	"fmt"
	"os"

	"github.com/pgEdge/pgedge-lakehouse/internal/extract"
	"github.com/pgEdge/pgedge-lakehouse/internal/logging"
	"github.com/pgEdge/pgedge-lakehouse/internal/model"
	"github.com/pgEdge/pgedge-lakehouse/internal/quality"
	"github.com/pgEdge/pgedge-lakehouse/internal/refined"
	"github.com/pgEdge/pgedge-lakehouse/internal/warehouse"
)

func init() {
	Register(&Pipeline{
		Name:        "sales-analytics",
		Description: "Bronze ingestion, order and customer silver relations, validation",
		Stages: []Stage{
			extractStage(), orderDetailsStage(), customerOrdersStage(), validateStage(),
		},
	})
	Register(&Pipeline{
		Name:        "supplier-analytics",
		Description: "Bronze ingestion, supplier catalog silver relation, validation",
		Stages: []Stage{
			extractStage(), supplierPartsStage(), validateStage(),
		},
	})
	Register(&Pipeline{
		Name:        "full",
		Description: "All bronze and silver relations, validation",
		Stages: []Stage{
			extractStage(), orderDetailsStage(), customerOrdersStage(),
			supplierPartsStage(), validateStage(),
		},
	})
}

func extractStage() Stage {
	return Stage{
		Name:        "extract",
		Description: "Normalize raw relations into the bronze schema",
		Critical:    true,
		Run: func(ctx context.Context, deps Deps) error {
			ext := extract.New(deps.Source, deps.Store, extract.Options{
				Schema:  deps.BronzeSchema,
				System:  deps.SourceSystem,
				BatchID: deps.BatchID,
				Retries: deps.Retries,
				Now:     deps.Now,
			})
			_, err := ext.Run(ctx)
			return err
		},
	}
}

func buildOptions(deps Deps) refined.Options {
	return refined.Options{
		AsOf:                  deps.AsOf,
		MaxUnresolvedFraction: deps.MaxUnresolvedFraction,
		BatchID:               deps.BatchID,
		RefinedAt:             deps.now().UTC(),
	}
}

func orderDetailsStage() Stage {
	return Stage{
		Name:        "order_details",
		Description: "Join orders, line items and parts into the line-item fact",
		Critical:    true,
		Run: func(ctx context.Context, deps Deps) error {
			orders, err := warehouse.ReadRows[model.BronzeOrder](ctx, deps.Store, bronze(deps, "orders"))
			if err != nil {
				return err
			}
			items, err := warehouse.ReadRows[model.BronzeLineItem](ctx, deps.Store, bronze(deps, "lineitem"))
			if err != nil {
				return err
			}
			parts, err := warehouse.ReadRows[model.BronzePart](ctx, deps.Store, bronze(deps, "parts"))
			if err != nil {
				return err
			}

			opts := buildOptions(deps)
			rows, stats, err := refined.BuildOrderDetails(orders, items, parts, opts)
			if err != nil {
				return err
			}
			logging.Info().
				Str("relation", "order_details").
				Object("stats", stats).
				Msg("Built silver relation")

			return deps.Store.Replace(ctx, silver(deps, "order_details"),
				warehouse.NewSnapshot(rows, deps.BatchID, opts.RefinedAt))
		},
	}
}

func customerOrdersStage() Stage {
	return Stage{
		Name:        "customer_orders",
		Description: "Aggregate customer profiles with RFM segmentation",
		Critical:    true,
		Run: func(ctx context.Context, deps Deps) error {
			customers, err := warehouse.ReadRows[model.BronzeCustomer](ctx, deps.Store, bronze(deps, "customers"))
			if err != nil {
				return err
			}
			orders, err := warehouse.ReadRows[model.BronzeOrder](ctx, deps.Store, bronze(deps, "orders"))
			if err != nil {
				return err
			}
			details, err := warehouse.ReadRows[model.OrderDetail](ctx, deps.Store, silver(deps, "order_details"))
			if err != nil {
				return err
			}
			nations, err := warehouse.ReadRows[model.BronzeNation](ctx, deps.Store, bronze(deps, "nation"))
			if err != nil {
				return err
			}
			regions, err := warehouse.ReadRows[model.BronzeRegion](ctx, deps.Store, bronze(deps, "region"))
			if err != nil {
				return err
			}

			opts := buildOptions(deps)
			rows, stats, err := refined.BuildCustomerOrders(customers, orders, details, nations, regions, opts)
			if err != nil {
				return err
			}
			logging.Info().
				Str("relation", "customer_orders").
				Object("stats", stats).
				Msg("Built silver relation")

			return deps.Store.Replace(ctx, silver(deps, "customer_orders"),
				warehouse.NewSnapshot(rows, deps.BatchID, opts.RefinedAt))
		},
	}
}

func supplierPartsStage() Stage {
	return Stage{
		Name:        "supplier_parts",
		Description: "Join the supplier catalog with regional cost ranking",
		Critical:    true,
		Run: func(ctx context.Context, deps Deps) error {
			suppliers, err := warehouse.ReadRows[model.BronzeSupplier](ctx, deps.Store, bronze(deps, "suppliers"))
			if err != nil {
				return err
			}
			partSupps, err := warehouse.ReadRows[model.BronzePartSupp](ctx, deps.Store, bronze(deps, "partsupp"))
			if err != nil {
				return err
			}
			parts, err := warehouse.ReadRows[model.BronzePart](ctx, deps.Store, bronze(deps, "parts"))
			if err != nil {
				return err
			}
			nations, err := warehouse.ReadRows[model.BronzeNation](ctx, deps.Store, bronze(deps, "nation"))
			if err != nil {
				return err
			}
			regions, err := warehouse.ReadRows[model.BronzeRegion](ctx, deps.Store, bronze(deps, "region"))
			if err != nil {
				return err
			}

			opts := buildOptions(deps)
			rows, stats, err := refined.BuildSupplierParts(suppliers, partSupps, parts, nations, regions, opts)
			if err != nil {
				return err
			}
			logging.Info().
				Str("relation", "supplier_parts").
				Object("stats", stats).
				Msg("Built silver relation")

			return deps.Store.Replace(ctx, silver(deps, "supplier_parts"),
				warehouse.NewSnapshot(rows, deps.BatchID, opts.RefinedAt))
		},
	}
}

func validateStage() Stage {
	return Stage{
		Name:        "validate",
		Description: "Evaluate quality checks against committed relations",
		Critical:    false,
		Run: func(ctx context.Context, deps Deps) error {
			validator := quality.New(deps.Store, quality.Config{
				BronzeSchema: deps.BronzeSchema,
				SilverSchema: deps.SilverSchema,
				Staleness:    deps.Staleness,
				Now:          deps.Now,
			})
			report := validator.Run(ctx)
			report.Render(os.Stdout)
			if !report.Passed() {
				return fmt.Errorf("%d quality checks failed", report.Failed())
			}
			return nil
		},
	}
}

func bronze(deps Deps, name string) warehouse.Table {
	return warehouse.Table{Schema: deps.BronzeSchema, Name: name}
}

func silver(deps Deps, name string) warehouse.Table {
	return warehouse.Table{Schema: deps.SilverSchema, Name: name}
}
