//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
)

// Postgres reads the raw base relations from a PostgreSQL schema laid
// out in standard TPC-H form. Every read is ordered by primary key so
// repeated extractions of unchanged data are byte-identical.
type Postgres struct {
	pool   *pgxpool.Pool
	schema string
}

// NewPostgres creates a Postgres source reading from the given schema.
func NewPostgres(pool *pgxpool.Pool, schema string) *Postgres {
	if schema == "" {
		schema = "tpch"
	}
	return &Postgres{pool: pool, schema: schema}
}

// VerifyContract checks that every source relation exposes the columns
// the extraction stage reads. It returns ErrSchemaMismatch naming the
// first relation that deviates, or ErrUnavailable when the catalog
// itself cannot be queried.
func (p *Postgres) VerifyContract(ctx context.Context) error {
	for _, contract := range tableContracts {
		rows, err := p.pool.Query(ctx, `
            SELECT column_name FROM information_schema.columns
            WHERE table_schema = $1 AND table_name = $2
        `, p.schema, contract.table)
		if err != nil {
			return fmt.Errorf("%w: querying columns of %s.%s: %v",
				ErrUnavailable, p.schema, contract.table, err)
		}

		present := make(map[string]bool)
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				rows.Close()
				return fmt.Errorf("%w: scanning columns of %s.%s: %v",
					ErrUnavailable, p.schema, contract.table, err)
			}
			present[name] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: reading columns of %s.%s: %v",
				ErrUnavailable, p.schema, contract.table, err)
		}

		if len(present) == 0 {
			return fmt.Errorf("%w: relation %s.%s does not exist",
				ErrSchemaMismatch, p.schema, contract.table)
		}
		for _, col := range contract.columns {
			if !present[col] {
				return fmt.Errorf("%w: %s.%s is missing column %s",
					ErrSchemaMismatch, p.schema, contract.table, col)
			}
		}
	}
	return nil
}

type tableContract struct {
	table   string
	columns []string
}

var tableContracts = []tableContract{
	{"customer", []string{"c_custkey", "c_name", "c_address", "c_nationkey", "c_phone", "c_acctbal", "c_mktsegment", "c_comment"}},
	{"orders", []string{"o_orderkey", "o_custkey", "o_orderstatus", "o_totalprice", "o_orderdate", "o_orderpriority", "o_clerk", "o_shippriority", "o_comment"}},
	{"lineitem", []string{"l_orderkey", "l_partkey", "l_suppkey", "l_linenumber", "l_quantity", "l_extendedprice", "l_discount", "l_tax", "l_returnflag", "l_linestatus", "l_shipdate", "l_commitdate", "l_receiptdate", "l_shipinstruct", "l_shipmode", "l_comment"}},
	{"supplier", []string{"s_suppkey", "s_name", "s_address", "s_nationkey", "s_phone", "s_acctbal", "s_comment"}},
	{"part", []string{"p_partkey", "p_name", "p_mfgr", "p_brand", "p_type", "p_size", "p_container", "p_retailprice", "p_comment"}},
	{"partsupp", []string{"ps_partkey", "ps_suppkey", "ps_availqty", "ps_supplycost", "ps_comment"}},
	{"nation", []string{"n_nationkey", "n_name", "n_regionkey", "n_comment"}},
	{"region", []string{"r_regionkey", "r_name", "r_comment"}},
}

func query[T any](ctx context.Context, p *Postgres, table, sql string) ([]T, error) {
	rows, err := p.pool.Query(ctx, fmt.Sprintf(sql, p.schema))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s.%s: %v", ErrUnavailable, p.schema, table, err)
	}
	result, err := pgx.CollectRows(rows, pgx.RowToStructByPos[T])
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s.%s: %v", ErrSchemaMismatch, p.schema, table, err)
	}
	return result, nil
}

func (p *Postgres) Customers(ctx context.Context) ([]model.Customer, error) {
	return query[model.Customer](ctx, p, "customer", `
        SELECT c_custkey, c_name, c_address, c_nationkey, c_phone,
               c_acctbal, c_mktsegment, c_comment
        FROM %s.customer ORDER BY c_custkey`)
}

func (p *Postgres) Orders(ctx context.Context) ([]model.Order, error) {
	return query[model.Order](ctx, p, "orders", `
        SELECT o_orderkey, o_custkey, o_orderstatus, o_totalprice, o_orderdate,
               o_orderpriority, o_clerk, o_shippriority, o_comment
        FROM %s.orders ORDER BY o_orderkey`)
}

func (p *Postgres) LineItems(ctx context.Context) ([]model.LineItem, error) {
	return query[model.LineItem](ctx, p, "lineitem", `
        SELECT l_orderkey, l_partkey, l_suppkey, l_linenumber, l_quantity,
               l_extendedprice, l_discount, l_tax, l_returnflag, l_linestatus,
               l_shipdate, l_commitdate, l_receiptdate, l_shipinstruct,
               l_shipmode, l_comment
        FROM %s.lineitem ORDER BY l_orderkey, l_linenumber`)
}

func (p *Postgres) Suppliers(ctx context.Context) ([]model.Supplier, error) {
	return query[model.Supplier](ctx, p, "supplier", `
        SELECT s_suppkey, s_name, s_address, s_nationkey, s_phone,
               s_acctbal, s_comment
        FROM %s.supplier ORDER BY s_suppkey`)
}

func (p *Postgres) Parts(ctx context.Context) ([]model.Part, error) {
	return query[model.Part](ctx, p, "part", `
        SELECT p_partkey, p_name, p_mfgr, p_brand, p_type, p_size,
               p_container, p_retailprice, p_comment
        FROM %s.part ORDER BY p_partkey`)
}

func (p *Postgres) PartSupps(ctx context.Context) ([]model.PartSupp, error) {
	return query[model.PartSupp](ctx, p, "partsupp", `
        SELECT ps_partkey, ps_suppkey, ps_availqty, ps_supplycost, ps_comment
        FROM %s.partsupp ORDER BY ps_partkey, ps_suppkey`)
}

func (p *Postgres) Nations(ctx context.Context) ([]model.Nation, error) {
	return query[model.Nation](ctx, p, "nation", `
        SELECT n_nationkey, n_name, n_regionkey, n_comment
        FROM %s.nation ORDER BY n_nationkey`)
}

func (p *Postgres) Regions(ctx context.Context) ([]model.Region, error) {
	return query[model.Region](ctx, p, "region", `
        SELECT r_regionkey, r_name, r_comment
        FROM %s.region ORDER BY r_regionkey`)
}
