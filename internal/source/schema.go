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

	"github.com/pgEdge/pgedge-lakehouse/internal/logging"
	"github.com/pgEdge/pgedge-lakehouse/internal/model"
)

// rawTableDDL holds the raw relations in dependency order.
var rawTableDDL = []struct {
	name string
	ddl  string
}{
	{"region", `
        CREATE TABLE IF NOT EXISTS %s.region (
            r_regionkey BIGINT PRIMARY KEY,
            r_name      VARCHAR(25) NOT NULL,
            r_comment   VARCHAR(152)
        )`},
	{"nation", `
        CREATE TABLE IF NOT EXISTS %s.nation (
            n_nationkey BIGINT PRIMARY KEY,
            n_name      VARCHAR(25) NOT NULL,
            n_regionkey BIGINT NOT NULL,
            n_comment   VARCHAR(152)
        )`},
	{"supplier", `
        CREATE TABLE IF NOT EXISTS %s.supplier (
            s_suppkey   BIGINT PRIMARY KEY,
            s_name      VARCHAR(25) NOT NULL,
            s_address   VARCHAR(40) NOT NULL,
            s_nationkey BIGINT NOT NULL,
            s_phone     VARCHAR(15) NOT NULL,
            s_acctbal   DOUBLE PRECISION NOT NULL,
            s_comment   VARCHAR(101)
        )`},
	{"part", `
        CREATE TABLE IF NOT EXISTS %s.part (
            p_partkey     BIGINT PRIMARY KEY,
            p_name        VARCHAR(55) NOT NULL,
            p_mfgr        VARCHAR(25) NOT NULL,
            p_brand       VARCHAR(10) NOT NULL,
            p_type        VARCHAR(25) NOT NULL,
            p_size        INTEGER NOT NULL,
            p_container   VARCHAR(10) NOT NULL,
            p_retailprice DOUBLE PRECISION NOT NULL,
            p_comment     VARCHAR(23)
        )`},
	{"partsupp", `
        CREATE TABLE IF NOT EXISTS %s.partsupp (
            ps_partkey    BIGINT NOT NULL,
            ps_suppkey    BIGINT NOT NULL,
            ps_availqty   INTEGER NOT NULL,
            ps_supplycost DOUBLE PRECISION NOT NULL,
            ps_comment    VARCHAR(199),
            PRIMARY KEY (ps_partkey, ps_suppkey)
        )`},
	{"customer", `
        CREATE TABLE IF NOT EXISTS %s.customer (
            c_custkey    BIGINT PRIMARY KEY,
            c_name       VARCHAR(25) NOT NULL,
            c_address    VARCHAR(40) NOT NULL,
            c_nationkey  BIGINT NOT NULL,
            c_phone      VARCHAR(15) NOT NULL,
            c_acctbal    DOUBLE PRECISION NOT NULL,
            c_mktsegment VARCHAR(10) NOT NULL,
            c_comment    VARCHAR(117)
        )`},
	{"orders", `
        CREATE TABLE IF NOT EXISTS %s.orders (
            o_orderkey      BIGINT PRIMARY KEY,
            o_custkey       BIGINT NOT NULL,
            o_orderstatus   VARCHAR(1) NOT NULL,
            o_totalprice    DOUBLE PRECISION NOT NULL,
            o_orderdate     DATE NOT NULL,
            o_orderpriority VARCHAR(15) NOT NULL,
            o_clerk         VARCHAR(15) NOT NULL,
            o_shippriority  INTEGER NOT NULL,
            o_comment       VARCHAR(79)
        )`},
	{"lineitem", `
        CREATE TABLE IF NOT EXISTS %s.lineitem (
            l_orderkey      BIGINT NOT NULL,
            l_partkey       BIGINT NOT NULL,
            l_suppkey       BIGINT NOT NULL,
            l_linenumber    INTEGER NOT NULL,
            l_quantity      DOUBLE PRECISION NOT NULL,
            l_extendedprice DOUBLE PRECISION NOT NULL,
            l_discount      DOUBLE PRECISION NOT NULL,
            l_tax           DOUBLE PRECISION NOT NULL,
            l_returnflag    VARCHAR(1) NOT NULL,
            l_linestatus    VARCHAR(1) NOT NULL,
            l_shipdate      DATE NOT NULL,
            l_commitdate    DATE NOT NULL,
            l_receiptdate   DATE NOT NULL,
            l_shipinstruct  VARCHAR(25) NOT NULL,
            l_shipmode      VARCHAR(10) NOT NULL,
            l_comment       VARCHAR(44),
            PRIMARY KEY (l_orderkey, l_linenumber)
        )`},
}

// CreateSchema creates the raw source schema and its relations.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	_, err := pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema))
	if err != nil {
		return fmt.Errorf("failed to create schema %s: %w", schema, err)
	}

	for _, t := range rawTableDDL {
		if _, err := pool.Exec(ctx, fmt.Sprintf(t.ddl, schema)); err != nil {
			return fmt.Errorf("failed to create table %s.%s: %w", schema, t.name, err)
		}
		logging.Debug().
			Str("schema", schema).
			Str("table", t.name).
			Msg("Created table")
	}
	return nil
}

// DropSchema drops the raw source schema and everything in it.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	_, err := pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema))
	if err != nil {
		return fmt.Errorf("failed to drop schema %s: %w", schema, err)
	}
	return nil
}

// Seed bulk-loads a generated dataset into the raw schema via COPY.
func Seed(ctx context.Context, pool *pgxpool.Pool, schema string, ds *Dataset) error {
	if err := copyRows(ctx, pool, schema, "region",
		[]string{"r_regionkey", "r_name", "r_comment"},
		ds.Regions, func(r model.Region) []any {
			return []any{r.RegionKey, r.Name, r.Comment}
		}); err != nil {
		return err
	}
	if err := copyRows(ctx, pool, schema, "nation",
		[]string{"n_nationkey", "n_name", "n_regionkey", "n_comment"},
		ds.Nations, func(n model.Nation) []any {
			return []any{n.NationKey, n.Name, n.RegionKey, n.Comment}
		}); err != nil {
		return err
	}
	if err := copyRows(ctx, pool, schema, "supplier",
		[]string{"s_suppkey", "s_name", "s_address", "s_nationkey", "s_phone", "s_acctbal", "s_comment"},
		ds.Suppliers, func(s model.Supplier) []any {
			return []any{s.SuppKey, s.Name, s.Address, s.NationKey, s.Phone, s.AcctBal, s.Comment}
		}); err != nil {
		return err
	}
	if err := copyRows(ctx, pool, schema, "part",
		[]string{"p_partkey", "p_name", "p_mfgr", "p_brand", "p_type", "p_size", "p_container", "p_retailprice", "p_comment"},
		ds.Parts, func(p model.Part) []any {
			return []any{p.PartKey, p.Name, p.Mfgr, p.Brand, p.Type, p.Size, p.Container, p.RetailPrice, p.Comment}
		}); err != nil {
		return err
	}
	if err := copyRows(ctx, pool, schema, "partsupp",
		[]string{"ps_partkey", "ps_suppkey", "ps_availqty", "ps_supplycost", "ps_comment"},
		ds.PartSupps, func(ps model.PartSupp) []any {
			return []any{ps.PartKey, ps.SuppKey, ps.AvailQty, ps.SupplyCost, ps.Comment}
		}); err != nil {
		return err
	}
	if err := copyRows(ctx, pool, schema, "customer",
		[]string{"c_custkey", "c_name", "c_address", "c_nationkey", "c_phone", "c_acctbal", "c_mktsegment", "c_comment"},
		ds.Customers, func(c model.Customer) []any {
			return []any{c.CustKey, c.Name, c.Address, c.NationKey, c.Phone, c.AcctBal, c.MktSegment, c.Comment}
		}); err != nil {
		return err
	}
	if err := copyRows(ctx, pool, schema, "orders",
		[]string{"o_orderkey", "o_custkey", "o_orderstatus", "o_totalprice", "o_orderdate", "o_orderpriority", "o_clerk", "o_shippriority", "o_comment"},
		ds.Orders, func(o model.Order) []any {
			return []any{o.OrderKey, o.CustKey, o.OrderStatus, o.TotalPrice, o.OrderDate, o.OrderPriority, o.Clerk, o.ShipPriority, o.Comment}
		}); err != nil {
		return err
	}
	return copyRows(ctx, pool, schema, "lineitem",
		[]string{"l_orderkey", "l_partkey", "l_suppkey", "l_linenumber", "l_quantity", "l_extendedprice", "l_discount", "l_tax", "l_returnflag", "l_linestatus", "l_shipdate", "l_commitdate", "l_receiptdate", "l_shipinstruct", "l_shipmode", "l_comment"},
		ds.LineItems, func(l model.LineItem) []any {
			return []any{l.OrderKey, l.PartKey, l.SuppKey, l.LineNumber, l.Quantity, l.ExtendedPrice, l.Discount, l.Tax, l.ReturnFlag, l.LineStatus, l.ShipDate, l.CommitDate, l.ReceiptDate, l.ShipInstruct, l.ShipMode, l.Comment}
		})
}

func copyRows[T any](ctx context.Context, pool *pgxpool.Pool, schema, table string, columns []string, rows []T, encode func(T) []any) error {
	count, err := pool.CopyFrom(ctx,
		pgx.Identifier{schema, table},
		columns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return encode(rows[i]), nil
		}))
	if err != nil {
		return fmt.Errorf("failed to load %s.%s: %w", schema, table, err)
	}

	logging.Info().
		Str("table", schema+"."+table).
		Int64("rows", count).
		Msg("Loaded raw relation")
	return nil
}
