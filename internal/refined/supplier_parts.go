//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package refined

import (
	"fmt"
	"sort"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
	"github.com/pgEdge/pgedge-lakehouse/internal/rank"
)

// BuildSupplierParts joins the part-supplier bridge with suppliers,
// parts and geography, derives margin columns, and ranks supply cost
// within each (region, part type) partition. Output is sorted by
// (supplier key, part key).
func BuildSupplierParts(
	suppliers []model.BronzeSupplier,
	partSupps []model.BronzePartSupp,
	parts []model.BronzePart,
	nations []model.BronzeNation,
	regions []model.BronzeRegion,
	opts Options,
) ([]model.SupplierPart, JoinStats, error) {
	supplierByKey := make(map[int64]model.BronzeSupplier, len(suppliers))
	for _, s := range suppliers {
		supplierByKey[s.SuppKey] = s
	}
	partByKey := make(map[int64]model.BronzePart, len(parts))
	for _, p := range parts {
		partByKey[p.PartKey] = p
	}
	geo := newGeography(nations, regions)

	stats := JoinStats{Input: len(partSupps)}
	refined := opts.refined()
	out := make([]model.SupplierPart, 0, len(partSupps))

	for _, ps := range partSupps {
		supplier, okS := supplierByKey[ps.SuppKey]
		part, okP := partByKey[ps.PartKey]
		if !okS || !okP {
			stats.Unresolved++
			continue
		}
		nation, region, okG := geo.lookup(supplier.NationKey)
		if !okG {
			stats.Unresolved++
			continue
		}

		margin := part.RetailPrice - ps.SupplyCost
		var marginPct float64
		if part.RetailPrice > 0 {
			marginPct = round4(margin / part.RetailPrice)
		}

		out = append(out, model.SupplierPart{
			SupplierKey:     ps.SuppKey,
			SupplierName:    supplier.Name,
			SupplierNation:  nation,
			SupplierRegion:  region,
			SupplierAcctBal: supplier.AcctBal,

			PartKey:   ps.PartKey,
			PartName:  part.Name,
			PartBrand: part.Brand,
			PartType:  part.Type,
			PartSize:  part.Size,

			RetailPrice: part.RetailPrice,
			SupplyCost:  ps.SupplyCost,
			AvailQty:    ps.AvailQty,

			CostMargin: round2(margin),
			MarginPct:  marginPct,

			Refined: refined,
		})
	}
	stats.Output = len(out)

	if err := stats.check(opts.MaxUnresolvedFraction); err != nil {
		return nil, stats, fmt.Errorf("%w: %d of %d part-supplier rows (max %.2f)",
			err, stats.Unresolved, stats.Input, opts.MaxUnresolvedFraction)
	}

	rankRegionCosts(out)

	sort.Slice(out, func(i, j int) bool {
		if out[i].SupplierKey != out[j].SupplierKey {
			return out[i].SupplierKey < out[j].SupplierKey
		}
		return out[i].PartKey < out[j].PartKey
	})

	return out, stats, nil
}

// rankRegionCosts computes the dense cost rank and region averages
// within each (region, part type) partition. Ties on cost share a
// rank; every tied cheapest row is flagged cheapest.
func rankRegionCosts(rows []model.SupplierPart) {
	type partitionKey struct {
		region   string
		partType string
	}

	partitions := make(map[partitionKey][]int)
	for i, r := range rows {
		k := partitionKey{r.SupplierRegion, r.PartType}
		partitions[k] = append(partitions[k], i)
	}

	for _, members := range partitions {
		sort.SliceStable(members, func(x, y int) bool {
			a, b := &rows[members[x]], &rows[members[y]]
			if a.SupplyCost != b.SupplyCost {
				return a.SupplyCost < b.SupplyCost
			}
			if a.SupplierKey != b.SupplierKey {
				return a.SupplierKey < b.SupplierKey
			}
			return a.PartKey < b.PartKey
		})

		var total float64
		for _, i := range members {
			total += rows[i].SupplyCost
		}
		avg := total / float64(len(members))

		ranks := rank.Dense(members, func(x, y int) bool {
			return rows[x].SupplyCost == rows[y].SupplyCost
		})
		for pos, i := range members {
			rows[i].CostRankInRegion = ranks[pos]
			rows[i].IsCheapestInRegion = ranks[pos] == 1
			rows[i].AvgRegionCost = round2(avg)
			rows[i].CostVsRegionAvg = round2(rows[i].SupplyCost - avg)
		}
	}
}
