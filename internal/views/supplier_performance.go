//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package views

import (
	"sort"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
	"github.com/pgEdge/pgedge-lakehouse/internal/rank"
)

// Composite score weights. All sub-metrics are scaled to [0,1] before
// weighting.
const (
	weightOnTime     = 0.4
	weightCost       = 0.3
	weightBreadth    = 0.2
	weightReturns    = 0.1
	neutralSubMetric = 0.5
	breadthPerType   = 0.05
	tierStrategic    = 0.8
	tierPreferred    = 0.6
	tierApproved     = 0.4
)

// SupplierScore is one row of the supplier-performance view.
type SupplierScore struct {
	SupplierKey  int64
	SupplierName string
	Nation       string
	Region       string

	PartCount         int64
	DistinctPartTypes int64
	DistinctBrands    int64
	TotalAvailQty     int64
	AvgCostVsRegion   float64
	CheapestShare     float64

	// Delivery metrics come from shipped order lines. When a supplier
	// has no shipments the delivery sub-scores are neutral.
	HasShipments     bool
	Shipments        int64
	OnTimeRate       float64
	AvgShippingDelay float64
	AvgDeliveryDelay float64
	ReturnRate       float64

	CompositeScore float64
	Tier           string

	// Competition ranks by composite score descending; ties share a
	// rank.
	RankInRegion int32
	GlobalRank   int32
}

// SupplierPerformance scores each supplier from its silver catalog
// rows and shipped order lines. Output is sorted by global rank, then
// supplier key.
func SupplierPerformance(supplierParts []model.SupplierPart, details []model.OrderDetail) []SupplierScore {
	type catalog struct {
		name      string
		nation    string
		region    string
		parts     int64
		partTypes map[string]struct{}
		brands    map[string]struct{}
		availQty  int64
		costDiff  float64
		cheapest  int64
	}
	catalogs := make(map[int64]*catalog)
	for _, sp := range supplierParts {
		c := catalogs[sp.SupplierKey]
		if c == nil {
			c = &catalog{
				name:      sp.SupplierName,
				nation:    sp.SupplierNation,
				region:    sp.SupplierRegion,
				partTypes: make(map[string]struct{}),
				brands:    make(map[string]struct{}),
			}
			catalogs[sp.SupplierKey] = c
		}
		c.parts++
		c.partTypes[sp.PartType] = struct{}{}
		c.brands[sp.PartBrand] = struct{}{}
		c.availQty += int64(sp.AvailQty)
		c.costDiff += sp.CostVsRegionAvg
		if sp.IsCheapestInRegion {
			c.cheapest++
		}
	}

	type delivery struct {
		shipments     int64
		late          int64
		returned      int64
		shippingDelay int64
		deliveryDelay int64
	}
	deliveries := make(map[int64]*delivery)
	for _, d := range details {
		dv := deliveries[d.SupplierKey]
		if dv == nil {
			dv = &delivery{}
			deliveries[d.SupplierKey] = dv
		}
		dv.shipments++
		if d.IsLateShipment {
			dv.late++
		}
		if d.ReturnFlag == "R" {
			dv.returned++
		}
		dv.shippingDelay += int64(d.ShippingDelayDays)
		dv.deliveryDelay += int64(d.DeliveryDelayDays)
	}

	out := make([]SupplierScore, 0, len(catalogs))
	for key, c := range catalogs {
		row := SupplierScore{
			SupplierKey:       key,
			SupplierName:      c.name,
			Nation:            c.nation,
			Region:            c.region,
			PartCount:         c.parts,
			DistinctPartTypes: int64(len(c.partTypes)),
			DistinctBrands:    int64(len(c.brands)),
			TotalAvailQty:     c.availQty,
			AvgCostVsRegion:   round2(c.costDiff / float64(c.parts)),
			CheapestShare:     round4(float64(c.cheapest) / float64(c.parts)),
		}

		onTime := neutralSubMetric
		returns := neutralSubMetric
		if dv := deliveries[key]; dv != nil {
			row.HasShipments = true
			row.Shipments = dv.shipments
			row.OnTimeRate = round4(1 - float64(dv.late)/float64(dv.shipments))
			row.AvgShippingDelay = round2(float64(dv.shippingDelay) / float64(dv.shipments))
			row.AvgDeliveryDelay = round2(float64(dv.deliveryDelay) / float64(dv.shipments))
			row.ReturnRate = round4(float64(dv.returned) / float64(dv.shipments))
			onTime = row.OnTimeRate
			returns = row.ReturnRate
		}

		// Cost competitiveness is the share of catalog rows at or
		// below their region average.
		costComp := costCompetitiveness(supplierParts, key)
		breadth := min(float64(len(c.partTypes))*breadthPerType, 1)

		row.CompositeScore = round4(
			weightOnTime*onTime +
				weightCost*costComp +
				weightBreadth*breadth +
				weightReturns*(1-returns))
		row.Tier = supplierTier(row.CompositeScore)
		out = append(out, row)
	}

	// Rank ordering: composite descending, supplier key as tie-break
	// for a stable order; ranks themselves are tie-aware.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompositeScore != out[j].CompositeScore {
			return out[i].CompositeScore > out[j].CompositeScore
		}
		return out[i].SupplierKey < out[j].SupplierKey
	})

	globalRanks := rank.Competition(out, func(a, b SupplierScore) bool {
		return a.CompositeScore == b.CompositeScore
	})
	for i := range out {
		out[i].GlobalRank = globalRanks[i]
	}

	regionMembers := make(map[string][]int)
	for i, r := range out {
		regionMembers[r.Region] = append(regionMembers[r.Region], i)
	}
	for _, members := range regionMembers {
		ranks := rank.Competition(members, func(x, y int) bool {
			return out[x].CompositeScore == out[y].CompositeScore
		})
		for pos, i := range members {
			out[i].RankInRegion = ranks[pos]
		}
	}

	return out
}

func costCompetitiveness(supplierParts []model.SupplierPart, supplierKey int64) float64 {
	var total, atOrBelow int
	for _, sp := range supplierParts {
		if sp.SupplierKey != supplierKey {
			continue
		}
		total++
		if sp.SupplyCost <= sp.AvgRegionCost {
			atOrBelow++
		}
	}
	if total == 0 {
		return neutralSubMetric
	}
	return float64(atOrBelow) / float64(total)
}

func supplierTier(score float64) string {
	switch {
	case score >= tierStrategic:
		return "Tier 1 - Strategic"
	case score >= tierPreferred:
		return "Tier 2 - Preferred"
	case score >= tierApproved:
		return "Tier 3 - Approved"
	default:
		return "Tier 4 - Under Review"
	}
}
