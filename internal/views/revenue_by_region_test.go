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
	"math"
	"testing"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
)

func geoCustomer(key int64, region, nation, segment string) model.CustomerOrder {
	return model.CustomerOrder{
		CustomerKey:   key,
		RegionName:    region,
		NationName:    nation,
		MarketSegment: segment,
	}
}

func regionDetail(orderKey, custKey int64, year, month int32, revenue, discount float64, late bool) model.OrderDetail {
	return model.OrderDetail{
		OrderKey:       orderKey,
		CustomerKey:    custKey,
		NetRevenue:     revenue,
		Quantity:       1,
		DiscountPct:    discount,
		IsLateShipment: late,
		OrderYear:      year,
		OrderMonth:     month,
		OrderQuarter:   (month-1)/3 + 1,
	}
}

func TestRevenueByRegionGrouping(t *testing.T) {
	customers := []model.CustomerOrder{
		geoCustomer(1, "EUROPE", "FRANCE", "BUILDING"),
		geoCustomer(2, "EUROPE", "FRANCE", "BUILDING"),
	}
	details := []model.OrderDetail{
		regionDetail(1, 1, 1997, 3, 100, 0.10, true),
		regionDetail(1, 1, 1997, 3, 50, 0.00, false),
		regionDetail(2, 2, 1997, 3, 50, 0.02, false),
	}

	out := RevenueByRegion(details, customers)
	if len(out) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(out))
	}

	r := out[0]
	if r.Region != "EUROPE" || r.Nation != "FRANCE" || r.MarketSegment != "BUILDING" {
		t.Errorf("Expected EUROPE/FRANCE/BUILDING, got %s/%s/%s", r.Region, r.Nation, r.MarketSegment)
	}
	if r.Year != 1997 || r.Quarter != 1 || r.Month != 3 {
		t.Errorf("Expected 1997 Q1 month 3, got %d Q%d month %d", r.Year, r.Quarter, r.Month)
	}
	if r.OrderCount != 2 || r.LineCount != 3 {
		t.Errorf("Expected 2 orders / 3 lines, got %d / %d", r.OrderCount, r.LineCount)
	}
	if r.TotalRevenue != 200 || r.AvgRevenue != 100 {
		t.Errorf("Expected revenue 200 / avg 100, got %v / %v", r.TotalRevenue, r.AvgRevenue)
	}
	if math.Abs(r.AvgDiscount-0.04) > 1e-9 {
		t.Errorf("Expected avg discount 0.04, got %v", r.AvgDiscount)
	}
	if r.LateShipments != 1 || math.Abs(r.LateShipmentRate-1.0/3) > 1e-4 {
		t.Errorf("Expected 1 late shipment at rate 1/3, got %d at %v", r.LateShipments, r.LateShipmentRate)
	}
}

func TestRevenueByRegionSkipsUnknownCustomers(t *testing.T) {
	customers := []model.CustomerOrder{geoCustomer(1, "EUROPE", "FRANCE", "BUILDING")}
	details := []model.OrderDetail{
		regionDetail(1, 1, 1997, 3, 100, 0, false),
		regionDetail(2, 99, 1997, 3, 500, 0, false),
	}

	out := RevenueByRegion(details, customers)
	if len(out) != 1 || out[0].TotalRevenue != 100 {
		t.Fatalf("Expected unknown customer skipped, got %+v", out)
	}
}

func TestRevenueByRegionYoYGrowth(t *testing.T) {
	customers := []model.CustomerOrder{geoCustomer(1, "EUROPE", "FRANCE", "BUILDING")}
	details := []model.OrderDetail{
		regionDetail(1, 1, 1996, 3, 100, 0, false),
		regionDetail(2, 1, 1997, 3, 150, 0, false),
		regionDetail(3, 1, 1997, 5, 80, 0, false),
	}

	out := RevenueByRegion(details, customers)

	type ym struct{ y, m int32 }
	byMonth := make(map[ym]RegionRevenue)
	for _, r := range out {
		byMonth[ym{r.Year, r.Month}] = r
	}

	if byMonth[ym{1996, 3}].YoYGrowth != nil {
		t.Error("Expected nil YoY without a prior year")
	}
	g := byMonth[ym{1997, 3}].YoYGrowth
	if g == nil || math.Abs(*g-0.5) > 1e-9 {
		t.Errorf("Expected YoY 0.5, got %v", g)
	}
	if byMonth[ym{1997, 5}].YoYGrowth != nil {
		t.Error("Expected nil YoY when the prior-year month is absent")
	}
}

func TestRevenueByRegionShareSumsToOne(t *testing.T) {
	customers := []model.CustomerOrder{
		geoCustomer(1, "EUROPE", "FRANCE", "BUILDING"),
		geoCustomer(2, "EUROPE", "GERMANY", "MACHINERY"),
		geoCustomer(3, "ASIA", "JAPAN", "BUILDING"),
	}
	details := []model.OrderDetail{
		regionDetail(1, 1, 1997, 1, 300, 0, false),
		regionDetail(2, 2, 1997, 2, 100, 0, false),
		regionDetail(3, 3, 1997, 1, 50, 0, false),
	}

	out := RevenueByRegion(details, customers)

	shares := make(map[string]float64)
	for _, r := range out {
		shares[r.Region] += r.RevenueShare
	}
	for region, sum := range shares {
		if math.Abs(sum-1) > 1e-3 {
			t.Errorf("Expected %s shares to sum to 1, got %v", region, sum)
		}
	}

	for _, r := range out {
		if r.Region == "EUROPE" && r.Nation == "FRANCE" && r.RevenueShare != 0.75 {
			t.Errorf("Expected FRANCE share 0.75, got %v", r.RevenueShare)
		}
	}
}

func TestRevenueByRegionSorted(t *testing.T) {
	customers := []model.CustomerOrder{
		geoCustomer(1, "EUROPE", "FRANCE", "BUILDING"),
		geoCustomer(2, "ASIA", "JAPAN", "BUILDING"),
	}
	details := []model.OrderDetail{
		regionDetail(1, 1, 1997, 2, 100, 0, false),
		regionDetail(2, 1, 1997, 1, 100, 0, false),
		regionDetail(3, 2, 1997, 1, 100, 0, false),
	}

	out := RevenueByRegion(details, customers)
	if len(out) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(out))
	}
	if out[0].Region != "ASIA" {
		t.Errorf("Expected ASIA first, got %s", out[0].Region)
	}
	if out[1].Month != 1 || out[2].Month != 2 {
		t.Errorf("Expected EUROPE months in order 1,2, got %d,%d", out[1].Month, out[2].Month)
	}
}
