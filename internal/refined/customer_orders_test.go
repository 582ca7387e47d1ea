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
	"testing"

	"github.com/pgEdge/pgedge-lakehouse/internal/model"
)

func testGeo() ([]model.BronzeNation, []model.BronzeRegion) {
	nations := []model.BronzeNation{
		{Nation: model.Nation{NationKey: 0, Name: "ALGERIA", RegionKey: 0}},
		{Nation: model.Nation{NationKey: 6, Name: "FRANCE", RegionKey: 3}},
	}
	regions := []model.BronzeRegion{
		{Region: model.Region{RegionKey: 0, Name: "AFRICA"}},
		{Region: model.Region{RegionKey: 3, Name: "EUROPE"}},
	}
	return nations, regions
}

func customer(key int64, nationKey int64, segment string) model.BronzeCustomer {
	return model.BronzeCustomer{Customer: model.Customer{
		CustKey:    key,
		Name:       "Customer#000000001",
		NationKey:  nationKey,
		MktSegment: segment,
		AcctBal:    100,
	}}
}

func detail(custKey int64, netRevenue float64) model.OrderDetail {
	return model.OrderDetail{CustomerKey: custKey, NetRevenue: netRevenue}
}

func TestBuildCustomerOrdersAggregates(t *testing.T) {
	nations, regions := testGeo()
	customers := []model.BronzeCustomer{customer(10, 6, "BUILDING")}
	orders := []model.BronzeOrder{
		order(1, 10, "F", date(1998, 1, 1)),
		order(2, 10, "O", date(1998, 1, 11)),
		order(3, 10, "P", date(1998, 1, 21)),
	}
	details := []model.OrderDetail{detail(10, 100), detail(10, 50)}

	out, _, err := BuildCustomerOrders(customers, orders, details, nations, regions, testBuildOptions())
	if err != nil {
		t.Fatalf("Expected clean build, got error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("Expected 1 profile, got %d", len(out))
	}

	c := out[0]
	if c.NationName != "FRANCE" || c.RegionName != "EUROPE" {
		t.Errorf("Expected FRANCE/EUROPE, got %s/%s", c.NationName, c.RegionName)
	}
	if c.TotalOrders != 3 || c.TotalRevenue != 150 || c.AvgOrderValue != 50 {
		t.Errorf("Expected 3 orders / 150 / 50, got %d / %v / %v",
			c.TotalOrders, c.TotalRevenue, c.AvgOrderValue)
	}
	if c.FulfilledOrders != 1 || c.OpenOrders != 1 || c.PartialOrders != 1 {
		t.Errorf("Expected status split 1/1/1, got %d/%d/%d",
			c.FulfilledOrders, c.OpenOrders, c.PartialOrders)
	}
	if c.FirstOrderDate != date(1998, 1, 1) || c.LastOrderDate != date(1998, 1, 21) {
		t.Errorf("Expected order span 1998-01-01..1998-01-21, got %v..%v",
			c.FirstOrderDate, c.LastOrderDate)
	}

	// 20 days between first and last over 2 gaps.
	if c.OrderFrequencyDays != 10 {
		t.Errorf("Expected frequency 10, got %v", c.OrderFrequencyDays)
	}
	if c.DaysSinceLastOrder != 314 {
		t.Errorf("Expected 314 days since last order, got %d", c.DaysSinceLastOrder)
	}
}

func TestBuildCustomerOrdersSingleOrderFrequencyZero(t *testing.T) {
	nations, regions := testGeo()
	customers := []model.BronzeCustomer{customer(10, 6, "BUILDING")}
	orders := []model.BronzeOrder{order(1, 10, "F", date(1998, 1, 1))}

	out, _, err := BuildCustomerOrders(customers, orders, nil, nations, regions, testBuildOptions())
	if err != nil {
		t.Fatalf("Expected clean build, got error: %v", err)
	}
	if out[0].OrderFrequencyDays != 0 {
		t.Errorf("Expected zero frequency for a single order, got %v", out[0].OrderFrequencyDays)
	}
}

func TestBuildCustomerOrdersExcludesCustomersWithoutOrders(t *testing.T) {
	nations, regions := testGeo()
	customers := []model.BronzeCustomer{
		customer(10, 6, "BUILDING"),
		customer(11, 0, "MACHINERY"),
	}
	orders := []model.BronzeOrder{order(1, 10, "F", date(1998, 1, 1))}

	out, _, err := BuildCustomerOrders(customers, orders, nil, nations, regions, testBuildOptions())
	if err != nil {
		t.Fatalf("Expected clean build, got error: %v", err)
	}
	if len(out) != 1 || out[0].CustomerKey != 10 {
		t.Fatalf("Expected only customer 10, got %+v", out)
	}
}

func TestBuildCustomerOrdersRFMOrientation(t *testing.T) {
	nations, regions := testGeo()

	// 10 customers, strictly increasing revenue and order counts by key.
	var customers []model.BronzeCustomer
	var orders []model.BronzeOrder
	var details []model.OrderDetail
	orderKey := int64(0)
	for k := int64(1); k <= 10; k++ {
		customers = append(customers, customer(k, 6, "BUILDING"))
		for o := int64(0); o < k; o++ {
			orderKey++
			// Higher keys ordered more recently.
			orders = append(orders, order(orderKey, k, "F", date(1998, 1, int(k))))
		}
		details = append(details, detail(k, float64(k)*1000))
	}

	out, _, err := BuildCustomerOrders(customers, orders, details, nations, regions, testBuildOptions())
	if err != nil {
		t.Fatalf("Expected clean build, got error: %v", err)
	}

	byKey := make(map[int64]model.CustomerOrder)
	for _, c := range out {
		byKey[c.CustomerKey] = c
	}

	best, worst := byKey[10], byKey[1]
	if best.RecencyScore != 5 || best.FrequencyScore != 5 || best.MonetaryScore != 5 {
		t.Errorf("Expected top customer scored 5/5/5, got %d/%d/%d",
			best.RecencyScore, best.FrequencyScore, best.MonetaryScore)
	}
	if worst.RecencyScore != 1 || worst.FrequencyScore != 1 || worst.MonetaryScore != 1 {
		t.Errorf("Expected bottom customer scored 1/1/1, got %d/%d/%d",
			worst.RecencyScore, worst.FrequencyScore, worst.MonetaryScore)
	}
	if best.Segment != "Champions" {
		t.Errorf("Expected Champions for top customer, got %q", best.Segment)
	}
}

func TestSegmentFor(t *testing.T) {
	tests := []struct {
		name    string
		r, f, m int32
		want    string
	}{
		{"champions", 5, 4, 5, "Champions"},
		{"loyal", 4, 3, 2, "Loyal Customers"},
		{"big spenders", 3, 2, 5, "Big Spenders"},
		{"potential loyalists", 4, 2, 3, "Potential Loyalists"},
		{"cannot lose them", 2, 4, 4, "Cannot Lose Them"},
		{"at risk", 1, 3, 2, "At Risk"},
		{"standard", 3, 3, 3, "Standard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := segmentFor(tt.r, tt.f, tt.m); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildCustomerOrdersQuintileSizes(t *testing.T) {
	nations, regions := testGeo()

	var customers []model.BronzeCustomer
	var orders []model.BronzeOrder
	for k := int64(1); k <= 12; k++ {
		customers = append(customers, customer(k, 6, "BUILDING"))
		orders = append(orders, order(k, k, "F", date(1998, 1, 1).AddDate(0, 0, int(k))))
	}

	out, _, err := BuildCustomerOrders(customers, orders, nil, nations, regions, testBuildOptions())
	if err != nil {
		t.Fatalf("Expected clean build, got error: %v", err)
	}

	counts := make(map[int32]int)
	for _, c := range out {
		counts[c.RecencyScore]++
	}

	// 12 customers over 5 buckets: sizes 3,3,2,2,2 with the larger
	// buckets at the best scores.
	if counts[5] != 3 || counts[4] != 3 || counts[3] != 2 || counts[2] != 2 || counts[1] != 2 {
		t.Errorf("Expected bucket sizes 3/3/2/2/2 from best to worst, got %v", counts)
	}
}
