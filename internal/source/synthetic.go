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
	"sync"
	"time"

	"github.com/pgEdge/pgedge-lakehouse/internal/datagen"
	"github.com/pgEdge/pgedge-lakehouse/internal/model"
)

// Reference data mirroring the TPC-H specification.
var regionNames = []string{"AFRICA", "AMERICA", "ASIA", "EUROPE", "MIDDLE EAST"}

var nationSeed = []struct {
	name   string
	region int64
}{
	{"ALGERIA", 0}, {"ARGENTINA", 1}, {"BRAZIL", 1}, {"CANADA", 1}, {"EGYPT", 4},
	{"ETHIOPIA", 0}, {"FRANCE", 3}, {"GERMANY", 3}, {"INDIA", 2}, {"INDONESIA", 2},
	{"IRAN", 4}, {"IRAQ", 4}, {"JAPAN", 2}, {"JORDAN", 4}, {"KENYA", 0},
	{"MOROCCO", 0}, {"MOZAMBIQUE", 0}, {"PERU", 1}, {"CHINA", 2}, {"ROMANIA", 3},
	{"SAUDI ARABIA", 4}, {"VIETNAM", 2}, {"RUSSIA", 3}, {"UNITED KINGDOM", 3}, {"UNITED STATES", 1},
}

var (
	marketSegments = []string{"AUTOMOBILE", "BUILDING", "FURNITURE", "HOUSEHOLD", "MACHINERY"}
	priorities     = []string{"1-URGENT", "2-HIGH", "3-MEDIUM", "4-NOT SPECIFIED", "5-LOW"}
	shipModes      = []string{"REG AIR", "AIR", "RAIL", "SHIP", "TRUCK", "MAIL", "FOB"}
	shipInstructs  = []string{"DELIVER IN PERSON", "COLLECT COD", "NONE", "TAKE BACK RETURN"}
	containers     = []string{"SM CASE", "SM BOX", "MED BAG", "MED BOX", "LG CASE", "LG BOX", "JUMBO BAG", "JUMBO BOX", "WRAP CASE", "WRAP BOX"}
	typeNames      = []string{"STANDARD", "SMALL", "MEDIUM", "LARGE", "ECONOMY", "PROMO"}
	typeAdjs       = []string{"ANODIZED", "BURNISHED", "PLATED", "POLISHED", "BRUSHED"}
	typeMats       = []string{"TIN", "NICKEL", "BRASS", "STEEL", "COPPER"}
)

// Dataset is a complete, referentially intact set of raw relations.
type Dataset struct {
	Customers []model.Customer
	Orders    []model.Order
	LineItems []model.LineItem
	Suppliers []model.Supplier
	Parts     []model.Part
	PartSupps []model.PartSupp
	Nations   []model.Nation
	Regions   []model.Region
}

// Synthetic is a Source backed by generated TPC-H-shaped data. With a
// fixed seed generation is fully reproducible.
type Synthetic struct {
	scale int
	seed  uint64

	once sync.Once
	data *Dataset
}

// NewSynthetic creates a synthetic source. Scale sets the customer
// count; the other relations scale proportionally. A zero seed picks a
// random one.
func NewSynthetic(scale int, seed uint64) *Synthetic {
	if scale < 1 {
		scale = 1
	}
	return &Synthetic{scale: scale, seed: seed}
}

// Generate builds (or returns the cached) dataset.
func (s *Synthetic) Generate() *Dataset {
	s.once.Do(func() {
		var faker *datagen.Faker
		if s.seed != 0 {
			faker = datagen.NewFakerWithSeed(s.seed)
		} else {
			faker = datagen.NewFaker()
		}
		s.data = generate(faker, s.scale)
	})
	return s.data
}

func (s *Synthetic) Customers(ctx context.Context) ([]model.Customer, error) {
	return s.Generate().Customers, nil
}

func (s *Synthetic) Orders(ctx context.Context) ([]model.Order, error) {
	return s.Generate().Orders, nil
}

func (s *Synthetic) LineItems(ctx context.Context) ([]model.LineItem, error) {
	return s.Generate().LineItems, nil
}

func (s *Synthetic) Suppliers(ctx context.Context) ([]model.Supplier, error) {
	return s.Generate().Suppliers, nil
}

func (s *Synthetic) Parts(ctx context.Context) ([]model.Part, error) {
	return s.Generate().Parts, nil
}

func (s *Synthetic) PartSupps(ctx context.Context) ([]model.PartSupp, error) {
	return s.Generate().PartSupps, nil
}

func (s *Synthetic) Nations(ctx context.Context) ([]model.Nation, error) {
	return s.Generate().Nations, nil
}

func (s *Synthetic) Regions(ctx context.Context) ([]model.Region, error) {
	return s.Generate().Regions, nil
}

func generate(faker *datagen.Faker, scale int) *Dataset {
	numCustomers := scale
	numOrders := scale * 10
	numSuppliers := max(scale/10, 4)
	numParts := max(scale/2, 10)

	ds := &Dataset{}

	for i, name := range regionNames {
		ds.Regions = append(ds.Regions, model.Region{
			RegionKey: int64(i),
			Name:      name,
			Comment:   faker.Sentence(6),
		})
	}

	for i, n := range nationSeed {
		ds.Nations = append(ds.Nations, model.Nation{
			NationKey: int64(i),
			Name:      n.name,
			RegionKey: n.region,
			Comment:   faker.Sentence(6),
		})
	}

	for i := 1; i <= numSuppliers; i++ {
		ds.Suppliers = append(ds.Suppliers, model.Supplier{
			SuppKey:   int64(i),
			Name:      fmt.Sprintf("Supplier#%09d", i),
			Address:   datagen.Truncate(faker.Street(), 40),
			NationKey: int64(faker.Int(0, 24)),
			Phone:     faker.Digits(15),
			AcctBal:   faker.Float64(-999.99, 9999.99),
			Comment:   faker.Sentence(5),
		})
	}

	for i := 1; i <= numParts; i++ {
		partType := fmt.Sprintf("%s %s %s",
			datagen.Choose(faker, typeNames),
			datagen.Choose(faker, typeAdjs),
			datagen.Choose(faker, typeMats))

		ds.Parts = append(ds.Parts, model.Part{
			PartKey:     int64(i),
			Name:        datagen.Truncate(faker.ProductName(), 55),
			Mfgr:        fmt.Sprintf("Manufacturer#%d", faker.Int(1, 5)),
			Brand:       fmt.Sprintf("Brand#%d", faker.Int(1, 5)*10+faker.Int(1, 5)),
			Type:        partType,
			Size:        int32(faker.Int(1, 50)),
			Container:   datagen.Choose(faker, containers),
			RetailPrice: float64(90000+i) / 100.0,
			Comment:     datagen.Truncate(faker.Sentence(3), 23),
		})
	}

	for p := 1; p <= numParts; p++ {
		for s := 0; s < 4; s++ {
			ds.PartSupps = append(ds.PartSupps, model.PartSupp{
				PartKey:    int64(p),
				SuppKey:    supplierFor(p, s, numSuppliers),
				AvailQty:   int32(faker.Int(1, 9999)),
				SupplyCost: faker.Float64(1, 1000),
				Comment:    faker.Sentence(6),
			})
		}
	}

	for i := 1; i <= numCustomers; i++ {
		ds.Customers = append(ds.Customers, model.Customer{
			CustKey:    int64(i),
			Name:       fmt.Sprintf("Customer#%09d", i),
			Address:    datagen.Truncate(faker.Street(), 40),
			NationKey:  int64(faker.Int(0, 24)),
			Phone:      faker.Digits(15),
			AcctBal:    faker.Float64(-999.99, 9999.99),
			MktSegment: datagen.Choose(faker, marketSegments),
			Comment:    faker.Sentence(5),
		})
	}

	baseDate := time.Date(1992, 1, 1, 0, 0, 0, 0, time.UTC)
	cutover := time.Date(1995, 6, 17, 0, 0, 0, 0, time.UTC)

	for o := 1; o <= numOrders; o++ {
		custKey := int64((o-1)%numCustomers + 1)
		orderDate := baseDate.AddDate(0, 0, faker.Int(0, 2556))
		status := "F"
		if orderDate.After(cutover) {
			status = "O"
		}

		lineCount := faker.Int(1, 7)
		var totalPrice float64

		for l := 1; l <= lineCount; l++ {
			partKey := faker.Int(1, numParts)
			suppKey := supplierFor(partKey, faker.Int(0, 3), numSuppliers)

			qty := float64(faker.Int(1, 50))
			price := float64(90000+partKey) / 100.0
			discount := float64(faker.Int(0, 10)) / 100.0
			tax := float64(faker.Int(0, 8)) / 100.0
			extPrice := qty * price
			totalPrice += extPrice * (1 - discount) * (1 + tax)

			shipDate := orderDate.AddDate(0, 0, faker.Int(1, 121))
			commitDate := orderDate.AddDate(0, 0, faker.Int(30, 90))
			receiptDate := shipDate.AddDate(0, 0, faker.Int(1, 30))

			returnFlag := "N"
			if receiptDate.Before(cutover) {
				if faker.Int(1, 100) <= 25 {
					returnFlag = "R"
				} else {
					returnFlag = "A"
				}
			}

			lineStatus := "F"
			if shipDate.After(cutover) {
				lineStatus = "O"
			}

			ds.LineItems = append(ds.LineItems, model.LineItem{
				OrderKey:      int64(o),
				PartKey:       int64(partKey),
				SuppKey:       suppKey,
				LineNumber:    int32(l),
				Quantity:      qty,
				ExtendedPrice: extPrice,
				Discount:      discount,
				Tax:           tax,
				ReturnFlag:    returnFlag,
				LineStatus:    lineStatus,
				ShipDate:      shipDate,
				CommitDate:    commitDate,
				ReceiptDate:   receiptDate,
				ShipInstruct:  datagen.Choose(faker, shipInstructs),
				ShipMode:      datagen.Choose(faker, shipModes),
				Comment:       datagen.Truncate(faker.Sentence(3), 44),
			})
		}

		ds.Orders = append(ds.Orders, model.Order{
			OrderKey:      int64(o),
			CustKey:       custKey,
			OrderStatus:   status,
			TotalPrice:    totalPrice,
			OrderDate:     orderDate,
			OrderPriority: datagen.Choose(faker, priorities),
			Clerk:         fmt.Sprintf("Clerk#%09d", faker.Int(1, 1000)),
			ShipPriority:  0,
			Comment:       datagen.Truncate(faker.Sentence(3), 79),
		})
	}

	return ds
}

// supplierFor spreads part-supplier assignments so each part has 4
// suppliers, mirroring the TPC-H distribution.
func supplierFor(partKey, slot, numSuppliers int) int64 {
	suppKey := (partKey + slot*(numSuppliers/4) + (partKey-1)/numSuppliers) % numSuppliers
	if suppKey == 0 {
		suppKey = numSuppliers
	}
	return int64(suppKey)
}
