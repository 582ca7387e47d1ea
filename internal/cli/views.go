package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-lakehouse/internal/db"
	"github.com/pgEdge/pgedge-lakehouse/internal/model"
	"github.com/pgEdge/pgedge-lakehouse/internal/views"
	"github.com/pgEdge/pgedge-lakehouse/internal/warehouse"
)

var viewsLimit int

var viewsCmd = &cobra.Command{
	Use:   "views <name>",
	Short: "Compute a gold view from the committed silver relations",
	Long: `Compute one of the gold analytic views from the currently committed
silver snapshots and print a summary table. Views are computed at read
time; nothing is written back to the warehouse.

Available views:
  revenue-by-region       - revenue by geography, segment and month
  customer-lifetime-value - customer value projection with behavior metrics
  supplier-performance    - composite supplier scorecard with rankings
  monthly-sales-trends    - monthly series with growth and seasonality

Example:
  pgedge-lakehouse views supplier-performance --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: runViews,
}

func init() {
	viewsCmd.Flags().IntVar(&viewsLimit, "limit", 20,
		"maximum number of rows to print (0 = all)")
}

func runViews(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	store := warehouse.NewPostgresStore(pool)
	silver := func(name string) warehouse.Table {
		return warehouse.Table{Schema: cfg.SilverSchema(), Name: name}
	}

	switch args[0] {
	case "revenue-by-region":
		details, err := warehouse.ReadRows[model.OrderDetail](ctx, store, silver("order_details"))
		if err != nil {
			return err
		}
		customers, err := warehouse.ReadRows[model.CustomerOrder](ctx, store, silver("customer_orders"))
		if err != nil {
			return err
		}
		printRegionRevenue(views.RevenueByRegion(details, customers))

	case "customer-lifetime-value":
		details, err := warehouse.ReadRows[model.OrderDetail](ctx, store, silver("order_details"))
		if err != nil {
			return err
		}
		customers, err := warehouse.ReadRows[model.CustomerOrder](ctx, store, silver("customer_orders"))
		if err != nil {
			return err
		}
		printCustomerValue(views.CustomerLifetimeValue(customers, details, views.DefaultCLVParams()))

	case "supplier-performance":
		supplierParts, err := warehouse.ReadRows[model.SupplierPart](ctx, store, silver("supplier_parts"))
		if err != nil {
			return err
		}
		details, err := warehouse.ReadRows[model.OrderDetail](ctx, store, silver("order_details"))
		if err != nil {
			return err
		}
		printSupplierScores(views.SupplierPerformance(supplierParts, details))

	case "monthly-sales-trends":
		details, err := warehouse.ReadRows[model.OrderDetail](ctx, store, silver("order_details"))
		if err != nil {
			return err
		}
		printMonthlyTrends(views.MonthlySalesTrends(details))

	default:
		return fmt.Errorf("unknown view %q; run 'pgedge-lakehouse views --help' for the list", args[0])
	}

	return nil
}

func newViewTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func capRows(total int) int {
	if viewsLimit > 0 && total > viewsLimit {
		return viewsLimit
	}
	return total
}

func printedFooter(shown, total int) {
	if shown < total {
		fmt.Printf("\n(%d of %d rows shown; use --limit 0 for all)\n", shown, total)
	} else {
		fmt.Printf("\n(%d rows)\n", total)
	}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func ratio(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// growthCell formats a nullable growth metric; an absent baseline
// prints as a dash rather than zero.
func growthCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return ratio(*v)
}

func moneyCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return money(*v)
}

func printRegionRevenue(rows []views.RegionRevenue) {
	table := newViewTable([]string{
		"Region", "Nation", "Segment", "Year", "Month",
		"Orders", "Revenue", "YoY", "Share",
	})
	shown := capRows(len(rows))
	for _, r := range rows[:shown] {
		table.Append([]string{
			r.Region, r.Nation, r.MarketSegment,
			strconv.Itoa(int(r.Year)), strconv.Itoa(int(r.Month)),
			strconv.FormatInt(r.OrderCount, 10),
			money(r.TotalRevenue),
			growthCell(r.YoYGrowth),
			ratio(r.RevenueShare),
		})
	}
	table.Render()
	printedFooter(shown, len(rows))
}

func printCustomerValue(rows []views.CustomerValue) {
	table := newViewTable([]string{
		"Customer", "Segment", "Cohort", "Orders", "Revenue",
		"Projected CLV", "Percentile", "Tier",
	})
	shown := capRows(len(rows))
	for _, r := range rows[:shown] {
		table.Append([]string{
			fmt.Sprintf("%d %s", r.CustomerKey, r.CustomerName),
			r.RFMSegment,
			r.AcquisitionCohort,
			strconv.FormatInt(r.TotalOrders, 10),
			money(r.TotalRevenue),
			money(r.ProjectedCLV),
			ratio(r.RevenuePercentile),
			r.ValueTier,
		})
	}
	table.Render()
	printedFooter(shown, len(rows))
}

func printSupplierScores(rows []views.SupplierScore) {
	table := newViewTable([]string{
		"Rank", "Supplier", "Region", "Parts", "On-Time",
		"Composite", "Tier",
	})
	shown := capRows(len(rows))
	for _, r := range rows[:shown] {
		onTime := "-"
		if r.HasShipments {
			onTime = ratio(r.OnTimeRate)
		}
		table.Append([]string{
			strconv.Itoa(int(r.GlobalRank)),
			fmt.Sprintf("%d %s", r.SupplierKey, r.SupplierName),
			r.Region,
			strconv.FormatInt(r.PartCount, 10),
			onTime,
			ratio(r.CompositeScore),
			r.Tier,
		})
	}
	table.Render()
	printedFooter(shown, len(rows))
}

func printMonthlyTrends(rows []views.MonthlyTrend) {
	table := newViewTable([]string{
		"Year", "Month", "Orders", "Revenue", "MoM", "YoY",
		"MA3", "YTD", "Rank",
	})
	shown := capRows(len(rows))
	for _, r := range rows[:shown] {
		table.Append([]string{
			strconv.Itoa(int(r.Year)),
			strconv.Itoa(int(r.Month)),
			strconv.FormatInt(r.OrderCount, 10),
			money(r.TotalRevenue),
			growthCell(r.MoMGrowth),
			growthCell(r.YoYGrowth),
			moneyCell(r.MovingAvg3),
			money(r.YTDRevenue),
			strconv.Itoa(int(r.RevenueRankInYear)),
		})
	}
	table.Render()
	printedFooter(shown, len(rows))
}
