package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/orderpulse/analytics/internal/models"
	"github.com/orderpulse/analytics/internal/reports"
	"github.com/orderpulse/analytics/pkg/analyticsservice"
	"github.com/orderpulse/analytics/pkg/logger"
)

func main() {
	var (
		dataDir   = flag.String("data-dir", "data", "Directory containing customers.csv, products.csv, orders.csv and order_details.csv")
		report    = flag.String("report", "all", "Report to print (all, kpi, trends, dimensions, products, customers, segments)")
		exportDir = flag.String("export-dir", "", "Directory to export report tables into")
		format    = flag.String("format", "csv", "Export format (csv, json)")
		strict    = flag.Bool("strict", false, "Fail the run on any invalid input row instead of filtering it out")
		store     = flag.Bool("store", false, "Persist the report bundle to PostgreSQL")
		logLevel  = flag.String("log-level", "", "Log level (debug, info, warn, error)")

		dbHost = flag.String("db-host", "", "Database hostname")
		dbPort = flag.Int("db-port", 0, "Database port")
		dbName = flag.String("db-name", "", "Database name")
		dbUser = flag.String("db-user", "", "Database username")
		dbPass = flag.String("db-pass", "", "Database password")
	)
	flag.Parse()

	log := logger.New(*logLevel)

	opts := analyticsservice.DefaultOptions()
	opts.Strict = *strict
	opts.Store = *store
	opts.DBHost = *dbHost
	opts.DBPort = *dbPort
	opts.DBName = *dbName
	opts.DBUser = *dbUser
	opts.DBPassword = *dbPass

	svc, err := analyticsservice.New(opts, log)
	if err != nil {
		log.Fatalf("Failed to create analytics service: %v", err)
	}
	defer svc.Close()

	ctx := context.Background()
	bundle, err := svc.RunFromDir(ctx, *dataDir)
	if err != nil {
		log.Fatalf("Analytics run failed: %v", err)
	}

	printReports(bundle, *report)

	if *exportDir != "" {
		if err := svc.Export(bundle, *exportDir, reports.Format(*format)); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		log.WithField("dir", *exportDir).Info("exported report tables")
	}

	if *store {
		if err := svc.Store(ctx, bundle); err != nil {
			log.Fatalf("Failed to store report bundle: %v", err)
		}
	}
}

func printReports(b *models.ReportBundle, which string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	all := which == "all"
	if all || which == "kpi" {
		fmt.Fprintf(w, "\nCompany KPIs (run %s)\n", b.RunID)
		fmt.Fprintf(w, "Total Net Revenue\t%.2f\n", b.KPI.TotalNetRevenue)
		fmt.Fprintf(w, "Total Orders\t%d\n", b.KPI.TotalOrders)
		fmt.Fprintf(w, "Total Customers\t%d\n", b.KPI.TotalCustomers)
		fmt.Fprintf(w, "Average Order Value\t%s\n", ratio(b.KPI.AverageOrderValue))
		fmt.Fprintf(w, "Orders per Customer\t%.2f\n", b.KPI.OrdersPerCustomer)
		fmt.Fprintf(w, "Return Rate (%%)\t%.2f\n", b.KPI.ReturnRatePct)
	}
	if all || which == "trends" {
		fmt.Fprintf(w, "\nMonthly trends\nmonth\tnet_revenue\torders\treturn_rate_pct\n")
		for i, p := range b.Trends.Revenue {
			fmt.Fprintf(w, "%s\t%.2f\t%d\t%s\n",
				p.Month.Format("2006-01"), p.NetRevenue,
				b.Trends.Orders[i].Orders, ratio(b.Trends.ReturnRate[i].ReturnRatePct))
		}
	}
	if all || which == "dimensions" {
		fmt.Fprintf(w, "\nReturn rates by dimension\ndimension\tvalue\tcount\treturn_rate_pct\n")
		for _, rows := range [][]models.GroupReturnRate{b.CategoryReturnRates, b.CountryReturnRates, b.ChannelReturnRates} {
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\n", r.Dimension, r.Value, r.Count, r.ReturnRatePct)
			}
		}
		fmt.Fprintf(w, "\nChannel revenue impact\nchannel\ttotal_revenue\treturned_revenue\tratio_pct\n")
		for _, c := range b.ChannelImpact {
			fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%s\n", c.Channel, c.TotalRevenue, c.ReturnedRevenue, ratio(c.ReturnedRevenueRatioPct))
		}
	}
	if all || which == "products" {
		fmt.Fprintf(w, "\nProduct risk\nproduct_id\ttotal_orders\treturned_orders\treturn_rate_pct\treturned_revenue\treturned_margin\n")
		for _, p := range b.ProductRisk {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%.2f\t%.2f\n",
				p.ProductID, p.TotalOrders, p.ReturnedOrders, ratio(p.ReturnRatePct), p.ReturnedRevenue, p.ReturnedMargin)
		}
	}
	if all || which == "customers" {
		fmt.Fprintf(w, "\nCustomer profiles\ncustomer_id\torders\trevenue\tmargin\treturned\tsegment\n")
		for _, c := range b.CustomerProfiles {
			fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%d\t%s\n",
				c.CustomerID, c.TotalOrders, c.TotalRevenue, c.TotalMargin, c.ReturnedOrders, c.FinalSegment)
		}
	}
	if all || which == "segments" {
		fmt.Fprintf(w, "\nSegment summary\nsegment\tcustomers\ttotal_revenue\tavg_revenue\ttotal_margin\tavg_returns_per_customer\n")
		for _, s := range b.SegmentSummary {
			fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
				s.Segment, s.Customers, s.TotalRevenue, s.AvgRevenue, s.TotalMargin, s.AvgReturnsPerCustomer)
		}
	}
}

// ratio renders an undefined ratio as n/a rather than 0.
func ratio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
