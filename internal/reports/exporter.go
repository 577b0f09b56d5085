// Package reports renders a report bundle to CSV or JSON files, one file
// per output table. Undefined cells (nil ratios) are written as empty CSV
// cells and JSON nulls, never as 0.
package reports

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/orderpulse/analytics/internal/models"
)

const monthLayout = "2006-01"

// Format selects the export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Export writes every table of the bundle into dir.
func Export(bundle *models.ReportBundle, dir string, format Format) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create export dir %s", dir)
	}
	switch format {
	case FormatJSON:
		return writeJSON(filepath.Join(dir, "report_bundle.json"), bundle)
	case FormatCSV:
		return exportCSV(bundle, dir)
	default:
		return errors.Errorf("unknown export format %q", format)
	}
}

func exportCSV(b *models.ReportBundle, dir string) error {
	tables := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"kpi_summary.csv",
			[]string{"metric", "value"},
			kpiRows(b.KPI)},
		{"monthly_revenue.csv",
			[]string{"month", "net_revenue"},
			monthlyRevenueRows(b.Trends.Revenue)},
		{"monthly_orders.csv",
			[]string{"month", "orders"},
			monthlyOrderRows(b.Trends.Orders)},
		{"monthly_return_rate.csv",
			[]string{"month", "delivered", "returned", "return_rate_pct"},
			monthlyReturnRateRows(b.Trends.ReturnRate)},
		{"category_return_rate.csv",
			[]string{"category", "count", "return_rate_pct", "weighting"},
			groupRateRows(b.CategoryReturnRates)},
		{"country_return_rate.csv",
			[]string{"country", "count", "return_rate_pct", "weighting"},
			groupRateRows(b.CountryReturnRates)},
		{"channel_return_rate.csv",
			[]string{"channel", "count", "return_rate_pct", "weighting"},
			groupRateRows(b.ChannelReturnRates)},
		{"channel_revenue_impact.csv",
			[]string{"channel", "total_revenue", "returned_revenue", "returned_revenue_ratio_pct"},
			channelImpactRows(b.ChannelImpact)},
		{"product_risk.csv",
			[]string{"product_id", "total_orders", "returned_orders", "returned_revenue", "return_rate_pct", "returned_margin", "returned_items"},
			productRiskRows(b.ProductRisk)},
		{"returned_customers.csv",
			[]string{"customer_id", "returned_orders", "returned_revenue", "returned_margin"},
			returnedCustomerRows(b.ReturnedCustomers)},
		{"customer_profiles.csv",
			[]string{"customer_id", "total_orders", "total_revenue", "total_margin", "returned_orders", "return_flag", "value_segment", "return_segment", "final_segment"},
			customerProfileRows(b.CustomerProfiles)},
		{"segment_summary.csv",
			[]string{"segment", "customers", "total_revenue", "total_margin", "avg_revenue", "avg_margin", "returned_orders", "avg_returns_per_customer"},
			segmentRows(b.SegmentSummary)},
	}
	for _, t := range tables {
		if err := writeCSV(filepath.Join(dir, t.name), t.header, t.rows); err != nil {
			return err
		}
	}
	return nil
}

func kpiRows(k models.KPISummary) [][]string {
	return [][]string{
		{"Total Net Revenue", f64(k.TotalNetRevenue)},
		{"Total Orders", strconv.Itoa(k.TotalOrders)},
		{"Total Customers", strconv.Itoa(k.TotalCustomers)},
		{"Average Order Value", f64ptr(k.AverageOrderValue)},
		{"Orders per Customer", f64(k.OrdersPerCustomer)},
		{"Return Rate (%)", f64(k.ReturnRatePct)},
	}
}

func monthlyRevenueRows(points []models.MonthlyRevenuePoint) [][]string {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{month(p.Month), f64(p.NetRevenue)})
	}
	return rows
}

func monthlyOrderRows(points []models.MonthlyOrderPoint) [][]string {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{month(p.Month), strconv.Itoa(p.Orders)})
	}
	return rows
}

func monthlyReturnRateRows(points []models.MonthlyReturnRatePoint) [][]string {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			month(p.Month), strconv.Itoa(p.Delivered), strconv.Itoa(p.Returned), f64ptr(p.ReturnRatePct),
		})
	}
	return rows
}

func groupRateRows(rates []models.GroupReturnRate) [][]string {
	rows := make([][]string, 0, len(rates))
	for _, r := range rates {
		rows = append(rows, []string{r.Value, strconv.Itoa(r.Count), f64(r.ReturnRatePct), string(r.Weighting)})
	}
	return rows
}

func channelImpactRows(impact []models.ChannelRevenueImpact) [][]string {
	rows := make([][]string, 0, len(impact))
	for _, c := range impact {
		rows = append(rows, []string{c.Channel, f64(c.TotalRevenue), f64(c.ReturnedRevenue), f64ptr(c.ReturnedRevenueRatioPct)})
	}
	return rows
}

func productRiskRows(risks []models.ProductRisk) [][]string {
	rows := make([][]string, 0, len(risks))
	for _, p := range risks {
		rows = append(rows, []string{
			p.ProductID, strconv.Itoa(p.TotalOrders), strconv.Itoa(p.ReturnedOrders),
			f64(p.ReturnedRevenue), f64ptr(p.ReturnRatePct), f64(p.ReturnedMargin), strconv.Itoa(p.ReturnedItems),
		})
	}
	return rows
}

func returnedCustomerRows(customers []models.ReturnedCustomer) [][]string {
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{c.CustomerID, strconv.Itoa(c.ReturnedOrders), f64(c.ReturnedRevenue), f64(c.ReturnedMargin)})
	}
	return rows
}

func customerProfileRows(profiles []models.CustomerProfile) [][]string {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{
			p.CustomerID, strconv.Itoa(p.TotalOrders), f64(p.TotalRevenue), f64(p.TotalMargin),
			strconv.Itoa(p.ReturnedOrders), strconv.FormatBool(p.ReturnFlag),
			p.ValueSegment, p.ReturnSegment, p.FinalSegment,
		})
	}
	return rows
}

func segmentRows(segments []models.SegmentSummary) [][]string {
	rows := make([][]string, 0, len(segments))
	for _, s := range segments {
		rows = append(rows, []string{
			s.Segment, strconv.Itoa(s.Customers), f64(s.TotalRevenue), f64(s.TotalMargin),
			f64(s.AvgRevenue), f64(s.AvgMargin), strconv.Itoa(s.ReturnedOrders), f64(s.AvgReturnsPerCustomer),
		})
	}
	return rows
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return errors.Wrapf(err, "failed to write header of %s", path)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "failed to write row of %s", path)
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "failed to flush %s", path)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal report bundle")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func month(t time.Time) string { return t.Format(monthLayout) }

func f64(v float64) string { return fmt.Sprintf("%.2f", v) }

// f64ptr renders an undefined value as an empty cell.
func f64ptr(v *float64) string {
	if v == nil {
		return ""
	}
	return f64(*v)
}
