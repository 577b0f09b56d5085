package reports

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderpulse/analytics/internal/models"
)

func testBundle() *models.ReportBundle {
	rate := 50.0
	return &models.ReportBundle{
		RunID:       "run_test",
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		KPI: models.KPISummary{
			TotalNetRevenue:   100,
			TotalOrders:       2,
			TotalCustomers:    1,
			OrdersPerCustomer: 2,
			ReturnRatePct:     50,
		},
		Trends: models.TrendReport{
			Revenue: []models.MonthlyRevenuePoint{{Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), NetRevenue: 100}},
			Orders:  []models.MonthlyOrderPoint{{Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Orders: 2}},
			ReturnRate: []models.MonthlyReturnRatePoint{
				{Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Delivered: 1, Returned: 1, ReturnRatePct: &rate},
			},
		},
		ChannelImpact: []models.ChannelRevenueImpact{
			// Ratio deliberately left undefined.
			{Channel: "kiosk", TotalRevenue: 0, ReturnedRevenue: 0},
		},
	}
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Export(testBundle(), dir, FormatCSV))

	f, err := os.Open(filepath.Join(dir, "kpi_summary.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 7) // header + 6 KPIs
	assert.Equal(t, []string{"metric", "value"}, rows[0])
	assert.Equal(t, []string{"Total Net Revenue", "100.00"}, rows[1])
	// Undefined average renders as an empty cell, not "0.00".
	assert.Equal(t, []string{"Average Order Value", ""}, rows[4])
}

func TestExportCSVUndefinedRatioCell(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Export(testBundle(), dir, FormatCSV))

	f, err := os.Open(filepath.Join(dir, "channel_revenue_impact.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[1][3])
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Export(testBundle(), dir, FormatJSON))

	data, err := os.ReadFile(filepath.Join(dir, "report_bundle.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id": "run_test"`)
	// Undefined ratios are omitted rather than serialized as 0.
	assert.NotContains(t, string(data), `"returned_revenue_ratio_pct"`)
}

func TestExportUnknownFormat(t *testing.T) {
	err := Export(testBundle(), t.TempDir(), Format("xml"))
	assert.Error(t, err)
}
