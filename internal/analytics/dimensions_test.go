package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderpulse/analytics/internal/models"
)

func line(orderID, productID string, qty int, revenue, margin float64) models.EnrichedLineItem {
	cost := revenue - margin
	return models.EnrichedLineItem{
		OrderLineItem: models.OrderLineItem{
			OrderID:   orderID,
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: revenue / float64(qty),
		},
		LineRevenue: revenue,
		LineCost:    &cost,
		LineMargin:  &margin,
	}
}

func testJoin() ([]models.AggregatedOrder, []models.EnrichedLineItem, []models.Product) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	orders := []models.AggregatedOrder{
		aggOrder("O1", "A", "web", models.StatusDelivered, jan, 100, 40),
		aggOrder("O2", "B", "app", models.StatusReturned, jan, 60, 20),
	}
	lines := []models.EnrichedLineItem{
		line("O1", "P1", 1, 70, 30),
		line("O1", "P2", 1, 30, 10),
		line("O2", "P1", 2, 60, 20),
	}
	products := []models.Product{
		{ProductID: "P1", Category: "Electronics", CostUSD: 40, PriceUSD: 70},
		{ProductID: "P2", Category: "Home", CostUSD: 20, PriceUSD: 30},
	}
	return orders, lines, products
}

func TestJoinOrderLines(t *testing.T) {
	orders, lines, products := testJoin()
	view := JoinOrderLines(orders, lines, products)

	require.Len(t, view, 3)
	assert.Equal(t, "web", view[0].Channel)
	assert.Equal(t, models.StatusReturned, view[2].Status)
	require.NotNil(t, view[0].Category)
	assert.Equal(t, "Electronics", *view[0].Category)
}

func TestJoinOrderLinesUnknownProduct(t *testing.T) {
	orders, lines, products := testJoin()
	lines = append(lines, line("O1", "GONE", 1, 10, 2))

	view := JoinOrderLines(orders, lines, products)
	require.Len(t, view, 4)
	assert.Nil(t, view[3].Category)

	// The unknown category never becomes a group of its own.
	rates := ReturnRateByCategory(view)
	for _, r := range rates {
		assert.NotEmpty(t, r.Value)
	}
	require.Len(t, rates, 2)
}

func TestReturnRateByCategoryIsLineWeighted(t *testing.T) {
	orders, lines, products := testJoin()
	view := JoinOrderLines(orders, lines, products)

	rates := ReturnRateByCategory(view)
	require.Len(t, rates, 2)

	byValue := map[string]models.GroupReturnRate{}
	for _, r := range rates {
		byValue[r.Value] = r
		assert.Equal(t, models.LineWeighted, r.Weighting)
		assert.GreaterOrEqual(t, r.ReturnRatePct, 0.0)
		assert.LessOrEqual(t, r.ReturnRatePct, 100.0)
	}

	// Electronics appears on one delivered line and one returned line:
	// 50% at line weighting even though only a third of orders returned.
	assert.Equal(t, 2, byValue["Electronics"].Count)
	assert.Equal(t, 50.0, byValue["Electronics"].ReturnRatePct)
	assert.Equal(t, 0.0, byValue["Home"].ReturnRatePct)
}

func TestReturnRateByCountryAndChannel(t *testing.T) {
	orders, _, _ := testJoin()
	customers := []models.Customer{
		{CustomerID: "A", Country: "DE"},
		{CustomerID: "B", Country: "FR"},
	}

	countryRates, unknown := ReturnRateByCountry(orders, customers)
	assert.Equal(t, 0, unknown)
	require.Len(t, countryRates, 2)
	// Sorted descending by rate: FR (100%) before DE (0%).
	assert.Equal(t, "FR", countryRates[0].Value)
	assert.Equal(t, 100.0, countryRates[0].ReturnRatePct)
	assert.Equal(t, "DE", countryRates[1].Value)
	assert.Equal(t, models.OrderWeighted, countryRates[0].Weighting)

	channelRates := ReturnRateByChannel(orders)
	require.Len(t, channelRates, 2)
	assert.Equal(t, "app", channelRates[0].Value)
	assert.Equal(t, 100.0, channelRates[0].ReturnRatePct)
}

func TestReturnRateByCountryUnknownCustomer(t *testing.T) {
	orders, _, _ := testJoin()
	customers := []models.Customer{{CustomerID: "A", Country: "DE"}}

	rates, unknown := ReturnRateByCountry(orders, customers)
	assert.Equal(t, 1, unknown)
	require.Len(t, rates, 1)
	assert.Equal(t, "DE", rates[0].Value)
}

func TestChannelRevenueImpact(t *testing.T) {
	orders, _, _ := testJoin()
	impact := ChannelRevenueImpact(orders)
	require.Len(t, impact, 2)

	// Descending by returned revenue: app first.
	app := impact[0]
	assert.Equal(t, "app", app.Channel)
	assert.Equal(t, 60.0, app.TotalRevenue)
	assert.Equal(t, 60.0, app.ReturnedRevenue)
	require.NotNil(t, app.ReturnedRevenueRatioPct)
	assert.Equal(t, 100.0, *app.ReturnedRevenueRatioPct)

	web := impact[1]
	assert.Equal(t, 0.0, web.ReturnedRevenue)
	require.NotNil(t, web.ReturnedRevenueRatioPct)
	assert.Equal(t, 0.0, *web.ReturnedRevenueRatioPct)
}

func TestChannelRevenueImpactZeroRevenue(t *testing.T) {
	o := aggOrder("O1", "A", "kiosk", models.StatusCancelled, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 0, 0)
	impact := ChannelRevenueImpact([]models.AggregatedOrder{o})

	require.Len(t, impact, 1)
	assert.Equal(t, 0.0, impact[0].TotalRevenue)
	// Ratio over zero revenue is undefined, not 0.
	assert.Nil(t, impact[0].ReturnedRevenueRatioPct)
}
