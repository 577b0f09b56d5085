package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderpulse/analytics/internal/models"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func ptr(v float64) *float64 { return &v }

// aggOrder builds an aggregated order the way the aggregator would: net
// figures follow the Delivered gate, returned revenue follows the Returned
// gate.
func aggOrder(id, customer, channel string, status models.OrderStatus, orderDate time.Time, revenue, margin float64) models.AggregatedOrder {
	cost := revenue - margin
	o := models.AggregatedOrder{
		Order: models.Order{
			OrderID:    id,
			CustomerID: customer,
			Channel:    channel,
			Status:     status,
			OrderDate:  orderDate,
		},
		Revenue:    ptr(revenue),
		Cost:       ptr(cost),
		Margin:     ptr(margin),
		OrderMonth: time.Date(orderDate.Year(), orderDate.Month(), 1, 0, 0, 0, 0, time.UTC),
	}
	items := 1
	o.Items = &items
	if status == models.StatusDelivered {
		o.NetRevenue = ptr(revenue)
		o.NetMargin = ptr(margin)
	} else {
		o.NetRevenue = ptr(0)
		o.NetMargin = ptr(0)
	}
	if status == models.StatusReturned {
		o.ReturnedRevenue = ptr(revenue)
	} else {
		o.ReturnedRevenue = ptr(0)
	}
	return o
}

func TestSummarizeKPIs(t *testing.T) {
	orders := []models.AggregatedOrder{
		aggOrder("1", "A", "web", models.StatusDelivered, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 100, 40),
		aggOrder("2", "A", "web", models.StatusReturned, time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), 50, 10),
	}

	kpi, err := SummarizeKPIs(orders)
	require.NoError(t, err)

	assert.Equal(t, 100.0, kpi.TotalNetRevenue)
	assert.Equal(t, 2, kpi.TotalOrders)
	assert.Equal(t, 1, kpi.TotalCustomers)
	assert.Equal(t, 2.0, kpi.OrdersPerCustomer)
	assert.Equal(t, 50.0, kpi.ReturnRatePct)
	require.NotNil(t, kpi.AverageOrderValue)
	assert.Equal(t, 100.0, *kpi.AverageOrderValue)
}

func TestSummarizeKPIsAverageExcludesNonPositive(t *testing.T) {
	orders := []models.AggregatedOrder{
		aggOrder("1", "A", "web", models.StatusDelivered, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 200, 80),
		aggOrder("2", "B", "web", models.StatusReturned, time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), 999, 500),
		aggOrder("3", "B", "app", models.StatusCancelled, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), 50, 25),
	}

	kpi, err := SummarizeKPIs(orders)
	require.NoError(t, err)

	// Only the delivered order has positive net revenue; zero-net orders
	// are excluded from the average, not averaged in as zeros.
	require.NotNil(t, kpi.AverageOrderValue)
	assert.Equal(t, 200.0, *kpi.AverageOrderValue)
}

func TestSummarizeKPIsNoPositiveRevenue(t *testing.T) {
	orders := []models.AggregatedOrder{
		aggOrder("1", "A", "web", models.StatusReturned, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 100, 40),
	}

	kpi, err := SummarizeKPIs(orders)
	require.NoError(t, err)
	assert.Nil(t, kpi.AverageOrderValue)
}

func TestSummarizeKPIsNoCustomers(t *testing.T) {
	_, err := SummarizeKPIs(nil)
	assert.ErrorIs(t, err, ErrNoCustomers)
}
