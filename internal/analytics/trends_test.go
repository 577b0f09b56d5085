package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderpulse/analytics/internal/models"
)

func TestComputeTrends(t *testing.T) {
	orders := []models.AggregatedOrder{
		aggOrder("1", "A", "web", models.StatusDelivered, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 100, 40),
		aggOrder("2", "B", "web", models.StatusReturned, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), 50, 10),
		aggOrder("3", "A", "app", models.StatusDelivered, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), 80, 30),
	}

	trends := ComputeTrends(orders)

	require.Len(t, trends.Revenue, 2)
	// Chronological, regardless of input order.
	assert.Equal(t, month(2024, 1), trends.Revenue[0].Month)
	assert.Equal(t, month(2024, 2), trends.Revenue[1].Month)
	assert.Equal(t, 80.0, trends.Revenue[0].NetRevenue)
	assert.Equal(t, 100.0, trends.Revenue[1].NetRevenue)

	require.Len(t, trends.Orders, 2)
	assert.Equal(t, 1, trends.Orders[0].Orders)
	assert.Equal(t, 2, trends.Orders[1].Orders)

	require.Len(t, trends.ReturnRate, 2)
	jan, feb := trends.ReturnRate[0], trends.ReturnRate[1]
	require.NotNil(t, jan.ReturnRatePct)
	assert.Equal(t, 0.0, *jan.ReturnRatePct)
	require.NotNil(t, feb.ReturnRatePct)
	assert.Equal(t, 50.0, *feb.ReturnRatePct)
}

func TestComputeTrendsUndefinedReturnRate(t *testing.T) {
	orders := []models.AggregatedOrder{
		aggOrder("1", "A", "web", models.StatusCancelled, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 10, 5),
	}

	trends := ComputeTrends(orders)

	require.Len(t, trends.ReturnRate, 1)
	p := trends.ReturnRate[0]
	assert.Equal(t, 0, p.Delivered)
	assert.Equal(t, 0, p.Returned)
	// No delivered or returned orders this month: the rate is undefined,
	// not zero.
	assert.Nil(t, p.ReturnRatePct)
}

func TestSeriesPointsRestartable(t *testing.T) {
	orders := []models.AggregatedOrder{
		aggOrder("1", "A", "web", models.StatusDelivered, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10, 5),
		aggOrder("2", "A", "web", models.StatusDelivered, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 20, 8),
	}
	trends := ComputeTrends(orders)
	seq := SeriesPoints(trends.Revenue)

	collect := func() []time.Time {
		var months []time.Time
		for p := range seq {
			months = append(months, p.Month)
		}
		return months
	}
	first := collect()
	second := collect()
	assert.Equal(t, first, second)
	assert.Equal(t, []time.Time{month(2024, 1), month(2024, 2)}, first)
}
