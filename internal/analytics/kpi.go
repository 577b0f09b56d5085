// Package analytics computes the downstream report tables from aggregated
// orders: company KPIs, monthly trends, dimensional return rates, product
// risk and customer segmentation. Every function is a pure reduction over
// its inputs; nothing here mutates an input slice.
package analytics

import (
	"errors"

	"github.com/orderpulse/analytics/internal/models"
)

// ErrNoCustomers is returned when the KPI summary would divide by a zero
// customer count.
var ErrNoCustomers = errors.New("no customers in order set")

// SummarizeKPIs reduces the aggregated orders to the company-wide scalars.
//
// Average order value is the mean of net_revenue over orders whose net
// revenue is strictly positive; if no such order exists the average is nil
// rather than zero. Orders whose net revenue is unknown (delivered orders
// with no line items) are skipped from every sum, the way a null is
// skipped by a SQL aggregate.
func SummarizeKPIs(orders []models.AggregatedOrder) (models.KPISummary, error) {
	customers := make(map[string]bool)
	var (
		totalNet    float64
		positiveSum float64
		positiveN   int
		returned    int
	)
	for i := range orders {
		o := &orders[i]
		customers[o.CustomerID] = true
		if o.NetRevenue != nil {
			totalNet += *o.NetRevenue
			if *o.NetRevenue > 0 {
				positiveSum += *o.NetRevenue
				positiveN++
			}
		}
		if o.IsReturned() {
			returned++
		}
	}

	if len(customers) == 0 {
		return models.KPISummary{}, ErrNoCustomers
	}

	kpi := models.KPISummary{
		TotalNetRevenue:   totalNet,
		TotalOrders:       len(orders),
		TotalCustomers:    len(customers),
		OrdersPerCustomer: float64(len(orders)) / float64(len(customers)),
		ReturnRatePct:     float64(returned) / float64(len(orders)) * 100,
	}
	if positiveN > 0 {
		avg := positiveSum / float64(positiveN)
		kpi.AverageOrderValue = &avg
	}
	return kpi, nil
}
