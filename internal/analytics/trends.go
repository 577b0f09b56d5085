package analytics

import (
	"iter"
	"sort"
	"time"

	"github.com/orderpulse/analytics/internal/models"
)

// ComputeTrends buckets the aggregated orders by calendar month and builds
// the three monthly series, each sorted chronologically. Only months that
// actually occur in the data appear; a month whose orders are all in some
// other status than Delivered or Returned gets a nil return rate, because
// the rate is undefined there, not zero.
func ComputeTrends(orders []models.AggregatedOrder) models.TrendReport {
	type bucket struct {
		netRevenue float64
		orders     int
		delivered  int
		returned   int
	}
	buckets := make(map[time.Time]*bucket)
	for i := range orders {
		o := &orders[i]
		b, ok := buckets[o.OrderMonth]
		if !ok {
			b = &bucket{}
			buckets[o.OrderMonth] = b
		}
		if o.NetRevenue != nil {
			b.netRevenue += *o.NetRevenue
		}
		b.orders++
		switch o.Status {
		case models.StatusDelivered:
			b.delivered++
		case models.StatusReturned:
			b.returned++
		}
	}

	months := make([]time.Time, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	report := models.TrendReport{
		Revenue:    make([]models.MonthlyRevenuePoint, 0, len(months)),
		Orders:     make([]models.MonthlyOrderPoint, 0, len(months)),
		ReturnRate: make([]models.MonthlyReturnRatePoint, 0, len(months)),
	}
	for _, m := range months {
		b := buckets[m]
		report.Revenue = append(report.Revenue, models.MonthlyRevenuePoint{Month: m, NetRevenue: b.netRevenue})
		report.Orders = append(report.Orders, models.MonthlyOrderPoint{Month: m, Orders: b.orders})
		point := models.MonthlyReturnRatePoint{Month: m, Delivered: b.delivered, Returned: b.returned}
		if total := b.delivered + b.returned; total > 0 {
			rate := float64(b.returned) / float64(total) * 100
			point.ReturnRatePct = &rate
		}
		report.ReturnRate = append(report.ReturnRate, point)
	}
	return report
}

// SeriesPoints adapts a computed monthly series into a restartable
// iterator, so consumers can range over a series repeatedly without
// copying it.
func SeriesPoints[T any](points []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, p := range points {
			if !yield(p) {
				return
			}
		}
	}
}
