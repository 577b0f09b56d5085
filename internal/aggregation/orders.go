package aggregation

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/orderpulse/analytics/internal/models"
)

// OrderAggregator rolls enriched line items up to per-order totals and
// derives the delivery-conditioned figures.
type OrderAggregator struct {
	log *logrus.Logger
}

// NewOrderAggregator creates a new order aggregator.
func NewOrderAggregator(log *logrus.Logger) *OrderAggregator {
	return &OrderAggregator{log: log}
}

type orderSummary struct {
	revenue float64
	cost    float64
	margin  float64
	items   int
	lines   int
}

// Aggregate groups line items by order_id, left-merges the per-order sums
// into the orders, and derives net_revenue, net_margin, returned_revenue
// and order_month.
//
// An order with no line items keeps nil aggregates: that is a detectable
// data-quality signal, not a zero. Lines with an unknown product still
// contribute their revenue and quantity; their unknown cost and margin are
// skipped in the cost/margin sums. The second return value counts the
// orders that had no line items at all.
func (a *OrderAggregator) Aggregate(orders []models.Order, lines []models.EnrichedLineItem) ([]models.AggregatedOrder, int) {
	summaries := make(map[string]*orderSummary, len(orders))
	for _, li := range lines {
		s, ok := summaries[li.OrderID]
		if !ok {
			s = &orderSummary{}
			summaries[li.OrderID] = s
		}
		s.revenue += li.LineRevenue
		if li.LineCost != nil {
			s.cost += *li.LineCost
		}
		if li.LineMargin != nil {
			s.margin += *li.LineMargin
		}
		s.items += li.Quantity
		s.lines++
	}

	aggregated := make([]models.AggregatedOrder, 0, len(orders))
	withoutLines := 0
	for _, o := range orders {
		ao := models.AggregatedOrder{
			Order:      o,
			OrderMonth: truncateToMonth(o.OrderDate),
		}
		if s, ok := summaries[o.OrderID]; ok {
			revenue, cost, margin, items := s.revenue, s.cost, s.margin, s.items
			ao.Revenue = &revenue
			ao.Cost = &cost
			ao.Margin = &margin
			ao.Items = &items
		} else {
			withoutLines++
		}
		ao.NetRevenue = gate(o.Status == models.StatusDelivered, ao.Revenue)
		ao.NetMargin = gate(o.Status == models.StatusDelivered, ao.Margin)
		ao.ReturnedRevenue = gate(o.Status == models.StatusReturned, ao.Revenue)
		aggregated = append(aggregated, ao)
	}

	if a.log != nil {
		a.log.WithFields(logrus.Fields{
			"orders":        len(orders),
			"without_lines": withoutLines,
		}).Info("aggregated orders")
	}
	return aggregated, withoutLines
}

// gate implements the status-conditioned rule: the aggregate when the
// condition holds (nil if the aggregate itself is unknown), an explicit 0
// otherwise.
func gate(cond bool, v *float64) *float64 {
	if !cond {
		zero := 0.0
		return &zero
	}
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
