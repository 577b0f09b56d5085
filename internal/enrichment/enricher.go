package enrichment

import (
	"github.com/sirupsen/logrus"

	"github.com/orderpulse/analytics/internal/models"
)

// LineEnricher attaches product economics to order line items.
type LineEnricher struct {
	log *logrus.Logger
}

// NewLineEnricher creates a new line-item enricher.
func NewLineEnricher(log *logrus.Logger) *LineEnricher {
	return &LineEnricher{log: log}
}

// EnrichLineItems joins each line item to its product by product_id and
// derives line_revenue, line_cost and line_margin. The join is a left
// join: a line whose product is unknown keeps a nil cost, and everything
// derived from the cost stays nil too. The second return value is the
// count of such lines.
//
// The input slices are never mutated; a fresh slice is returned.
func (e *LineEnricher) EnrichLineItems(lines []models.OrderLineItem, products []models.Product) ([]models.EnrichedLineItem, int) {
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	enriched := make([]models.EnrichedLineItem, 0, len(lines))
	missing := 0
	for _, li := range lines {
		el := models.EnrichedLineItem{
			OrderLineItem: li,
			LineRevenue:   float64(li.Quantity) * li.UnitPrice,
		}
		if p, ok := byID[li.ProductID]; ok {
			cost := p.CostUSD
			lineCost := float64(li.Quantity) * cost
			lineMargin := el.LineRevenue - lineCost
			el.CostUSD = &cost
			el.LineCost = &lineCost
			el.LineMargin = &lineMargin
		} else {
			missing++
		}
		enriched = append(enriched, el)
	}

	if e.log != nil {
		e.log.WithFields(logrus.Fields{
			"lines":           len(lines),
			"missing_product": missing,
		}).Info("enriched order line items")
	}
	return enriched, missing
}
