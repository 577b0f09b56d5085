package analytics

import (
	"sort"

	"github.com/orderpulse/analytics/internal/models"
)

// OrderLineView is one row of the Orders x OrderLineItems x Products hash
// join used by the line-weighted analyses. Category is nil when the line's
// product is unknown; such rows are skipped by category grouping, the same
// way the line's cost stays out of the margin sums.
type OrderLineView struct {
	OrderID     string
	CustomerID  string
	Channel     string
	Status      models.OrderStatus
	ProductID   string
	Category    *string
	Quantity    int
	LineRevenue float64
	LineMargin  *float64
}

// JoinOrderLines builds the order-line view by explicit key joins. Lines
// referencing an unknown order are dropped (they have no status to group
// by); lines referencing an unknown product keep a nil category.
func JoinOrderLines(orders []models.AggregatedOrder, lines []models.EnrichedLineItem, products []models.Product) []OrderLineView {
	ordersByID := make(map[string]*models.AggregatedOrder, len(orders))
	for i := range orders {
		ordersByID[orders[i].OrderID] = &orders[i]
	}
	categoryByID := make(map[string]string, len(products))
	for _, p := range products {
		categoryByID[p.ProductID] = p.Category
	}

	view := make([]OrderLineView, 0, len(lines))
	for i := range lines {
		li := &lines[i]
		o, ok := ordersByID[li.OrderID]
		if !ok {
			continue
		}
		row := OrderLineView{
			OrderID:     li.OrderID,
			CustomerID:  o.CustomerID,
			Channel:     o.Channel,
			Status:      o.Status,
			ProductID:   li.ProductID,
			Quantity:    li.Quantity,
			LineRevenue: li.LineRevenue,
			LineMargin:  li.LineMargin,
		}
		if cat, ok := categoryByID[li.ProductID]; ok {
			row.Category = &cat
		}
		view = append(view, row)
	}
	return view
}

// ReturnRateByCategory computes the line-weighted return rate per product
// category: an order with N line items in a category occurs N times in
// that category's denominator. Rows whose category is unknown are skipped.
func ReturnRateByCategory(view []OrderLineView) []models.GroupReturnRate {
	keys := make([]string, 0, len(view))
	returned := make([]bool, 0, len(view))
	for i := range view {
		if view[i].Category == nil {
			continue
		}
		keys = append(keys, *view[i].Category)
		returned = append(returned, view[i].Status == models.StatusReturned)
	}
	return groupReturnRates("category", models.LineWeighted, keys, returned)
}

// ReturnRateByCountry computes the order-weighted return rate per customer
// country (Orders joined to Customers on customer_id). Orders whose
// customer is unknown are skipped; the caller observes them through the
// data-quality counters.
func ReturnRateByCountry(orders []models.AggregatedOrder, customers []models.Customer) ([]models.GroupReturnRate, int) {
	countryByID := make(map[string]string, len(customers))
	for _, c := range customers {
		countryByID[c.CustomerID] = c.Country
	}

	keys := make([]string, 0, len(orders))
	returned := make([]bool, 0, len(orders))
	unknown := 0
	for i := range orders {
		country, ok := countryByID[orders[i].CustomerID]
		if !ok {
			unknown++
			continue
		}
		keys = append(keys, country)
		returned = append(returned, orders[i].IsReturned())
	}
	return groupReturnRates("country", models.OrderWeighted, keys, returned), unknown
}

// ReturnRateByChannel computes the order-weighted return rate per sales
// channel.
func ReturnRateByChannel(orders []models.AggregatedOrder) []models.GroupReturnRate {
	keys := make([]string, 0, len(orders))
	returned := make([]bool, 0, len(orders))
	for i := range orders {
		keys = append(keys, orders[i].Channel)
		returned = append(returned, orders[i].IsReturned())
	}
	return groupReturnRates("channel", models.OrderWeighted, keys, returned)
}

// ChannelRevenueImpact sums gross and returned revenue per channel and
// derives the share of each channel's revenue tied up in returns. Channels
// with zero total revenue keep a nil ratio. Sorted descending by returned
// revenue.
func ChannelRevenueImpact(orders []models.AggregatedOrder) []models.ChannelRevenueImpact {
	type sums struct {
		total    float64
		returned float64
	}
	byChannel := make(map[string]*sums)
	for i := range orders {
		o := &orders[i]
		s, ok := byChannel[o.Channel]
		if !ok {
			s = &sums{}
			byChannel[o.Channel] = s
		}
		if o.Revenue != nil {
			s.total += *o.Revenue
		}
		if o.ReturnedRevenue != nil {
			s.returned += *o.ReturnedRevenue
		}
	}

	channels := sortedKeys(byChannel)
	impact := make([]models.ChannelRevenueImpact, 0, len(channels))
	for _, ch := range channels {
		s := byChannel[ch]
		row := models.ChannelRevenueImpact{
			Channel:         ch,
			TotalRevenue:    s.total,
			ReturnedRevenue: s.returned,
		}
		if s.total > 0 {
			ratio := s.returned / s.total * 100
			row.ReturnedRevenueRatioPct = &ratio
		}
		impact = append(impact, row)
	}
	sort.SliceStable(impact, func(i, j int) bool {
		return impact[i].ReturnedRevenue > impact[j].ReturnedRevenue
	})
	return impact
}

// groupReturnRates reduces parallel (key, returned) observations into one
// return-rate row per key, sorted descending by rate with the key breaking
// ties so repeated runs yield identical tables.
func groupReturnRates(dimension string, weighting models.GroupWeighting, keys []string, returnedFlags []bool) []models.GroupReturnRate {
	type counts struct {
		total    int
		returned int
	}
	byKey := make(map[string]*counts)
	for i, k := range keys {
		c, ok := byKey[k]
		if !ok {
			c = &counts{}
			byKey[k] = c
		}
		c.total++
		if returnedFlags[i] {
			c.returned++
		}
	}

	rows := make([]models.GroupReturnRate, 0, len(byKey))
	for _, k := range sortedKeys(byKey) {
		c := byKey[k]
		rows = append(rows, models.GroupReturnRate{
			Dimension:     dimension,
			Value:         k,
			Count:         c.total,
			ReturnRatePct: float64(c.returned) / float64(c.total) * 100,
			Weighting:     weighting,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ReturnRatePct != rows[j].ReturnRatePct {
			return rows[i].ReturnRatePct > rows[j].ReturnRatePct
		}
		return rows[i].Value < rows[j].Value
	})
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
