package analytics

import (
	"sort"

	"github.com/orderpulse/analytics/internal/models"
)

// ProductRisk computes the per-product return risk table from the
// order-line view.
//
// total_orders counts distinct orders containing the product;
// returned_orders counts (order, line) pairs whose order is Returned,
// matching the line-level weighting of the category rate. Returned revenue
// is an explicit filter-then-sum over returned lines keyed by product — no
// positional re-indexing into a filtered slice. Products with zero returns
// keep explicit zeros for the returned_* columns. Sorted descending by
// return rate, product_id breaking ties.
func ProductRisk(view []OrderLineView) []models.ProductRisk {
	type acc struct {
		orders          map[string]bool
		returnedOrders  int
		returnedRevenue float64
		returnedMargin  float64
		returnedItems   int
	}
	byProduct := make(map[string]*acc)
	for i := range view {
		row := &view[i]
		a, ok := byProduct[row.ProductID]
		if !ok {
			a = &acc{orders: make(map[string]bool)}
			byProduct[row.ProductID] = a
		}
		a.orders[row.OrderID] = true
		if row.Status == models.StatusReturned {
			a.returnedOrders++
			a.returnedRevenue += row.LineRevenue
			if row.LineMargin != nil {
				a.returnedMargin += *row.LineMargin
			}
			a.returnedItems += row.Quantity
		}
	}

	risks := make([]models.ProductRisk, 0, len(byProduct))
	for _, id := range sortedKeys(byProduct) {
		a := byProduct[id]
		r := models.ProductRisk{
			ProductID:       id,
			TotalOrders:     len(a.orders),
			ReturnedOrders:  a.returnedOrders,
			ReturnedRevenue: a.returnedRevenue,
			ReturnedMargin:  a.returnedMargin,
			ReturnedItems:   a.returnedItems,
		}
		if r.TotalOrders > 0 {
			rate := float64(r.ReturnedOrders) / float64(r.TotalOrders) * 100
			r.ReturnRatePct = &rate
		}
		risks = append(risks, r)
	}
	sort.SliceStable(risks, func(i, j int) bool {
		ri, rj := risks[i].ReturnRatePct, risks[j].ReturnRatePct
		if ri != nil && rj != nil && *ri != *rj {
			return *ri > *rj
		}
		if (ri != nil) != (rj != nil) {
			return ri != nil
		}
		return risks[i].ProductID < risks[j].ProductID
	})
	return risks
}

// ReturnedCustomers aggregates the returned lines per customer: how many
// distinct orders each customer returned, and the revenue and margin those
// returns carry. Customers with no returns do not appear. Sorted by
// customer_id.
func ReturnedCustomers(view []OrderLineView) []models.ReturnedCustomer {
	type acc struct {
		orders  map[string]bool
		revenue float64
		margin  float64
	}
	byCustomer := make(map[string]*acc)
	for i := range view {
		row := &view[i]
		if row.Status != models.StatusReturned {
			continue
		}
		a, ok := byCustomer[row.CustomerID]
		if !ok {
			a = &acc{orders: make(map[string]bool)}
			byCustomer[row.CustomerID] = a
		}
		a.orders[row.OrderID] = true
		a.revenue += row.LineRevenue
		if row.LineMargin != nil {
			a.margin += *row.LineMargin
		}
	}

	out := make([]models.ReturnedCustomer, 0, len(byCustomer))
	for _, id := range sortedKeys(byCustomer) {
		a := byCustomer[id]
		out = append(out, models.ReturnedCustomer{
			CustomerID:      id,
			ReturnedOrders:  len(a.orders),
			ReturnedRevenue: a.revenue,
			ReturnedMargin:  a.margin,
		})
	}
	return out
}

// CustomerProfiles builds the per-customer rollup and assigns the value and
// return segments. The value split is at the median of total_revenue across
// all customers; a customer exactly at the median is High Value. Sorted by
// customer_id.
func CustomerProfiles(orders []models.AggregatedOrder) []models.CustomerProfile {
	type acc struct {
		orders   int
		revenue  float64
		margin   float64
		returned int
	}
	byCustomer := make(map[string]*acc)
	for i := range orders {
		o := &orders[i]
		a, ok := byCustomer[o.CustomerID]
		if !ok {
			a = &acc{}
			byCustomer[o.CustomerID] = a
		}
		a.orders++
		if o.NetRevenue != nil {
			a.revenue += *o.NetRevenue
		}
		if o.NetMargin != nil {
			a.margin += *o.NetMargin
		}
		if o.IsReturned() {
			a.returned++
		}
	}

	ids := sortedKeys(byCustomer)
	revenues := make([]float64, 0, len(ids))
	for _, id := range ids {
		revenues = append(revenues, byCustomer[id].revenue)
	}
	med := median(revenues)

	profiles := make([]models.CustomerProfile, 0, len(ids))
	for _, id := range ids {
		a := byCustomer[id]
		p := models.CustomerProfile{
			CustomerID:     id,
			TotalOrders:    a.orders,
			TotalRevenue:   a.revenue,
			TotalMargin:    a.margin,
			ReturnedOrders: a.returned,
			ReturnFlag:     a.returned > 0,
		}
		if a.revenue >= med {
			p.ValueSegment = models.SegmentHighValue
		} else {
			p.ValueSegment = models.SegmentLowValue
		}
		if a.returned > 0 {
			p.ReturnSegment = models.SegmentReturned
		} else {
			p.ReturnSegment = models.SegmentNoReturn
		}
		p.FinalSegment = p.ValueSegment + " - " + p.ReturnSegment
		profiles = append(profiles, p)
	}
	return profiles
}

// SegmentSummary rolls customer profiles up by final segment: headcount,
// revenue and margin totals and per-customer averages, plus the average
// number of returned orders per customer. Sorted descending by total
// revenue.
func SegmentSummary(profiles []models.CustomerProfile) []models.SegmentSummary {
	type acc struct {
		customers int
		revenue   float64
		margin    float64
		returned  int
	}
	bySegment := make(map[string]*acc)
	for i := range profiles {
		p := &profiles[i]
		a, ok := bySegment[p.FinalSegment]
		if !ok {
			a = &acc{}
			bySegment[p.FinalSegment] = a
		}
		a.customers++
		a.revenue += p.TotalRevenue
		a.margin += p.TotalMargin
		a.returned += p.ReturnedOrders
	}

	out := make([]models.SegmentSummary, 0, len(bySegment))
	for _, seg := range sortedKeys(bySegment) {
		a := bySegment[seg]
		out = append(out, models.SegmentSummary{
			Segment:               seg,
			Customers:             a.customers,
			TotalRevenue:          a.revenue,
			TotalMargin:           a.margin,
			AvgRevenue:            a.revenue / float64(a.customers),
			AvgMargin:             a.margin / float64(a.customers),
			ReturnedOrders:        a.returned,
			AvgReturnsPerCustomer: float64(a.returned) / float64(a.customers),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalRevenue > out[j].TotalRevenue
	})
	return out
}

// median returns the median of values, averaging the two middle values for
// an even count. The input slice is not modified. Returns 0 for an empty
// slice.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
