package models

import (
	"time"
)

// Value segments for the customer median split.
const (
	SegmentHighValue = "High Value"
	SegmentLowValue  = "Low Value"
	SegmentReturned  = "Returned"
	SegmentNoReturn  = "No Return"
)

// KPISummary holds the company-wide scalar metrics.
//
// AverageOrderValue is nil when no order has positive net revenue.
type KPISummary struct {
	TotalNetRevenue   float64  `json:"total_net_revenue" db:"total_net_revenue"`
	TotalOrders       int      `json:"total_orders" db:"total_orders"`
	TotalCustomers    int      `json:"total_customers" db:"total_customers"`
	AverageOrderValue *float64 `json:"average_order_value,omitempty" db:"average_order_value"`
	OrdersPerCustomer float64  `json:"orders_per_customer" db:"orders_per_customer"`
	ReturnRatePct     float64  `json:"return_rate_pct" db:"return_rate_pct"`
}

// MonthlyRevenuePoint is one month of net revenue.
type MonthlyRevenuePoint struct {
	Month      time.Time `json:"month" db:"month"`
	NetRevenue float64   `json:"net_revenue" db:"net_revenue"`
}

// MonthlyOrderPoint is one month of distinct order counts.
type MonthlyOrderPoint struct {
	Month  time.Time `json:"month" db:"month"`
	Orders int       `json:"orders" db:"orders"`
}

// MonthlyReturnRatePoint is one month of the delivered/returned split.
// ReturnRatePct is nil for months with neither delivered nor returned
// orders: the rate is not computable there, which is different from 0.
type MonthlyReturnRatePoint struct {
	Month         time.Time `json:"month" db:"month"`
	Delivered     int       `json:"delivered" db:"delivered"`
	Returned      int       `json:"returned" db:"returned"`
	ReturnRatePct *float64  `json:"return_rate_pct,omitempty" db:"return_rate_pct"`
}

// TrendReport holds the three monthly series, each ordered chronologically.
type TrendReport struct {
	Revenue    []MonthlyRevenuePoint    `json:"monthly_revenue"`
	Orders     []MonthlyOrderPoint      `json:"monthly_orders"`
	ReturnRate []MonthlyReturnRatePoint `json:"monthly_return_rate"`
}

// GroupWeighting names the denominator used for a grouped return rate.
type GroupWeighting string

const (
	// OrderWeighted counts each order once in its group.
	OrderWeighted GroupWeighting = "order"
	// LineWeighted counts an order once per matching line item, so an
	// order with three lines in a category weighs three times in that
	// category's rate.
	LineWeighted GroupWeighting = "line"
)

// GroupReturnRate is the return rate for one value of a grouping dimension.
type GroupReturnRate struct {
	Dimension     string         `json:"dimension" db:"dimension"`
	Value         string         `json:"value" db:"value"`
	Count         int            `json:"count" db:"count"`
	ReturnRatePct float64        `json:"return_rate_pct" db:"return_rate_pct"`
	Weighting     GroupWeighting `json:"weighting" db:"weighting"`
}

// ChannelRevenueImpact measures how much of a channel's gross revenue is
// tied up in returns. ReturnedRevenueRatioPct is nil when the channel has
// no revenue at all.
type ChannelRevenueImpact struct {
	Channel                 string   `json:"channel" db:"channel"`
	TotalRevenue            float64  `json:"total_revenue" db:"total_revenue"`
	ReturnedRevenue         float64  `json:"returned_revenue" db:"returned_revenue"`
	ReturnedRevenueRatioPct *float64 `json:"returned_revenue_ratio_pct,omitempty" db:"returned_revenue_ratio_pct"`
}

// ProductRisk is the combined per-product return risk row. ReturnRatePct
// is nil when the product appears in no orders.
type ProductRisk struct {
	ProductID       string   `json:"product_id" db:"product_id"`
	TotalOrders     int      `json:"total_orders" db:"total_orders"`
	ReturnedOrders  int      `json:"returned_orders" db:"returned_orders"`
	ReturnedRevenue float64  `json:"returned_revenue" db:"returned_revenue"`
	ReturnRatePct   *float64 `json:"return_rate_pct,omitempty" db:"return_rate_pct"`
	ReturnedMargin  float64  `json:"returned_margin" db:"returned_margin"`
	ReturnedItems   int      `json:"returned_items" db:"returned_items"`
}

// ReturnedCustomer aggregates the returned lines of one customer.
type ReturnedCustomer struct {
	CustomerID      string  `json:"customer_id" db:"customer_id"`
	ReturnedOrders  int     `json:"returned_orders" db:"returned_orders"`
	ReturnedRevenue float64 `json:"returned_revenue" db:"returned_revenue"`
	ReturnedMargin  float64 `json:"returned_margin" db:"returned_margin"`
}

// CustomerProfile is the per-customer rollup with its segmentation.
// FinalSegment is always one of the four ValueSegment x ReturnSegment
// combinations.
type CustomerProfile struct {
	CustomerID     string  `json:"customer_id" db:"customer_id"`
	TotalOrders    int     `json:"total_orders" db:"total_orders"`
	TotalRevenue   float64 `json:"total_revenue" db:"total_revenue"`
	TotalMargin    float64 `json:"total_margin" db:"total_margin"`
	ReturnedOrders int     `json:"returned_orders" db:"returned_orders"`
	ReturnFlag     bool    `json:"return_flag" db:"return_flag"`
	ValueSegment   string  `json:"value_segment" db:"value_segment"`
	ReturnSegment  string  `json:"return_segment" db:"return_segment"`
	FinalSegment   string  `json:"final_segment" db:"final_segment"`
}

// SegmentSummary is the rollup of customer profiles for one final segment.
type SegmentSummary struct {
	Segment               string  `json:"segment" db:"segment"`
	Customers             int     `json:"customers" db:"customers"`
	TotalRevenue          float64 `json:"total_revenue" db:"total_revenue"`
	TotalMargin           float64 `json:"total_margin" db:"total_margin"`
	AvgRevenue            float64 `json:"avg_revenue" db:"avg_revenue"`
	AvgMargin             float64 `json:"avg_margin" db:"avg_margin"`
	ReturnedOrders        int     `json:"returned_orders" db:"returned_orders"`
	AvgReturnsPerCustomer float64 `json:"avg_returns_per_customer" db:"avg_returns_per_customer"`
}

// DataQuality carries the referential-integrity counters observed while
// enriching and aggregating, so silent nulls in the source data surface in
// logs and reports instead of vanishing into the aggregates.
type DataQuality struct {
	LineItemsMissingProduct int `json:"line_items_missing_product" db:"line_items_missing_product"`
	OrdersWithoutLineItems  int `json:"orders_without_line_items" db:"orders_without_line_items"`
	OrdersUnknownCustomer   int `json:"orders_unknown_customer" db:"orders_unknown_customer"`
	RowsDroppedByValidation int `json:"rows_dropped_by_validation" db:"rows_dropped_by_validation"`
}

// ReportBundle is everything one pipeline run produces.
type ReportBundle struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	KPI    KPISummary  `json:"kpi"`
	Trends TrendReport `json:"trends"`

	CategoryReturnRates []GroupReturnRate      `json:"category_return_rates"`
	CountryReturnRates  []GroupReturnRate      `json:"country_return_rates"`
	ChannelReturnRates  []GroupReturnRate      `json:"channel_return_rates"`
	ChannelImpact       []ChannelRevenueImpact `json:"channel_impact"`

	ProductRisk       []ProductRisk      `json:"product_risk"`
	ReturnedCustomers []ReturnedCustomer `json:"returned_customers"`
	CustomerProfiles  []CustomerProfile  `json:"customer_profiles"`
	SegmentSummary    []SegmentSummary   `json:"segment_summary"`

	Quality DataQuality `json:"data_quality"`
}
