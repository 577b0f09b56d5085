package models

import (
	"time"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	StatusDelivered OrderStatus = "Delivered"
	StatusReturned  OrderStatus = "Returned"
	StatusShipped   OrderStatus = "Shipped"
	StatusCancelled OrderStatus = "Cancelled"
)

// Customer represents a single customer row
type Customer struct {
	CustomerID string `json:"customer_id" db:"customer_id" validate:"required"`
	Country    string `json:"country" db:"country" validate:"required"`
}

// Product represents a single product row
type Product struct {
	ProductID string  `json:"product_id" db:"product_id" validate:"required"`
	Category  string  `json:"category" db:"category" validate:"required"`
	CostUSD   float64 `json:"cost_usd" db:"cost_usd" validate:"gte=0"`
	PriceUSD  float64 `json:"price_usd" db:"price_usd" validate:"gte=0"`
}

// Order represents a single order row. DeliveryDate and ReturnDate are
// nullable in the source data.
type Order struct {
	OrderID      string      `json:"order_id" db:"order_id" validate:"required"`
	CustomerID   string      `json:"customer_id" db:"customer_id" validate:"required"`
	Channel      string      `json:"channel" db:"channel" validate:"required"`
	Status       OrderStatus `json:"status" db:"status" validate:"required"`
	OrderDate    time.Time   `json:"order_date" db:"order_date" validate:"required"`
	DeliveryDate *time.Time  `json:"delivery_date,omitempty" db:"delivery_date"`
	ReturnDate   *time.Time  `json:"return_date,omitempty" db:"return_date"`
}

// OrderLineItem represents one (order, product) line of an order
type OrderLineItem struct {
	OrderID   string  `json:"order_id" db:"order_id" validate:"required"`
	ProductID string  `json:"product_id" db:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" db:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" db:"unit_price" validate:"gte=0"`
}

// Dataset bundles the four source tables for one analytics run.
type Dataset struct {
	Customers []Customer      `json:"customers"`
	Products  []Product       `json:"products"`
	Orders    []Order         `json:"orders"`
	LineItems []OrderLineItem `json:"line_items"`
}

// EnrichedLineItem is an order line joined to its product. The pointer
// fields are nil when the line references an unknown product: the cost is
// unknowable, so everything derived from it stays unknown rather than zero.
type EnrichedLineItem struct {
	OrderLineItem
	CostUSD     *float64 `json:"cost_usd,omitempty" db:"cost_usd"`
	LineRevenue float64  `json:"line_revenue" db:"line_revenue"`
	LineCost    *float64 `json:"line_cost,omitempty" db:"line_cost"`
	LineMargin  *float64 `json:"line_margin,omitempty" db:"line_margin"`
}

// AggregatedOrder is an order with its line-item rollup and the derived
// delivery-conditioned figures attached.
//
// Revenue/Cost/Margin/Items are nil when the order has no line items at
// all; that is a data-quality signal, not a zero. NetRevenue, NetMargin and
// ReturnedRevenue are nil only when the gating status applies but the
// underlying aggregate is itself unknown.
type AggregatedOrder struct {
	Order
	Revenue         *float64  `json:"revenue,omitempty" db:"revenue"`
	Cost            *float64  `json:"cost,omitempty" db:"cost"`
	Margin          *float64  `json:"margin,omitempty" db:"margin"`
	Items           *int      `json:"items,omitempty" db:"items"`
	NetRevenue      *float64  `json:"net_revenue,omitempty" db:"net_revenue"`
	NetMargin       *float64  `json:"net_margin,omitempty" db:"net_margin"`
	ReturnedRevenue *float64  `json:"returned_revenue,omitempty" db:"returned_revenue"`
	OrderMonth      time.Time `json:"order_month" db:"order_month"`
}

// IsDelivered reports whether the order counts toward net figures.
func (o *AggregatedOrder) IsDelivered() bool { return o.Status == StatusDelivered }

// IsReturned reports whether the order counts as a return.
func (o *AggregatedOrder) IsReturned() bool { return o.Status == StatusReturned }
