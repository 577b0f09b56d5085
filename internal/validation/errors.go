package validation

import "errors"

// Validation errors
var (
	ErrDuplicateCustomerID = errors.New("duplicate customer_id")
	ErrDuplicateProductID  = errors.New("duplicate product_id")
	ErrDuplicateOrderID    = errors.New("duplicate order_id")
	ErrMissingOrderDate    = errors.New("missing order_date")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrNegativeAmount      = errors.New("monetary amount must not be negative")
	ErrInvalidRow          = errors.New("row failed validation")
)
