package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/orderpulse/analytics/internal/models"
)

// DataValidator validates the four source tables before the pipeline
// touches them. It enforces shape (struct tags) and key uniqueness;
// referential integrity across tables is deliberately NOT checked here —
// missing references propagate as nulls downstream and are surfaced as
// data-quality counters instead.
type DataValidator struct {
	validate *validator.Validate
	log      *logrus.Logger
}

// NewDataValidator creates a new validator for retail order data.
func NewDataValidator(log *logrus.Logger) *DataValidator {
	return &DataValidator{
		validate: validator.New(),
		log:      log,
	}
}

// ValidateCustomer validates a single customer row.
func (v *DataValidator) ValidateCustomer(c *models.Customer) error {
	return v.validate.Struct(c)
}

// ValidateProduct validates a single product row.
func (v *DataValidator) ValidateProduct(p *models.Product) error {
	return v.validate.Struct(p)
}

// ValidateOrder validates a single order row.
func (v *DataValidator) ValidateOrder(o *models.Order) error {
	if err := v.validate.Struct(o); err != nil {
		return err
	}
	if o.OrderDate.IsZero() {
		return ErrMissingOrderDate
	}
	return nil
}

// ValidateLineItem validates a single order line item.
func (v *DataValidator) ValidateLineItem(li *models.OrderLineItem) error {
	if err := v.validate.Struct(li); err != nil {
		return err
	}
	if li.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if li.UnitPrice < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// ValidateDataset validates every row of the dataset. It returns a copy of
// the dataset with invalid rows removed, the number of rows dropped, and
// the per-row errors. Duplicate primary keys are invalid: the second and
// later occurrences are dropped.
func (v *DataValidator) ValidateDataset(ds *models.Dataset) (*models.Dataset, int, []error) {
	var errs []error
	clean := &models.Dataset{
		Customers: make([]models.Customer, 0, len(ds.Customers)),
		Products:  make([]models.Product, 0, len(ds.Products)),
		Orders:    make([]models.Order, 0, len(ds.Orders)),
		LineItems: make([]models.OrderLineItem, 0, len(ds.LineItems)),
	}

	seenCustomers := make(map[string]bool, len(ds.Customers))
	for i := range ds.Customers {
		c := ds.Customers[i]
		if err := v.ValidateCustomer(&c); err != nil {
			errs = append(errs, fmt.Errorf("customers row %d: %w", i, err))
			continue
		}
		if seenCustomers[c.CustomerID] {
			errs = append(errs, fmt.Errorf("customers row %d (%s): %w", i, c.CustomerID, ErrDuplicateCustomerID))
			continue
		}
		seenCustomers[c.CustomerID] = true
		clean.Customers = append(clean.Customers, c)
	}

	seenProducts := make(map[string]bool, len(ds.Products))
	for i := range ds.Products {
		p := ds.Products[i]
		if err := v.ValidateProduct(&p); err != nil {
			errs = append(errs, fmt.Errorf("products row %d: %w", i, err))
			continue
		}
		if seenProducts[p.ProductID] {
			errs = append(errs, fmt.Errorf("products row %d (%s): %w", i, p.ProductID, ErrDuplicateProductID))
			continue
		}
		seenProducts[p.ProductID] = true
		clean.Products = append(clean.Products, p)
	}

	seenOrders := make(map[string]bool, len(ds.Orders))
	for i := range ds.Orders {
		o := ds.Orders[i]
		if err := v.ValidateOrder(&o); err != nil {
			errs = append(errs, fmt.Errorf("orders row %d: %w", i, err))
			continue
		}
		if seenOrders[o.OrderID] {
			errs = append(errs, fmt.Errorf("orders row %d (%s): %w", i, o.OrderID, ErrDuplicateOrderID))
			continue
		}
		seenOrders[o.OrderID] = true
		clean.Orders = append(clean.Orders, o)
	}

	for i := range ds.LineItems {
		li := ds.LineItems[i]
		if err := v.ValidateLineItem(&li); err != nil {
			errs = append(errs, fmt.Errorf("order_details row %d: %w", i, err))
			continue
		}
		clean.LineItems = append(clean.LineItems, li)
	}

	dropped := (len(ds.Customers) - len(clean.Customers)) +
		(len(ds.Products) - len(clean.Products)) +
		(len(ds.Orders) - len(clean.Orders)) +
		(len(ds.LineItems) - len(clean.LineItems))

	if dropped > 0 && v.log != nil {
		v.log.WithFields(logrus.Fields{
			"dropped": dropped,
			"errors":  len(errs),
		}).Warn("validation dropped source rows")
	}

	return clean, dropped, errs
}
