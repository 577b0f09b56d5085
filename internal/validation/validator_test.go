package validation

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderpulse/analytics/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestValidateLineItem(t *testing.T) {
	v := NewDataValidator(testLogger())

	ok := models.OrderLineItem{OrderID: "O1", ProductID: "P1", Quantity: 2, UnitPrice: 9.5}
	assert.NoError(t, v.ValidateLineItem(&ok))

	noQty := models.OrderLineItem{OrderID: "O1", ProductID: "P1", UnitPrice: 9.5}
	assert.Error(t, v.ValidateLineItem(&noQty))

	negPrice := models.OrderLineItem{OrderID: "O1", ProductID: "P1", Quantity: 1, UnitPrice: -1}
	assert.Error(t, v.ValidateLineItem(&negPrice))
}

func TestValidateOrderRequiresDate(t *testing.T) {
	v := NewDataValidator(testLogger())

	o := models.Order{OrderID: "O1", CustomerID: "A", Channel: "web", Status: models.StatusDelivered}
	assert.Error(t, v.ValidateOrder(&o))

	o.OrderDate = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, v.ValidateOrder(&o))
}

func TestValidateDatasetFiltersInvalidRows(t *testing.T) {
	v := NewDataValidator(testLogger())
	ds := &models.Dataset{
		Customers: []models.Customer{
			{CustomerID: "A", Country: "DE"},
			{Country: "FR"}, // missing key
		},
		Products: []models.Product{
			{ProductID: "P1", Category: "Home", CostUSD: 1, PriceUSD: 2},
			{ProductID: "P1", Category: "Home", CostUSD: 1, PriceUSD: 2}, // duplicate key
		},
		Orders: []models.Order{
			{OrderID: "O1", CustomerID: "A", Channel: "web", Status: models.StatusDelivered, OrderDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		},
		LineItems: []models.OrderLineItem{
			{OrderID: "O1", ProductID: "P1", Quantity: 1, UnitPrice: 2},
			{OrderID: "O1", ProductID: "P1", Quantity: -3, UnitPrice: 2},
		},
	}

	clean, dropped, errs := v.ValidateDataset(ds)

	assert.Len(t, clean.Customers, 1)
	assert.Len(t, clean.Products, 1)
	assert.Len(t, clean.Orders, 1)
	assert.Len(t, clean.LineItems, 1)
	assert.Equal(t, 3, dropped)
	require.Len(t, errs, 3)
	assert.ErrorIs(t, errs[1], ErrDuplicateProductID)
}

func TestValidateDatasetDoesNotRequireReferences(t *testing.T) {
	v := NewDataValidator(testLogger())
	ds := &models.Dataset{
		Orders: []models.Order{
			// Customer "GHOST" exists nowhere; that is a data-quality
			// signal downstream, not a validation failure.
			{OrderID: "O1", CustomerID: "GHOST", Channel: "web", Status: models.StatusDelivered, OrderDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		},
	}

	clean, dropped, errs := v.ValidateDataset(ds)
	assert.Empty(t, errs)
	assert.Equal(t, 0, dropped)
	assert.Len(t, clean.Orders, 1)
}
