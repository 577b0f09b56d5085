// Package loader reads the four source tables from CSV files, the format
// the upstream export produces: customers.csv, products.csv, orders.csv and
// order_details.csv. Dates must parse; a malformed order_date is fatal here
// so the pipeline can assume every date it receives is valid.
package loader

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/orderpulse/analytics/internal/models"
)

const dateLayout = "2006-01-02"

// Source file names inside the data directory.
const (
	CustomersFile    = "customers.csv"
	ProductsFile     = "products.csv"
	OrdersFile       = "orders.csv"
	OrderDetailsFile = "order_details.csv"
)

// LoadDataset loads all four tables from dir.
func LoadDataset(dir string) (*models.Dataset, error) {
	customers, err := LoadCustomers(filepath.Join(dir, CustomersFile))
	if err != nil {
		return nil, err
	}
	products, err := LoadProducts(filepath.Join(dir, ProductsFile))
	if err != nil {
		return nil, err
	}
	orders, err := LoadOrders(filepath.Join(dir, OrdersFile))
	if err != nil {
		return nil, err
	}
	lineItems, err := LoadOrderLineItems(filepath.Join(dir, OrderDetailsFile))
	if err != nil {
		return nil, err
	}
	return &models.Dataset{
		Customers: customers,
		Products:  products,
		Orders:    orders,
		LineItems: lineItems,
	}, nil
}

// LoadCustomers loads the customers table from a CSV file.
func LoadCustomers(path string) ([]models.Customer, error) {
	var customers []models.Customer
	err := readCSV(path, func(row record) error {
		customers = append(customers, models.Customer{
			CustomerID: row.get("customer_id"),
			Country:    row.get("country"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// LoadProducts loads the products table from a CSV file.
func LoadProducts(path string) ([]models.Product, error) {
	var products []models.Product
	err := readCSV(path, func(row record) error {
		cost, err := row.getFloat("cost_usd")
		if err != nil {
			return err
		}
		price, err := row.getFloat("price_usd")
		if err != nil {
			return err
		}
		products = append(products, models.Product{
			ProductID: row.get("product_id"),
			Category:  row.get("category"),
			CostUSD:   cost,
			PriceUSD:  price,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// LoadOrders loads the orders table from a CSV file. delivery_date and
// return_date may be empty; order_date may not.
func LoadOrders(path string) ([]models.Order, error) {
	var orders []models.Order
	err := readCSV(path, func(row record) error {
		orderDate, err := row.getDate("order_date")
		if err != nil {
			return err
		}
		if orderDate == nil {
			return errors.Errorf("missing order_date for order %q", row.get("order_id"))
		}
		deliveryDate, err := row.getDate("delivery_date")
		if err != nil {
			return err
		}
		returnDate, err := row.getDate("return_date")
		if err != nil {
			return err
		}
		orders = append(orders, models.Order{
			OrderID:      row.get("order_id"),
			CustomerID:   row.get("customer_id"),
			Channel:      row.get("channel"),
			Status:       models.OrderStatus(row.get("status")),
			OrderDate:    *orderDate,
			DeliveryDate: deliveryDate,
			ReturnDate:   returnDate,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// LoadOrderLineItems loads the order_details table from a CSV file.
func LoadOrderLineItems(path string) ([]models.OrderLineItem, error) {
	var lines []models.OrderLineItem
	err := readCSV(path, func(row record) error {
		qty, err := row.getInt("quantity")
		if err != nil {
			return err
		}
		price, err := row.getFloat("unit_price")
		if err != nil {
			return err
		}
		lines = append(lines, models.OrderLineItem{
			OrderID:   row.get("order_id"),
			ProductID: row.get("product_id"),
			Quantity:  qty,
			UnitPrice: price,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// record is one data row paired with the header's column positions.
type record struct {
	columns map[string]int
	fields  []string
}

func (r record) get(name string) string {
	idx, ok := r.columns[name]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

func (r record) getFloat(name string) (float64, error) {
	raw := r.get(name)
	if raw == "" {
		return 0, errors.Errorf("missing value for column %q", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "column %q", name)
	}
	return v, nil
}

func (r record) getInt(name string) (int, error) {
	raw := r.get(name)
	if raw == "" {
		return 0, errors.Errorf("missing value for column %q", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "column %q", name)
	}
	return v, nil
}

// getDate parses a date column; an empty cell returns nil, a malformed one
// returns an error.
func (r record) getDate(name string) (*time.Time, error) {
	raw := r.get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "column %q", name)
	}
	t = t.UTC()
	return &t, nil
}

// readCSV streams the rows of a header-prefixed CSV file through fn.
func readCSV(path string, fn func(record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return errors.Wrapf(err, "failed to read header of %s", path)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	line := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "%s line %d", path, line+1)
		}
		line++
		if err := fn(record{columns: columns, fields: fields}); err != nil {
			return errors.Wrapf(err, "%s line %d", path, line)
		}
	}
}
