package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/orderpulse/analytics/internal/models"
)

// Config holds the database connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultConfig returns a default database configuration, overridable
// through the environment.
func DefaultConfig() Config {
	return Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "orderpulse"),
		Password: getEnv("DB_PASSWORD", "orderpulse"),
		DBName:   getEnv("DB_NAME", "orderpulse"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		var intValue int
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Database persists report bundles to PostgreSQL.
type Database struct {
	db     *sqlx.DB
	config Config
	log    *logrus.Logger
}

// NewDatabase creates a new database connection with the given configuration.
func NewDatabase(config Config, log *logrus.Logger) (*Database, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
	)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.WithFields(logrus.Fields{
		"host": config.Host,
		"port": config.Port,
		"db":   config.DBName,
	}).Info("connected to database")
	return &Database{db: db, config: config, log: log}, nil
}

// Close closes the database connection pool.
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// EnsureSchema creates the report tables if they do not exist yet.
func (d *Database) EnsureSchema(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, schemaDDL)
	return errors.Wrap(err, "failed to ensure schema")
}

// SaveBundle persists a full report bundle inside one transaction, keyed by
// the bundle's run ID.
func (d *Database) SaveBundle(ctx context.Context, b *models.ReportBundle) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := d.insertRun(ctx, tx, b); err != nil {
		return err
	}
	if err := d.insertTrends(ctx, tx, b); err != nil {
		return err
	}
	if err := d.insertDimensions(ctx, tx, b); err != nil {
		return err
	}
	if err := d.insertRisk(ctx, tx, b); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit report bundle")
	}
	d.log.WithField("run_id", b.RunID).Info("stored report bundle")
	return nil
}

func (d *Database) insertRun(ctx context.Context, tx *sqlx.Tx, b *models.ReportBundle) error {
	const query = `
		INSERT INTO analytics_runs (
			run_id, generated_at, total_net_revenue, total_orders, total_customers,
			average_order_value, orders_per_customer, return_rate_pct,
			line_items_missing_product, orders_without_line_items,
			orders_unknown_customer, rows_dropped_by_validation
		) VALUES (
			:run_id, :generated_at, :total_net_revenue, :total_orders, :total_customers,
			:average_order_value, :orders_per_customer, :return_rate_pct,
			:line_items_missing_product, :orders_without_line_items,
			:orders_unknown_customer, :rows_dropped_by_validation
		)
	`
	params := map[string]interface{}{
		"run_id":                     b.RunID,
		"generated_at":               b.GeneratedAt,
		"total_net_revenue":          b.KPI.TotalNetRevenue,
		"total_orders":               b.KPI.TotalOrders,
		"total_customers":            b.KPI.TotalCustomers,
		"average_order_value":        b.KPI.AverageOrderValue,
		"orders_per_customer":        b.KPI.OrdersPerCustomer,
		"return_rate_pct":            b.KPI.ReturnRatePct,
		"line_items_missing_product": b.Quality.LineItemsMissingProduct,
		"orders_without_line_items":  b.Quality.OrdersWithoutLineItems,
		"orders_unknown_customer":    b.Quality.OrdersUnknownCustomer,
		"rows_dropped_by_validation": b.Quality.RowsDroppedByValidation,
	}
	if _, err := tx.NamedExecContext(ctx, query, params); err != nil {
		return errors.Wrap(err, "failed to insert run")
	}
	return nil
}

func (d *Database) insertTrends(ctx context.Context, tx *sqlx.Tx, b *models.ReportBundle) error {
	for _, p := range b.Trends.Revenue {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO monthly_revenue (run_id, month, net_revenue) VALUES ($1, $2, $3)`,
			b.RunID, p.Month, p.NetRevenue); err != nil {
			return errors.Wrap(err, "failed to insert monthly revenue")
		}
	}
	for _, p := range b.Trends.Orders {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO monthly_orders (run_id, month, orders) VALUES ($1, $2, $3)`,
			b.RunID, p.Month, p.Orders); err != nil {
			return errors.Wrap(err, "failed to insert monthly orders")
		}
	}
	for _, p := range b.Trends.ReturnRate {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO monthly_return_rate (run_id, month, delivered, returned, return_rate_pct)
			 VALUES ($1, $2, $3, $4, $5)`,
			b.RunID, p.Month, p.Delivered, p.Returned, p.ReturnRatePct); err != nil {
			return errors.Wrap(err, "failed to insert monthly return rate")
		}
	}
	return nil
}

func (d *Database) insertDimensions(ctx context.Context, tx *sqlx.Tx, b *models.ReportBundle) error {
	rates := make([]models.GroupReturnRate, 0,
		len(b.CategoryReturnRates)+len(b.CountryReturnRates)+len(b.ChannelReturnRates))
	rates = append(rates, b.CategoryReturnRates...)
	rates = append(rates, b.CountryReturnRates...)
	rates = append(rates, b.ChannelReturnRates...)
	for _, r := range rates {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO group_return_rates (run_id, dimension, value, count, return_rate_pct, weighting)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			b.RunID, r.Dimension, r.Value, r.Count, r.ReturnRatePct, r.Weighting); err != nil {
			return errors.Wrapf(err, "failed to insert %s return rate", r.Dimension)
		}
	}
	for _, c := range b.ChannelImpact {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO channel_revenue_impact (run_id, channel, total_revenue, returned_revenue, returned_revenue_ratio_pct)
			 VALUES ($1, $2, $3, $4, $5)`,
			b.RunID, c.Channel, c.TotalRevenue, c.ReturnedRevenue, c.ReturnedRevenueRatioPct); err != nil {
			return errors.Wrap(err, "failed to insert channel revenue impact")
		}
	}
	return nil
}

func (d *Database) insertRisk(ctx context.Context, tx *sqlx.Tx, b *models.ReportBundle) error {
	for _, p := range b.ProductRisk {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_risk (run_id, product_id, total_orders, returned_orders,
			   returned_revenue, return_rate_pct, returned_margin, returned_items)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			b.RunID, p.ProductID, p.TotalOrders, p.ReturnedOrders,
			p.ReturnedRevenue, p.ReturnRatePct, p.ReturnedMargin, p.ReturnedItems); err != nil {
			return errors.Wrap(err, "failed to insert product risk")
		}
	}
	for _, c := range b.CustomerProfiles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO customer_profiles (run_id, customer_id, total_orders, total_revenue,
			   total_margin, returned_orders, return_flag, value_segment, return_segment, final_segment)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			b.RunID, c.CustomerID, c.TotalOrders, c.TotalRevenue,
			c.TotalMargin, c.ReturnedOrders, c.ReturnFlag, c.ValueSegment, c.ReturnSegment, c.FinalSegment); err != nil {
			return errors.Wrap(err, "failed to insert customer profile")
		}
	}
	for _, s := range b.SegmentSummary {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO segment_summary (run_id, segment, customers, total_revenue, total_margin,
			   avg_revenue, avg_margin, returned_orders, avg_returns_per_customer)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			b.RunID, s.Segment, s.Customers, s.TotalRevenue, s.TotalMargin,
			s.AvgRevenue, s.AvgMargin, s.ReturnedOrders, s.AvgReturnsPerCustomer); err != nil {
			return errors.Wrap(err, "failed to insert segment summary")
		}
	}
	return nil
}
