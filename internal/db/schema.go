package db

// schemaDDL creates the report tables. Undefined ratios are stored as NULL,
// never 0, so downstream consumers can tell "no risk" from "not computable".
const schemaDDL = `
CREATE TABLE IF NOT EXISTS analytics_runs (
	run_id TEXT PRIMARY KEY,
	generated_at TIMESTAMPTZ NOT NULL,
	total_net_revenue DOUBLE PRECISION NOT NULL,
	total_orders INTEGER NOT NULL,
	total_customers INTEGER NOT NULL,
	average_order_value DOUBLE PRECISION,
	orders_per_customer DOUBLE PRECISION NOT NULL,
	return_rate_pct DOUBLE PRECISION NOT NULL,
	line_items_missing_product INTEGER NOT NULL,
	orders_without_line_items INTEGER NOT NULL,
	orders_unknown_customer INTEGER NOT NULL,
	rows_dropped_by_validation INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS monthly_revenue (
	run_id TEXT NOT NULL REFERENCES analytics_runs(run_id),
	month DATE NOT NULL,
	net_revenue DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, month)
);

CREATE TABLE IF NOT EXISTS monthly_orders (
	run_id TEXT NOT NULL REFERENCES analytics_runs(run_id),
	month DATE NOT NULL,
	orders INTEGER NOT NULL,
	PRIMARY KEY (run_id, month)
);

CREATE TABLE IF NOT EXISTS monthly_return_rate (
	run_id TEXT NOT NULL REFERENCES analytics_runs(run_id),
	month DATE NOT NULL,
	delivered INTEGER NOT NULL,
	returned INTEGER NOT NULL,
	return_rate_pct DOUBLE PRECISION,
	PRIMARY KEY (run_id, month)
);

CREATE TABLE IF NOT EXISTS group_return_rates (
	run_id TEXT NOT NULL REFERENCES analytics_runs(run_id),
	dimension TEXT NOT NULL,
	value TEXT NOT NULL,
	count INTEGER NOT NULL,
	return_rate_pct DOUBLE PRECISION NOT NULL,
	weighting TEXT NOT NULL,
	PRIMARY KEY (run_id, dimension, value)
);

CREATE TABLE IF NOT EXISTS channel_revenue_impact (
	run_id TEXT NOT NULL REFERENCES analytics_runs(run_id),
	channel TEXT NOT NULL,
	total_revenue DOUBLE PRECISION NOT NULL,
	returned_revenue DOUBLE PRECISION NOT NULL,
	returned_revenue_ratio_pct DOUBLE PRECISION,
	PRIMARY KEY (run_id, channel)
);

CREATE TABLE IF NOT EXISTS product_risk (
	run_id TEXT NOT NULL REFERENCES analytics_runs(run_id),
	product_id TEXT NOT NULL,
	total_orders INTEGER NOT NULL,
	returned_orders INTEGER NOT NULL,
	returned_revenue DOUBLE PRECISION NOT NULL,
	return_rate_pct DOUBLE PRECISION,
	returned_margin DOUBLE PRECISION NOT NULL,
	returned_items INTEGER NOT NULL,
	PRIMARY KEY (run_id, product_id)
);

CREATE TABLE IF NOT EXISTS customer_profiles (
	run_id TEXT NOT NULL REFERENCES analytics_runs(run_id),
	customer_id TEXT NOT NULL,
	total_orders INTEGER NOT NULL,
	total_revenue DOUBLE PRECISION NOT NULL,
	total_margin DOUBLE PRECISION NOT NULL,
	returned_orders INTEGER NOT NULL,
	return_flag BOOLEAN NOT NULL,
	value_segment TEXT NOT NULL,
	return_segment TEXT NOT NULL,
	final_segment TEXT NOT NULL,
	PRIMARY KEY (run_id, customer_id)
);

CREATE TABLE IF NOT EXISTS segment_summary (
	run_id TEXT NOT NULL REFERENCES analytics_runs(run_id),
	segment TEXT NOT NULL,
	customers INTEGER NOT NULL,
	total_revenue DOUBLE PRECISION NOT NULL,
	total_margin DOUBLE PRECISION NOT NULL,
	avg_revenue DOUBLE PRECISION NOT NULL,
	avg_margin DOUBLE PRECISION NOT NULL,
	returned_orders INTEGER NOT NULL,
	avg_returns_per_customer DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, segment)
);
`
