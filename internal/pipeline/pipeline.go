package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/orderpulse/analytics/internal/aggregation"
	"github.com/orderpulse/analytics/internal/analytics"
	"github.com/orderpulse/analytics/internal/enrichment"
	"github.com/orderpulse/analytics/internal/models"
	"github.com/orderpulse/analytics/internal/validation"
)

// Options contains configuration options for the pipeline.
type Options struct {
	// Strict makes any invalid source row fail the run instead of being
	// filtered out.
	Strict bool
	// Sequential disables the concurrent analyzer fan-out. Results are
	// identical either way; this exists for debugging.
	Sequential bool
}

// DefaultOptions returns the default pipeline options.
func DefaultOptions() Options {
	return Options{}
}

// Pipeline runs the full analytics chain: validate, enrich, aggregate,
// then fan out the four downstream analyzers over immutable snapshots.
type Pipeline struct {
	options    Options
	validator  *validation.DataValidator
	enricher   *enrichment.LineEnricher
	aggregator *aggregation.OrderAggregator
	log        *logrus.Logger
}

// NewPipeline creates a new analytics pipeline.
func NewPipeline(log *logrus.Logger, options Options) *Pipeline {
	return &Pipeline{
		options:    options,
		validator:  validation.NewDataValidator(log),
		enricher:   enrichment.NewLineEnricher(log),
		aggregator: aggregation.NewOrderAggregator(log),
		log:        log,
	}
}

// Run executes the pipeline over the dataset and assembles the report
// bundle. The dataset is never mutated; every derived table is produced
// fresh. The only hard failures are invalid rows under Strict and a zero
// customer count, which leaves every per-customer ratio undefined.
func (p *Pipeline) Run(ctx context.Context, ds *models.Dataset) (*models.ReportBundle, error) {
	runID := generateRunID()
	p.log.WithFields(logrus.Fields{
		"run_id":     runID,
		"customers":  len(ds.Customers),
		"products":   len(ds.Products),
		"orders":     len(ds.Orders),
		"line_items": len(ds.LineItems),
	}).Info("starting analytics run")

	clean, dropped, errs := p.validator.ValidateDataset(ds)
	if p.options.Strict && len(errs) > 0 {
		return nil, fmt.Errorf("strict validation failed: %d invalid rows (first: %w)", len(errs), errs[0])
	}

	enriched, missingProduct := p.enricher.EnrichLineItems(clean.LineItems, clean.Products)
	orders, withoutLines := p.aggregator.Aggregate(clean.Orders, enriched)

	kpi, err := analytics.SummarizeKPIs(orders)
	if err != nil {
		return nil, fmt.Errorf("kpi summary: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bundle := &models.ReportBundle{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		KPI:         kpi,
		Quality: models.DataQuality{
			LineItemsMissingProduct: missingProduct,
			OrdersWithoutLineItems:  withoutLines,
			RowsDroppedByValidation: dropped,
		},
	}

	// The analyzers read the same immutable snapshots and write disjoint
	// bundle fields, so they can run in parallel without changing any
	// result.
	view := analytics.JoinOrderLines(orders, enriched, clean.Products)
	stages := []func(){
		func() { bundle.Trends = analytics.ComputeTrends(orders) },
		func() {
			bundle.CategoryReturnRates = analytics.ReturnRateByCategory(view)
			rates, unknown := analytics.ReturnRateByCountry(orders, clean.Customers)
			bundle.CountryReturnRates = rates
			bundle.Quality.OrdersUnknownCustomer = unknown
			bundle.ChannelReturnRates = analytics.ReturnRateByChannel(orders)
			bundle.ChannelImpact = analytics.ChannelRevenueImpact(orders)
		},
		func() {
			bundle.ProductRisk = analytics.ProductRisk(view)
			bundle.ReturnedCustomers = analytics.ReturnedCustomers(view)
		},
		func() {
			bundle.CustomerProfiles = analytics.CustomerProfiles(orders)
			bundle.SegmentSummary = analytics.SegmentSummary(bundle.CustomerProfiles)
		},
	}

	if p.options.Sequential {
		for _, stage := range stages {
			stage()
		}
	} else {
		var wg sync.WaitGroup
		for _, stage := range stages {
			wg.Add(1)
			go func(run func()) {
				defer wg.Done()
				run()
			}(stage)
		}
		wg.Wait()
	}

	p.log.WithFields(logrus.Fields{
		"run_id":                  runID,
		"total_net_revenue":       bundle.KPI.TotalNetRevenue,
		"return_rate_pct":         bundle.KPI.ReturnRatePct,
		"missing_product_lines":   bundle.Quality.LineItemsMissingProduct,
		"orders_without_lines":    bundle.Quality.OrdersWithoutLineItems,
		"orders_unknown_customer": bundle.Quality.OrdersUnknownCustomer,
	}).Info("analytics run complete")
	return bundle, nil
}

// generateRunID generates a unique run ID.
func generateRunID() string {
	timestamp := time.Now().UTC().Format("20060102150405")
	return fmt.Sprintf("run_%s_%s", timestamp, uuid.NewString()[:8])
}
