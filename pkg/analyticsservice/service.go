// Package analyticsservice provides the analytics service interface for
// the orderpulse CLI.
package analyticsservice

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/orderpulse/analytics/internal/db"
	"github.com/orderpulse/analytics/internal/loader"
	"github.com/orderpulse/analytics/internal/models"
	"github.com/orderpulse/analytics/internal/pipeline"
	"github.com/orderpulse/analytics/internal/reports"
)

// AnalyticsService is the interface for running and publishing analytics.
type AnalyticsService interface {
	// RunFromDir loads the four CSV tables from dir and runs the pipeline.
	RunFromDir(ctx context.Context, dir string) (*models.ReportBundle, error)

	// Run runs the pipeline over an already-loaded dataset.
	Run(ctx context.Context, ds *models.Dataset) (*models.ReportBundle, error)

	// Export writes every report table of the bundle into dir.
	Export(bundle *models.ReportBundle, dir string, format reports.Format) error

	// Store persists the bundle to PostgreSQL, creating the schema on
	// first use.
	Store(ctx context.Context, bundle *models.ReportBundle) error

	// Close closes the service.
	Close() error
}

// Options contains options for the analytics service.
type Options struct {
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	Strict     bool
	Store      bool
}

// DefaultOptions returns default service options.
func DefaultOptions() *Options {
	return &Options{}
}

type service struct {
	pipeline *pipeline.Pipeline
	database *db.Database
	log      *logrus.Logger
}

// New creates a new analytics service. The database connection is only
// opened when Store is requested in the options.
func New(opts *Options, log *logrus.Logger) (AnalyticsService, error) {
	pipeOpts := pipeline.DefaultOptions()
	pipeOpts.Strict = opts.Strict

	s := &service{
		pipeline: pipeline.NewPipeline(log, pipeOpts),
		log:      log,
	}

	if opts.Store {
		dbConfig := db.DefaultConfig()
		if opts.DBHost != "" {
			dbConfig.Host = opts.DBHost
		}
		if opts.DBPort != 0 {
			dbConfig.Port = opts.DBPort
		}
		if opts.DBName != "" {
			dbConfig.DBName = opts.DBName
		}
		if opts.DBUser != "" {
			dbConfig.User = opts.DBUser
		}
		if opts.DBPassword != "" {
			dbConfig.Password = opts.DBPassword
		}
		database, err := db.NewDatabase(dbConfig, log)
		if err != nil {
			return nil, err
		}
		s.database = database
	}
	return s, nil
}

func (s *service) RunFromDir(ctx context.Context, dir string) (*models.ReportBundle, error) {
	ds, err := loader.LoadDataset(dir)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Run(ctx, ds)
}

func (s *service) Run(ctx context.Context, ds *models.Dataset) (*models.ReportBundle, error) {
	return s.pipeline.Run(ctx, ds)
}

func (s *service) Export(bundle *models.ReportBundle, dir string, format reports.Format) error {
	return reports.Export(bundle, dir, format)
}

func (s *service) Store(ctx context.Context, bundle *models.ReportBundle) error {
	if s.database == nil {
		return errNoDatabase
	}
	if err := s.database.EnsureSchema(ctx); err != nil {
		return err
	}
	return s.database.SaveBundle(ctx, bundle)
}

func (s *service) Close() error {
	if s.database != nil {
		return s.database.Close()
	}
	return nil
}
