package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/finhelm/statement-api/internal/api"
	"github.com/finhelm/statement-api/internal/domain/extraction"
	"github.com/finhelm/statement-api/internal/domain/reports"
	"github.com/finhelm/statement-api/internal/domain/statements"
	"github.com/finhelm/statement-api/internal/domain/transaction"
	"github.com/finhelm/statement-api/pkg/config"
	"github.com/finhelm/statement-api/pkg/cron"
	"github.com/finhelm/statement-api/pkg/storage"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Store     transaction.Store
	Extractor *extraction.Extractor
	Archive   storage.Archive

	Statements *statements.Service
	Reports    *reports.Generator
	Scheduler  *cron.Scheduler

	Router http.Handler
}

// InitDependencies initializes all application dependencies.
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	deps.initRouter()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initStorage sets up the transaction store and the statement archive.
func (d *Dependencies) initStorage() error {
	d.Store = transaction.NewMemoryStore()

	archive, err := storage.New(&storage.Config{
		Enabled: d.Config.Archive.Enabled,
		Dir:     d.Config.Archive.Dir,
	})
	if err != nil {
		return err
	}
	d.Archive = archive

	if archive == nil {
		d.Logger.Info("statement archive disabled")
	} else {
		d.Logger.Info("statement archive ready", "dir", d.Config.Archive.Dir)
	}
	return nil
}

// initServices wires the extraction pipeline, statement service, reports
// and the workflow sweep.
func (d *Dependencies) initServices() error {
	d.Extractor = extraction.New(d.Logger,
		extraction.KeepDuplicateRows(d.Config.Extraction.KeepDuplicateRows),
	)

	search, err := statements.NewSearchIndex()
	if err != nil {
		return fmt.Errorf("failed to init search index: %w", err)
	}

	d.Statements = statements.NewService(statements.Config{
		Store:          d.Store,
		Extractor:      d.Extractor,
		Archive:        d.Archive,
		Search:         search,
		Logger:         d.Logger,
		MaxUploadBytes: d.Config.Upload.MaxBytes,
	})

	d.Reports = reports.NewGenerator(d.Store, d.Logger)

	if d.Config.Workflow.SweepEnabled {
		d.Scheduler = cron.NewScheduler(d.Store, d.Config.Workflow.SweepSchedule, d.Logger)
	}

	d.Logger.Info("services initialized")
	return nil
}

// initRouter assembles the HTTP surface.
func (d *Dependencies) initRouter() {
	d.Router = api.NewRouter(api.Config{
		Statements:         d.Statements,
		Reports:            d.Reports,
		Logger:             d.Logger,
		MaxUploadBytes:     d.Config.Upload.MaxBytes,
		RateLimitPerSecond: d.Config.Server.RateLimitPerSecond,
		RateLimitBurst:     d.Config.Server.RateLimitBurst,
		MetricsEnabled:     d.Config.Observability.MetricsEnabled,
	})
	d.Logger.Info("router initialized")
}

// Cleanup closes all resources.
func (d *Dependencies) Cleanup() {
	if d.Statements != nil {
		if err := d.Statements.Close(); err != nil {
			d.Logger.Warn("closing statement service", "error", err)
		}
	}
	d.Logger.Info("cleanup completed")
}
