package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/catalog"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist/extractor"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist/matcher"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist/service"
	"github.com/FACorreiaa/supplier-price-sync/pkg/config"
	"github.com/FACorreiaa/supplier-price-sync/pkg/db"
)

var errNoDatabase = errors.New("price write-back needs the database catalog, not -catalog")

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Catalog
	CatalogRepo *catalog.Repository
	SearchIndex *catalog.SearchIndex
	catalogCSV  string

	// Pipeline
	Extractor *extractor.Extractor
	Matcher   *matcher.Matcher
	Service   *service.Service
	Metrics   *service.Metrics
}

// InitDependencies initializes all application dependencies. With a
// catalogCSV path the database is never touched.
func InitDependencies(ctx context.Context, cfg *config.Config, catalogCSV string, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:     cfg,
		Logger:     logger,
		catalogCSV: catalogCSV,
	}

	if catalogCSV == "" {
		if err := deps.initDatabase(ctx); err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
	}

	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase(ctx context.Context) error {
	database, err := db.New(ctx, db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
		DialTimeout:     10 * time.Second,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.CatalogRepo = catalog.NewRepository(d.DB.Pool)
	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initServices initializes the pipeline
func (d *Dependencies) initServices() error {
	search, err := catalog.NewSearchIndex("")
	if err != nil {
		return err
	}
	d.SearchIndex = search

	d.Extractor = extractor.New(d.Logger,
		extractor.WithMaxPrice(decimal.NewFromFloat(d.Config.Extraction.MaxPrice)),
		extractor.WithMinLineLength(d.Config.Extraction.MinLineLength),
	)
	d.Matcher = matcher.New(
		matcher.WithThreshold(d.Config.Matching.Threshold),
		matcher.WithCurrency(d.Config.Extraction.Currency),
	)

	d.Service = service.New(d.Extractor, d.Matcher, d.Logger).
		WithSuggester(d.SearchIndex, d.Config.Matching.SuggestionLimit)

	if d.Config.Observability.MetricsEnabled {
		d.Metrics = service.NewMetrics()
		d.Service.WithMetrics(d.Metrics)
	}

	d.Logger.Info("services initialized",
		slog.Float64("match_threshold", d.Matcher.Threshold()),
		slog.String("currency", d.Config.Extraction.Currency))
	return nil
}

// LoadCatalog returns the products to match against, from the CSV file when
// one was given and from Postgres otherwise. Every load rebuilds the search
// index, so watch mode never suggests products that have since gone.
func (d *Dependencies) LoadCatalog(ctx context.Context) ([]catalog.Product, error) {
	var (
		products []catalog.Product
		err      error
	)

	if d.catalogCSV != "" {
		products, err = d.loadCSV()
	} else {
		products, err = d.CatalogRepo.ListActive(ctx)
	}
	if err != nil {
		return nil, err
	}

	if err := d.SearchIndex.Replace(products); err != nil {
		d.Logger.Warn("catalog search index unavailable", slog.Any("error", err))
		return products, nil
	}

	indexed, err := d.SearchIndex.Count()
	if err != nil {
		d.Logger.Warn("failed to count indexed products", slog.Any("error", err))
	}
	d.Logger.Debug("catalog loaded",
		slog.Int("products", len(products)),
		slog.Uint64("indexed", indexed))
	return products, nil
}

func (d *Dependencies) loadCSV() ([]catalog.Product, error) {
	f, err := os.Open(d.catalogCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return catalog.LoadCSV(f, d.Config.Extraction.Currency)
}

// PriceWriter returns the catalog write-back target
func (d *Dependencies) PriceWriter() (service.PriceWriter, error) {
	if d.CatalogRepo == nil {
		return nil, errNoDatabase
	}
	return d.CatalogRepo, nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.SearchIndex != nil {
		if err := d.SearchIndex.Close(); err != nil {
			d.Logger.Warn("failed to close search index", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
