// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/catalog"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist/report"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist/service"
	"github.com/FACorreiaa/supplier-price-sync/pkg/money"
)

const (
	batchTimeout = 30 * time.Minute
	failedSuffix = ".failed"
	reportSuffix = ".xlsx"
	priceListExt = ".pdf"
)

// Runner runs the import pipeline for one document
type Runner interface {
	Run(ctx context.Context, path string, products []catalog.Product, progress service.ProgressFunc) (*service.Report, error)
}

// CatalogFunc loads the catalog to match against, once per batch
type CatalogFunc func(ctx context.Context) ([]catalog.Product, error)

// Dirs are the inbox locations
type Dirs struct {
	Inbox   string
	Archive string
	Reports string
}

// BatchResult counts the outcome of one inbox sweep
type BatchResult struct {
	Processed int
	Empty     int
	Failed    int
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	catalog  CatalogFunc
	dirs     Dirs
	currency string
	logger   *slog.Logger
}

// NewScheduler creates a new inbox scheduler.
func NewScheduler(runner Runner, catalogFn CatalogFunc, dirs Dirs, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))

	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:     c,
		runner:   runner,
		catalog:  catalogFn,
		dirs:     dirs,
		currency: money.DefaultCurrency,
		logger:   logger,
	}
}

// WithCurrency sets the currency of the review reports
func (s *Scheduler) WithCurrency(code string) *Scheduler {
	if code != "" {
		s.currency = code
	}
	return s
}

// Start schedules the inbox sweep on spec and begins running it.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return fmt.Errorf("invalid inbox schedule %q: %w", spec, err)
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("inbox", s.dirs.Inbox),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers an inbox sweep.
func (s *Scheduler) RunNow() {
	go s.sweep()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	if _, err := s.ProcessInbox(ctx); err != nil {
		s.logger.Error("inbox sweep failed", slog.Any("error", err))
	}
}

// ProcessInbox runs every PDF in the inbox through the pipeline, writes an
// XLSX review report per document and archives it. Unreadable documents are
// archived with a .failed suffix. A failing document never stops the batch.
func (s *Scheduler) ProcessInbox(ctx context.Context) (BatchResult, error) {
	var res BatchResult

	files, err := s.pending()
	if err != nil {
		return res, err
	}
	if len(files) == 0 {
		s.logger.Debug("inbox empty", slog.String("inbox", s.dirs.Inbox))
		return res, nil
	}

	for _, dir := range []string{s.dirs.Archive, s.dirs.Reports} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	products, err := s.catalog(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to load catalog: %w", err)
	}

	s.logger.Info("processing inbox", slog.Int("documents", len(files)), slog.Int("catalog", len(products)))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rep, err := s.processFile(ctx, path, products)
		switch {
		case err != nil:
			res.Failed++
			s.logger.Warn("price list failed", slog.String("path", path), slog.Any("error", err))
		case rep.NoProducts():
			res.Empty++
		default:
			res.Processed++
		}
	}

	s.logger.Info("inbox sweep completed",
		slog.Int("processed", res.Processed),
		slog.Int("empty", res.Empty),
		slog.Int("failed", res.Failed),
	)
	return res, nil
}

func (s *Scheduler) processFile(ctx context.Context, path string, products []catalog.Product) (*service.Report, error) {
	name := filepath.Base(path)

	rep, err := s.runner.Run(ctx, path, products, nil)
	if err != nil {
		if errors.Is(err, pricelist.ErrDocumentUnreadable) {
			if mvErr := s.archive(path, name+failedSuffix); mvErr != nil {
				return nil, errors.Join(err, mvErr)
			}
		}
		return nil, err
	}

	reportPath := filepath.Join(s.dirs.Reports, strings.TrimSuffix(name, filepath.Ext(name))+reportSuffix)
	if err := s.writeReport(reportPath, rep); err != nil {
		return nil, err
	}

	if err := s.archive(path, name); err != nil {
		return nil, err
	}

	s.logger.Debug("price list archived",
		slog.String("path", path),
		slog.String("report", reportPath),
		slog.Int("matched", rep.Summary.Matched),
	)
	return rep, nil
}

func (s *Scheduler) writeReport(path string, rep *service.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report: %w", cerr)
		}
	}()
	return report.WriteXLSX(f, rep.Results, s.currency)
}

// archive moves path into the archive directory under name, never
// overwriting an earlier file of the same name.
func (s *Scheduler) archive(path, name string) error {
	target := filepath.Join(s.dirs.Archive, name)
	if _, err := os.Stat(target); err == nil {
		target = filepath.Join(s.dirs.Archive, fmt.Sprintf("%d-%s", time.Now().UnixNano(), name))
	}
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("failed to archive %s: %w", path, err)
	}
	return nil
}

func (s *Scheduler) pending() ([]string, error) {
	entries, err := os.ReadDir(s.dirs.Inbox)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read inbox: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), priceListExt) {
			continue
		}
		files = append(files, filepath.Join(s.dirs.Inbox, e.Name()))
	}
	return files, nil
}
