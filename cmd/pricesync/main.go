// Command pricesync extracts prices from a supplier PDF price list, matches
// them against the product catalog and optionally applies the new prices.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist/report"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist/service"
	"github.com/FACorreiaa/supplier-price-sync/pkg/config"
	"github.com/FACorreiaa/supplier-price-sync/pkg/cron"
	"github.com/FACorreiaa/supplier-price-sync/pkg/money"
)

type options struct {
	catalogCSV    string
	xlsxOut       string
	csvOut        string
	apply         bool
	minConfidence float64
	watch         bool
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	var opts options
	flag.StringVar(&opts.catalogCSV, "catalog", "", "catalog CSV export to match against (default: Postgres)")
	flag.StringVar(&opts.xlsxOut, "xlsx", "", "write the review table to this XLSX file")
	flag.StringVar(&opts.csvOut, "csv", "", "write the review table to this CSV file")
	flag.BoolVar(&opts.apply, "apply", false, "write matched prices back to the catalog")
	flag.Float64Var(&opts.minConfidence, "min-confidence", cfg.Matching.ApplyMinConfidence, "minimum confidence for -apply")
	flag.BoolVar(&opts.watch, "watch", false, "process the inbox directory on the configured schedule")
	flag.Usage = func() {
		printError("Usage: pricesync [flags] file.pdf\n       pricesync -watch [flags]\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if !opts.watch && flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger := newLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, flag.Arg(0), logger); err != nil {
		logger.Error("pricesync failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func run(ctx context.Context, cfg *config.Config, opts options, path string, logger *slog.Logger) error {
	deps, err := InitDependencies(ctx, cfg, opts.catalogCSV, logger)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	if deps.Metrics != nil {
		stopMetrics := serveMetrics(deps.Metrics, cfg.Observability.MetricsPort, logger)
		defer stopMetrics()
	}

	if opts.watch {
		return watch(ctx, deps)
	}

	products, err := deps.LoadCatalog(ctx)
	if err != nil {
		return err
	}

	rep, err := deps.Service.Run(ctx, path, products, func(percent int, message string) {
		printError("[%3d%%] %s\n", percent, message)
	})
	if err != nil {
		return err
	}
	if rep.NoProducts() {
		fmt.Println("No products found in PDF")
		return nil
	}

	printSummary(os.Stdout, rep, cfg.Extraction.Currency)

	if err := export(opts, rep.Results, cfg.Extraction.Currency); err != nil {
		return err
	}

	if opts.apply {
		writer, err := deps.PriceWriter()
		if err != nil {
			return err
		}
		res := deps.Service.ApplyPriceUpdates(ctx, rep.Results, writer, opts.minConfidence)
		fmt.Printf("Updated prices for %d products (%d skipped, %d failed)\n", res.Updated, res.Skipped, res.Failed)
		if err := res.Err(); err != nil {
			return fmt.Errorf("some price updates failed: %w", err)
		}
	}
	return nil
}

func watch(ctx context.Context, deps *Dependencies) error {
	inbox := deps.Config.Inbox
	scheduler := cron.NewScheduler(deps.Service, deps.LoadCatalog, cron.Dirs{
		Inbox:   inbox.Dir,
		Archive: inbox.ArchiveDir,
		Reports: inbox.ReportDir,
	}, deps.Logger).WithCurrency(deps.Config.Extraction.Currency)

	if err := scheduler.Start(inbox.Schedule); err != nil {
		return err
	}
	scheduler.RunNow()

	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}

func serveMetrics(m *service.Metrics, port int, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func export(opts options, results []pricelist.MatchResult, currency string) error {
	if opts.xlsxOut != "" {
		if err := writeFile(opts.xlsxOut, func(w io.Writer) error { return report.WriteXLSX(w, results, currency) }); err != nil {
			return err
		}
	}
	if opts.csvOut != "" {
		if err := writeFile(opts.csvOut, func(w io.Writer) error { return report.WriteCSV(w, results, currency) }); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func printSummary(w io.Writer, rep *service.Report, currency string) {
	s := rep.Summary
	fmt.Fprintf(w, "Found %d products | %d matched | %d new (method: %s, %d pages)\n\n",
		s.Total, s.Matched, s.NoMatch, rep.Method, rep.Pages)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tCODE\tNAME\tNEW PRICE\tCURRENT PRICE\tCHANGE\tCONFIDENCE")
	for _, r := range rep.Results {
		status, current, change := "New", "-", "-"
		if r.IsMatched() {
			status = "Matched"
			current = money.NewFromDecimal(r.Matched.SellingPrice, currency).Display()
			change = r.PriceChange.StringFixed(2) + "%"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.0f%% (%s)\n",
			status,
			r.Extracted.ProductCode,
			r.Extracted.ProductName,
			money.NewFromDecimal(r.Extracted.Price, currency).Display(),
			current,
			change,
			r.Confidence,
			report.Band(r.Confidence),
		)
	}
	_ = tw.Flush()
}
