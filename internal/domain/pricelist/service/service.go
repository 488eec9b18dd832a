// Package service runs the price-list import pipeline: extract records from a
// supplier PDF, match them against the catalog, and optionally write the
// accepted prices back.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/catalog"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist/extractor"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist/matcher"
)

const tracerName = "github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist/service"

// DefaultSuggestionLimit is the number of catalog candidates attached to an
// unmatched record.
const DefaultSuggestionLimit = 3

// Extractor turns a document into records
type Extractor interface {
	Extract(ctx context.Context, path string) (*extractor.Result, error)
}

// Suggester proposes catalog products for a free-text query
type Suggester interface {
	Suggest(query string, limit int) ([]catalog.Candidate, error)
}

// PriceWriter persists a new selling price for a catalog product
type PriceWriter interface {
	UpdateSellingPrice(ctx context.Context, id int64, price decimal.Decimal) error
}

// ProgressFunc receives coarse progress checkpoints (0-100) with a short
// human-readable message.
type ProgressFunc func(percent int, message string)

// Report is the outcome of one pipeline run
type Report struct {
	RunID    uuid.UUID               `json:"run_id"`
	Path     string                  `json:"path"`
	Method   string                  `json:"method"`
	Pages    int                     `json:"pages"`
	Results  []pricelist.MatchResult `json:"results"`
	Summary  pricelist.Summary       `json:"summary"`
	Stats    extractor.Stats         `json:"stats"`
	Duration time.Duration           `json:"duration"`
}

// NoProducts reports whether extraction found nothing. This is a valid
// outcome, not an error.
func (r *Report) NoProducts() bool {
	return r == nil || len(r.Results) == 0
}

// ApplyResult counts the outcome of a price write-back
type ApplyResult struct {
	Updated int
	Skipped int
	Failed  int
	Errors  []error
}

// Err joins every per-row error, or returns nil.
func (r ApplyResult) Err() error {
	return errors.Join(r.Errors...)
}

// Service orchestrates extraction and matching
type Service struct {
	extractor    Extractor
	matcher      *matcher.Matcher
	suggester    Suggester // Optional: nil disables suggestions
	suggestLimit int
	metrics      *Metrics // Optional: nil disables metrics
	tracer       trace.Tracer
	logger       *slog.Logger
}

// New creates a new import service
func New(ext Extractor, m *matcher.Matcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if m == nil {
		m = matcher.New()
	}
	return &Service{
		extractor:    ext,
		matcher:      m,
		suggestLimit: DefaultSuggestionLimit,
		tracer:       otel.Tracer(tracerName),
		logger:       logger,
	}
}

// WithSuggester attaches catalog suggestions to unmatched records
func (s *Service) WithSuggester(sg Suggester, limit int) *Service {
	s.suggester = sg
	if limit > 0 {
		s.suggestLimit = limit
	}
	return s
}

// WithMetrics records pipeline metrics
func (s *Service) WithMetrics(m *Metrics) *Service {
	s.metrics = m
	return s
}

// WithTracer replaces the global tracer
func (s *Service) WithTracer(t trace.Tracer) *Service {
	if t != nil {
		s.tracer = t
	}
	return s
}

// Run extracts records from the PDF at path and matches them against
// products. progress may be nil. A document with no recognizable products
// yields a report for which NoProducts is true.
func (s *Service) Run(ctx context.Context, path string, products []catalog.Product, progress ProgressFunc) (*Report, error) {
	if progress == nil {
		progress = func(int, string) {}
	}

	start := time.Now()
	runID := uuid.New()
	logger := s.logger.With(slog.String("run_id", runID.String()), slog.String("path", path))

	ctx, span := s.tracer.Start(ctx, "pricelist.Run", trace.WithAttributes(
		attribute.String("run.id", runID.String()),
		attribute.String("document.path", path),
		attribute.Int("catalog.size", len(products)),
	))
	defer span.End()

	progress(10, "opening file")
	progress(30, "extracting")

	res, err := s.extract(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		s.metrics.observeRun(outcomeFailed, time.Since(start))
		logger.Error("price list import failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to extract price list: %w", err)
	}

	report := &Report{
		RunID:  runID,
		Path:   path,
		Method: res.Method,
		Pages:  res.Pages,
		Stats:  res.Stats(),
	}
	s.metrics.observeExtraction(res)

	progress(60, fmt.Sprintf("matching %d products", len(res.Records)))
	report.Results = s.match(ctx, res.Records, products)

	progress(90, "finalizing")
	report.Summary = pricelist.Summarize(report.Results)
	report.Duration = time.Since(start)

	outcome := outcomeSuccess
	if report.NoProducts() {
		outcome = outcomeEmpty
	}
	s.metrics.observeRun(outcome, report.Duration)
	s.metrics.observeMatches(report.Results)

	span.SetAttributes(
		attribute.String("extraction.method", report.Method),
		attribute.Int("records.total", report.Summary.Total),
		attribute.Int("records.matched", report.Summary.Matched),
	)
	logger.Info("price list imported",
		slog.String("method", report.Method),
		slog.Int("pages", report.Pages),
		slog.Int("total", report.Summary.Total),
		slog.Int("matched", report.Summary.Matched),
		slog.Int("no_match", report.Summary.NoMatch),
		slog.Duration("duration", report.Duration))

	progress(100, "done")
	return report, nil
}

func (s *Service) extract(ctx context.Context, path string) (*extractor.Result, error) {
	ctx, span := s.tracer.Start(ctx, "pricelist.extract")
	defer span.End()

	res, err := s.extractor.Extract(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("extraction.method", res.Method),
		attribute.Int("document.pages", res.Pages),
		attribute.Int("records.extracted", len(res.Records)),
	)
	return res, nil
}

func (s *Service) match(ctx context.Context, records []pricelist.ExtractedRecord, products []catalog.Product) []pricelist.MatchResult {
	_, span := s.tracer.Start(ctx, "pricelist.match")
	defer span.End()

	results := s.matcher.Match(records, products)
	if s.suggester == nil {
		return results
	}

	for i := range results {
		if results[i].IsMatched() {
			continue
		}
		candidates, err := s.suggester.Suggest(results[i].Extracted.ProductName, s.suggestLimit)
		if err != nil {
			s.logger.Warn("catalog suggestion failed",
				slog.String("product_name", results[i].Extracted.ProductName),
				slog.Any("error", err))
			continue
		}
		results[i].Suggestions = candidates
	}
	return results
}

// ApplyPriceUpdates writes the extracted price of every matched result with
// at least minConfidence to writer. A failing row is counted and recorded
// without stopping the rest. Cancelling ctx stops the loop; the remaining
// rows are counted as skipped.
func (s *Service) ApplyPriceUpdates(ctx context.Context, results []pricelist.MatchResult, writer PriceWriter, minConfidence float64) ApplyResult {
	var out ApplyResult

	for i, r := range results {
		if err := ctx.Err(); err != nil {
			out.Skipped += len(results) - i
			out.Errors = append(out.Errors, err)
			break
		}
		if !r.IsMatched() || r.Confidence < minConfidence {
			out.Skipped++
			continue
		}

		if err := writer.UpdateSellingPrice(ctx, r.Matched.ID, r.Extracted.Price); err != nil {
			out.Failed++
			out.Errors = append(out.Errors, fmt.Errorf("product %d (%s): %w", r.Matched.ID, r.Matched.Code, err))
			s.logger.Warn("price update failed",
				slog.Int64("product_id", r.Matched.ID),
				slog.Any("error", err))
			continue
		}
		out.Updated++
	}

	s.metrics.observeApply(out)
	s.logger.Info("applied price updates",
		slog.Int("updated", out.Updated),
		slog.Int("skipped", out.Skipped),
		slog.Int("failed", out.Failed))
	return out
}
