// Package extractor recovers (code, name, price) records from supplier PDF
// price lists. Strategies run in a fixed order and the first one that yields
// records wins.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
)

// StrategyFunc extracts records from the document at path.
type StrategyFunc func(ctx context.Context, path string) ([]pricelist.ExtractedRecord, error)

// Strategy is one named step of the extraction cascade.
type Strategy struct {
	Name string
	Run  StrategyFunc
}

// Attempt records how one strategy fared.
type Attempt struct {
	Strategy string        `json:"strategy"`
	Records  int           `json:"records"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of Extract. Records is empty, not nil, when no
// strategy found anything.
type Result struct {
	Records  []pricelist.ExtractedRecord `json:"records"`
	Method   string                      `json:"method"`
	Pages    int                         `json:"pages"`
	Attempts []Attempt                   `json:"attempts"`
}

// Stats summarizes an extraction for logs and reports.
type Stats struct {
	TotalExtracted int             `json:"total_extracted"`
	Method         string          `json:"method"`
	WithCodes      int             `json:"with_codes"`
	WithPrices     int             `json:"with_prices"`
	AveragePrice   decimal.Decimal `json:"average_price"`
}

// Stats computes extraction statistics over the result's records.
func (r *Result) Stats() Stats {
	s := Stats{TotalExtracted: len(r.Records), Method: r.Method}
	sum := decimal.Zero
	for _, rec := range r.Records {
		if rec.ProductCode != "" {
			s.WithCodes++
		}
		if rec.Price.IsPositive() {
			s.WithPrices++
			sum = sum.Add(rec.Price)
		}
	}
	if s.WithPrices > 0 {
		s.AveragePrice = sum.Div(decimal.NewFromInt(int64(s.WithPrices))).Round(2)
	}
	return s
}

// Extractor runs the strategy cascade. It is safe for concurrent use.
type Extractor struct {
	logger     *slog.Logger
	parser     *parser
	strategies []Strategy
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxPrice overrides the upper price bound.
func WithMaxPrice(limit decimal.Decimal) Option {
	return func(e *Extractor) {
		if limit.IsPositive() {
			e.parser.maxPrice = limit
		}
	}
}

// WithMinLineLength overrides the shortest line the text strategies parse.
func WithMinLineLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.parser.minLineLength = n
		}
	}
}

// WithStrategies replaces the default cascade.
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Extractor) {
		e.strategies = strategies
	}
}

// New creates an Extractor with the default cascade: table, text,
// fallback_text, pattern.
func New(logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Extractor{
		logger: logger,
		parser: newParser(),
	}
	e.strategies = e.DefaultStrategies()
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultStrategies returns the built-in cascade in order.
func (e *Extractor) DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: pricelist.SourceTable, Run: e.extractTables},
		{Name: pricelist.SourceText, Run: e.extractText},
		{Name: pricelist.SourceFallbackText, Run: e.extractFallbackText},
		{Name: pricelist.SourcePattern, Run: e.extractPatterns},
	}
}

// Extract opens the document and runs the cascade. It returns
// pricelist.ErrDocumentUnreadable when the file cannot be opened at all.
// Strategy failures are logged and recorded in Result.Attempts.
func (e *Extractor) Extract(ctx context.Context, path string) (*Result, error) {
	pages, err := openDocument(path)
	if err != nil {
		e.logger.Warn("document unreadable", slog.String("path", path), slog.Any("error", err))
		return nil, err
	}

	res := &Result{Pages: pages, Records: []pricelist.ExtractedRecord{}}
	for _, s := range e.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		records, err := runStrategy(ctx, s, path)
		res.Attempts = append(res.Attempts, Attempt{
			Strategy: s.Name,
			Records:  len(records),
			Err:      err,
			Duration: time.Since(start),
		})

		if err != nil {
			e.logger.Warn("extraction strategy failed",
				slog.String("strategy", s.Name),
				slog.String("path", path),
				slog.Any("error", err))
			continue
		}
		if len(records) == 0 {
			e.logger.Debug("extraction strategy found nothing", slog.String("strategy", s.Name))
			continue
		}

		res.Records = dedupe(records)
		res.Method = s.Name
		e.logger.Info("extracted products",
			slog.String("path", path),
			slog.String("method", s.Name),
			slog.Int("pages", pages),
			slog.Int("records", len(res.Records)))
		return res, nil
	}

	e.logger.Info("no products found", slog.String("path", path), slog.Int("pages", pages))
	return res, nil
}

func runStrategy(ctx context.Context, s Strategy, path string) (records []pricelist.ExtractedRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("strategy %s panicked: %v", s.Name, r)
		}
	}()
	return s.Run(ctx, path)
}

func (e *Extractor) extractTables(ctx context.Context, path string) ([]pricelist.ExtractedRecord, error) {
	var out []pricelist.ExtractedRecord
	err := walkPrimary(ctx, path, func(p page) error {
		tables := detectTables(p)
		e.logger.Debug("tables detected", slog.Int("page", p.Number), slog.Int("tables", len(tables)))
		for i, rows := range tables {
			out = append(out, e.parser.parseTable(rows, p.Number, i)...)
		}
		return nil
	})
	return out, err
}

func (e *Extractor) extractText(ctx context.Context, path string) ([]pricelist.ExtractedRecord, error) {
	var out []pricelist.ExtractedRecord
	err := walkPrimary(ctx, path, func(p page) error {
		out = append(out, e.parseLines(p, pricelist.SourceText)...)
		return nil
	})
	return out, err
}

func (e *Extractor) extractFallbackText(ctx context.Context, path string) ([]pricelist.ExtractedRecord, error) {
	var out []pricelist.ExtractedRecord
	err := walkSecondary(ctx, path, func(p page) error {
		out = append(out, e.parseLines(p, pricelist.SourceFallbackText)...)
		return nil
	})
	return out, err
}

func (e *Extractor) extractPatterns(ctx context.Context, path string) ([]pricelist.ExtractedRecord, error) {
	var out []pricelist.ExtractedRecord
	err := walkPrimary(ctx, path, func(p page) error {
		for i, line := range pageLines(p) {
			for _, rec := range e.parser.matchPatterns(line) {
				rec.Provenance = pricelist.Provenance{Page: p.Number, Table: -1, Row: -1, Line: i, Source: pricelist.SourcePattern}
				out = append(out, rec)
			}
		}
		return nil
	})
	return dedupe(out), err
}

func (e *Extractor) parseLines(p page, source string) []pricelist.ExtractedRecord {
	var out []pricelist.ExtractedRecord
	for i, line := range pageLines(p) {
		rec, ok := e.parser.parseLine(line)
		if !ok {
			continue
		}
		rec.Provenance = pricelist.Provenance{Page: p.Number, Table: -1, Row: -1, Line: i, Source: source}
		out = append(out, rec)
	}
	return out
}
