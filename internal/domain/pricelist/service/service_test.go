package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/catalog"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist/extractor"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist/matcher"
)

type stubExtractor struct {
	res *extractor.Result
	err error
}

func (s stubExtractor) Extract(ctx context.Context, path string) (*extractor.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

type stubSuggester struct {
	queries []string
	err     error
}

func (s *stubSuggester) Suggest(query string, limit int) ([]catalog.Candidate, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return []catalog.Candidate{{Product: catalog.Product{ID: 9, Name: "Garden Hose 15m"}, Score: 1.2}}, nil
}

type recordingWriter struct {
	updates map[int64]decimal.Decimal
	fail    map[int64]error
}

func (w *recordingWriter) UpdateSellingPrice(ctx context.Context, id int64, price decimal.Decimal) error {
	if err := w.fail[id]; err != nil {
		return err
	}
	if w.updates == nil {
		w.updates = make(map[int64]decimal.Decimal)
	}
	w.updates[id] = price
	return nil
}

type checkpoint struct {
	percent int
	message string
}

func record(code, name string, price int64) pricelist.ExtractedRecord {
	return pricelist.ExtractedRecord{ProductCode: code, ProductName: name, Price: decimal.NewFromInt(price)}
}

func solarCatalog() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Code: "SOLAR-550W", Name: "550W Mono PERC Panel", SellingPrice: decimal.NewFromInt(12000)},
		{ID: 2, Code: "INV-5KW", Name: "5kW Hybrid Inverter", SellingPrice: decimal.NewFromInt(45000)},
	}
}

func TestService_Run(t *testing.T) {
	ext := stubExtractor{res: &extractor.Result{
		Method: pricelist.SourceText,
		Pages:  1,
		Records: []pricelist.ExtractedRecord{
			record("SOLAR-550W", "550W Mono PERC Solar Panel", 12600),
			record("HOSE-10", "Garden Hose 10m", 500),
		},
	}}
	sg := &stubSuggester{}
	metrics := NewMetrics()
	svc := New(ext, matcher.New(), nil).
		WithSuggester(sg, 2).
		WithMetrics(metrics).
		WithTracer(noop.NewTracerProvider().Tracer("test"))

	var progress []checkpoint
	report, err := svc.Run(context.Background(), "list.pdf", solarCatalog(), func(p int, msg string) {
		progress = append(progress, checkpoint{p, msg})
	})
	require.NoError(t, err)

	assert.Equal(t, []checkpoint{
		{10, "opening file"},
		{30, "extracting"},
		{60, "matching 2 products"},
		{90, "finalizing"},
		{100, "done"},
	}, progress)

	assert.NotEqual(t, uuid.Nil, report.RunID)
	assert.Equal(t, "list.pdf", report.Path)
	assert.Equal(t, pricelist.SourceText, report.Method)
	assert.Equal(t, 1, report.Pages)
	assert.False(t, report.NoProducts())
	assert.Equal(t, pricelist.Summary{Total: 2, Matched: 1, NoMatch: 1}, report.Summary)
	assert.Equal(t, 2, report.Stats.TotalExtracted)

	require.Len(t, report.Results, 2)
	assert.Equal(t, 100.0, report.Results[0].Confidence)
	assert.Equal(t, "5", report.Results[0].PriceChange.String())
	assert.Empty(t, report.Results[0].Suggestions)
	require.Len(t, report.Results[1].Suggestions, 1)
	assert.Equal(t, []string{"Garden Hose 10m"}, sg.queries)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runsTotal.WithLabelValues(outcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.matchesTotal.WithLabelValues(string(pricelist.StatusMatched))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.matchesTotal.WithLabelValues(string(pricelist.StatusNoMatch))))
}

func TestService_Run_NoProducts(t *testing.T) {
	metrics := NewMetrics()
	svc := New(stubExtractor{res: &extractor.Result{Pages: 3, Records: []pricelist.ExtractedRecord{}}}, nil, nil).
		WithMetrics(metrics)

	report, err := svc.Run(context.Background(), "scan.pdf", solarCatalog(), nil)
	require.NoError(t, err)

	assert.True(t, report.NoProducts())
	assert.Empty(t, report.Method)
	assert.Equal(t, pricelist.Summary{}, report.Summary)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runsTotal.WithLabelValues(outcomeEmpty)))
}

func TestService_Run_Unreadable(t *testing.T) {
	metrics := NewMetrics()
	cause := fmt.Errorf("%w: bad header", pricelist.ErrDocumentUnreadable)
	svc := New(stubExtractor{err: cause}, nil, nil).WithMetrics(metrics)

	var last int
	report, err := svc.Run(context.Background(), "broken.pdf", solarCatalog(), func(p int, _ string) { last = p })

	assert.Nil(t, report)
	assert.ErrorIs(t, err, pricelist.ErrDocumentUnreadable)
	assert.Equal(t, 30, last)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runsTotal.WithLabelValues(outcomeFailed)))
}

func TestService_Run_SuggesterErrorIsNotFatal(t *testing.T) {
	ext := stubExtractor{res: &extractor.Result{
		Method:  pricelist.SourceText,
		Records: []pricelist.ExtractedRecord{record("HOSE-10", "Garden Hose 10m", 500)},
	}}
	svc := New(ext, nil, nil).WithSuggester(&stubSuggester{err: errors.New("index closed")}, 0)

	report, err := svc.Run(context.Background(), "list.pdf", solarCatalog(), nil)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Nil(t, report.Results[0].Suggestions)
	assert.Equal(t, DefaultSuggestionLimit, svc.suggestLimit)
}

func TestService_Run_RealExtractor(t *testing.T) {
	svc := New(extractor.New(nil), matcher.New(), nil)

	report, err := svc.Run(context.Background(), "../extractor/testdata/pricelist.pdf", solarCatalog(), nil)
	require.NoError(t, err)

	require.Equal(t, 3, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.Matched)
	for _, r := range report.Results {
		if r.Extracted.ProductCode == "SOLAR-550W" {
			require.True(t, r.IsMatched())
			assert.Equal(t, int64(1), r.Matched.ID)
		}
	}
}

func TestService_ApplyPriceUpdates(t *testing.T) {
	products := solarCatalog()
	results := []pricelist.MatchResult{
		{Extracted: record("SOLAR-550W", "Panel", 12600), Matched: &products[0], Confidence: 100, Status: pricelist.StatusMatched},
		{Extracted: record("INV-5", "Inverter", 48000), Matched: &products[1], Confidence: 72, Status: pricelist.StatusMatched},
		{Extracted: record("HOSE", "Garden Hose", 500), Status: pricelist.StatusNoMatch},
	}

	t.Run("writes every matched row above the confidence floor", func(t *testing.T) {
		w := &recordingWriter{}
		metrics := NewMetrics()
		got := New(nil, nil, nil).WithMetrics(metrics).ApplyPriceUpdates(context.Background(), results, w, 70)

		assert.Equal(t, 2, got.Updated)
		assert.Equal(t, 1, got.Skipped)
		assert.Zero(t, got.Failed)
		assert.NoError(t, got.Err())
		assert.True(t, w.updates[1].Equal(decimal.NewFromInt(12600)))
		assert.True(t, w.updates[2].Equal(decimal.NewFromInt(48000)))
		assert.Equal(t, 2.0, testutil.ToFloat64(metrics.priceUpdates.WithLabelValues("updated")))
	})

	t.Run("raised floor skips weaker matches", func(t *testing.T) {
		w := &recordingWriter{}
		got := New(nil, nil, nil).ApplyPriceUpdates(context.Background(), results, w, 90)

		assert.Equal(t, 1, got.Updated)
		assert.Equal(t, 2, got.Skipped)
		assert.NotContains(t, w.updates, int64(2))
	})

	t.Run("a failing row does not stop the rest", func(t *testing.T) {
		w := &recordingWriter{fail: map[int64]error{1: catalog.ErrProductNotFound}}
		got := New(nil, nil, nil).ApplyPriceUpdates(context.Background(), results, w, 0)

		assert.Equal(t, 1, got.Updated)
		assert.Equal(t, 1, got.Failed)
		assert.ErrorIs(t, got.Err(), catalog.ErrProductNotFound)
		assert.Contains(t, w.updates, int64(2))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got := New(nil, nil, nil).ApplyPriceUpdates(ctx, results, &recordingWriter{}, 0)
		assert.Zero(t, got.Updated)
		assert.Equal(t, 3, got.Skipped)
		assert.ErrorIs(t, got.Err(), context.Canceled)
	})
}

func TestMetrics_Handler(t *testing.T) {
	metrics := NewMetrics()
	svc := New(stubExtractor{res: &extractor.Result{Pages: 1, Records: []pricelist.ExtractedRecord{}}}, nil, nil).
		WithMetrics(metrics)

	_, err := svc.Run(context.Background(), "scan.pdf", solarCatalog(), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pricesync_pipeline_runs_total{outcome="empty"} 1`)
}
