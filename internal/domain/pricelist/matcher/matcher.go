// Package matcher reconciles extracted supplier records with the product
// catalog. An exact code match wins outright; otherwise the best weighted
// fuzzy score over code and name is accepted when it reaches the threshold.
package matcher

import (
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/catalog"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
	"github.com/FACorreiaa/supplier-price-sync/pkg/money"
)

const (
	// DefaultThreshold is the minimum confidence for a fuzzy match.
	DefaultThreshold = 70.0

	exactCodeConfidence = 100.0
	codeWeight          = 3
	nameWeight          = 7
)

// Matcher holds matching configuration. It has no per-call state and is safe
// for concurrent use.
type Matcher struct {
	threshold float64
	currency  string
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold sets the minimum confidence for a fuzzy match. Values outside
// [0, 100] are ignored.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		if threshold >= 0 && threshold <= 100 {
			m.threshold = threshold
		}
	}
}

// WithCurrency sets the currency prices are compared in. Empty keeps
// money.DefaultCurrency.
func WithCurrency(code string) Option {
	return func(m *Matcher) {
		if code != "" {
			m.currency = code
		}
	}
}

// New creates a Matcher.
func New(opts ...Option) *Matcher {
	m := &Matcher{threshold: DefaultThreshold, currency: money.DefaultCurrency}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold returns the configured confidence threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match returns one result per extracted record, in input order.
func (m *Matcher) Match(records []pricelist.ExtractedRecord, products []catalog.Product) []pricelist.MatchResult {
	results := make([]pricelist.MatchResult, 0, len(records))
	for _, rec := range records {
		results = append(results, m.MatchOne(rec, products))
	}
	return results
}

// MatchOne finds the catalog product for a single record.
func (m *Matcher) MatchOne(rec pricelist.ExtractedRecord, products []catalog.Product) pricelist.MatchResult {
	for i := range products {
		if products[i].HasCode(rec.ProductCode) {
			return m.matched(rec, products[i], exactCodeConfidence)
		}
	}

	best := -1
	bestScore := 0.0
	for i := range products {
		// strictly greater: the first product seen wins ties
		if s := Score(rec, products[i]); s > bestScore {
			best, bestScore = i, s
		}
	}

	if best >= 0 && bestScore >= m.threshold {
		return m.matched(rec, products[best], bestScore)
	}
	return pricelist.MatchResult{
		Extracted: rec,
		Status:    pricelist.StatusNoMatch,
	}
}

// Score is the weighted fuzzy similarity between a record and a product:
// 30% code, 70% name, on 0-100.
func Score(rec pricelist.ExtractedRecord, p catalog.Product) float64 {
	code := codeSimilarity(rec.ProductCode, p.Code)
	name := nameSimilarity(rec.ProductName, p.Name)
	return float64(codeWeight*code+nameWeight*name) / 10
}

func (m *Matcher) matched(rec pricelist.ExtractedRecord, p catalog.Product, confidence float64) pricelist.MatchResult {
	current := money.NewFromDecimal(p.SellingPrice, m.currency)
	offered := money.NewFromDecimal(rec.Price, m.currency)
	return pricelist.MatchResult{
		Extracted:   rec,
		Matched:     &p,
		Confidence:  confidence,
		Status:      pricelist.StatusMatched,
		PriceChange: money.PercentChange(current, offered),
	}
}
