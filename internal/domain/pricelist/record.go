// Package pricelist defines the records produced by the supplier price-list
// extractor and the decisions produced by the catalog matcher.
package pricelist

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/catalog"
)

var (
	// ErrDocumentUnreadable means the file is missing, corrupt or encrypted.
	// No extraction strategy was attempted.
	ErrDocumentUnreadable = errors.New("could not open or parse document")
)

// Extraction sources, recorded in Provenance.Source.
const (
	SourceTable        = "table"
	SourceText         = "text"
	SourceFallbackText = "fallback_text"
	SourcePattern      = "pattern"
)

// Provenance records where in the document a record was found. Fields that do
// not apply to the producing strategy are -1.
type Provenance struct {
	Page   int    `json:"page"`
	Table  int    `json:"table"`
	Row    int    `json:"row"`
	Line   int    `json:"line"`
	Source string `json:"source"`
}

// ExtractedRecord is one candidate product found in a supplier document.
type ExtractedRecord struct {
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Provenance  Provenance      `json:"provenance"`
}

// Key is the deduplication key of the record.
func (r ExtractedRecord) Key() [2]string {
	return [2]string{r.ProductCode, r.ProductName}
}

// Status is the outcome of matching one extracted record.
type Status string

const (
	StatusMatched Status = "matched"
	StatusNoMatch Status = "no_match"
)

// MatchResult is the matcher's decision for one extracted record.
type MatchResult struct {
	Extracted  ExtractedRecord  `json:"extracted"`
	Matched    *catalog.Product `json:"matched,omitempty"`
	Confidence float64          `json:"confidence"`
	Status     Status           `json:"status"`

	// PriceChange is the percentage change from the matched product's current
	// selling price to the extracted price. Zero when unmatched.
	PriceChange decimal.Decimal `json:"price_change"`

	// Suggestions are review candidates for unmatched records. They never
	// affect Status or Matched.
	Suggestions []catalog.Candidate `json:"suggestions,omitempty"`
}

// IsMatched reports whether the result carries a catalog match.
func (m MatchResult) IsMatched() bool {
	return m.Status == StatusMatched && m.Matched != nil
}
