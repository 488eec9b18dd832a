// Package report exports match results as review tables for the person
// deciding which supplier prices to accept.
package report

import (
	"strconv"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
	"github.com/FACorreiaa/supplier-price-sync/pkg/money"
)

// Confidence bands used to colour the review table.
const (
	HighConfidence   = 90.0
	MediumConfidence = 70.0
)

const (
	statusMatched = "Matched"
	statusNew     = "New"
	noValue       = "-"
)

var reviewHeaders = []string{
	"Status",
	"Code",
	"Name",
	"New Price",
	"Current Price",
	"Change %",
	"Matched ID",
	"Matched Code",
	"Matched Name",
	"Confidence",
	"Page",
	"Source",
}

// reviewRow is the flat form of a MatchResult
type reviewRow struct {
	Status       string `csv:"status"`
	Code         string `csv:"product_code"`
	Name         string `csv:"product_name"`
	NewPrice     string `csv:"new_price"`
	CurrentPrice string `csv:"current_price"`
	Change       string `csv:"change_pct"`
	MatchedID    string `csv:"matched_id"`
	MatchedCode  string `csv:"matched_code"`
	MatchedName  string `csv:"matched_name"`
	Confidence   string `csv:"confidence"`
	Page         int    `csv:"page"`
	Source       string `csv:"source"`
}

func statusLabel(r pricelist.MatchResult) string {
	if r.IsMatched() {
		return statusMatched
	}
	return statusNew
}

// Band names the confidence band of a score: high, medium or low.
func Band(confidence float64) string {
	switch {
	case confidence >= HighConfidence:
		return "high"
	case confidence >= MediumConfidence:
		return "medium"
	}
	return "low"
}

func toRow(r pricelist.MatchResult, currency string) reviewRow {
	row := reviewRow{
		Status:       statusLabel(r),
		Code:         r.Extracted.ProductCode,
		Name:         r.Extracted.ProductName,
		NewPrice:     money.NewFromDecimal(r.Extracted.Price, currency).String(),
		CurrentPrice: noValue,
		Change:       noValue,
		Confidence:   strconv.FormatFloat(r.Confidence, 'f', 1, 64),
		Page:         r.Extracted.Provenance.Page,
		Source:       r.Extracted.Provenance.Source,
	}
	if r.IsMatched() {
		row.CurrentPrice = money.NewFromDecimal(r.Matched.SellingPrice, currency).String()
		row.Change = r.PriceChange.StringFixed(2)
		row.MatchedID = strconv.FormatInt(r.Matched.ID, 10)
		row.MatchedCode = r.Matched.Code
		row.MatchedName = r.Matched.Name
	}
	return row
}
