// Package catalog holds the shop's product catalog as seen by the price-list
// importer: the record type, a Postgres repository, a CSV loader and a
// search index used to suggest candidates for unmatched supplier rows.
package catalog

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when a lookup by code or id finds nothing.
var ErrProductNotFound = errors.New("product not found")

// Product is an existing catalog entry. The importer only reads it; price
// write-back goes through Repository.UpdateSellingPrice.
type Product struct {
	ID           int64           `json:"id"`
	Code         string          `json:"product_code"`
	Name         string          `json:"product_name"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// HasCode reports whether code equals the product code, ignoring case and
// surrounding whitespace. Empty codes never match.
func (p Product) HasCode(code string) bool {
	a := strings.TrimSpace(p.Code)
	b := strings.TrimSpace(code)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// Candidate is a catalog product proposed for manual review, with the
// relevance score of the search that found it.
type Candidate struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}
