package extractor

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMaxPrice is the upper bound for a plausible list price.
var DefaultMaxPrice = decimal.NewFromInt(10_000_000)

var (
	currencyWordRe  = regexp.MustCompile(`(?i)\b(?:rs|inr)\b\.?`)
	currencySymbols = strings.NewReplacer("₹", "", "$", "", "€", "", "£", "", ",", "", " ", "")
	firstNumberRe   = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// parsePrice pulls the first number out of s after removing currency markers
// and grouping separators. It reports false when nothing usable is found or the
// value is outside (0, limit].
func parsePrice(s string, limit decimal.Decimal) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	s = currencyWordRe.ReplaceAllString(s, " ")
	s = currencySymbols.Replace(s)

	num := firstNumberRe.FindString(s)
	if num == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, false
	}
	if !d.IsPositive() || d.GreaterThan(limit) {
		return decimal.Zero, false
	}
	return d, true
}
