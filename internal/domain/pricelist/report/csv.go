package report

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
)

// WriteCSV writes one row per result with a header line. Prices are rounded to
// the minor unit of currency.
func WriteCSV(w io.Writer, results []pricelist.MatchResult, currency string) error {
	rows := make([]reviewRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, toRow(r, currency))
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write review CSV: %w", err)
	}
	return nil
}
