package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
	"github.com/FACorreiaa/supplier-price-sync/pkg/money"
)

const (
	ReviewSheet  = "Review"
	SummarySheet = "Summary"
)

// priceFormat is the number format of price cells, e.g. "₹"#,##0.00.
func priceFormat(currency string) string {
	return fmt.Sprintf(`"%s"#,##0.00`, money.Symbol(currency))
}

type styles struct {
	header int
	price  int
	high   int
	medium int
	low    int
}

func newStyles(f *excelize.File, currency string) (styles, error) {
	var (
		s   styles
		err error
	)
	numFmt := priceFormat(currency)

	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"ECF0F1"}},
	}); err != nil {
		return s, err
	}
	if s.price, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt}); err != nil {
		return s, err
	}
	if s.high, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "27AE60", Bold: true}}); err != nil {
		return s, err
	}
	if s.medium, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "F39C12", Bold: true}}); err != nil {
		return s, err
	}
	if s.low, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "E74C3C"}}); err != nil {
		return s, err
	}
	return s, nil
}

func (s styles) band(confidence float64) int {
	switch Band(confidence) {
	case "high":
		return s.high
	case "medium":
		return s.medium
	}
	return s.low
}

// WriteXLSX writes a workbook with a "Review" sheet holding one row per
// result and a "Summary" sheet with the counts. Price cells are formatted
// with the symbol of currency.
func WriteXLSX(w io.Writer, results []pricelist.MatchResult, currency string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReviewSheet); err != nil {
		return fmt.Errorf("failed to create review sheet: %w", err)
	}
	st, err := newStyles(f, currency)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	if err := writeReview(f, st, results); err != nil {
		return err
	}
	if err := writeSummary(f, st, pricelist.Summarize(results)); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeReview(f *excelize.File, st styles, results []pricelist.MatchResult) error {
	const sheet = ReviewSheet

	if err := f.SetSheetRow(sheet, "A1", &reviewHeaders); err != nil {
		return fmt.Errorf("failed to write review header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(reviewHeaders), 1)
	_ = f.SetCellStyle(sheet, "A1", last, st.header)

	for i, r := range results {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		style := func(col, id int) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellStyle(sheet, cell, cell, id)
		}

		write(1, statusLabel(r))
		write(2, r.Extracted.ProductCode)
		write(3, r.Extracted.ProductName)
		write(4, r.Extracted.Price.InexactFloat64())
		style(4, st.price)

		if r.IsMatched() {
			write(5, r.Matched.SellingPrice.InexactFloat64())
			style(5, st.price)
			write(6, r.PriceChange.InexactFloat64())
			write(7, r.Matched.ID)
			write(8, r.Matched.Code)
			write(9, r.Matched.Name)
		} else {
			write(5, noValue)
			write(6, noValue)
		}

		write(10, r.Confidence)
		style(10, st.band(r.Confidence))
		write(11, r.Extracted.Provenance.Page)
		write(12, r.Extracted.Provenance.Source)
	}

	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	_ = f.SetColWidth(sheet, "A", "A", 10) // status
	_ = f.SetColWidth(sheet, "B", "B", 16) // code
	_ = f.SetColWidth(sheet, "C", "C", 40) // name
	_ = f.SetColWidth(sheet, "D", "F", 14) // prices
	_ = f.SetColWidth(sheet, "G", "H", 14) // matched id, code
	_ = f.SetColWidth(sheet, "I", "I", 40) // matched name
	return nil
}

func writeSummary(f *excelize.File, st styles, s pricelist.Summary) error {
	const sheet = SummarySheet

	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	rows := [][]any{
		{"Metric", "Count"},
		{"Found", s.Total},
		{"Matched", s.Matched},
		{"New", s.NoMatch},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	_ = f.SetCellStyle(sheet, "A1", "B1", st.header)
	_ = f.SetColWidth(sheet, "A", "A", 14)
	return nil
}
