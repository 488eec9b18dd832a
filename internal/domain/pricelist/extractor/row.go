package extractor

import (
	"strings"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
)

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseRow builds a record from one table row. Mapped columns are tried
// first; when they do not yield a valid name and price the row is read
// positionally.
func (p *parser) parseRow(row []string, cols columnMap) (pricelist.ExtractedRecord, bool) {
	if cols.recognized() {
		if rec, ok := p.recordFrom(cellAt(row, cols.code), cellAt(row, cols.name), cellAt(row, cols.price)); ok {
			return rec, true
		}
	}

	switch {
	case len(row) >= 3:
		return p.recordFrom(cellAt(row, 0), cellAt(row, 1), cellAt(row, 2))
	case len(row) == 2:
		return p.recordFrom("", cellAt(row, 0), cellAt(row, 1))
	default:
		return pricelist.ExtractedRecord{}, false
	}
}

func (p *parser) recordFrom(code, name, price string) (pricelist.ExtractedRecord, bool) {
	name = cleanName(name)
	if !validName(name) {
		return pricelist.ExtractedRecord{}, false
	}
	value, ok := parsePrice(price, p.maxPrice)
	if !ok {
		return pricelist.ExtractedRecord{}, false
	}

	return pricelist.ExtractedRecord{
		ProductCode: normalizeCode(code, name),
		ProductName: name,
		Price:       value,
	}, true
}

// parseTable turns a detected table into records. Row indexes in the
// provenance refer to the table as detected, header row included.
func (p *parser) parseTable(rows [][]string, page, table int) []pricelist.ExtractedRecord {
	if len(rows) < 2 {
		return nil
	}

	cols := classifyHeader(rows[0])
	first := 0
	if cols.recognized() {
		first = 1
	}

	var out []pricelist.ExtractedRecord
	for i := first; i < len(rows); i++ {
		rec, ok := p.parseRow(rows[i], cols)
		if !ok {
			continue
		}
		rec.Provenance = pricelist.Provenance{
			Page:   page,
			Table:  table,
			Row:    i,
			Line:   -1,
			Source: pricelist.SourceTable,
		}
		out = append(out, rec)
	}
	return out
}
