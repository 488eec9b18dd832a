package catalog

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/supplier-price-sync/pkg/money"
)

// ErrEmptyCatalog is returned when a catalog file has no usable rows.
var ErrEmptyCatalog = errors.New("catalog has no products")

// catalogRow is a raw catalog CSV row. Alternative column names cover
// common shop exports (gocsv matches by header name).
type catalogRow struct {
	ID string `csv:"id"`

	Code  string `csv:"product_code"`
	Code2 string `csv:"code"`
	SKU   string `csv:"sku"`

	Name  string `csv:"product_name"`
	Name2 string `csv:"name"`

	SellingPrice string `csv:"selling_price"`
	Price        string `csv:"price"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// LoadCSV reads a catalog export. Rows without a name are skipped; rows
// without an id get their 1-based row number. Selling prices may carry a
// currency marker and grouping ("Rs. 1,250") and are rounded to the minor
// unit of currency.
func LoadCSV(r io.Reader, currency string) ([]Product, error) {
	var rows []catalogRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse catalog CSV: %w", err)
	}

	products := make([]Product, 0, len(rows))
	for i, row := range rows {
		name := firstNonEmpty(row.Name, row.Name2)
		if name == "" {
			continue
		}

		p := Product{
			ID:   int64(i + 1),
			Code: firstNonEmpty(row.Code, row.Code2, row.SKU),
			Name: name,
		}

		if id := strings.TrimSpace(row.ID); id != "" {
			n, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid id %q: %w", i+2, id, err)
			}
			p.ID = n
		}

		if price := firstNonEmpty(row.SellingPrice, row.Price); price != "" {
			m, err := money.NewFromString(price, currency)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid selling price %q: %w", i+2, price, err)
			}
			p.SellingPrice = m.ToDecimal()
		}

		products = append(products, p)
	}

	if len(products) == 0 {
		return nil, ErrEmptyCatalog
	}
	return products, nil
}
