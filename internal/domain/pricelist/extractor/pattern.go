package extractor

import (
	"regexp"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
)

const pricePattern = `(?:Rs\.?\s*|₹\s*)?(\d+(?:,\d{3})*(?:\.\d{2})?)`

// linePatterns are last-resort layouts, tried in order on every line. Two
// capture groups mean name and price, three mean code, name and price.
var linePatterns = []*regexp.Regexp{
	// delimited: CODE | Name | Price
	regexp.MustCompile(`(?i)([A-Z0-9\-/]+)\s*[|\t]\s*([A-Za-z0-9\s\-().]+?)\s*[|\t]\s*` + pricePattern),
	// space separated: CODE Name Price
	regexp.MustCompile(`(?i)([A-Z0-9\-/]{3,})\s+([A-Za-z][A-Za-z0-9\s\-().]{5,}?)\s+` + pricePattern),
	// name followed by a trailing price
	regexp.MustCompile(`(?i)([A-Za-z][A-Za-z0-9\s\-().]{10,}?)\s+` + pricePattern + `\s*$`),
	// wattage-prefixed solar listings: 550W Mono Panel 12500
	regexp.MustCompile(`(?i)(\d+W?)\s+([A-Za-z0-9\s\-().]+?(?:Panel|Module|Cell)?)\s+` + pricePattern),
	// labelled: Model: X-100 Name Price
	regexp.MustCompile(`(?i)(?:Model|SKU|Code)[\s:]*([A-Z0-9\-/]+)\s+([A-Za-z0-9\s\-().]+?)\s+` + pricePattern),
}

// matchPatterns applies every pattern to one line and returns the valid
// matches in pattern order.
func (p *parser) matchPatterns(line string) []pricelist.ExtractedRecord {
	var out []pricelist.ExtractedRecord
	for _, re := range linePatterns {
		for _, m := range re.FindAllStringSubmatch(line, -1) {
			var code, name, price string
			switch len(m) {
			case 4:
				code, name, price = m[1], m[2], m[3]
			case 3:
				name, price = m[1], m[2]
			default:
				continue
			}
			if rec, ok := p.recordFrom(code, name, price); ok {
				out = append(out, rec)
			}
		}
	}
	return out
}
