package extractor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
)

// DefaultMinLineLength is the shortest trimmed line the line parser looks at.
const DefaultMinLineLength = 10

// noiseTokens mark header, footer and total lines that carry numbers but no
// product.
var noiseTokens = []string{"sr.", "no.", "page", "total", "subtotal", "grand"}

// priceTokenRe finds price candidates: an optional currency marker, a number
// with optional western or Indian grouping, and an optional 1-2 digit fraction.
var priceTokenRe = regexp.MustCompile(`(?i)(\b(?:rs\.?|inr)\s*|₹\s*)?(\d{1,3}(?:,\d{2,3})+|\d+)(\.\d{1,2})?`)

// noiseFilter matches every noise token in a single pass over the line.
type noiseFilter struct {
	matcher *ahocorasick.Matcher
}

func newNoiseFilter(tokens []string) *noiseFilter {
	return &noiseFilter{matcher: ahocorasick.NewStringMatcher(tokens)}
}

func (f *noiseFilter) contains(line string) bool {
	return len(f.matcher.MatchThreadSafe([]byte(strings.ToLower(line)))) > 0
}

// parser holds the validation limits shared by every strategy.
type parser struct {
	maxPrice      decimal.Decimal
	minLineLength int
	noise         *noiseFilter
}

func newParser() *parser {
	return &parser{
		maxPrice:      DefaultMaxPrice,
		minLineLength: DefaultMinLineLength,
		noise:         newNoiseFilter(noiseTokens),
	}
}

type priceToken struct {
	start    int
	raw      string
	currency bool
	value    decimal.Decimal
}

// findPrice returns the price token of a line. A token with a currency
// marker beats an earlier bare number.
func (p *parser) findPrice(line string) (priceToken, bool) {
	var chosen *priceToken

	for _, m := range priceTokenRe.FindAllStringSubmatchIndex(line, -1) {
		start, end := m[0], m[1]
		if !boundedBefore(line, start) || !boundedAfter(line, end) {
			continue
		}

		tok := priceToken{start: start, raw: line[m[4]:end], currency: m[2] >= 0}
		if tok.currency {
			chosen = &tok
			break
		}
		if chosen == nil {
			chosen = &tok
		}
	}

	if chosen == nil {
		return priceToken{}, false
	}
	v, ok := parsePrice(chosen.raw, p.maxPrice)
	if !ok {
		return priceToken{}, false
	}
	chosen.value = v
	return *chosen, true
}

func boundedBefore(line string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(line[:i])
	return unicode.IsSpace(r) || r == '|' || r == ':'
}

func boundedAfter(line string, i int) bool {
	rest := strings.TrimPrefix(line[i:], "/-")
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsSpace(r) || r == '|'
}

// parseLine turns one line of page text into a record. It reports false for
// noise, short lines and lines without a valid name and price.
func (p *parser) parseLine(line string) (pricelist.ExtractedRecord, bool) {
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) < p.minLineLength || p.noise.contains(line) {
		return pricelist.ExtractedRecord{}, false
	}

	tok, ok := p.findPrice(line)
	if !ok {
		return pricelist.ExtractedRecord{}, false
	}

	segment := line[:tok.start]
	var code string
	if fields := strings.Fields(segment); len(fields) > 1 && looksLikeCode(fields[0]) {
		code = fields[0]
		segment = strings.TrimSpace(segment)[len(fields[0]):]
	}

	name := cleanName(segment)
	if !validName(name) {
		return pricelist.ExtractedRecord{}, false
	}
	if code == "" {
		code = synthesizeCode(name)
	}

	return pricelist.ExtractedRecord{
		ProductCode: code,
		ProductName: name,
		Price:       tok.value,
	}, true
}
