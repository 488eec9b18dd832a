package matcher

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/catalog"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
)

func solarCatalog() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Code: "SOLAR-550W", Name: "550W Mono PERC Panel", SellingPrice: decimal.NewFromInt(12000)},
	}
}

func extracted(code, name string, price int64) pricelist.ExtractedRecord {
	return pricelist.ExtractedRecord{ProductCode: code, ProductName: name, Price: decimal.NewFromInt(price)}
}

func TestMatcher_MatchOne(t *testing.T) {
	m := New()

	t.Run("exact code match ignores case", func(t *testing.T) {
		res := m.MatchOne(extracted("solar-550w", "550w mono perc panel", 12500), solarCatalog())

		assert.Equal(t, pricelist.StatusMatched, res.Status)
		assert.Equal(t, 100.0, res.Confidence)
		require.NotNil(t, res.Matched)
		assert.Equal(t, int64(1), res.Matched.ID)
	})

	t.Run("name similarity carries a fuzzy match", func(t *testing.T) {
		res := m.MatchOne(extracted("XYZ999", "550W Mono PERC Solar Panel", 12500), solarCatalog())

		assert.Equal(t, pricelist.StatusMatched, res.Status)
		require.NotNil(t, res.Matched)
		assert.Equal(t, int64(1), res.Matched.ID)
		assert.GreaterOrEqual(t, res.Confidence, 70.0)
		assert.Less(t, res.Confidence, 100.0)
	})

	t.Run("unrelated record is not matched", func(t *testing.T) {
		res := m.MatchOne(extracted("ABC", "Garden Hose 10m", 500), solarCatalog())

		assert.Equal(t, pricelist.StatusNoMatch, res.Status)
		assert.Nil(t, res.Matched)
		assert.Zero(t, res.Confidence)
		assert.True(t, res.PriceChange.IsZero())
	})

	t.Run("price change is relative to the catalog price", func(t *testing.T) {
		res := m.MatchOne(extracted("SOLAR-550W", "Panel", 12600), solarCatalog())

		assert.Equal(t, "5", res.PriceChange.String())
	})

	t.Run("exact code beats a better name elsewhere", func(t *testing.T) {
		products := []catalog.Product{
			{ID: 2, Code: "X-9", Name: "550W Mono PERC Panel"},
			{ID: 1, Code: "SOLAR-550W", Name: "Garden Hose"},
		}
		res := m.MatchOne(extracted("SOLAR-550W", "550W Mono PERC Panel", 12500), products)

		require.NotNil(t, res.Matched)
		assert.Equal(t, int64(1), res.Matched.ID)
		assert.Equal(t, 100.0, res.Confidence)
	})

	t.Run("zero catalog price has no change", func(t *testing.T) {
		products := []catalog.Product{{ID: 5, Code: "FUSE-5A", Name: "Fuse 5A"}}
		res := m.MatchOne(extracted("FUSE-5A", "Fuse 5A", 40), products)

		assert.True(t, res.IsMatched())
		assert.True(t, res.PriceChange.IsZero())
	})

	t.Run("empty codes never short-circuit", func(t *testing.T) {
		products := []catalog.Product{{ID: 7, Code: "", Name: "Battery Clamp"}}
		res := m.MatchOne(extracted("", "Garden Hose 10m", 500), products)

		assert.Equal(t, pricelist.StatusNoMatch, res.Status)
	})

	t.Run("first exact code wins", func(t *testing.T) {
		products := []catalog.Product{
			{ID: 1, Code: "A-1", Name: "Widget"},
			{ID: 2, Code: "a-1", Name: "Widget"},
		}
		res := m.MatchOne(extracted("A-1", "Widget", 10), products)

		assert.Equal(t, int64(1), res.Matched.ID)
	})

	t.Run("ties keep the first catalog entry", func(t *testing.T) {
		products := []catalog.Product{
			{ID: 1, Code: "P-1", Name: "Hybrid Inverter 5kW"},
			{ID: 2, Code: "P-2", Name: "Hybrid Inverter 5kW"},
		}
		res := m.MatchOne(extracted("INV-5", "5kW Hybrid Inverter", 48000), products)

		require.True(t, res.IsMatched())
		assert.Equal(t, int64(1), res.Matched.ID)
	})

	t.Run("empty catalog", func(t *testing.T) {
		res := m.MatchOne(extracted("A-1", "Widget", 10), nil)
		assert.Equal(t, pricelist.StatusNoMatch, res.Status)
	})
}

func TestMatcher_Threshold(t *testing.T) {
	rec := extracted("XYZ999", "550W Mono PERC Solar Panel", 12500)
	score := Score(rec, solarCatalog()[0])

	strict := New(WithThreshold(score + 1))
	res := strict.MatchOne(rec, solarCatalog())
	assert.Equal(t, pricelist.StatusNoMatch, res.Status)
	assert.Zero(t, res.Confidence)

	exact := New(WithThreshold(score))
	assert.Equal(t, pricelist.StatusMatched, exact.MatchOne(rec, solarCatalog()).Status)

	assert.Equal(t, DefaultThreshold, New(WithThreshold(150)).Threshold())
}

func TestMatcher_Currency(t *testing.T) {
	products := []catalog.Product{{ID: 1, Code: "CAM-1", Name: "Action Camera", SellingPrice: decimal.NewFromInt(300)}}
	rec := pricelist.ExtractedRecord{ProductCode: "CAM-1", ProductName: "Action Camera", Price: decimal.RequireFromString("400.4")}

	// yen has no minor unit, so 400.4 rounds to 400
	res := New(WithCurrency("JPY")).MatchOne(rec, products)
	assert.Equal(t, "33.33", res.PriceChange.String())

	res = New(WithCurrency("")).MatchOne(rec, products)
	assert.Equal(t, "33.47", res.PriceChange.String())
}

func TestMatcher_Match(t *testing.T) {
	gen := catalog.NewFakeGenerator(42)
	products := gen.Products(50)

	records := make([]pricelist.ExtractedRecord, 0, 20)
	for _, p := range products[:10] {
		records = append(records, extracted(p.Code, p.Name, 100))
	}
	for i := 0; i < 10; i++ {
		records = append(records, extracted("ZZ-"+string(rune('A'+i)), "Completely Unrelated Item", 100))
	}

	m := New()
	first := m.Match(records, products)
	second := m.Match(records, products)

	require.Len(t, first, len(records))
	assert.Equal(t, first, second)

	for i, res := range first {
		assert.Equal(t, records[i], res.Extracted)
		if res.Status == pricelist.StatusNoMatch {
			assert.Nil(t, res.Matched)
			assert.Zero(t, res.Confidence)
		} else {
			assert.GreaterOrEqual(t, res.Confidence, m.Threshold())
		}
	}
	for _, res := range first[:10] {
		assert.Equal(t, 100.0, res.Confidence)
	}
}

func TestSummarize(t *testing.T) {
	m := New()
	results := m.Match([]pricelist.ExtractedRecord{
		extracted("SOLAR-550W", "550W Mono PERC Panel", 12500),
		extracted("ABC", "Garden Hose 10m", 500),
	}, solarCatalog())

	assert.Equal(t, pricelist.Summary{Total: 2, Matched: 1, NoMatch: 1}, pricelist.Summarize(results))
}
