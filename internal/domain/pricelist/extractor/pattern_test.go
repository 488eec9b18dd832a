package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_MatchPatterns(t *testing.T) {
	p := newParser()

	t.Run("pipe delimited", func(t *testing.T) {
		got := p.matchPatterns("SOLAR-550W | 550W Mono PERC Panel | 12500")

		require.NotEmpty(t, got)
		assert.Equal(t, "SOLAR-550W", got[0].ProductCode)
		assert.Equal(t, "550W Mono PERC Panel", got[0].ProductName)
		assert.Equal(t, "12500", got[0].Price.String())
	})

	t.Run("labelled model", func(t *testing.T) {
		got := dedupe(p.matchPatterns("Model: INV-5KW Hybrid Inverter Rs. 48,000"))

		var found bool
		for _, rec := range got {
			if rec.ProductCode == "INV-5KW" && rec.ProductName == "Hybrid Inverter" {
				found = true
				assert.Equal(t, "48000", rec.Price.String())
			}
		}
		assert.True(t, found, "labelled record not found in %v", got)
	})

	t.Run("trailing price synthesizes a code", func(t *testing.T) {
		got := p.matchPatterns("Heavy Duty Garden Hose 450")

		require.NotEmpty(t, got)
		last := got[len(got)-1]
		assert.Equal(t, "450", last.Price.String())
		assert.NotEmpty(t, last.ProductCode)
	})

	t.Run("invalid prices are dropped", func(t *testing.T) {
		assert.Empty(t, p.matchPatterns("Heavy Duty Garden Hose 0"))
		assert.Empty(t, p.matchPatterns("no digits on this line at all"))
	})
}
