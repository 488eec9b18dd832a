package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical ignoring case", "SOLAR-550W", "solar-550w", 100},
		{"missing separator", "SOLAR550W", "SOLAR-550W", 90},
		{"contained code", "550W", "SOLAR-550W", 85},
		{"contained either way", "SOLAR-550W", "550W", 85},
		{"empty", "", "SOLAR-550W", 0},
		{"blank", "  ", "  ", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codeSimilarity(tt.a, tt.b))
		})
	}

	assert.Less(t, codeSimilarity("XYZ999", "SOLAR-550W"), 30)
}

func TestNameSimilarity(t *testing.T) {
	assert.Equal(t, 100, nameSimilarity("550W Mono PERC Panel", "550W Mono PERC Solar Panel"))
	assert.Equal(t, 100, nameSimilarity("Hybrid Inverter 5kW", "5kW hybrid-inverter"))
	assert.Less(t, nameSimilarity("Garden Hose", "Solar Panel"), 50)
	assert.Zero(t, nameSimilarity("", "Solar Panel"))
	assert.Zero(t, nameSimilarity("---", "Solar Panel"))
}

func TestTokenSet(t *testing.T) {
	assert.Equal(t, []string{"550w", "mono", "perc"}, tokenSet("Mono-PERC  mono, 550W"))
	assert.Empty(t, tokenSet(" - "))
}

func TestLevenshteinRatio(t *testing.T) {
	assert.Equal(t, 100, levenshteinRatio("abc", "abc"))
	assert.Equal(t, 66, levenshteinRatio("abc", "abd"))
	assert.Equal(t, 0, levenshteinRatio("abc", "xyz"))
}
