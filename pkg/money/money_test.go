package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		minor    int64
		currency string
		want     string
	}{
		{"positive paise", 125000, INR, "1250.00"},
		{"zero", 0, INR, "0.00"},
		{"negative", -5000, INR, "-50.00"},
		{"dollars", 1234, "USD", "12.34"},
		{"yen (no decimals)", 10000, "JPY", "10000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.minor, tt.currency).String())
		})
	}
}

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{"precise decimal", "1250.50", INR, "₹1,250.50"},
		{"many decimals", "99.999", INR, "₹100.00"},
		{"whole number", "12500", INR, "₹12,500.00"},
		{"zero-decimal currency", "500", "JPY", "¥500"},
		{"unknown currency falls back", "10", "XXZ", "₹10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFromDecimal(decimal.RequireFromString(tt.amount), tt.currency)
			assert.Equal(t, tt.want, m.Display())
		})
	}
}

func TestNewFromString(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    string
		wantErr bool
	}{
		{"plain", "12500", "12500.00", false},
		{"grouped", "1,250.00", "1250.00", false},
		{"indian grouping", "1,25,000", "125000.00", false},
		{"rupee sign", "₹ 48,000", "48000.00", false},
		{"rs prefix", "Rs. 999", "999.00", false},
		{"slash dash suffix", "48,000/-", "48000.00", false},
		{"invalid", "on request", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewFromString(tt.amount, INR)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.String())
		})
	}
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "₹", Symbol(INR))
	assert.Equal(t, "$", Symbol("USD"))
	assert.Equal(t, "₹", Symbol("XXZ"))
}

func TestSubtract(t *testing.T) {
	tests := []struct {
		name    string
		a       *Money
		b       *Money
		want    string
		wantErr bool
	}{
		{"price increase", New(1260000, INR), New(1200000, INR), "600.00", false},
		{"price drop", New(1100000, INR), New(1200000, INR), "-1000.00", false},
		{"with nil", New(1000, INR), nil, "10.00", false},
		{"nil minus value", nil, New(300, INR), "-3.00", false},
		{"different currencies", New(100, INR), New(100, "USD"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.a.Subtract(tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.String())
		})
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "₹1,250.00", New(125000, INR).Display())
	assert.Equal(t, "$12.34", New(1234, "USD").Display())
	assert.Equal(t, "₹0.00", (*Money)(nil).Display())
}

func TestString(t *testing.T) {
	assert.Equal(t, "1250.00", New(125000, INR).String())
	assert.Equal(t, "0.00", (*Money)(nil).String())
	assert.True(t, New(125050, INR).ToDecimal().Equal(decimal.RequireFromString("1250.5")))
}

func TestPercentageOf(t *testing.T) {
	part := New(2500, INR)
	whole := New(10000, INR)

	assert.True(t, part.PercentageOf(whole).Equal(decimal.NewFromInt(25)))
	assert.True(t, part.PercentageOf(Zero(INR)).IsZero())
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want string
	}{
		{"increase", "12000", "12600", "5"},
		{"decrease", "12000", "11400", "-5"},
		{"unchanged", "48000", "48000", "0"},
		{"rounded to two places", "3", "4", "33.33"},
		{"zero base", "0", "500", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := NewFromDecimal(decimal.RequireFromString(tt.from), INR)
			to := NewFromDecimal(decimal.RequireFromString(tt.to), INR)
			assert.Equal(t, tt.want, PercentChange(from, to).String())
		})
	}

	t.Run("currency mismatch", func(t *testing.T) {
		assert.True(t, PercentChange(New(100, INR), New(200, "USD")).IsZero())
	})
}
