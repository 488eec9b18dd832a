// Package money provides currency-safe price arithmetic using integer minor
// units and the Fowler Money pattern. Supplier price lists arrive as decimals;
// this package converts them for display and computes price movements.
package money

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// INR is the Indian Rupee (ISO-4217)
const INR = "INR"

// DefaultCurrency is used when a price list does not name one.
const DefaultCurrency = INR

var hundred = decimal.NewFromInt(100)

// Money represents a monetary value with currency.
// It wraps go-money for safe arithmetic and shopspring/decimal for precision calculations.
type Money struct {
	m *money.Money
}

// New creates a new Money value from minor units and currency code.
func New(amountMinor int64, currencyCode string) *Money {
	return &Money{
		m: money.New(amountMinor, currencyCode),
	}
}

// Symbol returns the display symbol of a currency, e.g. "₹" for INR. Unknown
// codes get the symbol of DefaultCurrency.
func Symbol(currencyCode string) string {
	if c := money.GetCurrency(currencyCode); c != nil {
		return c.Grapheme
	}
	return money.GetCurrency(DefaultCurrency).Grapheme
}

// NewFromDecimal creates Money from a decimal.Decimal value, rounding to the
// currency's minor unit. Unknown currencies fall back to DefaultCurrency.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currencyCode = DefaultCurrency
		currency = money.GetCurrency(DefaultCurrency)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	minor := amount.Mul(multiplier).Round(0).IntPart()

	return New(minor, currencyCode)
}

// NewFromString parses a price as printed in a catalog export or price list.
// Accepts "12500", "1,250.00", "₹ 48,000" and "Rs. 999".
func NewFromString(amount string, currencyCode string) (*Money, error) {
	amount = strings.TrimSpace(amount)
	lower := strings.ToLower(amount)
	for _, prefix := range []string{"rs.", "rs", "inr"} {
		if strings.HasPrefix(lower, prefix) {
			amount = amount[len(prefix):]
			break
		}
	}

	for _, sym := range []string{"₹", "$", "€", "£", ",", " "} {
		amount = strings.ReplaceAll(amount, sym, "")
	}
	amount = strings.TrimSuffix(amount, "/-")

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	return NewFromDecimal(d, currencyCode), nil
}

// Zero returns a zero Money value for the given currency
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// IsZero returns true if the amount is zero
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// Subtract subtracts other from m. Returns error if currencies don't match.
func (m *Money) Subtract(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		if other == nil || other.m == nil {
			return Zero(DefaultCurrency), nil
		}
		return &Money{m: other.m.Negative()}, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Subtract(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Display returns a formatted string for display (e.g., "₹1,250.00")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return Zero(DefaultCurrency).Display()
	}
	return m.m.Display()
}

// String returns the amount as a decimal string (e.g., "1234.56")
func (m *Money) String() string {
	if m == nil || m.m == nil {
		return "0.00"
	}
	return m.ToDecimal().StringFixed(int32(m.m.Currency().Fraction))
}

// ToDecimal converts to decimal.Decimal for precise calculations
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	d := decimal.NewFromInt(m.m.Amount())
	divisor := decimal.New(1, int32(currency.Fraction))
	return d.Div(divisor)
}

// PercentageOf calculates what percentage this amount is of another amount.
// Returns the percentage as a decimal.Decimal (e.g., 25.5 for 25.5%)
func (m *Money) PercentageOf(total *Money) decimal.Decimal {
	if m == nil || m.m == nil || total == nil || total.m == nil || total.IsZero() {
		return decimal.Zero
	}

	part := m.ToDecimal()
	whole := total.ToDecimal()

	return part.Div(whole).Mul(hundred)
}

// PercentChange returns the movement from one price to another as a
// percentage rounded to two places, e.g. 12000 -> 12600 is 5. A zero starting
// price or a currency mismatch has no defined change and yields zero.
func PercentChange(from, to *Money) decimal.Decimal {
	diff, err := to.Subtract(from)
	if err != nil {
		return decimal.Zero
	}
	return diff.PercentageOf(from).Round(2)
}
