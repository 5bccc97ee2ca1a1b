// Package money fixes the engine's decimal conventions: two-digit scale,
// rounding applied at every arithmetic step so repeated operations never
// accumulate drift.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Round2 rounds half-up to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Add returns round2(a + b).
func Add(a, b decimal.Decimal) decimal.Decimal {
	return Round2(a.Add(b))
}

// Sub returns round2(a - b).
func Sub(a, b decimal.Decimal) decimal.Decimal {
	return Round2(a.Sub(b))
}

// Zero is the zero amount at scale 2.
func Zero() decimal.Decimal {
	return decimal.New(0, -2)
}

// String formats an amount with exactly two decimal places.
func String(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ParseAmount parses a client-supplied amount. It must be a valid decimal,
// strictly positive, and carry at most two decimal places; amounts are never
// silently rounded on the way in.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("amount must be greater than zero")
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return decimal.Decimal{}, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return Round2(d), nil
}

// ParseStored parses an amount read back from the datastore.
func ParseStored(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid stored amount %q: %w", s, err)
	}
	return d, nil
}
