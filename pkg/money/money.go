// Package money holds the fixed-point helpers shared by pricing and payload
// construction. Amounts are decimal values rounded to cents; display output is
// always two decimal places.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	Zero    = decimal.Zero
	Hundred = decimal.NewFromInt(100)
)

// RoundCents rounds half away from zero to two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders an amount with exactly two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Parse converts user-entered amount text. Empty input counts as zero;
// negative amounts are rejected.
func Parse(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount must not be negative")
	}
	return d, nil
}

// Float converts an amount for the wire payload, which speaks plain JSON
// numbers.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
