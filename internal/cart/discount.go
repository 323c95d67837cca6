package cart

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/money"
)

// DiscountType selects how a line discount is interpreted.
type DiscountType string

const (
	DiscountTypeFlat    DiscountType = "usd"
	DiscountTypePercent DiscountType = "percent"
)

func (t DiscountType) IsValid() bool {
	return t == DiscountTypeFlat || t == DiscountTypePercent
}

// Discount is a tagged variant: a flat amount or a percentage rate. Keeping
// the branch in one place removes the per-call-site type switching the
// computation would otherwise repeat.
type Discount struct {
	kind   DiscountType
	amount decimal.Decimal
}

// NoDiscount is the zero flat discount every new line starts with.
func NoDiscount() Discount {
	return Discount{kind: DiscountTypeFlat, amount: decimal.Zero}
}

// NewDiscount validates and clamps a discount against the line subtotal it
// will apply to. Percent rates are capped at 100; flat amounts at the line
// subtotal, so a line total can never go negative.
func NewDiscount(kind DiscountType, amount decimal.Decimal, lineSubtotal decimal.Decimal) (Discount, error) {
	if !kind.IsValid() {
		return Discount{}, pkgerrors.New(pkgerrors.CodeValidation, "discount type must be usd or percent")
	}
	if amount.IsNegative() {
		return Discount{}, pkgerrors.New(pkgerrors.CodeValidation, "discount must not be negative")
	}
	switch kind {
	case DiscountTypePercent:
		if amount.GreaterThan(money.Hundred) {
			amount = money.Hundred
		}
	case DiscountTypeFlat:
		if amount.GreaterThan(lineSubtotal) {
			amount = lineSubtotal
		}
	}
	return Discount{kind: kind, amount: amount}, nil
}

func (d Discount) Type() DiscountType {
	if d.kind == "" {
		return DiscountTypeFlat
	}
	return d.kind
}

func (d Discount) Amount() decimal.Decimal {
	return d.amount
}

// Apply computes the discounted amount for the given line subtotal, clamped so
// the remainder is never negative. Quantity changes after the discount was set
// can shrink the subtotal below a flat amount; the clamp holds here too.
func (d Discount) Apply(lineSubtotal decimal.Decimal) decimal.Decimal {
	var out decimal.Decimal
	switch d.Type() {
	case DiscountTypePercent:
		out = money.RoundCents(lineSubtotal.Mul(d.amount).Div(money.Hundred))
	default:
		out = d.amount
	}
	if out.GreaterThan(lineSubtotal) {
		return lineSubtotal
	}
	return out
}
