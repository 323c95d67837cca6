// Package pricing derives cart totals. Computation is pure: it reads a cart
// snapshot and produces a quote, with no side effects, so callers recompute it
// on every read.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/davidrangel/poscenter-gateway/internal/cart"
	"github.com/davidrangel/poscenter-gateway/pkg/money"
)

// Line is the priced view of one cart item.
type Line struct {
	ProductID    string
	Name         string
	Quantity     int
	UnitPrice    decimal.Decimal
	Discount     decimal.Decimal
	DiscountType cart.DiscountType
	LineTotal    decimal.Decimal
}

// Quote aggregates the derived totals for a cart. Tax is fixed at zero; the
// field exists only because the submission payload carries it.
type Quote struct {
	Lines         []Line
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	Tax           decimal.Decimal
	DeliveryCost  decimal.Decimal
	Total         decimal.Decimal
}

// Compute prices the given items and delivery settings.
//
//	subtotal       = Σ unit_price * quantity       (pre-discount)
//	total_discount = Σ per-line effective discount
//	total          = subtotal - total_discount + delivery_cost
func Compute(items []cart.Item, delivery cart.Delivery) Quote {
	quote := Quote{
		Lines:         make([]Line, 0, len(items)),
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		Tax:           decimal.Zero,
		DeliveryCost:  money.RoundCents(delivery.Cost()),
	}
	for _, item := range items {
		lineSubtotal := money.RoundCents(item.LineSubtotal())
		lineDiscount := money.RoundCents(item.LineDiscount())
		quote.Subtotal = quote.Subtotal.Add(lineSubtotal)
		quote.TotalDiscount = quote.TotalDiscount.Add(lineDiscount)
		quote.Lines = append(quote.Lines, Line{
			ProductID:    item.ProductID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Discount:     item.Discount.Amount(),
			DiscountType: item.Discount.Type(),
			LineTotal:    lineSubtotal.Sub(lineDiscount),
		})
	}
	quote.Total = quote.Subtotal.Sub(quote.TotalDiscount).Add(quote.DeliveryCost)
	return quote
}
