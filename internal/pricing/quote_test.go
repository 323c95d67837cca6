package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/davidrangel/poscenter-gateway/internal/cart"
	"github.com/davidrangel/poscenter-gateway/pkg/posapi"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func line(t *testing.T, id, name string, price float64, qty int, discountKind cart.DiscountType, discount string) cart.Item {
	t.Helper()
	item, err := cart.NewItemFromProduct(posapi.Product{ID: id, Name: name, Price: price, QuantityInStock: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item.Quantity = qty
	if discount != "" {
		d, err := cart.NewDiscount(discountKind, dec(discount), item.LineSubtotal())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		item.Discount = d
	}
	return item
}

func assertEqual(t *testing.T, field string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s: expected %s, got %s", field, want, got)
	}
}

func TestComputeMixedDiscounts(t *testing.T) {
	// Item A: 3 x 10.00 with 5.00 flat off; item B: 1 x 20.00 with 10% off.
	items := []cart.Item{
		line(t, "a", "Item A", 10.00, 3, cart.DiscountTypeFlat, "5"),
		line(t, "b", "Item B", 20.00, 1, cart.DiscountTypePercent, "10"),
	}
	quote := Compute(items, cart.Delivery{})

	assertEqual(t, "subtotal", quote.Subtotal, dec("50"))
	assertEqual(t, "total_discount", quote.TotalDiscount, dec("7"))
	assertEqual(t, "tax", quote.Tax, dec("0"))
	assertEqual(t, "delivery_cost", quote.DeliveryCost, dec("0"))
	assertEqual(t, "total", quote.Total, dec("43"))

	if len(quote.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(quote.Lines))
	}
	assertEqual(t, "line A total", quote.Lines[0].LineTotal, dec("25"))
	assertEqual(t, "line B total", quote.Lines[1].LineTotal, dec("18"))
}

func TestComputeDeliveryAddsToTotal(t *testing.T) {
	items := []cart.Item{
		line(t, "a", "Item A", 10.00, 3, cart.DiscountTypeFlat, "5"),
		line(t, "b", "Item B", 20.00, 1, cart.DiscountTypePercent, "10"),
	}
	quote := Compute(items, cart.Delivery{Enabled: true, Amount: dec("7.50")})

	assertEqual(t, "delivery_cost", quote.DeliveryCost, dec("7.50"))
	assertEqual(t, "total", quote.Total, dec("50.50"))
}

func TestComputeDisabledDeliveryIgnoresAmount(t *testing.T) {
	items := []cart.Item{line(t, "a", "Item A", 10.00, 1, "", "")}
	quote := Compute(items, cart.Delivery{Enabled: false, Amount: dec("7.50")})

	assertEqual(t, "delivery_cost", quote.DeliveryCost, dec("0"))
	assertEqual(t, "total", quote.Total, dec("10"))
}

func TestComputeEmptyCart(t *testing.T) {
	quote := Compute(nil, cart.Delivery{})
	assertEqual(t, "subtotal", quote.Subtotal, dec("0"))
	assertEqual(t, "total", quote.Total, dec("0"))
	if len(quote.Lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(quote.Lines))
	}
}

func TestComputeTotalNeverNegativePerLine(t *testing.T) {
	// Flat discount set at a higher quantity, then quantity reduced.
	item := line(t, "a", "Item A", 10.00, 3, cart.DiscountTypeFlat, "25")
	item.Quantity = 1
	quote := Compute([]cart.Item{item}, cart.Delivery{})

	assertEqual(t, "total_discount", quote.TotalDiscount, dec("10"))
	assertEqual(t, "total", quote.Total, dec("0"))
}

func TestComputePercentRounding(t *testing.T) {
	item := line(t, "a", "Odd", 33.33, 1, cart.DiscountTypePercent, "10")
	quote := Compute([]cart.Item{item}, cart.Delivery{})

	assertEqual(t, "total_discount", quote.TotalDiscount, dec("3.33"))
	assertEqual(t, "total", quote.Total, dec("30.00"))
}

func TestComputeIsPure(t *testing.T) {
	items := []cart.Item{line(t, "a", "Item A", 10.00, 2, cart.DiscountTypeFlat, "1")}
	first := Compute(items, cart.Delivery{})
	second := Compute(items, cart.Delivery{})

	assertEqual(t, "total", first.Total, second.Total)
	if items[0].Quantity != 2 {
		t.Fatal("expected input untouched")
	}
}
