package checkout

import (
	"github.com/davidrangel/poscenter-gateway/internal/cart"
	"github.com/davidrangel/poscenter-gateway/internal/pricing"
	"github.com/davidrangel/poscenter-gateway/pkg/money"
	"github.com/davidrangel/poscenter-gateway/pkg/posapi"
)

// Submission status defaults attached to every payload.
const (
	defaultStatus        = "pending"
	defaultPaymentStatus = "pending"
	defaultPaymentMethod = "cash"
)

func buildItems(quote pricing.Quote) []posapi.OrderItem {
	items := make([]posapi.OrderItem, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		items = append(items, posapi.OrderItem{
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			Price:        money.Float(line.UnitPrice),
			Discount:     money.Float(line.Discount),
			DiscountType: string(line.DiscountType),
		})
	}
	return items
}

func buildOrderPayload(customerID string, delivery cart.Delivery, quote pricing.Quote, notes string) posapi.CreateOrderRequest {
	return posapi.CreateOrderRequest{
		CustomerID:      customerID,
		Items:           buildItems(quote),
		Subtotal:        money.Float(quote.Subtotal),
		TotalDiscount:   money.Float(quote.TotalDiscount),
		Tax:             money.Float(quote.Tax),
		DeliveryEnabled: delivery.Enabled,
		DeliveryAmount:  money.Float(money.RoundCents(delivery.Amount)),
		Total:           money.Float(quote.Total),
		Status:          defaultStatus,
		PaymentStatus:   defaultPaymentStatus,
		PaymentMethod:   defaultPaymentMethod,
		Notes:           notes,
	}
}

func buildPurchasePayload(supplierID string, delivery cart.Delivery, quote pricing.Quote, notes string) posapi.CreatePurchaseRequest {
	return posapi.CreatePurchaseRequest{
		SupplierID:      supplierID,
		Items:           buildItems(quote),
		Subtotal:        money.Float(quote.Subtotal),
		TotalDiscount:   money.Float(quote.TotalDiscount),
		Tax:             money.Float(quote.Tax),
		DeliveryEnabled: delivery.Enabled,
		DeliveryAmount:  money.Float(money.RoundCents(delivery.Amount)),
		Total:           money.Float(quote.Total),
		Status:          defaultStatus,
		PaymentStatus:   defaultPaymentStatus,
		PaymentMethod:   defaultPaymentMethod,
		Notes:           notes,
	}
}
