// Package stock gates order submission on the inventory snapshots carried by
// the cart. Snapshots are taken at add/update time and are NOT re-fetched
// here; a concurrent sale elsewhere can invalidate them between validation
// and submission. The upstream backend is the final arbiter of stock.
package stock

import (
	"fmt"

	"github.com/davidrangel/poscenter-gateway/internal/cart"
	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
)

// Violation names one offending cart line.
type Violation struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	RequestedQty int    `json:"requested_qty"`
	AvailableQty int    `json:"available_qty"`
}

// ValidateReady runs the cheap preconditions before the per-item check: a
// counterparty must be selected and the cart must not be empty.
func ValidateReady(flow cart.Flow, partySelected bool, itemCount int) error {
	noun := "customer"
	if flow == cart.FlowPurchase {
		noun = "supplier"
	}
	if !partySelected {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no %s selected", noun))
	}
	if itemCount == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return nil
}

// ValidateCart checks every line against its stock snapshot and reports every
// violation, not just the first. Any violation aborts the whole submission.
func ValidateCart(items []cart.Item) error {
	var violations []Violation
	for _, item := range items {
		if item.Quantity <= 0 || item.Quantity > item.AvailableStock {
			violations = append(violations, Violation{
				ProductID:    item.ProductID,
				ProductName:  item.Name,
				RequestedQty: item.Quantity,
				AvailableQty: item.AvailableStock,
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(
		pkgerrors.CodeStockConflict,
		fmt.Sprintf("insufficient stock for %d item(s)", len(violations)),
	).WithDetails(map[string]any{
		"violations": violations,
	})
}
