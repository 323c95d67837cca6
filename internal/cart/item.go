package cart

import (
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/posapi"
)

// Item is one cart line. Price and stock are snapshots taken when the product
// was added; they do not track later catalog changes.
type Item struct {
	ProductID      string
	Name           string
	UnitPrice      decimal.Decimal
	Quantity       int
	Discount       Discount
	AvailableStock int
}

// NewItemFromProduct builds a validated line from upstream product data.
// Malformed reference data is rejected here, at the boundary, rather than
// defaulted further in.
func NewItemFromProduct(p posapi.Product) (Item, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if p.Price < 0 {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "product price must not be negative")
	}
	if p.QuantityInStock < 0 {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "product stock must not be negative")
	}
	return Item{
		ProductID:      p.ID,
		Name:           p.Name,
		UnitPrice:      decimal.NewFromFloat(p.Price),
		Quantity:       1,
		Discount:       NoDiscount(),
		AvailableStock: p.QuantityInStock,
	}, nil
}

// LineSubtotal is the pre-discount amount for the line.
func (i Item) LineSubtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// LineDiscount is the effective discounted amount for the line.
func (i Item) LineDiscount() decimal.Decimal {
	return i.Discount.Apply(i.LineSubtotal())
}

// LineTotal is subtotal minus discount; never negative.
func (i Item) LineTotal() decimal.Decimal {
	return i.LineSubtotal().Sub(i.LineDiscount())
}
