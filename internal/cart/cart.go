package cart

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/money"
	"github.com/davidrangel/poscenter-gateway/pkg/posapi"
)

// Flow tells an order-building cart apart from a supplier purchase cart. The
// pricing and stock rules are identical; only the counterparty and the
// submission endpoint differ.
type Flow string

const (
	FlowOrder    Flow = "order"
	FlowPurchase Flow = "purchase"
)

func (f Flow) partyNoun() string {
	if f == FlowPurchase {
		return "supplier"
	}
	return "customer"
}

// Delivery captures the optional delivery fee applied on top of the cart.
type Delivery struct {
	Enabled bool
	Amount  decimal.Decimal
}

// Cost is the amount actually charged: zero unless enabled.
func (d Delivery) Cost() decimal.Decimal {
	if !d.Enabled {
		return decimal.Zero
	}
	return d.Amount
}

// Cart is one order-building session. It is exclusively owned by the session
// that created it; all mutations go through the methods below, which hold the
// cart's lock.
type Cart struct {
	id   uuid.UUID
	flow Flow

	mu         sync.Mutex
	partyID    string
	items      []*Item
	delivery   Delivery
	maxItems   int
	submitting bool
	touchedAt  time.Time
}

// New creates an empty cart for the given flow.
func New(flow Flow, maxItems int) *Cart {
	if flow != FlowPurchase {
		flow = FlowOrder
	}
	if maxItems <= 0 {
		maxItems = 200
	}
	return &Cart{
		id:        uuid.New(),
		flow:      flow,
		maxItems:  maxItems,
		touchedAt: time.Now(),
	}
}

func (c *Cart) ID() uuid.UUID {
	return c.id
}

func (c *Cart) Flow() Flow {
	return c.flow
}

// Party returns the selected customer/supplier id, if any.
func (c *Cart) Party() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.partyID, c.partyID != ""
}

// SetParty selects the counterparty. Clearing it (empty id) empties the cart;
// the clear is an explicit transition here, not a reactive side effect, and it
// is idempotent on empty carts. Returns whether items were dropped.
func (c *Cart) SetParty(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	c.partyID = strings.TrimSpace(id)
	if c.partyID != "" {
		return false
	}
	dropped := len(c.items) > 0
	c.items = nil
	return dropped
}

// AddItem adds a product to the cart, or bumps its quantity by one when the
// line already exists. Requires a selected counterparty and positive snapshot
// stock.
func (c *Cart) AddItem(p posapi.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.partyID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("select a %s before adding products", c.flow.partyNoun()))
	}

	if existing := c.find(p.ID); existing != nil {
		if existing.Quantity+1 > existing.AvailableStock {
			return c.stockWarning(existing.Name, existing.Quantity+1, existing.AvailableStock)
		}
		existing.Quantity++
		return nil
	}

	if p.QuantityInStock <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is out of stock", p.Name))
	}
	if len(c.items) >= c.maxItems {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is full")
	}

	item, err := NewItemFromProduct(p)
	if err != nil {
		return err
	}
	c.items = append(c.items, &item)
	return nil
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line; more
// than the stock snapshot is rejected with the line left untouched.
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	item := c.find(productID)
	if item == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
	}
	if quantity <= 0 {
		c.remove(productID)
		return nil
	}
	if quantity > item.AvailableStock {
		return c.stockWarning(item.Name, quantity, item.AvailableStock)
	}
	item.Quantity = quantity
	return nil
}

// UpdateDiscount parses the raw amount (empty string counts as zero) and sets
// the line's discount value and type in one step.
func (c *Cart) UpdateDiscount(productID string, rawAmount string, kind DiscountType) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	item := c.find(productID)
	if item == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
	}
	amount, err := money.Parse(rawAmount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount amount")
	}
	discount, err := NewDiscount(kind, amount, item.LineSubtotal())
	if err != nil {
		return err
	}
	item.Discount = discount
	return nil
}

// Remove drops the line unconditionally.
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	c.remove(productID)
}

// Clear empties the cart, keeping the selected counterparty.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	c.items = nil
}

// SetDelivery updates the delivery toggle and fee.
func (c *Cart) SetDelivery(enabled bool, amount decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery amount must not be negative")
	}
	c.delivery = Delivery{Enabled: enabled, Amount: amount}
	return nil
}

// Items returns a snapshot copy of the lines.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	for i, item := range c.items {
		out[i] = *item
	}
	return out
}

// Delivery returns the current delivery settings.
func (c *Cart) Delivery() Delivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delivery
}

// BeginSubmit marks the cart as having a submission in flight. A second
// concurrent submission fails instead of double-posting the order.
func (c *Cart) BeginSubmit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	if c.submitting {
		return pkgerrors.New(pkgerrors.CodeConflict, "a submission is already in flight for this cart")
	}
	c.submitting = true
	return nil
}

// EndSubmit clears the in-flight flag.
func (c *Cart) EndSubmit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
}

// TouchedAt reports the last mutation time, used by the store's TTL sweep.
func (c *Cart) TouchedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touchedAt
}

func (c *Cart) touch() {
	c.touchedAt = time.Now()
}

func (c *Cart) find(productID string) *Item {
	for _, item := range c.items {
		if item.ProductID == productID {
			return item
		}
	}
	return nil
}

func (c *Cart) remove(productID string) {
	kept := c.items[:0]
	for _, item := range c.items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.items = kept
}

func (c *Cart) stockWarning(name string, requested, available int) error {
	return pkgerrors.New(
		pkgerrors.CodeStockConflict,
		fmt.Sprintf("only %d of %q available", available, name),
	).WithDetails(map[string]any{
		"requested": requested,
		"available": available,
	})
}
