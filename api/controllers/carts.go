package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/davidrangel/poscenter-gateway/api/responses"
	"github.com/davidrangel/poscenter-gateway/api/validators"
	cartpkg "github.com/davidrangel/poscenter-gateway/internal/cart"
	"github.com/davidrangel/poscenter-gateway/internal/catalog"
	"github.com/davidrangel/poscenter-gateway/internal/checkout"
	"github.com/davidrangel/poscenter-gateway/internal/directory"
	"github.com/davidrangel/poscenter-gateway/internal/pricing"
	"github.com/davidrangel/poscenter-gateway/pkg/auth/session"
	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/logger"
	"github.com/davidrangel/poscenter-gateway/pkg/money"
)

// CartCreate registers a fresh cart for the flow the route belongs to.
func CartCreate(store *cartpkg.Store, flow cartpkg.Flow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}
		c := store.Create(flow)
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(c))
	}
}

// CartGet returns the priced view of the cart. Totals are recomputed on every
// read.
func CartGet(store *cartpkg.Store, flow cartpkg.Flow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := cartFromRequest(r, store, flow)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(c))
	}
}

// CartDelete clears the cart and drops the session.
func CartDelete(store *cartpkg.Store, flow cartpkg.Flow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := cartFromRequest(r, store, flow)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c.Clear()
		store.Delete(c.ID())
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// CartSetParty sets or clears the cart's counterparty. A non-empty id is
// checked against the directory before it is accepted; clearing empties the
// cart.
func CartSetParty(store *cartpkg.Store, flow cartpkg.Flow, dir directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dir == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "directory service unavailable"))
			return
		}

		c, err := cartFromRequest(r, store, flow)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setPartyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partyID := payload.id(flow)
		if partyID != "" {
			sess, ok := session.FromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if err := verifyParty(r, dir, sess, flow, partyID); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		dropped := c.SetParty(partyID)
		if dropped && logg != nil {
			logg.Info(logg.WithCartID(r.Context(), c.ID().String()), "cart.cleared_on_party_change")
		}
		responses.WriteSuccess(w, newCartResponse(c))
	}
}

// CartAddItem resolves the product through the catalog and adds it to the
// cart, bumping quantity when the line already exists.
func CartAddItem(store *cartpkg.Store, flow cartpkg.Flow, cat catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		c, err := cartFromRequest(r, store, flow)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, ok := session.FromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		product, err := cat.Product(r.Context(), sess, payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := c.AddItem(*product); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(c))
	}
}

// CartUpdateQuantity sets a line's quantity; zero removes the line.
func CartUpdateQuantity(store *cartpkg.Store, flow cartpkg.Flow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := cartFromRequest(r, store, flow)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := c.UpdateQuantity(chi.URLParam(r, "productId"), payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(c))
	}
}

// CartUpdateDiscount sets a line's discount amount and type in one step.
func CartUpdateDiscount(store *cartpkg.Store, flow cartpkg.Flow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := cartFromRequest(r, store, flow)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind := cartpkg.DiscountType(payload.Type)
		if err := c.UpdateDiscount(chi.URLParam(r, "productId"), payload.Amount, kind); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(c))
	}
}

// CartRemoveItem drops the line unconditionally.
func CartRemoveItem(store *cartpkg.Store, flow cartpkg.Flow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := cartFromRequest(r, store, flow)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c.Remove(chi.URLParam(r, "productId"))
		responses.WriteSuccess(w, newCartResponse(c))
	}
}

// CartSetDelivery updates the delivery toggle and fee.
func CartSetDelivery(store *cartpkg.Store, flow cartpkg.Flow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := cartFromRequest(r, store, flow)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setDeliveryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := money.Parse(payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery amount"))
			return
		}
		if err := c.SetDelivery(payload.Enabled, amount); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(c))
	}
}

// CartCheckout validates the cart and submits it upstream. The cart and store
// entry are dropped on success; any failure leaves both intact for a retry by
// the operator.
func CartCheckout(store *cartpkg.Store, flow cartpkg.Flow, svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		c, err := cartFromRequest(r, store, flow)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		sess, ok := session.FromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		order, err := svc.Submit(r.Context(), sess, c, payload.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Delete(c.ID())
		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			OrderID: order.ID,
			Status:  order.Status,
		})
	}
}

func cartFromRequest(r *http.Request, store *cartpkg.Store, flow cartpkg.Flow) (*cartpkg.Cart, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable")
	}
	id, err := uuid.Parse(chi.URLParam(r, "cartId"))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart id")
	}
	return store.Get(id, flow)
}

func verifyParty(r *http.Request, dir directory.Service, sess session.Session, flow cartpkg.Flow, partyID string) error {
	if flow == cartpkg.FlowPurchase {
		_, err := dir.Supplier(r.Context(), sess, partyID)
		return err
	}
	_, err := dir.Customer(r.Context(), sess, partyID)
	return err
}

type setPartyRequest struct {
	CustomerID string `json:"customer_id"`
	SupplierID string `json:"supplier_id"`
}

func (p setPartyRequest) id(flow cartpkg.Flow) string {
	if flow == cartpkg.FlowPurchase {
		return p.SupplierID
	}
	return p.CustomerID
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

type updateDiscountRequest struct {
	Amount string `json:"amount"`
	Type   string `json:"type" validate:"required,oneof=usd percent"`
}

type setDeliveryRequest struct {
	Enabled bool   `json:"enabled"`
	Amount  string `json:"amount"`
}

type checkoutRequest struct {
	Notes string `json:"notes"`
}

type checkoutResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type cartResponse struct {
	ID         string             `json:"id"`
	Flow       string             `json:"flow"`
	CustomerID string             `json:"customer_id,omitempty"`
	SupplierID string             `json:"supplier_id,omitempty"`
	Items      []cartLineResponse `json:"items"`
	Delivery   deliveryResponse   `json:"delivery"`
	Totals     totalsResponse     `json:"totals"`
}

type cartLineResponse struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPrice      string `json:"unit_price"`
	Discount       string `json:"discount"`
	DiscountType   string `json:"discount_type"`
	LineTotal      string `json:"line_total"`
	AvailableStock int    `json:"available_stock"`
}

type deliveryResponse struct {
	Enabled bool   `json:"enabled"`
	Amount  string `json:"amount"`
}

type totalsResponse struct {
	Subtotal      string `json:"subtotal"`
	TotalDiscount string `json:"total_discount"`
	Tax           string `json:"tax"`
	DeliveryCost  string `json:"delivery_cost"`
	Total         string `json:"total"`
}

func newCartResponse(c *cartpkg.Cart) cartResponse {
	items := c.Items()
	delivery := c.Delivery()
	quote := pricing.Compute(items, delivery)

	lines := make([]cartLineResponse, 0, len(quote.Lines))
	for i, line := range quote.Lines {
		lines = append(lines, cartLineResponse{
			ProductID:      line.ProductID,
			Name:           line.Name,
			Quantity:       line.Quantity,
			UnitPrice:      money.Format(line.UnitPrice),
			Discount:       money.Format(line.Discount),
			DiscountType:   string(line.DiscountType),
			LineTotal:      money.Format(line.LineTotal),
			AvailableStock: items[i].AvailableStock,
		})
	}

	resp := cartResponse{
		ID:    c.ID().String(),
		Flow:  string(c.Flow()),
		Items: lines,
		Delivery: deliveryResponse{
			Enabled: delivery.Enabled,
			Amount:  money.Format(delivery.Amount),
		},
		Totals: totalsResponse{
			Subtotal:      money.Format(quote.Subtotal),
			TotalDiscount: money.Format(quote.TotalDiscount),
			Tax:           money.Format(quote.Tax),
			DeliveryCost:  money.Format(quote.DeliveryCost),
			Total:         money.Format(quote.Total),
		},
	}

	if partyID, ok := c.Party(); ok {
		if c.Flow() == cartpkg.FlowPurchase {
			resp.SupplierID = partyID
		} else {
			resp.CustomerID = partyID
		}
	}
	return resp
}
