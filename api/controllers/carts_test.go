package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	cartpkg "github.com/davidrangel/poscenter-gateway/internal/cart"
	"github.com/davidrangel/poscenter-gateway/internal/checkout"
	"github.com/davidrangel/poscenter-gateway/pkg/auth/session"
	"github.com/davidrangel/poscenter-gateway/pkg/config"
	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/posapi"
)

type stubCatalog struct {
	products []posapi.Product
	err      error
}

func (s *stubCatalog) Products(ctx context.Context, sess session.Session) ([]posapi.Product, error) {
	return s.products, s.err
}

func (s *stubCatalog) Product(ctx context.Context, sess session.Session, productID string) (*posapi.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.products {
		if p.ID == productID {
			return &p, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubCatalog) Categories(ctx context.Context, sess session.Session) ([]posapi.Category, error) {
	return nil, s.err
}

func (s *stubCatalog) Refresh(ctx context.Context, sess session.Session) error {
	return s.err
}

type stubDirectory struct {
	customers []posapi.Customer
	suppliers []posapi.Supplier
	err       error
}

func (s *stubDirectory) Customers(ctx context.Context, sess session.Session) ([]posapi.Customer, error) {
	return s.customers, s.err
}

func (s *stubDirectory) Customer(ctx context.Context, sess session.Session, customerID string) (*posapi.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, c := range s.customers {
		if c.ID == customerID {
			return &c, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
}

func (s *stubDirectory) Suppliers(ctx context.Context, sess session.Session) ([]posapi.Supplier, error) {
	return s.suppliers, s.err
}

func (s *stubDirectory) Supplier(ctx context.Context, sess session.Session, supplierID string) (*posapi.Supplier, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, sup := range s.suppliers {
		if sup.ID == supplierID {
			return &sup, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
}

type stubCheckout struct {
	order *posapi.Order
	err   error
	calls int
}

func (s *stubCheckout) Submit(ctx context.Context, sess session.Session, c *cartpkg.Cart, notes string) (*posapi.Order, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

var _ checkout.Service = (*stubCheckout)(nil)

func newTestStore() *cartpkg.Store {
	return cartpkg.NewStore(config.CartConfig{MaxItems: 50}, nil)
}

func authedRequest(method, target, body string, params map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	sess, _ := session.FromBearerHeader("Bearer test-token")
	ctx := session.WithSession(req.Context(), sess)

	routeCtx := chi.NewRouteContext()
	for key, value := range params {
		routeCtx.URLParams.Add(key, value)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid JSON response: %v\n%s", err, rec.Body.String())
	}
	return envelope
}

func dataOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	data, ok := decodeEnvelope(t, rec)["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data envelope, got %s", rec.Body.String())
	}
	return data
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	e, ok := decodeEnvelope(t, rec)["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	return e
}

func TestCartCreate(t *testing.T) {
	store := newTestStore()
	rec := httptest.NewRecorder()
	CartCreate(store, cartpkg.FlowOrder, nil).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/carts", "", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	data := dataOf(t, rec)
	if data["id"] == "" {
		t.Fatal("expected cart id")
	}
	if data["flow"] != "order" {
		t.Fatalf("expected order flow, got %v", data["flow"])
	}
	if store.Len() != 1 {
		t.Fatalf("expected one stored cart, got %d", store.Len())
	}
}

func TestCartGetUnknownID(t *testing.T) {
	store := newTestStore()
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/v1/carts/x", "", map[string]string{"cartId": "not-a-uuid"})
	CartGet(store, cartpkg.FlowOrder, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestCartGetWrongFlow(t *testing.T) {
	store := newTestStore()
	c := store.Create(cartpkg.FlowOrder)
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/v1/purchase-carts/"+c.ID().String(), "", map[string]string{"cartId": c.ID().String()})
	CartGet(store, cartpkg.FlowPurchase, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCartAddItemWithoutCustomer(t *testing.T) {
	store := newTestStore()
	c := store.Create(cartpkg.FlowOrder)
	cat := &stubCatalog{products: []posapi.Product{{ID: "p1", Name: "Widget", Price: 10, QuantityInStock: 5}}}

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/target", `{"product_id":"p1"}`, map[string]string{"cartId": c.ID().String()})
	CartAddItem(store, cartpkg.FlowOrder, cat, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := errorOf(t, rec)["message"]; msg != "select a customer before adding products" {
		t.Fatalf("unexpected message: %v", msg)
	}
}

func TestCartAddItemAndTotals(t *testing.T) {
	store := newTestStore()
	c := store.Create(cartpkg.FlowOrder)
	c.SetParty("c1")
	cat := &stubCatalog{products: []posapi.Product{
		{ID: "p1", Name: "Item A", Price: 10, QuantityInStock: 5},
		{ID: "p2", Name: "Item B", Price: 20, QuantityInStock: 5},
	}}

	add := func(productID string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := authedRequest(http.MethodPost, "/target", `{"product_id":"`+productID+`"}`, map[string]string{"cartId": c.ID().String()})
		CartAddItem(store, cartpkg.FlowOrder, cat, nil).ServeHTTP(rec, req)
		return rec
	}

	if rec := add("p1"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec := add("p2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	data := dataOf(t, rec)
	totals := data["totals"].(map[string]any)
	if totals["subtotal"] != "30.00" || totals["total"] != "30.00" || totals["tax"] != "0.00" {
		t.Fatalf("unexpected totals: %v", totals)
	}
	items := data["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestCartAddItemUnknownProduct(t *testing.T) {
	store := newTestStore()
	c := store.Create(cartpkg.FlowOrder)
	c.SetParty("c1")
	cat := &stubCatalog{}

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/target", `{"product_id":"ghost"}`, map[string]string{"cartId": c.ID().String()})
	CartAddItem(store, cartpkg.FlowOrder, cat, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCartSetCustomerVerifiesDirectory(t *testing.T) {
	store := newTestStore()
	c := store.Create(cartpkg.FlowOrder)
	dir := &stubDirectory{customers: []posapi.Customer{{ID: "c1", FirstName: "Ana"}}}

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPut, "/target", `{"customer_id":"c1"}`, map[string]string{"cartId": c.ID().String()})
	CartSetParty(store, cartpkg.FlowOrder, dir, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if data := dataOf(t, rec); data["customer_id"] != "c1" {
		t.Fatalf("expected customer set, got %v", data)
	}

	rec = httptest.NewRecorder()
	req = authedRequest(http.MethodPut, "/target", `{"customer_id":"ghost"}`, map[string]string{"cartId": c.ID().String()})
	CartSetParty(store, cartpkg.FlowOrder, dir, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown customer, got %d", rec.Code)
	}
}

func TestCartClearCustomerEmptiesCart(t *testing.T) {
	store := newTestStore()
	c := store.Create(cartpkg.FlowOrder)
	c.SetParty("c1")
	if err := c.AddItem(posapi.Product{ID: "p1", Name: "Widget", Price: 10, QuantityInStock: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPut, "/target", `{"customer_id":""}`, map[string]string{"cartId": c.ID().String()})
	CartSetParty(store, cartpkg.FlowOrder, &stubDirectory{}, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := dataOf(t, rec)
	if items := data["items"].([]any); len(items) != 0 {
		t.Fatalf("expected cart emptied, got %v", items)
	}
}

func TestCartUpdateQuantityOverStock(t *testing.T) {
	store := newTestStore()
	c := store.Create(cartpkg.FlowOrder)
	c.SetParty("c1")
	if err := c.AddItem(posapi.Product{ID: "p1", Name: "Widget", Price: 10, QuantityInStock: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPut, "/target", `{"quantity":4}`, map[string]string{"cartId": c.ID().String(), "productId": "p1"})
	CartUpdateQuantity(store, cartpkg.FlowOrder, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	errBody := errorOf(t, rec)
	if errBody["message"] != `only 3 of "Widget" available` {
		t.Fatalf("unexpected message: %v", errBody["message"])
	}
	details := errBody["details"].(map[string]any)
	if details["requested"] != float64(4) || details["available"] != float64(3) {
		t.Fatalf("unexpected details: %v", details)
	}
}

func TestCartUpdateDiscount(t *testing.T) {
	store := newTestStore()
	c := store.Create(cartpkg.FlowOrder)
	c.SetParty("c1")
	if err := c.AddItem(posapi.Product{ID: "p1", Name: "Widget", Price: 20, QuantityInStock: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPut, "/target", `{"amount":"10","type":"percent"}`, map[string]string{"cartId": c.ID().String(), "productId": "p1"})
	CartUpdateDiscount(store, cartpkg.FlowOrder, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	totals := dataOf(t, rec)["totals"].(map[string]any)
	if totals["total_discount"] != "2.00" || totals["total"] != "18.00" {
		t.Fatalf("unexpected totals: %v", totals)
	}

	rec = httptest.NewRecorder()
	req = authedRequest(http.MethodPut, "/target", `{"amount":"10","type":"bogus"}`, map[string]string{"cartId": c.ID().String(), "productId": "p1"})
	CartUpdateDiscount(store, cartpkg.FlowOrder, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad type, got %d", rec.Code)
	}
}

func TestCartSetDelivery(t *testing.T) {
	store := newTestStore()
	c := store.Create(cartpkg.FlowOrder)
	c.SetParty("c1")
	if err := c.AddItem(posapi.Product{ID: "p1", Name: "Widget", Price: 10, QuantityInStock: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPut, "/target", `{"enabled":true,"amount":"7.50"}`, map[string]string{"cartId": c.ID().String()})
	CartSetDelivery(store, cartpkg.FlowOrder, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	totals := dataOf(t, rec)["totals"].(map[string]any)
	if totals["delivery_cost"] != "7.50" || totals["total"] != "17.50" {
		t.Fatalf("unexpected totals: %v", totals)
	}
}

func TestCartCheckoutSuccessDropsCart(t *testing.T) {
	store := newTestStore()
	c := store.Create(cartpkg.FlowOrder)
	svc := &stubCheckout{order: &posapi.Order{ID: "ord-1", Status: "pending"}}

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/target", `{"notes":"ring twice"}`, map[string]string{"cartId": c.ID().String()})
	CartCheckout(store, cartpkg.FlowOrder, svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	data := dataOf(t, rec)
	if data["order_id"] != "ord-1" {
		t.Fatalf("unexpected body: %v", data)
	}
	if store.Len() != 0 {
		t.Fatal("expected cart dropped after checkout")
	}
	if svc.calls != 1 {
		t.Fatalf("expected one submit, got %d", svc.calls)
	}
}

func TestCartCheckoutBackendErrorSurfacedVerbatim(t *testing.T) {
	store := newTestStore()
	c := store.Create(cartpkg.FlowOrder)
	svc := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeBackend, "customer_id does not exist")}

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/target", "", map[string]string{"cartId": c.ID().String()})
	CartCheckout(store, cartpkg.FlowOrder, svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if msg := errorOf(t, rec)["message"]; msg != "customer_id does not exist" {
		t.Fatalf("expected verbatim backend message, got %v", msg)
	}
	if store.Len() != 1 {
		t.Fatal("expected cart kept after failure")
	}
}

func TestCartDelete(t *testing.T) {
	store := newTestStore()
	c := store.Create(cartpkg.FlowOrder)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodDelete, "/target", "", map[string]string{"cartId": c.ID().String()})
	CartDelete(store, cartpkg.FlowOrder, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.Len() != 0 {
		t.Fatal("expected cart removed")
	}
}
