// Package posapi is the HTTP client for the upstream POS backend. Every call
// takes the caller's session explicitly; there is no ambient token state.
package posapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/davidrangel/poscenter-gateway/pkg/auth/session"
	"github.com/davidrangel/poscenter-gateway/pkg/config"
	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/logger"
)

// Client talks to the upstream POS REST API.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	listTimeout time.Duration
	listLimit   int
	logg        *logger.Logger
}

// NewClient validates the backend config and builds the client.
func NewClient(cfg config.BackendConfig, logg *logger.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing backend base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend base url must be http(s), got %q", cfg.BaseURL)
	}
	limit := cfg.ListLimit
	if limit <= 0 {
		limit = 100
	}
	return &Client{
		baseURL:     base,
		httpClient:  &http.Client{},
		listTimeout: cfg.ListTimeout,
		listLimit:   limit,
		logg:        logg,
	}, nil
}

// ListProducts fetches the product reference data.
func (c *Client) ListProducts(ctx context.Context, sess session.Session) ([]Product, error) {
	var envelope struct {
		Data []Product `json:"data"`
	}
	if err := c.list(ctx, sess, "/api/products", &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// ListCategories fetches the category reference data.
func (c *Client) ListCategories(ctx context.Context, sess session.Session) ([]Category, error) {
	var envelope struct {
		Data []Category `json:"data"`
	}
	if err := c.list(ctx, sess, "/api/categories", &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// ListCustomers fetches the customer directory.
func (c *Client) ListCustomers(ctx context.Context, sess session.Session) ([]Customer, error) {
	var envelope struct {
		Data []Customer `json:"data"`
	}
	if err := c.list(ctx, sess, "/api/customers", &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// ListSuppliers fetches the supplier directory.
func (c *Client) ListSuppliers(ctx context.Context, sess session.Session) ([]Supplier, error) {
	var envelope struct {
		Data []Supplier `json:"data"`
	}
	if err := c.list(ctx, sess, "/api/suppliers", &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// ListOrders fetches recent orders.
func (c *Client) ListOrders(ctx context.Context, sess session.Session) ([]Order, error) {
	var envelope struct {
		Data []Order `json:"data"`
	}
	if err := c.list(ctx, sess, "/api/orders", &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// GetOrder fetches one order by id.
func (c *Client) GetOrder(ctx context.Context, sess session.Session, orderID string) (*Order, error) {
	var envelope struct {
		Data Order `json:"data"`
	}
	if err := c.do(ctx, sess, http.MethodGet, "/api/orders/"+url.PathEscape(orderID), nil, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// CreateOrder submits an order. No client-side timeout beyond the caller's
// context; only list fetches carry one.
func (c *Client) CreateOrder(ctx context.Context, sess session.Session, req CreateOrderRequest) (*Order, error) {
	var envelope struct {
		Data Order `json:"data"`
	}
	if err := c.do(ctx, sess, http.MethodPost, "/api/orders", nil, req, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// CreatePurchase submits a supplier purchase order.
func (c *Client) CreatePurchase(ctx context.Context, sess session.Session, req CreatePurchaseRequest) (*Order, error) {
	var envelope struct {
		Data Order `json:"data"`
	}
	if err := c.do(ctx, sess, http.MethodPost, "/api/purchases", nil, req, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

func (c *Client) list(ctx context.Context, sess session.Session, path string, out any) error {
	if c.listTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.listTimeout)
		defer cancel()
	}
	query := url.Values{"limit": []string{strconv.Itoa(c.listLimit)}}
	return c.do(ctx, sess, http.MethodGet, path, query, nil, out)
}

func (c *Client) do(ctx context.Context, sess session.Session, method, path string, query url.Values, body, out any) error {
	target := *c.baseURL
	target.Path = strings.TrimRight(target.Path, "/") + path
	if query != nil {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", sess.AuthorizationValue())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logg != nil {
			c.logg.Error(ctx, "backend request failed", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeBackendUnavailable, err, "backend not available")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session rejected by backend")
	}
	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, upstreamMessage(resp.Body, "resource not found"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Backend error messages are surfaced verbatim so the user can act
		// on them; there is no retry.
		msg := upstreamMessage(resp.Body, fmt.Sprintf("backend returned status %d", resp.StatusCode))
		return pkgerrors.New(pkgerrors.CodeBackend, msg).WithDetails(map[string]any{
			"status": resp.StatusCode,
		})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeBackend, err, "decode backend response")
	}
	return nil
}

// upstreamMessage pulls the human message out of the backend's error body,
// tolerating both {"error":{"message":...}} and {"message":...} shapes.
func upstreamMessage(body io.Reader, fallback string) string {
	raw, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(raw) == 0 {
		return fallback
	}
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil {
		return fallback
	}
	if msg := strings.TrimSpace(nested.Error.Message); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(nested.Message); msg != "" {
		return msg
	}
	return fallback
}
