// Package checkout turns a validated cart into an upstream submission. One
// submission walks idle → validating → submitting and lands on succeeded or
// failed; validation failures short-circuit back to idle without touching the
// network, and a failed submission leaves the cart intact for resubmission.
package checkout

import (
	"context"
	"fmt"

	"github.com/davidrangel/poscenter-gateway/internal/cart"
	"github.com/davidrangel/poscenter-gateway/internal/pricing"
	"github.com/davidrangel/poscenter-gateway/internal/stock"
	"github.com/davidrangel/poscenter-gateway/pkg/auth/session"
	"github.com/davidrangel/poscenter-gateway/pkg/logger"
	"github.com/davidrangel/poscenter-gateway/pkg/metrics"
	"github.com/davidrangel/poscenter-gateway/pkg/posapi"
)

// State names the submission phases, mostly for logging.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

const (
	outcomeSubmitted = "submitted"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)

// Upstream is the slice of the POS client the service needs.
type Upstream interface {
	CreateOrder(ctx context.Context, sess session.Session, req posapi.CreateOrderRequest) (*posapi.Order, error)
	CreatePurchase(ctx context.Context, sess session.Session, req posapi.CreatePurchaseRequest) (*posapi.Order, error)
}

// Service submits carts.
type Service interface {
	Submit(ctx context.Context, sess session.Session, c *cart.Cart, notes string) (*posapi.Order, error)
}

type service struct {
	upstream Upstream
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

// NewService builds the checkout service.
func NewService(upstream Upstream, m *metrics.CheckoutMetrics, logg *logger.Logger) (Service, error) {
	if upstream == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	return &service{upstream: upstream, metrics: m, logg: logg}, nil
}

// Submit validates the cart and posts it upstream. The cart's in-flight flag
// rejects a concurrent second submission; any error returns the caller to
// idle with the cart unchanged.
func (s *service) Submit(ctx context.Context, sess session.Session, c *cart.Cart, notes string) (*posapi.Order, error) {
	if err := c.BeginSubmit(); err != nil {
		return nil, err
	}
	defer c.EndSubmit()

	flow := string(c.Flow())
	ctx = s.logState(ctx, c, StateValidating)

	partyID, partySelected := c.Party()
	items := c.Items()
	if err := stock.ValidateReady(c.Flow(), partySelected, len(items)); err != nil {
		s.metrics.IncSubmission(flow, outcomeRejected)
		return nil, err
	}
	if err := stock.ValidateCart(items); err != nil {
		s.metrics.IncSubmission(flow, outcomeRejected)
		return nil, err
	}

	delivery := c.Delivery()
	quote := pricing.Compute(items, delivery)

	ctx = s.logState(ctx, c, StateSubmitting)

	var order *posapi.Order
	var err error
	switch c.Flow() {
	case cart.FlowPurchase:
		order, err = s.upstream.CreatePurchase(ctx, sess, buildPurchasePayload(partyID, delivery, quote, notes))
	default:
		order, err = s.upstream.CreateOrder(ctx, sess, buildOrderPayload(partyID, delivery, quote, notes))
	}
	if err != nil {
		s.metrics.IncSubmission(flow, outcomeFailed)
		s.logState(ctx, c, StateFailed)
		return nil, err
	}

	s.metrics.IncSubmission(flow, outcomeSubmitted)
	s.logState(ctx, c, StateSucceeded)
	return order, nil
}

func (s *service) logState(ctx context.Context, c *cart.Cart, state State) context.Context {
	if s.logg == nil {
		return ctx
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"cart_id": c.ID().String(),
		"state":   string(state),
	})
	s.logg.Info(ctx, "checkout.state")
	return ctx
}
