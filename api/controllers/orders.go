package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/davidrangel/poscenter-gateway/api/responses"
	"github.com/davidrangel/poscenter-gateway/internal/directory"
	"github.com/davidrangel/poscenter-gateway/internal/receipts"
	"github.com/davidrangel/poscenter-gateway/pkg/auth/session"
	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/logger"
	"github.com/davidrangel/poscenter-gateway/pkg/posapi"
)

// OrdersUpstream is the slice of the POS client the order screens need.
type OrdersUpstream interface {
	ListOrders(ctx context.Context, sess session.Session) ([]posapi.Order, error)
	GetOrder(ctx context.Context, sess session.Session, orderID string) (*posapi.Order, error)
}

// OrdersList proxies the order history screen.
func OrdersList(upstream OrdersUpstream, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r, upstream != nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orders, err := upstream.ListOrders(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// OrdersGet proxies a single order.
func OrdersGet(upstream OrdersUpstream, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r, upstream != nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := upstream.GetOrder(r.Context(), sess, chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderReceipt renders the HTML receipt for a submitted order. The customer
// lookup is best effort; a receipt without the customer block still renders.
func OrderReceipt(upstream OrdersUpstream, dir directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r, upstream != nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := upstream.GetOrder(r.Context(), sess, chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var customer *posapi.Customer
		if dir != nil && order.CustomerID != "" {
			customer, err = dir.Customer(r.Context(), sess, order.CustomerID)
			if err != nil {
				customer = nil
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "order_id", order.ID), "receipt.customer_lookup_failed")
				}
			}
		}

		html, err := receipts.RenderHTML(*order, customer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render receipt"))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(html)
	}
}
