package controllers

import (
	"net/http"

	"github.com/davidrangel/poscenter-gateway/api/responses"
	"github.com/davidrangel/poscenter-gateway/internal/directory"
	"github.com/davidrangel/poscenter-gateway/pkg/logger"
)

// DirectoryCustomers lists the customers available to the order flow.
func DirectoryCustomers(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r, svc != nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customers, err := svc.Customers(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customers)
	}
}

// DirectorySuppliers lists the suppliers available to the purchase flow.
func DirectorySuppliers(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r, svc != nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		suppliers, err := svc.Suppliers(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, suppliers)
	}
}
