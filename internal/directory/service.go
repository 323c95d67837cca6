// Package directory serves the customer and supplier pickers. Like the
// catalog it is a read-only proxy over the POS backend.
package directory

import (
	"context"
	"fmt"

	"github.com/davidrangel/poscenter-gateway/pkg/auth/session"
	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/posapi"
)

// Upstream is the slice of the POS client the directory needs.
type Upstream interface {
	ListCustomers(ctx context.Context, sess session.Session) ([]posapi.Customer, error)
	ListSuppliers(ctx context.Context, sess session.Session) ([]posapi.Supplier, error)
}

// Service exposes the directory reads.
type Service interface {
	Customers(ctx context.Context, sess session.Session) ([]posapi.Customer, error)
	Customer(ctx context.Context, sess session.Session, customerID string) (*posapi.Customer, error)
	Suppliers(ctx context.Context, sess session.Session) ([]posapi.Supplier, error)
	Supplier(ctx context.Context, sess session.Session, supplierID string) (*posapi.Supplier, error)
}

type service struct {
	upstream Upstream
}

// NewService builds the directory service.
func NewService(upstream Upstream) (Service, error) {
	if upstream == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	return &service{upstream: upstream}, nil
}

func (s *service) Customers(ctx context.Context, sess session.Session) ([]posapi.Customer, error) {
	return s.upstream.ListCustomers(ctx, sess)
}

func (s *service) Customer(ctx context.Context, sess session.Session, customerID string) (*posapi.Customer, error) {
	customers, err := s.upstream.ListCustomers(ctx, sess)
	if err != nil {
		return nil, err
	}
	for _, c := range customers {
		if c.ID == customerID {
			return &c, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
}

func (s *service) Suppliers(ctx context.Context, sess session.Session) ([]posapi.Supplier, error) {
	return s.upstream.ListSuppliers(ctx, sess)
}

func (s *service) Supplier(ctx context.Context, sess session.Session, supplierID string) (*posapi.Supplier, error) {
	suppliers, err := s.upstream.ListSuppliers(ctx, sess)
	if err != nil {
		return nil, err
	}
	for _, sup := range suppliers {
		if sup.ID == supplierID {
			return &sup, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
}
