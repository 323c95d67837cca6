package directory

import (
	"context"
	"testing"

	"github.com/davidrangel/poscenter-gateway/pkg/auth/session"
	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/posapi"
)

type stubUpstream struct {
	customers []posapi.Customer
	suppliers []posapi.Supplier
	err       error
}

func (s *stubUpstream) ListCustomers(ctx context.Context, sess session.Session) ([]posapi.Customer, error) {
	return s.customers, s.err
}

func (s *stubUpstream) ListSuppliers(ctx context.Context, sess session.Session) ([]posapi.Supplier, error) {
	return s.suppliers, s.err
}

func TestCustomerLookup(t *testing.T) {
	upstream := &stubUpstream{customers: []posapi.Customer{
		{ID: "c1", FirstName: "Ana", LastName: "Reyes"},
		{ID: "c2", FirstName: "Luis", LastName: "Ortiz"},
	}}
	svc, err := NewService(upstream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	customer, err := svc.Customer(context.Background(), session.Session{}, "c2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if customer.FirstName != "Luis" {
		t.Fatalf("unexpected customer: %+v", customer)
	}

	_, err = svc.Customer(context.Background(), session.Session{}, "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSupplierLookup(t *testing.T) {
	upstream := &stubUpstream{suppliers: []posapi.Supplier{{ID: "s1", Name: "Acme Wholesale"}}}
	svc, err := NewService(upstream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	supplier, err := svc.Supplier(context.Background(), session.Session{}, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if supplier.Name != "Acme Wholesale" {
		t.Fatalf("unexpected supplier: %+v", supplier)
	}

	if _, err := svc.Supplier(context.Background(), session.Session{}, "missing"); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpstreamErrorsPassThrough(t *testing.T) {
	backendErr := pkgerrors.New(pkgerrors.CodeBackendUnavailable, "backend not available")
	upstream := &stubUpstream{err: backendErr}
	svc, err := NewService(upstream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Customers(context.Background(), session.Session{}); err != backendErr {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if _, err := svc.Supplier(context.Background(), session.Session{}, "s1"); err != backendErr {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestNewServiceRequiresUpstream(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error")
	}
}
