package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/davidrangel/poscenter-gateway/pkg/auth/session"
	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/posapi"
)

type stubUpstream struct {
	products      []posapi.Product
	categories    []posapi.Category
	productErr    error
	categoryErr   error
	productCalls  int
	categoryCalls int
}

func (s *stubUpstream) ListProducts(ctx context.Context, sess session.Session) ([]posapi.Product, error) {
	s.productCalls++
	return s.products, s.productErr
}

func (s *stubUpstream) ListCategories(ctx context.Context, sess session.Session) ([]posapi.Category, error) {
	s.categoryCalls++
	return s.categories, s.categoryErr
}

type memoryCache struct {
	entries map[string]string
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.entries[key], nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = value.(string)
	return nil
}

func (m *memoryCache) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *memoryCache) CacheKey(parts ...string) string {
	out := "test"
	for _, part := range parts {
		out += ":" + part
	}
	return out
}

func sampleProducts() []posapi.Product {
	return []posapi.Product{
		{ID: "p1", Name: "Widget", Price: 10, QuantityInStock: 5},
		{ID: "p2", Name: "Gadget", Price: 20, QuantityInStock: 0},
	}
}

func TestProductsCachesSecondRead(t *testing.T) {
	upstream := &stubUpstream{products: sampleProducts()}
	svc, err := NewService(upstream, newMemoryCache(), time.Minute, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess, _ := session.FromBearerHeader("Bearer token-a")
	if _, err := svc.Products(context.Background(), sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	products, err := svc.Products(context.Background(), sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upstream.productCalls != 1 {
		t.Fatalf("expected one upstream call, got %d", upstream.productCalls)
	}
	if len(products) != 2 || products[0].ID != "p1" {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestProductsCacheScopedPerToken(t *testing.T) {
	upstream := &stubUpstream{products: sampleProducts()}
	svc, err := NewService(upstream, newMemoryCache(), time.Minute, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sessA, _ := session.FromBearerHeader("Bearer token-a")
	sessB, _ := session.FromBearerHeader("Bearer token-b")
	if _, err := svc.Products(context.Background(), sessA); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Products(context.Background(), sessB); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upstream.productCalls != 2 {
		t.Fatalf("expected per-token fetches, got %d calls", upstream.productCalls)
	}
}

func TestProductsNilCachePassesThrough(t *testing.T) {
	upstream := &stubUpstream{products: sampleProducts()}
	svc, err := NewService(upstream, nil, time.Minute, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess, _ := session.FromBearerHeader("Bearer token-a")
	for i := 0; i < 3; i++ {
		if _, err := svc.Products(context.Background(), sess); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if upstream.productCalls != 3 {
		t.Fatalf("expected every read to hit upstream, got %d", upstream.productCalls)
	}
}

func TestProductsCacheFailureFallsBackToUpstream(t *testing.T) {
	upstream := &stubUpstream{products: sampleProducts()}
	cache := newMemoryCache()
	cache.getErr = context.DeadlineExceeded
	svc, err := NewService(upstream, cache, time.Minute, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess, _ := session.FromBearerHeader("Bearer token-a")
	products, err := svc.Products(context.Background(), sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestProductFindsByID(t *testing.T) {
	upstream := &stubUpstream{products: sampleProducts()}
	svc, err := NewService(upstream, nil, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess, _ := session.FromBearerHeader("Bearer token-a")
	p, err := svc.Product(context.Background(), sess, "p2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Gadget" {
		t.Fatalf("unexpected product: %+v", p)
	}

	_, err = svc.Product(context.Background(), sess, "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRefreshBustsCacheAndReportsBothFailures(t *testing.T) {
	upstream := &stubUpstream{products: sampleProducts(), categories: []posapi.Category{{ID: "c1", Name: "General"}}}
	cache := newMemoryCache()
	svc, err := NewService(upstream, cache, time.Minute, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess, _ := session.FromBearerHeader("Bearer token-a")
	if _, err := svc.Products(context.Background(), sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Refresh(context.Background(), sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Refresh dropped the cached copy and re-fetched.
	if upstream.productCalls != 2 {
		t.Fatalf("expected refetch, got %d calls", upstream.productCalls)
	}

	upstream.productErr = pkgerrors.New(pkgerrors.CodeBackendUnavailable, "backend not available")
	upstream.categoryErr = pkgerrors.New(pkgerrors.CodeBackendUnavailable, "backend not available")
	if err := svc.Refresh(context.Background(), sess); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewServiceRequiresUpstream(t *testing.T) {
	if _, err := NewService(nil, nil, 0, nil); err == nil {
		t.Fatal("expected error")
	}
}
