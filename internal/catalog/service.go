// Package catalog serves the product/category reference data backing the
// admin screens. The data is read-only on this side: it is fetched from the
// POS backend, optionally parked in redis for a short TTL, and never mutated
// locally.
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/davidrangel/poscenter-gateway/pkg/auth/session"
	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/logger"
	"github.com/davidrangel/poscenter-gateway/pkg/posapi"
)

// Upstream is the slice of the POS client the catalog needs.
type Upstream interface {
	ListProducts(ctx context.Context, sess session.Session) ([]posapi.Product, error)
	ListCategories(ctx context.Context, sess session.Session) ([]posapi.Category, error)
}

// Cache is the snapshot store; pkg/redis.Client satisfies it. A nil cache
// degrades to pass-through fetching.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

// Service exposes the reference data reads.
type Service interface {
	Products(ctx context.Context, sess session.Session) ([]posapi.Product, error)
	Product(ctx context.Context, sess session.Session, productID string) (*posapi.Product, error)
	Categories(ctx context.Context, sess session.Session) ([]posapi.Category, error)
	Refresh(ctx context.Context, sess session.Session) error
}

type service struct {
	upstream Upstream
	cache    Cache
	ttl      time.Duration
	logg     *logger.Logger
}

// NewService builds the catalog service.
func NewService(upstream Upstream, cache Cache, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if upstream == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	return &service{upstream: upstream, cache: cache, ttl: ttl, logg: logg}, nil
}

func (s *service) Products(ctx context.Context, sess session.Session) ([]posapi.Product, error) {
	key := s.key(sess, "products")
	if cached, ok := cacheGet[[]posapi.Product](ctx, s.cache, key); ok {
		return cached, nil
	}
	products, err := s.upstream.ListProducts(ctx, sess)
	if err != nil {
		return nil, err
	}
	s.cachePut(ctx, key, products)
	return products, nil
}

func (s *service) Product(ctx context.Context, sess session.Session, productID string) (*posapi.Product, error) {
	products, err := s.Products(ctx, sess)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == productID {
			return &p, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *service) Categories(ctx context.Context, sess session.Session) ([]posapi.Category, error) {
	key := s.key(sess, "categories")
	if cached, ok := cacheGet[[]posapi.Category](ctx, s.cache, key); ok {
		return cached, nil
	}
	categories, err := s.upstream.ListCategories(ctx, sess)
	if err != nil {
		return nil, err
	}
	s.cachePut(ctx, key, categories)
	return categories, nil
}

// Refresh busts the cached snapshots and pulls fresh copies, reporting every
// failure rather than the first.
func (s *service) Refresh(ctx context.Context, sess session.Session) error {
	if s.cache != nil {
		if err := s.cache.Del(ctx, s.key(sess, "products"), s.key(sess, "categories")); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog.cache.invalidate")
		}
	}
	var errs error
	if _, err := s.Products(ctx, sess); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := s.Categories(ctx, sess); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// key scopes cache entries per caller token so sessions never see each
// other's snapshots. Only a short hash of the token is used.
func (s *service) key(sess session.Session, kind string) string {
	if s.cache == nil {
		return kind
	}
	sum := sha256.Sum256([]byte(sess.Token()))
	return s.cache.CacheKey(kind, hex.EncodeToString(sum[:6]))
}

func (s *service) cachePut(ctx context.Context, key string, value any) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(encoded), s.ttl); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog.cache.put")
	}
}

// cacheGet treats every cache failure as a miss; the upstream fetch is the
// fallback either way.
func cacheGet[T any](ctx context.Context, cache Cache, key string) (T, bool) {
	var out T
	if cache == nil {
		return out, false
	}
	raw, err := cache.Get(ctx, key)
	if err != nil || raw == "" {
		return out, false
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, false
	}
	return out, true
}
