package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davidrangel/poscenter-gateway/pkg/config"
	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/logger"
)

// Store holds the live order-building sessions in memory. Carts do not
// survive a process restart, matching the no-persistence-across-reloads
// contract of the admin UI.
type Store struct {
	cfg  config.CartConfig
	logg *logger.Logger

	mu    sync.RWMutex
	carts map[uuid.UUID]*Cart
}

func NewStore(cfg config.CartConfig, logg *logger.Logger) *Store {
	return &Store{
		cfg:   cfg,
		logg:  logg,
		carts: make(map[uuid.UUID]*Cart),
	}
}

// Create registers a fresh cart for the given flow.
func (s *Store) Create(flow Flow) *Cart {
	c := New(flow, s.cfg.MaxItems)
	s.mu.Lock()
	s.carts[c.ID()] = c
	s.mu.Unlock()
	return c
}

// Get returns the cart, requiring the flow to match the route it was reached
// through.
func (s *Store) Get(id uuid.UUID, flow Flow) (*Cart, error) {
	s.mu.RLock()
	c, ok := s.carts[id]
	s.mu.RUnlock()
	if !ok || c.Flow() != flow {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return c, nil
}

// Delete drops the cart.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.carts, id)
	s.mu.Unlock()
}

// Len reports the number of live carts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

// Sweep drops carts idle longer than the configured TTL and returns how many
// were removed.
func (s *Store) Sweep(now time.Time) int {
	ttl := s.cfg.TTL
	if ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, c := range s.carts {
		if now.Sub(c.TouchedAt()) > ttl {
			delete(s.carts, id)
			removed++
		}
	}
	return removed
}

// RunSweeper periodically evicts expired carts until the context is done.
func (s *Store) RunSweeper(ctx context.Context) {
	interval := s.cfg.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.Sweep(now); removed > 0 && s.logg != nil {
				s.logg.Info(s.logg.WithField(ctx, "removed", removed), "cart.sweep")
			}
		}
	}
}
