package cache

import (
	"context"
	"sync"
	"time"

	"github.com/destocard/backend/internal/domain/cart"
	"github.com/google/uuid"
)

type cartEntry struct {
	lines     cart.Cart
	expiresAt time.Time
}

// InMemoryCartStore keeps carts in process memory. Carts are lost on
// restart and are not shared between instances.
type InMemoryCartStore struct {
	mu    sync.Mutex
	carts map[cart.Key]*cartEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewInMemoryCartStore creates an in-memory cart store
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	return &InMemoryCartStore{
		carts: make(map[cart.Key]*cartEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// live returns the entry for key, dropping it when expired. Callers hold mu.
func (s *InMemoryCartStore) live(key cart.Key) *cartEntry {
	e, ok := s.carts[key]
	if !ok {
		return nil
	}
	if s.ttl > 0 && s.now().After(e.expiresAt) {
		delete(s.carts, key)
		return nil
	}
	return e
}

func (s *InMemoryCartStore) touch(key cart.Key) *cartEntry {
	e := s.live(key)
	if e == nil {
		e = &cartEntry{lines: make(cart.Cart)}
		s.carts[key] = e
	}
	e.expiresAt = s.now().Add(s.ttl)
	return e
}

// Get returns a copy of the cart
func (s *InMemoryCartStore) Get(_ context.Context, key cart.Key) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := make(cart.Cart)
	if e := s.live(key); e != nil {
		for id, q := range e.lines {
			c[id] = q
		}
	}
	return c, nil
}

// Set stores quantity for productID. A non-positive quantity removes the line.
func (s *InMemoryCartStore) Set(ctx context.Context, key cart.Key, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, key, productID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(key).lines[productID] = quantity
	return nil
}

// Remove drops productID from the cart
func (s *InMemoryCartStore) Remove(_ context.Context, key cart.Key, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.live(key); e != nil {
		delete(e.lines, productID)
	}
	return nil
}

// Clear deletes the cart
func (s *InMemoryCartStore) Clear(_ context.Context, key cart.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}

// Replace overwrites the cart
func (s *InMemoryCartStore) Replace(_ context.Context, key cart.Key, lines []cart.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	for _, l := range lines {
		if l.Quantity > 0 {
			s.touch(key).lines[l.ProductID] = l.Quantity
		}
	}
	return nil
}

// Sweep drops every expired cart and returns how many were removed
func (s *InMemoryCartStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.carts {
		if now.After(e.expiresAt) {
			delete(s.carts, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of carts held, expired ones included
func (s *InMemoryCartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Run calls Sweep every interval until stop is closed
func (s *InMemoryCartStore) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-stop:
			return
		}
	}
}

var _ cart.Store = (*InMemoryCartStore)(nil)
