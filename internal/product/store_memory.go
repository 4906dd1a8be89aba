package product

import (
	"context"
	"sort"
	"sync"

	"shopkeep/internal/audit"
)

// InMemoryStore keeps products in memory for tests and development. IDs are
// assigned from a monotonic counter, matching the serial column behavior.
type InMemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]Product
}

// NewInMemoryStore constructs an empty in-memory product store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{products: make(map[int64]Product)}
}

func (s *InMemoryStore) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(Product) bool { return true }), nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status Status) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(p Product) bool { return p.Status == status }), nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) Create(_ context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.products[p.ID] = *p
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return ErrNotFound
	}
	s.products[p.ID] = *p
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products), nil
}

func (s *InMemoryStore) Truncate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[int64]Product)
	return nil
}

func (s *InMemoryStore) FindRefs(_ context.Context, ids []int64) (map[int64]audit.ProductRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make(map[int64]audit.ProductRef, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			refs[id] = audit.ProductRef{
				ID:     p.ID,
				Name:   p.Name,
				Price:  p.Price,
				Status: string(p.Status),
			}
		}
	}
	return refs, nil
}

func (s *InMemoryStore) collect(match func(Product) bool) []Product {
	products := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if match(p) {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Name == products[j].Name {
			return products[i].ID < products[j].ID
		}
		return products[i].Name < products[j].Name
	})
	return products
}
