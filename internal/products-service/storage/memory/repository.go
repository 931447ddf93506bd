// Package memory is the in-process ProductRepository used by tests and
// broker-less local runs. The mutex makes check-and-subtract one critical
// section, mirroring the atomicity the SQLite guard provides.
package memory

import (
	"context"
	"sync"

	"github.com/feriaviva/feria-backend/internal/products-service/domain"
	"github.com/feriaviva/feria-backend/internal/products-service/storage"
)

type Repository struct {
	mu       sync.Mutex
	products map[string]domain.Product
}

func NewRepository() *Repository {
	return &Repository{products: make(map[string]domain.Product)}
}

func (r *Repository) FindByID(_ context.Context, id string) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, storage.ErrNotFound
	}
	return p, nil
}

func (r *Repository) Save(_ context.Context, p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *Repository) DecrementStock(_ context.Context, id string, quantity int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return 0, storage.ErrNotFound
	}
	if p.Stock < quantity {
		return 0, storage.ErrInsufficientStock
	}
	p.Stock -= quantity
	r.products[id] = p
	return p.Stock, nil
}

func (r *Repository) IncrementStock(_ context.Context, id string, quantity int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return 0, storage.ErrNotFound
	}
	p.Stock += quantity
	r.products[id] = p
	return p.Stock, nil
}
