// Package memory is the in-process OrderRepository used by tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/feriaviva/feria-backend/internal/orders-service/domain"
	"github.com/feriaviva/feria-backend/internal/orders-service/storage"
)

type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewRepository() *Repository {
	return &Repository{orders: make(map[string]domain.Order)}
}

func (r *Repository) Insert(_ context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *Repository) FindByID(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, storage.ErrNotFound
	}
	return o, nil
}

func (r *Repository) FindByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *Repository) FindByStallAndStatus(_ context.Context, stallID string, status domain.Status) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.StallID == stallID && o.Status == status {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *Repository) ListAll(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sortNewestFirst(out)
	return out, nil
}

// UpdateStatus compares and writes under the same lock, mirroring the
// one-statement conditional update of the SQLite repository.
func (r *Repository) UpdateStatus(_ context.Context, id string, status domain.Status) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, storage.ErrNotFound
	}
	if domain.StatusIndex(o.Status) > domain.StatusIndex(status) {
		return domain.Order{}, storage.ErrStatusRegression
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.orders[id] = o
	return o, nil
}

func sortNewestFirst(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
