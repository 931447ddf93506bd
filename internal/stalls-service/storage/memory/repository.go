// Package memory is the in-process StallRepository used by tests.
package memory

import (
	"context"
	"sync"

	"github.com/feriaviva/feria-backend/internal/stalls-service/domain"
	"github.com/feriaviva/feria-backend/internal/stalls-service/storage"
)

type Repository struct {
	mu     sync.RWMutex
	stalls map[string]domain.Stall
}

func NewRepository() *Repository {
	return &Repository{stalls: make(map[string]domain.Stall)}
}

func (r *Repository) FindByID(_ context.Context, id string) (domain.Stall, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stalls[id]
	if !ok {
		return domain.Stall{}, storage.ErrNotFound
	}
	return s, nil
}

func (r *Repository) Save(_ context.Context, s domain.Stall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stalls[s.ID] = s
	return nil
}
