// Package storage defines the persistence port for orders.
package storage

import (
	"context"
	"errors"

	"github.com/feriaviva/feria-backend/internal/orders-service/domain"
)

// ErrNotFound reports an unknown order id.
var ErrNotFound = errors.New("order not found")

// ErrStatusRegression reports a status write refused because the stored
// status is already past the requested one.
var ErrStatusRegression = errors.New("order status regression")

type OrderRepository interface {
	Insert(ctx context.Context, o domain.Order) error
	FindByID(ctx context.Context, id string) (domain.Order, error)

	// FindByCustomer returns the customer's orders newest first.
	FindByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)

	// FindByStallAndStatus returns every order for a stall in the given
	// status (sales aggregation reads DELIVERED only).
	FindByStallAndStatus(ctx context.Context, stallID string, status domain.Status) ([]domain.Order, error)

	ListAll(ctx context.Context) ([]domain.Order, error)

	// UpdateStatus persists a status change. The write itself is
	// conditional on non-regression: a concurrent updater that raced past
	// the caller's state-machine check gets ErrStatusRegression instead of
	// moving the order backwards.
	UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error)
}
