// Package storage defines the persistence port for products. The stock
// mutations are deliberately conditional-and-atomic at this layer: callers
// never get a separate check-then-write sequence to race through.
package storage

import (
	"context"
	"errors"

	"github.com/feriaviva/feria-backend/internal/products-service/domain"
)

var (
	// ErrNotFound reports an unknown product id.
	ErrNotFound = errors.New("product not found")

	// ErrInsufficientStock reports a conditional decrement that found less
	// stock than requested. Nothing was mutated.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository is the port the ledger depends on.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)

	// Save inserts or replaces a product (seeding and CRUD live elsewhere;
	// the ledger only needs this for fixtures and admin tooling).
	Save(ctx context.Context, p domain.Product) error

	// DecrementStock atomically subtracts quantity if and only if at least
	// that much stock remains, returning the new stock value. Fails with
	// ErrInsufficientStock otherwise, with ErrNotFound for unknown ids.
	DecrementStock(ctx context.Context, id string, quantity int) (int, error)

	// IncrementStock adds quantity back (reservation rollback) and returns
	// the new stock value.
	IncrementStock(ctx context.Context, id string, quantity int) (int, error)
}
