// Package app holds the Stock Ledger: the per-product availability counter
// and its only mutation paths.
package app

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
	"github.com/feriaviva/feria-backend/internal/pkg/cache"
	"github.com/feriaviva/feria-backend/internal/products-service/domain"
	"github.com/feriaviva/feria-backend/internal/products-service/storage"
)

// idempotencyTTL bounds how long a replayed decrement returns the recorded
// result instead of touching the counter again.
const idempotencyTTL = 24 * time.Hour

// StockCheck is the read-only answer to "can this product satisfy qty".
type StockCheck struct {
	ProductID string
	Available bool
	Stock     int
	Price     float64
	StallID   string
}

// DecrementCommand asks the ledger to reserve quantity units of a product.
// IdempotencyKey, when present, makes retried submissions of the same
// reservation safe: a replay returns the recorded stock without a second
// subtraction.
type DecrementCommand struct {
	ProductID      string
	Quantity       int
	IdempotencyKey string
}

// StockLedger coordinates stock reads and the conditional decrement.
type StockLedger struct {
	repo storage.ProductRepository
	idem cache.Store // nil-safe: replay protection skipped if nil
}

func NewStockLedger(repo storage.ProductRepository, idem cache.Store) *StockLedger {
	return &StockLedger{repo: repo, idem: idem}
}

// GetProduct resolves a product by id.
func (l *StockLedger) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := l.repo.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Product{}, apperr.NotFound("product %s not found", id)
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// CheckStock answers the availability question without side effects.
func (l *StockLedger) CheckStock(ctx context.Context, productID string, quantity int) (StockCheck, error) {
	if quantity <= 0 {
		return StockCheck{}, apperr.Validation("quantity must be positive")
	}
	p, err := l.GetProduct(ctx, productID)
	if err != nil {
		return StockCheck{}, err
	}
	return StockCheck{
		ProductID: p.ID,
		Available: p.CanFulfill(quantity),
		Stock:     p.Stock,
		Price:     p.Price,
		StallID:   p.StallID,
	}, nil
}

// Decrement reserves stock. The repository performs the subtraction as one
// conditional operation, so two concurrent reservations can never both pass
// an availability check and then both subtract.
func (l *StockLedger) Decrement(ctx context.Context, cmd DecrementCommand) (int, error) {
	if cmd.Quantity <= 0 {
		return 0, apperr.Validation("quantity must be positive")
	}

	if stock, ok := l.replayed(ctx, cmd.IdempotencyKey); ok {
		slog.InfoContext(ctx, "decrement replayed from idempotency record",
			"product_id", cmd.ProductID, "stock", stock)
		return stock, nil
	}

	stock, err := l.repo.DecrementStock(ctx, cmd.ProductID, cmd.Quantity)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return 0, apperr.NotFound("product %s not found", cmd.ProductID)
	case errors.Is(err, storage.ErrInsufficientStock):
		return 0, apperr.Unavailable("insufficient stock for product %s", cmd.ProductID)
	case err != nil:
		return 0, err
	}

	l.record(ctx, cmd.IdempotencyKey, stock)
	slog.InfoContext(ctx, "stock decremented",
		"product_id", cmd.ProductID, "quantity", cmd.Quantity, "stock", stock)
	return stock, nil
}

// Increment restores stock released by a reservation rollback.
func (l *StockLedger) Increment(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, apperr.Validation("quantity must be positive")
	}
	stock, err := l.repo.IncrementStock(ctx, productID, quantity)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, apperr.NotFound("product %s not found", productID)
	}
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "stock restored",
		"product_id", productID, "quantity", quantity, "stock", stock)
	return stock, nil
}

func (l *StockLedger) replayed(ctx context.Context, key string) (int, bool) {
	if l.idem == nil || key == "" {
		return 0, false
	}
	v, err := l.idem.Get(ctx, l.idem.Key("decrement", key))
	if err != nil {
		slog.WarnContext(ctx, "idempotency lookup failed", "error", err)
		return 0, false
	}
	if v == "" {
		return 0, false
	}
	stock, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return stock, true
}

func (l *StockLedger) record(ctx context.Context, key string, stock int) {
	if l.idem == nil || key == "" {
		return
	}
	if err := l.idem.Set(ctx, l.idem.Key("decrement", key), strconv.Itoa(stock), idempotencyTTL); err != nil {
		slog.WarnContext(ctx, "idempotency record failed", "error", err)
	}
}
