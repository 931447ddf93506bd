// Package ordering holds the cart validation logic shared by the gateway
// pre-check and the authoritative check inside the orders service.
//
// Both call sites run the same fold against their own fresh-read
// ProductSource, so the two checks cannot drift apart the way duplicated
// loops would.
package ordering

import (
	"context"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
)

// Line is one requested cart entry.
type Line struct {
	ProductID string
	Quantity  int
}

// PricedLine is a validated line with the price snapshotted at order time.
// Later product price changes never alter it.
type PricedLine struct {
	ProductID string
	Quantity  int
	Price     float64
	StallID   string
}

// ProductView is the fresh read the validator needs about one product.
type ProductView struct {
	ID        string
	StallID   string
	Price     float64
	Stock     int
	Available bool
}

// ProductSource resolves a product view. Implementations must read current
// state, not a cache: the whole point of re-validating is freshness.
type ProductSource interface {
	ProductView(ctx context.Context, productID string, quantity int) (ProductView, error)
}

// StallGate answers whether a stall may sell right now. A gate error is a
// transport problem, not a verdict; the validator fails closed on it.
type StallGate interface {
	IsActive(ctx context.Context, stallID string) (bool, error)
}

// Validator runs the per-item validation fold.
type Validator struct {
	products ProductSource
	stalls   StallGate // nil-safe: gate check skipped if nil (already enforced upstream)
}

func NewValidator(products ProductSource, stalls StallGate) *Validator {
	return &Validator{products: products, stalls: stalls}
}

// ValidateCart walks the cart sequentially, short-circuiting on the first
// failure, and returns the resolved stall id plus the priced lines.
//
// The single-stall invariant is a fold: the first validated line fixes the
// stall, every later line must resolve to the same one.
func (v *Validator) ValidateCart(ctx context.Context, lines []Line) (string, []PricedLine, error) {
	if len(lines) == 0 {
		return "", nil, apperr.Validation("order must contain at least one item")
	}

	stallID := ""
	priced := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == "" {
			return "", nil, apperr.Validation("item product id is required")
		}
		if line.Quantity <= 0 {
			return "", nil, apperr.Validation("quantity for product %s must be positive", line.ProductID)
		}

		view, err := v.products.ProductView(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return "", nil, err
		}
		if !view.Available || view.Stock < line.Quantity {
			return "", nil, apperr.Unavailable(
				"product %s not available in the requested quantity", line.ProductID)
		}

		if v.stalls != nil {
			active, err := v.stalls.IsActive(ctx, view.StallID)
			if err != nil {
				return "", nil, err
			}
			if !active {
				return "", nil, apperr.Unavailable("stall %s is not active", view.StallID)
			}
		}

		switch {
		case stallID == "":
			stallID = view.StallID
		case stallID != view.StallID:
			return "", nil, apperr.Validation(
				"all items must belong to the same stall (got %s and %s)", stallID, view.StallID)
		}

		priced = append(priced, PricedLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     view.Price,
			StallID:   view.StallID,
		})
	}

	return stallID, priced, nil
}
