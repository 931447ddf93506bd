// Package ports declares what the gateway needs from the backing services.
package ports

import (
	"context"

	"github.com/feriaviva/feria-backend/internal/api-gateway/core/domain/entity"
	"github.com/feriaviva/feria-backend/internal/ordering"
)

// ProductReader answers fresh product reads for the cart pre-check.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (entity.Product, error)
}

// StallDirectory answers whether a stall may sell right now. Implementations
// fail soft: an unreachable stalls service reads as inactive.
type StallDirectory interface {
	IsActive(ctx context.Context, stallID string) (bool, error)
}

// OrderService is the gateway's view of the orders service.
type OrderService interface {
	Create(ctx context.Context, customerID, stallID string, lines []ordering.Line) (entity.Order, error)
	FindByID(ctx context.Context, id string) (entity.Order, error)
	FindByCustomer(ctx context.Context, customerID string) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, id, status, userID, userRole string) (entity.Order, error)
	SalesForStall(ctx context.Context, stallID string) (entity.SalesReport, error)
}
