// Package entity holds the gateway-side view of the marketplace objects.
// These are projections of what the backing services answer, not the
// services' own domain models.
package entity

import "github.com/feriaviva/feria-backend/internal/ordering"

type Product struct {
	ID          string
	StallID     string
	Name        string
	Price       float64
	Stock       int
	IsAvailable bool
}

// View adapts the product to the shape the cart validator consumes.
func (p Product) View() ordering.ProductView {
	return ordering.ProductView{
		ID:        p.ID,
		StallID:   p.StallID,
		Price:     p.Price,
		Stock:     p.Stock,
		Available: p.IsAvailable,
	}
}

type OrderItem struct {
	ProductID string
	Quantity  int
	Price     float64
}

type Order struct {
	ID         string
	CustomerID string
	StallID    string
	Items      []OrderItem
	Status     string
	Total      float64
	CreatedAt  string
	UpdatedAt  string
}

type SalesReport struct {
	StallID   string
	ItemsSold int
}
