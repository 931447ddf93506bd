package domain

import "time"

// Product is the sellable unit offered by a stall. Stock is a single
// non-negative counter; the ledger is its only mutation path.
type Product struct {
	ID          string
	StallID     string
	Name        string
	Price       float64
	Stock       int
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanFulfill reports whether the product can satisfy a request for quantity
// units. IsAvailable alone is not authoritative: the stock counter is always
// checked as well.
func (p Product) CanFulfill(quantity int) bool {
	return p.IsAvailable && p.Stock >= quantity
}
