package domain

import (
	"time"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
)

// Status is the order lifecycle state. The sequence is fixed and forward
// only; there is no cancelled state in this workflow.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusDelivered Status = "DELIVERED"
)

// statusOrder fixes each status' position in the forward sequence.
var statusOrder = map[Status]int{
	StatusPending:   0,
	StatusPreparing: 1,
	StatusReady:     2,
	StatusDelivered: 3,
}

// ValidStatus reports whether v names a known status.
func ValidStatus(v Status) bool {
	_, ok := statusOrder[v]
	return ok
}

// StatusIndex returns the status' position in the forward sequence, or -1
// for an unknown status. Repositories use it to make the status write
// conditional on non-regression.
func StatusIndex(s Status) int {
	idx, ok := statusOrder[s]
	if !ok {
		return -1
	}
	return idx
}

// CheckTransition enforces monotonic status advancement: regression is
// forbidden, but staying put and skipping forward are both allowed — the
// machine is deliberately loose about step size.
func CheckTransition(from, to Status) error {
	if !ValidStatus(to) {
		return apperr.Validation("unknown order status %q", to)
	}
	if statusOrder[to] < statusOrder[from] {
		return apperr.IllegalTransition("order status cannot move back from %s to %s", from, to)
	}
	return nil
}

// Item is one order line. Price is captured at order time and immutable
// afterwards.
type Item struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is the aggregate owned by the order store. All items resolve to the
// single StallID, items is never empty, and status only moves forward.
type Order struct {
	ID         string
	CustomerID string
	StallID    string
	Items      []Item
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Total sums the line subtotals.
func (o Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += float64(it.Quantity) * it.Price
	}
	return total
}

// ItemCount sums quantities across all lines.
func (o Order) ItemCount() int {
	var n int
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Actor identifies who is issuing a command against an order.
type Actor struct {
	UserID string
	Role   string
}

// Roles known to the marketplace. Stall owners run the kitchen; organizers
// run the fair.
const (
	RoleCustomer   = "cliente"
	RoleStallOwner = "emprendedor"
	RoleOrganizer  = "organizador"
)

// CanUpdateStatus reports whether the actor's role may drive the order
// lifecycle. Customers place orders; they do not advance them.
func (a Actor) CanUpdateStatus() bool {
	return a.Role == RoleStallOwner || a.Role == RoleOrganizer
}
