package reservation

import (
	"context"
	"fmt"
)

// StockClient is the slice of the products service the reservation needs.
type StockClient interface {
	// Decrement reserves quantity units; the idempotency key makes a
	// retried reservation of the same order line safe.
	Decrement(ctx context.Context, productID string, quantity int, idempotencyKey string) error

	// Increment releases quantity units back to the ledger.
	Increment(ctx context.Context, productID string, quantity int) error
}

// ReserveItemStep reserves one order line. Compensation returns the exact
// quantity it took.
type ReserveItemStep struct {
	client   StockClient
	orderID  string
	product  string
	quantity int
}

func NewReserveItemStep(client StockClient, orderID, productID string, quantity int) *ReserveItemStep {
	return &ReserveItemStep{client: client, orderID: orderID, product: productID, quantity: quantity}
}

func (s *ReserveItemStep) Name() string {
	return fmt.Sprintf("reserve_stock[%s]", s.product)
}

func (s *ReserveItemStep) Execute(ctx context.Context) error {
	// One key per order line: a caller retry of orders.create for the same
	// order id cannot double-decrement.
	key := s.orderID + ":" + s.product
	return s.client.Decrement(ctx, s.product, s.quantity, key)
}

func (s *ReserveItemStep) Compensate(ctx context.Context) error {
	return s.client.Increment(ctx, s.product, s.quantity)
}

// PersistOrderStep is the final step: it commits the order itself, so an
// insert failure also unwinds the stock reservations.
type PersistOrderStep struct {
	persist func(ctx context.Context) error
}

func NewPersistOrderStep(persist func(ctx context.Context) error) *PersistOrderStep {
	return &PersistOrderStep{persist: persist}
}

func (s *PersistOrderStep) Name() string { return "persist_order" }

func (s *PersistOrderStep) Execute(ctx context.Context) error { return s.persist(ctx) }

// Compensate is a no-op: the insert is the last step, nothing runs after it
// that could fail and need this order removed.
func (s *PersistOrderStep) Compensate(context.Context) error { return nil }
