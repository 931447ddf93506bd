// Package app holds the order store service: authoritative order creation
// with stock reservation, and the status state machine.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/feriaviva/feria-backend/internal/ordering"
	"github.com/feriaviva/feria-backend/internal/orders-service/domain"
	"github.com/feriaviva/feria-backend/internal/orders-service/reservation"
	"github.com/feriaviva/feria-backend/internal/orders-service/reservation/auditlog"
	"github.com/feriaviva/feria-backend/internal/orders-service/storage"
	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
)

// StockGateway is the slice of the products service the order store talks
// to: fresh availability reads for re-validation plus the two stock
// mutations used by the reservation.
type StockGateway interface {
	ordering.ProductSource
	reservation.StockClient
}

// CreateCommand is the normalized payload submitted by the gateway.
type CreateCommand struct {
	CustomerID string
	StallID    string
	Items      []ordering.Line
}

// SalesReport aggregates fulfilled sales for one stall.
type SalesReport struct {
	StallID   string
	ItemsSold int
}

type Service struct {
	repo  storage.OrderRepository
	stock StockGateway
	audit auditlog.Repository // nil-safe: reservation auditing skipped if nil

	now   func() time.Time
	newID func() string
}

func NewService(repo storage.OrderRepository, stock StockGateway, audit auditlog.Repository) *Service {
	return &Service{
		repo:  repo,
		stock: stock,
		audit: audit,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create is the authoritative order creation path.
//
// The cart was pre-checked at the gateway, but that check is advisory: this
// one runs against fresh reads and is the one that counts. Validation and
// reservation are all-or-nothing — on any failure, stock decremented for
// earlier lines is restored and no order becomes visible.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (domain.Order, error) {
	if cmd.CustomerID == "" {
		return domain.Order{}, apperr.Validation("customerId is required")
	}

	// Authoritative re-validation. No stall gate here: an inactive stall
	// was already denied at the gateway, and the ledger is the authority
	// this side defends.
	validator := ordering.NewValidator(s.stock, nil)
	stallID, priced, err := validator.ValidateCart(ctx, cmd.Items)
	if err != nil {
		return domain.Order{}, err
	}
	if cmd.StallID != "" && cmd.StallID != stallID {
		return domain.Order{}, apperr.Validation(
			"stallId %s does not match the items' stall %s", cmd.StallID, stallID)
	}

	order := domain.Order{
		ID:         s.newID(),
		CustomerID: cmd.CustomerID,
		StallID:    stallID,
		Items:      make([]domain.Item, len(priced)),
		Status:     domain.StatusPending,
		CreatedAt:  s.now(),
		UpdatedAt:  s.now(),
	}
	for i, line := range priced {
		order.Items[i] = domain.Item{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		}
	}

	// Reserve stock line by line, then persist; the insert is the last
	// step so any failure along the way unwinds every prior decrement.
	steps := make([]reservation.Step, 0, len(priced)+1)
	for _, line := range priced {
		steps = append(steps, reservation.NewReserveItemStep(s.stock, order.ID, line.ProductID, line.Quantity))
	}
	steps = append(steps, reservation.NewPersistOrderStep(func(ctx context.Context) error {
		return s.repo.Insert(ctx, order)
	}))

	if err := reservation.NewRunner(order.ID, steps, s.audit).Run(ctx); err != nil {
		return domain.Order{}, err
	}

	slog.InfoContext(ctx, "order created",
		"order_id", order.ID, "customer_id", order.CustomerID,
		"stall_id", order.StallID, "items", len(order.Items))
	return order, nil
}

// UpdateStatus advances an order through its lifecycle. Regression is
// rejected; staying at the current status or skipping forward is allowed.
// The state-machine check here gives precise errors; the repository write
// is itself conditional on non-regression, so two updaters racing past
// this check still cannot move the order backwards.
func (s *Service) UpdateStatus(ctx context.Context, id string, newStatus domain.Status, actor domain.Actor) (domain.Order, error) {
	if !actor.CanUpdateStatus() {
		return domain.Order{}, apperr.Forbidden("role %q may not update order status", actor.Role)
	}

	order, err := s.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := domain.CheckTransition(order.Status, newStatus); err != nil {
		return domain.Order{}, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, newStatus)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return domain.Order{}, apperr.NotFound("order %s not found", id)
	case errors.Is(err, storage.ErrStatusRegression):
		return domain.Order{}, apperr.IllegalTransition("order %s is already past %s", id, newStatus)
	case err != nil:
		return domain.Order{}, err
	}

	slog.InfoContext(ctx, "order status updated",
		"order_id", id, "from", order.Status, "to", newStatus, "actor", actor.UserID)
	return updated, nil
}

func (s *Service) FindByID(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Order{}, apperr.NotFound("order %s not found", id)
	}
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *Service) FindByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	if customerID == "" {
		return nil, apperr.Validation("customerId is required")
	}
	return s.repo.FindByCustomer(ctx, customerID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// ReservationStatus reads the latest reservation log row for an order, so
// a FAILED run's compensation trail can be inspected without touching the
// order table. NotFound covers both "no such reservation" and a service
// running without a queryable log.
func (s *Service) ReservationStatus(ctx context.Context, orderID string) (*auditlog.Entry, error) {
	if orderID == "" {
		return nil, apperr.Validation("orderId is required")
	}
	reader, ok := s.audit.(auditlog.Reader)
	if !ok {
		return nil, apperr.NotFound("no reservation log for order %s", orderID)
	}
	entry, err := reader.Latest(ctx, orderID)
	if errors.Is(err, auditlog.ErrNoEntries) {
		return nil, apperr.NotFound("no reservation log for order %s", orderID)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// SalesForStall counts items sold by a stall. Only DELIVERED orders count:
// sales means fulfilled revenue, not bookings.
func (s *Service) SalesForStall(ctx context.Context, stallID string) (SalesReport, error) {
	if stallID == "" {
		return SalesReport{}, apperr.Validation("stallId is required")
	}
	delivered, err := s.repo.FindByStallAndStatus(ctx, stallID, domain.StatusDelivered)
	if err != nil {
		return SalesReport{}, err
	}
	report := SalesReport{StallID: stallID}
	for _, o := range delivered {
		report.ItemsSold += o.ItemCount()
	}
	return report, nil
}
