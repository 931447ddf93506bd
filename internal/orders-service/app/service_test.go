package app

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/feriaviva/feria-backend/internal/ordering"
	"github.com/feriaviva/feria-backend/internal/orders-service/domain"
	"github.com/feriaviva/feria-backend/internal/orders-service/reservation/auditlog"
	"github.com/feriaviva/feria-backend/internal/orders-service/storage/memory"
	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
)

type mockStock struct {
	mock.Mock
}

func (m *mockStock) ProductView(ctx context.Context, productID string, quantity int) (ordering.ProductView, error) {
	args := m.Called(ctx, productID, quantity)
	return args.Get(0).(ordering.ProductView), args.Error(1)
}

func (m *mockStock) Decrement(ctx context.Context, productID string, quantity int, idempotencyKey string) error {
	args := m.Called(ctx, productID, quantity, idempotencyKey)
	return args.Error(0)
}

func (m *mockStock) Increment(ctx context.Context, productID string, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func newTestService(stock *mockStock) (*Service, *memory.Repository) {
	repo := memory.NewRepository()
	svc := NewService(repo, stock, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string { n++; return "order-" + strconv.Itoa(n) }
	return svc, repo
}

func tacoView(stock int) ordering.ProductView {
	return ordering.ProductView{ID: "taco", StallID: "stall-1", Price: 25, Stock: stock, Available: true}
}

func TestCreateOrder(t *testing.T) {
	stock := &mockStock{}
	stock.On("ProductView", mock.Anything, "taco", 2).Return(tacoView(10), nil)
	stock.On("Decrement", mock.Anything, "taco", 2, mock.Anything).Return(nil)

	svc, repo := newTestService(stock)
	order, err := svc.Create(context.Background(), CreateCommand{
		CustomerID: "user-1",
		Items:      []ordering.Line{{ProductID: "taco", Quantity: 2}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, "stall-1", order.StallID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 25.0, order.Items[0].Price)
	assert.InDelta(t, 50.0, order.Total(), 1e-9)

	persisted, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, persisted.ID)

	// The idempotency key ties the decrement to this order line.
	stock.AssertCalled(t, "Decrement", mock.Anything, "taco", 2, order.ID+":taco")
}

func TestCreateOrderRequiresCustomer(t *testing.T) {
	svc, _ := newTestService(&mockStock{})
	_, err := svc.Create(context.Background(), CreateCommand{
		Items: []ordering.Line{{ProductID: "taco", Quantity: 1}},
	})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestCreateOrderRejectsStallMismatch(t *testing.T) {
	stock := &mockStock{}
	stock.On("ProductView", mock.Anything, "taco", 1).Return(tacoView(10), nil)

	svc, _ := newTestService(stock)
	_, err := svc.Create(context.Background(), CreateCommand{
		CustomerID: "user-1",
		StallID:    "stall-999",
		Items:      []ordering.Line{{ProductID: "taco", Quantity: 1}},
	})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	stock.AssertNotCalled(t, "Decrement", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderRollsBackOnReserveFailure(t *testing.T) {
	stock := &mockStock{}
	stock.On("ProductView", mock.Anything, "taco", 2).Return(tacoView(10), nil)
	stock.On("ProductView", mock.Anything, "tamal", 1).Return(
		ordering.ProductView{ID: "tamal", StallID: "stall-1", Price: 18, Stock: 5, Available: true}, nil)
	stock.On("Decrement", mock.Anything, "taco", 2, mock.Anything).Return(nil)
	stock.On("Decrement", mock.Anything, "tamal", 1, mock.Anything).
		Return(apperr.Unavailable("insufficient stock for product tamal"))
	stock.On("Increment", mock.Anything, "taco", 2).Return(nil)

	svc, repo := newTestService(stock)
	_, err := svc.Create(context.Background(), CreateCommand{
		CustomerID: "user-1",
		Items: []ordering.Line{
			{ProductID: "taco", Quantity: 2},
			{ProductID: "tamal", Quantity: 1},
		},
	})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeUnavailable, apperr.CodeOf(err))

	// The first line's stock was restored and no order became visible.
	stock.AssertCalled(t, "Increment", mock.Anything, "taco", 2)
	orders, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderRollsBackOnPersistFailure(t *testing.T) {
	stock := &mockStock{}
	stock.On("ProductView", mock.Anything, "taco", 1).Return(tacoView(10), nil)
	stock.On("Decrement", mock.Anything, "taco", 1, mock.Anything).Return(nil)
	stock.On("Increment", mock.Anything, "taco", 1).Return(nil)

	repo := &failingRepo{Repository: memory.NewRepository()}
	svc := NewService(repo, stock, nil)

	_, err := svc.Create(context.Background(), CreateCommand{
		CustomerID: "user-1",
		Items:      []ordering.Line{{ProductID: "taco", Quantity: 1}},
	})

	require.Error(t, err)
	stock.AssertCalled(t, "Increment", mock.Anything, "taco", 1)
}

type failingRepo struct {
	*memory.Repository
}

func (r *failingRepo) Insert(context.Context, domain.Order) error {
	return apperr.Internal("disk full")
}

func seedOrder(t *testing.T, repo *memory.Repository, id, customer, stall string, status domain.Status, items ...domain.Item) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), domain.Order{
		ID:         id,
		CustomerID: customer,
		StallID:    stall,
		Items:      items,
		Status:     status,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}))
}

func TestUpdateStatus(t *testing.T) {
	owner := domain.Actor{UserID: "owner-1", Role: domain.RoleStallOwner}

	tests := []struct {
		name     string
		from     domain.Status
		to       domain.Status
		actor    domain.Actor
		wantCode apperr.Code
	}{
		{name: "owner advances", from: domain.StatusPending, to: domain.StatusPreparing, actor: owner},
		{name: "organizer advances", from: domain.StatusPending, to: domain.StatusReady,
			actor: domain.Actor{UserID: "org-1", Role: domain.RoleOrganizer}},
		{name: "customer forbidden", from: domain.StatusPending, to: domain.StatusPreparing,
			actor: domain.Actor{UserID: "user-1", Role: domain.RoleCustomer}, wantCode: apperr.CodeForbidden},
		{name: "regression rejected", from: domain.StatusReady, to: domain.StatusPending,
			actor: owner, wantCode: apperr.CodeIllegalTransition},
		{name: "unknown status rejected", from: domain.StatusPending, to: domain.Status("BURNED"),
			actor: owner, wantCode: apperr.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(&mockStock{})
			seedOrder(t, repo, "o-1", "user-1", "stall-1", tt.from,
				domain.Item{ProductID: "taco", Quantity: 1, Price: 25})

			order, err := svc.UpdateStatus(context.Background(), "o-1", tt.to, tt.actor)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, order.Status)
		})
	}
}

// racingRepo simulates a concurrent writer landing between the service's
// state-machine check and the repository write.
type racingRepo struct {
	*memory.Repository
}

func (r *racingRepo) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	if _, err := r.Repository.UpdateStatus(ctx, id, domain.StatusDelivered); err != nil {
		return domain.Order{}, err
	}
	return r.Repository.UpdateStatus(ctx, id, status)
}

func TestUpdateStatusLosingRaceCannotRegress(t *testing.T) {
	repo := &racingRepo{Repository: memory.NewRepository()}
	seedOrder(t, repo.Repository, "o-1", "user-1", "stall-1", domain.StatusPending,
		domain.Item{ProductID: "taco", Quantity: 1, Price: 25})
	svc := NewService(repo, &mockStock{}, nil)

	// The check against PENDING passes, but the other writer delivered the
	// order first; the conditional write refuses the regression.
	_, err := svc.UpdateStatus(context.Background(), "o-1", domain.StatusPreparing,
		domain.Actor{UserID: "owner-1", Role: domain.RoleStallOwner})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeIllegalTransition, apperr.CodeOf(err))

	got, err := repo.Repository.FindByID(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, got.Status)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc, _ := newTestService(&mockStock{})
	_, err := svc.UpdateStatus(context.Background(), "nope", domain.StatusPreparing,
		domain.Actor{Role: domain.RoleStallOwner})
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestSalesForStallCountsOnlyDelivered(t *testing.T) {
	svc, repo := newTestService(&mockStock{})
	seedOrder(t, repo, "o-1", "u-1", "stall-1", domain.StatusDelivered,
		domain.Item{ProductID: "taco", Quantity: 2, Price: 25},
		domain.Item{ProductID: "tamal", Quantity: 1, Price: 18})
	seedOrder(t, repo, "o-2", "u-2", "stall-1", domain.StatusDelivered,
		domain.Item{ProductID: "taco", Quantity: 3, Price: 25})
	seedOrder(t, repo, "o-3", "u-3", "stall-1", domain.StatusReady,
		domain.Item{ProductID: "taco", Quantity: 10, Price: 25})
	seedOrder(t, repo, "o-4", "u-4", "stall-2", domain.StatusDelivered,
		domain.Item{ProductID: "churro", Quantity: 5, Price: 12})

	report, err := svc.SalesForStall(context.Background(), "stall-1")

	require.NoError(t, err)
	assert.Equal(t, "stall-1", report.StallID)
	assert.Equal(t, 6, report.ItemsSold)
}

func TestFindByCustomerRequiresID(t *testing.T) {
	svc, _ := newTestService(&mockStock{})
	_, err := svc.FindByCustomer(context.Background(), "")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

// readableAudit is an in-memory log that keeps the last entry per
// reservation, so both the Repository and Reader ports are exercised.
type readableAudit struct {
	latest map[string]*auditlog.Entry
}

func newReadableAudit() *readableAudit {
	return &readableAudit{latest: make(map[string]*auditlog.Entry)}
}

func (a *readableAudit) Save(_ context.Context, entry *auditlog.Entry) error {
	a.latest[entry.ReservationID] = entry
	return nil
}

func (a *readableAudit) Latest(_ context.Context, reservationID string) (*auditlog.Entry, error) {
	entry, ok := a.latest[reservationID]
	if !ok {
		return nil, auditlog.ErrNoEntries
	}
	return entry, nil
}

func TestReservationStatusReturnsLatestEntry(t *testing.T) {
	stock := &mockStock{}
	stock.On("ProductView", mock.Anything, "taco", 1).Return(tacoView(10), nil)
	stock.On("Decrement", mock.Anything, "taco", 1, mock.Anything).Return(nil)

	audit := newReadableAudit()
	svc := NewService(memory.NewRepository(), stock, audit)
	svc.newID = func() string { return "order-1" }

	_, err := svc.Create(context.Background(), CreateCommand{
		CustomerID: "user-1",
		Items:      []ordering.Line{{ProductID: "taco", Quantity: 1}},
	})
	require.NoError(t, err)

	entry, err := svc.ReservationStatus(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, auditlog.StatusCompleted, entry.Status)
}

func TestReservationStatusFailedRunKeepsTrail(t *testing.T) {
	stock := &mockStock{}
	stock.On("ProductView", mock.Anything, "taco", 1).Return(tacoView(10), nil)
	stock.On("Decrement", mock.Anything, "taco", 1, mock.Anything).Return(nil)
	stock.On("Increment", mock.Anything, "taco", 1).Return(nil)

	audit := newReadableAudit()
	repo := &failingRepo{Repository: memory.NewRepository()}
	svc := NewService(repo, stock, audit)
	svc.newID = func() string { return "order-1" }

	_, err := svc.Create(context.Background(), CreateCommand{
		CustomerID: "user-1",
		Items:      []ordering.Line{{ProductID: "taco", Quantity: 1}},
	})
	require.Error(t, err)

	entry, err := svc.ReservationStatus(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, auditlog.StatusFailed, entry.Status)
}

func TestReservationStatusUnknownOrder(t *testing.T) {
	svc := NewService(memory.NewRepository(), &mockStock{}, newReadableAudit())
	_, err := svc.ReservationStatus(context.Background(), "nope")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestReservationStatusWithoutReadableLog(t *testing.T) {
	// A service wired without a queryable log answers not-found rather
	// than failing.
	svc, _ := newTestService(&mockStock{})
	_, err := svc.ReservationStatus(context.Background(), "order-1")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}
