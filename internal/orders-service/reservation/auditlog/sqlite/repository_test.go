package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feriaviva/feria-backend/internal/orders-service/reservation/auditlog"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "reservation_logs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestLatestReturnsMostRecentRow(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)

	rows := []*auditlog.Entry{
		{ReservationID: "order-1", Status: auditlog.StatusStarted, UpdatedAt: base},
		{ReservationID: "order-1", Status: auditlog.StatusStepDone, CurrentStep: "reserve:taco", UpdatedAt: base.Add(time.Second)},
		{ReservationID: "order-1", Status: auditlog.StatusCompleted, UpdatedAt: base.Add(2 * time.Second)},
		{ReservationID: "order-2", Status: auditlog.StatusFailed, CurrentStep: "persist-order", UpdatedAt: base.Add(3 * time.Second)},
	}
	for _, e := range rows {
		e.ErrorMessages = "[]"
		require.NoError(t, repo.Save(ctx, e))
	}

	entry, err := repo.Latest(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, auditlog.StatusCompleted, entry.Status)
	assert.Equal(t, base.Add(2*time.Second), entry.UpdatedAt)
}

func TestLatestUnknownReservation(t *testing.T) {
	repo := openTestRepo(t)
	_, err := repo.Latest(context.Background(), "nope")
	assert.ErrorIs(t, err, auditlog.ErrNoEntries)
}
