package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name     string
		from, to Status
		wantCode apperr.Code
	}{
		{name: "pending to preparing", from: StatusPending, to: StatusPreparing},
		{name: "preparing to ready", from: StatusPreparing, to: StatusReady},
		{name: "ready to delivered", from: StatusReady, to: StatusDelivered},
		{name: "skip pending to delivered", from: StatusPending, to: StatusDelivered},
		{name: "skip preparing to delivered", from: StatusPreparing, to: StatusDelivered},
		{name: "same status is a no-op", from: StatusReady, to: StatusReady},
		{name: "ready back to pending", from: StatusReady, to: StatusPending, wantCode: apperr.CodeIllegalTransition},
		{name: "delivered back to ready", from: StatusDelivered, to: StatusReady, wantCode: apperr.CodeIllegalTransition},
		{name: "preparing back to pending", from: StatusPreparing, to: StatusPending, wantCode: apperr.CodeIllegalTransition},
		{name: "unknown target status", from: StatusPending, to: Status("CANCELLED"), wantCode: apperr.CodeValidation},
		{name: "empty target status", from: StatusPending, to: Status(""), wantCode: apperr.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.CodeOf(err))
		})
	}
}

func TestOrderTotals(t *testing.T) {
	order := Order{Items: []Item{
		{ProductID: "p1", Quantity: 2, Price: 3.50},
		{ProductID: "p2", Quantity: 1, Price: 10},
	}}

	assert.InDelta(t, 17.0, order.Total(), 1e-9)
	assert.Equal(t, 3, order.ItemCount())
}

func TestActorCanUpdateStatus(t *testing.T) {
	assert.False(t, Actor{Role: RoleCustomer}.CanUpdateStatus())
	assert.False(t, Actor{Role: "visitante"}.CanUpdateStatus())
	assert.True(t, Actor{Role: RoleStallOwner}.CanUpdateStatus())
	assert.True(t, Actor{Role: RoleOrganizer}.CanUpdateStatus())
}
