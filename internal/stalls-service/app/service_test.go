package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
	"github.com/feriaviva/feria-backend/internal/stalls-service/domain"
	"github.com/feriaviva/feria-backend/internal/stalls-service/storage/memory"
)

func seedStall(t *testing.T, repo *memory.Repository, id string, status domain.Status) {
	t.Helper()
	require.NoError(t, repo.Save(context.Background(), domain.Stall{
		ID:        id,
		Name:      "Antojitos Doña Mary",
		OwnerID:   "owner-1",
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}))
}

func TestValidateActive(t *testing.T) {
	repo := memory.NewRepository()
	seedStall(t, repo, "active", domain.StatusActive)
	seedStall(t, repo, "pending", domain.StatusPending)
	seedStall(t, repo, "inactive", domain.StatusInactive)
	svc := NewService(repo)

	assert.True(t, svc.ValidateActive(context.Background(), "active"))
	assert.False(t, svc.ValidateActive(context.Background(), "pending"))
	assert.False(t, svc.ValidateActive(context.Background(), "inactive"))

	// Unknown stall answers false, never an error.
	assert.False(t, svc.ValidateActive(context.Background(), "no-such-stall"))
}

func TestStallLifecycle(t *testing.T) {
	repo := memory.NewRepository()
	seedStall(t, repo, "s-1", domain.StatusPending)
	svc := NewService(repo)

	stall, err := svc.Approve(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stall.Status)

	stall, err = svc.Activate(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, stall.Status)

	stall, err = svc.Deactivate(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, stall.Status)

	stall, err = svc.Reactivate(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, stall.Status)
}

func TestLifecycleGuards(t *testing.T) {
	tests := []struct {
		name   string
		status domain.Status
		call   func(*Service) error
	}{
		{name: "approve requires pending", status: domain.StatusActive,
			call: func(s *Service) error { _, err := s.Approve(context.Background(), "s-1"); return err }},
		{name: "activate requires approved", status: domain.StatusPending,
			call: func(s *Service) error { _, err := s.Activate(context.Background(), "s-1"); return err }},
		{name: "deactivate requires active", status: domain.StatusApproved,
			call: func(s *Service) error { _, err := s.Deactivate(context.Background(), "s-1"); return err }},
		{name: "reactivate requires inactive", status: domain.StatusActive,
			call: func(s *Service) error { _, err := s.Reactivate(context.Background(), "s-1"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewRepository()
			seedStall(t, repo, "s-1", tt.status)

			err := tt.call(NewService(repo))
			assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
		})
	}
}

func TestGetStallNotFound(t *testing.T) {
	svc := NewService(memory.NewRepository())
	_, err := svc.GetStall(context.Background(), "nope")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}
