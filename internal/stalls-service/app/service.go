// Package app holds the stall lifecycle service and the activation gate.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
	"github.com/feriaviva/feria-backend/internal/stalls-service/domain"
	"github.com/feriaviva/feria-backend/internal/stalls-service/storage"
)

type Service struct {
	repo storage.StallRepository
	now  func() time.Time
}

func NewService(repo storage.StallRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// GetStall resolves a stall by id.
func (s *Service) GetStall(ctx context.Context, id string) (domain.Stall, error) {
	stall, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Stall{}, apperr.NotFound("stall %s not found", id)
	}
	if err != nil {
		return domain.Stall{}, err
	}
	return stall, nil
}

// ValidateActive is the activation gate for order placement. It fails soft:
// an unknown stall and a lookup failure both answer false, never an error —
// order validation must deny the sale, not crash the check.
func (s *Service) ValidateActive(ctx context.Context, stallID string) bool {
	stall, err := s.repo.FindByID(ctx, stallID)
	if err != nil {
		slog.WarnContext(ctx, "stall activation check failed", "stall_id", stallID, "error", err)
		return false
	}
	return stall.IsActive()
}

// Approve moves a pending stall to APPROVED.
func (s *Service) Approve(ctx context.Context, id string) (domain.Stall, error) {
	stall, err := s.GetStall(ctx, id)
	if err != nil {
		return domain.Stall{}, err
	}
	if !stall.CanBeApproved() {
		return domain.Stall{}, apperr.Validation("only pending stalls can be approved")
	}
	stall.Status = domain.StatusApproved
	stall.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, stall); err != nil {
		return domain.Stall{}, err
	}
	slog.InfoContext(ctx, "stall approved", "stall_id", id)
	return stall, nil
}

// Activate moves an approved stall to ACTIVE, making its products sellable.
func (s *Service) Activate(ctx context.Context, id string) (domain.Stall, error) {
	stall, err := s.GetStall(ctx, id)
	if err != nil {
		return domain.Stall{}, err
	}
	if !stall.CanBeActivated() {
		return domain.Stall{}, apperr.Validation("only approved stalls can be activated")
	}
	stall.Status = domain.StatusActive
	stall.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, stall); err != nil {
		return domain.Stall{}, err
	}
	slog.InfoContext(ctx, "stall activated", "stall_id", id)
	return stall, nil
}

// Deactivate switches an active stall off; Reactivate is the inverse.
func (s *Service) Deactivate(ctx context.Context, id string) (domain.Stall, error) {
	stall, err := s.GetStall(ctx, id)
	if err != nil {
		return domain.Stall{}, err
	}
	if stall.Status != domain.StatusActive {
		return domain.Stall{}, apperr.Validation("only active stalls can be deactivated")
	}
	stall.Status = domain.StatusInactive
	stall.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, stall); err != nil {
		return domain.Stall{}, err
	}
	return stall, nil
}

func (s *Service) Reactivate(ctx context.Context, id string) (domain.Stall, error) {
	stall, err := s.GetStall(ctx, id)
	if err != nil {
		return domain.Stall{}, err
	}
	if stall.Status != domain.StatusInactive {
		return domain.Stall{}, apperr.Validation("only inactive stalls can be reactivated")
	}
	stall.Status = domain.StatusActive
	stall.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, stall); err != nil {
		return domain.Stall{}, err
	}
	return stall, nil
}
