// Package storage defines the persistence port for stalls.
package storage

import (
	"context"
	"errors"

	"github.com/feriaviva/feria-backend/internal/stalls-service/domain"
)

// ErrNotFound reports an unknown stall id.
var ErrNotFound = errors.New("stall not found")

type StallRepository interface {
	FindByID(ctx context.Context, id string) (domain.Stall, error)
	Save(ctx context.Context, s domain.Stall) error
}
