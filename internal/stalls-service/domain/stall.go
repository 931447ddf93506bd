package domain

import "time"

// Status is the stall lifecycle state. The approval path is unidirectional
// (PENDING → APPROVED → ACTIVE); once active, a stall can be switched off
// and back on.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Stall is a seller's booth at the fair.
type Stall struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanBeApproved: only pending stalls can be approved.
func (s Stall) CanBeApproved() bool { return s.Status == StatusPending }

// CanBeActivated: only approved stalls can be activated.
func (s Stall) CanBeActivated() bool { return s.Status == StatusApproved }

// IsActive reports whether the stall is allowed to sell. This is the single
// question order placement asks about a stall.
func (s Stall) IsActive() bool { return s.Status == StatusActive }

// ValidStatus reports whether v names a known lifecycle state.
func ValidStatus(v Status) bool {
	switch v {
	case StatusPending, StatusApproved, StatusActive, StatusInactive:
		return true
	}
	return false
}
