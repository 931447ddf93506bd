// Package auditlog is the durable trail of reservation state transitions.
//
// Each reservation appends one row per transition. The log serves two
// purposes: you can query exactly where a reservation is (or was) and
// correlate it with a distributed trace via the trace id, and a failed
// compensation leaves a row an operator can reconcile from.
package auditlog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ErrNoEntries reports that a reservation has no log rows. Readers return
// it so callers can distinguish "never reserved" from a storage failure.
var ErrNoEntries = errors.New("auditlog: no entries")

// Status is the lifecycle state of one reservation run.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is one row in the reservation log.
type Entry struct {
	// ReservationID is the order id, so log rows join with business data.
	ReservationID string

	Status Status

	// CurrentStep names the step that just ran or failed.
	CurrentStep string

	// ErrorMessages is a JSON array of failure details, one per error.
	ErrorMessages string

	// TraceID / SpanID tie the row to the distributed trace that was
	// active when it was written.
	TraceID string
	SpanID  string

	UpdatedAt time.Time
}

// Repository is the port for persisting log entries. Append-only: every
// Save adds a row.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
}

// Reader reads a reservation's log back. Implemented by stores that keep
// the rows queryable; Latest returns ErrNoEntries when the reservation
// never logged anything.
type Reader interface {
	Latest(ctx context.Context, reservationID string) (*Entry, error)
}

// NewEntry builds an Entry stamped with the trace identifiers of the span
// active in ctx, if any.
func NewEntry(ctx context.Context, reservationID string, status Status, step string, errs []string) *Entry {
	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	entry := &Entry{
		ReservationID: reservationID,
		Status:        status,
		CurrentStep:   step,
		ErrorMessages: errJSON,
		UpdatedAt:     time.Now().UTC(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		entry.TraceID = sc.TraceID().String()
		entry.SpanID = sc.SpanID().String()
	}
	return entry
}
