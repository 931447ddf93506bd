// Package reservation runs the stock reservation for one order as a
// sequence of compensable steps.
//
// Every step must know how to undo itself. When a step fails, the steps
// that already succeeded are compensated in reverse order, so a half
// reserved multi-item order always ends with the ledger restored — a failed
// decrement is never swallowed and never leaves earlier decrements behind.
package reservation

import (
	"context"
	"log/slog"

	"github.com/feriaviva/feria-backend/internal/orders-service/reservation/auditlog"
)

// Step is a single unit of work with a compensating action.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Runner executes the steps of one reservation, identified by the order id
// so the audit trail can be joined with business data.
type Runner struct {
	reservationID string
	steps         []Step
	audit         auditlog.Repository // nil-safe: auditing skipped if nil
}

func NewRunner(reservationID string, steps []Step, audit auditlog.Repository) *Runner {
	return &Runner{reservationID: reservationID, steps: steps, audit: audit}
}

// Run executes the steps sequentially. On the first failure it compensates
// every previously successful step, last first, and returns the original
// error.
func (r *Runner) Run(ctx context.Context) error {
	r.record(ctx, auditlog.StatusStarted, "", nil)

	var done []Step
	for _, step := range r.steps {
		if err := step.Execute(ctx); err != nil {
			slog.WarnContext(ctx, "reservation step failed, rolling back",
				"reservation_id", r.reservationID, "step", step.Name(), "error", err)
			r.record(ctx, auditlog.StatusCompensating, step.Name(), []string{err.Error()})
			r.rollback(ctx, done)
			r.record(ctx, auditlog.StatusFailed, step.Name(), []string{err.Error()})
			return err
		}
		done = append(done, step)
		r.record(ctx, auditlog.StatusStepDone, step.Name(), nil)
	}

	r.record(ctx, auditlog.StatusCompleted, "", nil)
	return nil
}

func (r *Runner) rollback(ctx context.Context, steps []Step) {
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx); err != nil {
			// Nothing left to do automatically: the audit row is the
			// handle for manual reconciliation.
			slog.ErrorContext(ctx, "reservation compensation failed",
				"reservation_id", r.reservationID, "step", step.Name(), "error", err)
			r.record(ctx, auditlog.StatusCompensating, step.Name(), []string{"compensation failed: " + err.Error()})
		}
	}
}

func (r *Runner) record(ctx context.Context, status auditlog.Status, step string, errs []string) {
	if r.audit == nil {
		return
	}
	entry := auditlog.NewEntry(ctx, r.reservationID, status, step, errs)
	if err := r.audit.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "reservation audit write failed",
			"reservation_id", r.reservationID, "error", err)
	}
}
