// Package sqlite is the SQLite-backed reservation log.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/feriaviva/feria-backend/internal/orders-service/reservation/auditlog"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS reservation_logs (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Order id; multiple rows per reservation, one per transition.
    reservation_id TEXT NOT NULL,

    status         TEXT NOT NULL,
    current_step   TEXT NOT NULL DEFAULT '',
    error_messages TEXT NOT NULL DEFAULT '[]',

    -- W3C trace/span ids of the span active when the row was written.
    trace_id       TEXT NOT NULL DEFAULT '',
    span_id        TEXT NOT NULL DEFAULT '',

    updated_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reservation_logs_id ON reservation_logs(reservation_id, updated_at);
`

type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the log database at path. WAL mode keeps the
// request path writing while a status endpoint reads.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply reservation log schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// Save appends a log row. Safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *auditlog.Entry) error {
	const q = `
		INSERT INTO reservation_logs
			(reservation_id, status, current_step, error_messages, trace_id, span_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.ReservationID,
		string(entry.Status),
		entry.CurrentStep,
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save reservation log for %q: %w", entry.ReservationID, err)
	}
	return nil
}

// Latest returns the most recent row for a reservation.
func (r *Repository) Latest(ctx context.Context, reservationID string) (*auditlog.Entry, error) {
	const q = `
		SELECT reservation_id, status, current_step, error_messages, trace_id, span_id, updated_at
		FROM reservation_logs
		WHERE reservation_id = ?
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`

	var entry auditlog.Entry
	var status, updatedAt string
	err := r.db.QueryRowContext(ctx, q, reservationID).Scan(
		&entry.ReservationID, &status, &entry.CurrentStep,
		&entry.ErrorMessages, &entry.TraceID, &entry.SpanID, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: reservation %q: %w", reservationID, auditlog.ErrNoEntries)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: latest log for %q: %w", reservationID, err)
	}
	entry.Status = auditlog.Status(status)
	entry.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("sqlite: parse time %q: %w", updatedAt, err)
	}
	return &entry, nil
}
