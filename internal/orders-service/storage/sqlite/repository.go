// Package sqlite is the SQLite-backed OrderRepository. Items are stored as
// a JSON column: lines are only ever read and written with their order,
// never queried independently.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/feriaviva/feria-backend/internal/orders-service/domain"
	"github.com/feriaviva/feria-backend/internal/orders-service/storage"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id          TEXT PRIMARY KEY,
    customer_id TEXT NOT NULL,
    stall_id    TEXT NOT NULL,
    items       TEXT NOT NULL,
    status      TEXT NOT NULL,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id, created_at);
CREATE INDEX IF NOT EXISTS idx_orders_stall_status ON orders(stall_id, status);
`

type Repository struct {
	db *sql.DB
}

func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply orders schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) Insert(ctx context.Context, o domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("sqlite: marshal items of order %q: %w", o.ID, err)
	}

	const q = `
		INSERT INTO orders (id, customer_id, stall_id, items, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		o.ID, o.CustomerID, o.StallID, string(items), string(o.Status),
		o.CreatedAt.UTC().Format(time.RFC3339Nano),
		o.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert order %q: %w", o.ID, err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	const q = `
		SELECT id, customer_id, stall_id, items, status, created_at, updated_at
		FROM orders WHERE id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("sqlite: find order %q: %w", id, err)
	}
	return o, nil
}

func (r *Repository) FindByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	const q = `
		SELECT id, customer_id, stall_id, items, status, created_at, updated_at
		FROM orders WHERE customer_id = ?
		ORDER BY created_at DESC`
	return r.queryOrders(ctx, q, customerID)
}

func (r *Repository) FindByStallAndStatus(ctx context.Context, stallID string, status domain.Status) ([]domain.Order, error) {
	const q = `
		SELECT id, customer_id, stall_id, items, status, created_at, updated_at
		FROM orders WHERE stall_id = ? AND status = ?`
	return r.queryOrders(ctx, q, stallID, string(status))
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.Order, error) {
	const q = `
		SELECT id, customer_id, stall_id, items, status, created_at, updated_at
		FROM orders ORDER BY created_at DESC`
	return r.queryOrders(ctx, q)
}

// UpdateStatus writes the new status only if the stored one does not rank
// above it. Ranking inside the statement keeps compare and write one
// operation, so two racing updaters cannot interleave a regression.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	const q = `
		UPDATE orders SET status = ?, updated_at = ?
		WHERE id = ? AND (CASE status
			WHEN 'PENDING'   THEN 0
			WHEN 'PREPARING' THEN 1
			WHEN 'READY'     THEN 2
			WHEN 'DELIVERED' THEN 3
			ELSE -1 END) <= ?`
	res, err := r.db.ExecContext(ctx, q,
		string(status), time.Now().UTC().Format(time.RFC3339Nano), id,
		domain.StatusIndex(status))
	if err != nil {
		return domain.Order{}, fmt.Errorf("sqlite: update status of order %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, ferr := r.FindByID(ctx, id); errors.Is(ferr, storage.ErrNotFound) {
			return domain.Order{}, storage.ErrNotFound
		} else if ferr != nil {
			return domain.Order{}, ferr
		}
		return domain.Order{}, storage.ErrStatusRegression
	}
	return r.FindByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	var items, status, createdAt, updatedAt string
	if err := row.Scan(&o.ID, &o.CustomerID, &o.StallID, &items, &status, &createdAt, &updatedAt); err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal items: %w", err)
	}
	o.Status = domain.Status(status)
	o.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	o.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return o, nil
}

func (r *Repository) queryOrders(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
