// Package sqlite is the SQLite-backed ProductRepository.
//
// The conditional decrement is a single UPDATE guarded by the stock
// predicate, so concurrent reservations for the same product serialize at
// the database and the counter can never go negative.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/feriaviva/feria-backend/internal/products-service/domain"
	"github.com/feriaviva/feria-backend/internal/products-service/storage"

	// Pure-Go SQLite driver; no CGO, runs anywhere the binary does.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id            TEXT PRIMARY KEY,
    stall_id      TEXT    NOT NULL,
    name          TEXT    NOT NULL,
    price         REAL    NOT NULL CHECK (price >= 0),
    stock         INTEGER NOT NULL CHECK (stock >= 0),
    is_available  INTEGER NOT NULL DEFAULT 1,
    created_at    TEXT    NOT NULL,
    updated_at    TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_stall_id ON products(stall_id);
`

// Repository implements storage.ProductRepository on SQLite.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// WAL keeps readers from blocking the writer; busy_timeout waits for locks
// instead of failing immediately.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// Single writer connection is the fast path for SQLite.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply products schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	const q = `
		SELECT id, stall_id, name, price, stock, is_available, created_at, updated_at
		FROM products WHERE id = ?`

	var p domain.Product
	var available int
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.StallID, &p.Name, &p.Price, &p.Stock, &available, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("sqlite: find product %q: %w", id, err)
	}
	p.IsAvailable = available != 0
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return p, nil
}

func (r *Repository) Save(ctx context.Context, p domain.Product) error {
	const q = `
		INSERT INTO products (id, stall_id, name, price, stock, is_available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stall_id = excluded.stall_id,
			name = excluded.name,
			price = excluded.price,
			stock = excluded.stock,
			is_available = excluded.is_available,
			updated_at = excluded.updated_at`

	available := 0
	if p.IsAvailable {
		available = 1
	}
	_, err := r.db.ExecContext(ctx, q,
		p.ID, p.StallID, p.Name, p.Price, p.Stock, available,
		p.CreatedAt.UTC().Format(time.RFC3339Nano),
		p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save product %q: %w", p.ID, err)
	}
	return nil
}

func (r *Repository) DecrementStock(ctx context.Context, id string, quantity int) (int, error) {
	const q = `
		UPDATE products
		SET stock = stock - ?, updated_at = ?
		WHERE id = ? AND stock >= ?
		RETURNING stock`

	var stock int
	err := r.db.QueryRowContext(ctx, q,
		quantity, time.Now().UTC().Format(time.RFC3339Nano), id, quantity,
	).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the product is unknown or the guard rejected the write.
		if _, ferr := r.FindByID(ctx, id); ferr != nil {
			return 0, ferr
		}
		return 0, storage.ErrInsufficientStock
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: decrement stock of %q: %w", id, err)
	}
	return stock, nil
}

func (r *Repository) IncrementStock(ctx context.Context, id string, quantity int) (int, error) {
	const q = `
		UPDATE products
		SET stock = stock + ?, updated_at = ?
		WHERE id = ?
		RETURNING stock`

	var stock int
	err := r.db.QueryRowContext(ctx, q,
		quantity, time.Now().UTC().Format(time.RFC3339Nano), id,
	).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: increment stock of %q: %w", id, err)
	}
	return stock, nil
}
