// Package sqlite is the SQLite-backed StallRepository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/feriaviva/feria-backend/internal/stalls-service/domain"
	"github.com/feriaviva/feria-backend/internal/stalls-service/storage"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS stalls (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    owner_id    TEXT NOT NULL,
    status      TEXT NOT NULL,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stalls_owner_status ON stalls(owner_id, status);
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
		return nil, fmt.Errorf("sqlite: apply stalls schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) FindByID(ctx context.Context, id string) (domain.Stall, error) {
	const q = `
		SELECT id, name, description, owner_id, status, created_at, updated_at
		FROM stalls WHERE id = ?`

	var s domain.Stall
	var status, createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.OwnerID, &status, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Stall{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Stall{}, fmt.Errorf("sqlite: find stall %q: %w", id, err)
	}
	s.Status = domain.Status(status)
	s.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	s.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return s, nil
}

func (r *Repository) Save(ctx context.Context, s domain.Stall) error {
	const q = `
		INSERT INTO stalls (id, name, description, owner_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			owner_id = excluded.owner_id,
			status = excluded.status,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, q,
		s.ID, s.Name, s.Description, s.OwnerID, string(s.Status),
		s.CreatedAt.UTC().Format(time.RFC3339Nano),
		s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save stall %q: %w", s.ID, err)
	}
	return nil
}
