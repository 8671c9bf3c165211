// Package postgres stores saved workflows in a PostgreSQL table as JSONB.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/canicai/canicai/pkg/persist"
	"github.com/canicai/canicai/pkg/store"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS workflows (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    component_count INTEGER NOT NULL DEFAULT 0,
    data            JSONB NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_workflows_updated_at ON workflows(updated_at DESC);
`

// PGStore implements store.Store using PostgreSQL via pgx.
type PGStore struct {
	db    *pgxpool.Pool
	owned bool
}

// New creates a PGStore backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Open connects to dsn, creates the schema and returns a store that owns
// the pool.
func Open(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	s := New(pool)
	s.owned = true
	if err := s.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// CreateSchema creates the workflows table if it doesn't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: create schema: %w", err)
	}
	return nil
}

// DropSchema drops the workflows table.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS workflows;`)
	return err
}

func (s *PGStore) Load(ctx context.Context, id string) (*persist.SavedWorkflow, error) {
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT data FROM workflows WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: load %s: %w", id, err)
	}
	return persist.Unmarshal(data)
}

func (s *PGStore) Save(ctx context.Context, saved *persist.SavedWorkflow) error {
	if saved.ID == "" {
		return fmt.Errorf("postgres: workflow has no id")
	}
	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("postgres: marshal workflow: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO workflows (id, name, component_count, data, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			component_count = EXCLUDED.component_count,
			data = EXCLUDED.data,
			updated_at = NOW()`,
		saved.ID, saved.Name, saved.ComponentCount(), data,
	)
	if err != nil {
		return fmt.Errorf("postgres: save %s: %w", saved.ID, err)
	}
	return nil
}

func (s *PGStore) List(ctx context.Context) ([]store.Summary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, component_count, updated_at FROM workflows ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list: %w", err)
	}
	defer rows.Close()

	out := []store.Summary{}
	for rows.Next() {
		var sum store.Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.ComponentCount, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan summary: %w", err)
		}
		sum.UpdatedAt = sum.UpdatedAt.UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list: %w", err)
	}
	return out, nil
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id); err != nil {
		return fmt.Errorf("postgres: delete %s: %w", id, err)
	}
	return nil
}

func (s *PGStore) Close() error {
	if s.owned {
		s.db.Close()
	}
	return nil
}

var _ store.Store = (*PGStore)(nil)
