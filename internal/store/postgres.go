package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fxdash/dashboard/internal/model"
)

// PostgresStore implements Store using PostgreSQL. The dataset is kept as a
// single JSONB row keyed by document name; decimals are encoded as plain
// JSON numbers, which JSONB stores as NUMERIC without precision loss.
type PostgresStore struct {
	pool *pgxpool.Pool
	name string
}

// NewPostgresStore creates a new PostgreSQL-backed store for the named document.
func NewPostgresStore(pool *pgxpool.Pool, name string) *PostgresStore {
	return &PostgresStore{pool: pool, name: name}
}

// Migrate creates the documents table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS dashboard_documents (
			id         TEXT PRIMARY KEY,
			document   JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("migrate dashboard_documents: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*model.Dataset, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document::TEXT FROM dashboard_documents WHERE id = $1`, s.name).
		Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return emptyDataset(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", s.name, err)
	}
	return decode(doc)
}

func (s *PostgresStore) Save(ctx context.Context, ds *model.Dataset) error {
	doc, err := encode(ds)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO dashboard_documents (id, document, updated_at)
		 VALUES ($1, $2::JSONB, now())
		 ON CONFLICT (id) DO UPDATE
		 SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		s.name, string(doc),
	)
	if err != nil {
		return fmt.Errorf("save document %s: %w", s.name, err)
	}
	return nil
}
