package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS renders (
	id           TEXT PRIMARY KEY,
	width        INT NOT NULL,
	height       INT NOT NULL,
	object_count INT NOT NULL,
	output_url   TEXT NOT NULL,
	elapsed_ms   BIGINT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PGStore persists render records in Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore ensures the renders table exists and returns the store.
func NewPGStore(ctx context.Context, pool *pgxpool.Pool) (*PGStore, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("create renders table: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Insert(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO renders (id, width, height, object_count, output_url, elapsed_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.Width, rec.Height, rec.ObjectCount, rec.OutputURL, rec.ElapsedMs, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert render: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx,
		`SELECT id, width, height, object_count, output_url, elapsed_ms, created_at
		 FROM renders WHERE id = $1`, id).
		Scan(&rec.ID, &rec.Width, &rec.Height, &rec.ObjectCount, &rec.OutputURL, &rec.ElapsedMs, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get render: %w", err)
	}
	return &rec, nil
}

func (s *PGStore) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, width, height, object_count, output_url, elapsed_ms, created_at
		 FROM renders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list renders: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Width, &rec.Height, &rec.ObjectCount, &rec.OutputURL, &rec.ElapsedMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan render: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list renders: %w", err)
	}
	return records, nil
}
