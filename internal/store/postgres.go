package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres persists transcript records over a direct database connection.
// Supabase projects expose the same Postgres instance behind PostgREST, so
// this backend is interchangeable with the REST one.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a store backed by the given connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Insert(ctx context.Context, text, filename string) (*Record, error) {
	query := `
		INSERT INTO transcripts (filename, text)
		VALUES ($1, $2)
		RETURNING id::text, filename, text, created_at
	`

	var rec Record
	err := p.pool.QueryRow(ctx, query, filename, text).
		Scan(&rec.ID, &rec.Filename, &rec.Text, &rec.CreatedAt)
	if err != nil {
		return nil, &Error{Backend: "postgres", Op: "insert", Err: fmt.Errorf("insert transcript: %w", err)}
	}
	return &rec, nil
}

func (p *Postgres) ListAll(ctx context.Context) ([]Record, error) {
	query := `
		SELECT id::text, filename, text, created_at
		FROM transcripts
		ORDER BY created_at DESC
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, &Error{Backend: "postgres", Op: "list", Err: fmt.Errorf("query transcripts: %w", err)}
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Text, &rec.CreatedAt); err != nil {
			return nil, &Error{Backend: "postgres", Op: "list", Err: fmt.Errorf("scan transcript: %w", err)}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Backend: "postgres", Op: "list", Err: fmt.Errorf("iterate transcripts: %w", err)}
	}
	return records, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return &Error{Backend: "postgres", Op: "ping", Err: err}
	}
	return nil
}
