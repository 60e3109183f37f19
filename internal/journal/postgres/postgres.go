package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/FranksOps/puresearch/internal/journal"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements journal.Backend
var _ journal.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS api_calls (
	id TEXT PRIMARY KEY,
	op TEXT NOT NULL,
	target TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	error TEXT,
	duration_ms BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS api_calls_created_at ON api_calls (created_at);
`

// New creates a new Postgres-backed journal.Backend.
func New(ctx context.Context, dsn string) (journal.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("context: %w", err)
	}

	_, err = pool.Exec(ctx, schema)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("context: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, record *journal.Record) error {
	query := `
	INSERT INTO api_calls (
		id, op, target, status_code, outcome, error, duration_ms, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := b.pool.Exec(ctx, query,
		record.ID,
		record.Op,
		record.Target,
		record.StatusCode,
		record.Outcome,
		record.Error,
		record.Duration.Milliseconds(),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("context: %w", err)
	}

	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter journal.Filter) ([]*journal.Record, error) {
	query := `SELECT id, op, target, status_code, outcome, COALESCE(error, ''), duration_ms, created_at FROM api_calls WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.Op != "" {
		query += fmt.Sprintf(` AND op = $%d`, paramCount)
		args = append(args, filter.Op)
		paramCount++
	}
	if filter.Target != "" {
		query += fmt.Sprintf(` AND target = $%d`, paramCount)
		args = append(args, filter.Target)
		paramCount++
	}
	if filter.Failed != nil {
		if *filter.Failed {
			query += ` AND outcome <> 'ok'`
		} else {
			query += ` AND outcome = 'ok'`
		}
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, paramCount)
		args = append(args, *filter.Since)
		paramCount++
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}
	defer rows.Close()

	var records []*journal.Record
	for rows.Next() {
		var r journal.Record
		var durationMs int64

		err := rows.Scan(
			&r.ID, &r.Op, &r.Target, &r.StatusCode, &r.Outcome, &r.Error, &durationMs, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("context: %w", err)
		}

		r.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}

	return records, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
