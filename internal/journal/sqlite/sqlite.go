package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/FranksOps/puresearch/internal/journal"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements journal.Backend
var _ journal.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS api_calls (
	id TEXT PRIMARY KEY,
	op TEXT NOT NULL,
	target TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	error TEXT,
	duration_ms INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS api_calls_created_at ON api_calls (created_at);
`

// New creates a new SQLite-backed journal.Backend.
func New(dsn string) (journal.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("context: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, record *journal.Record) error {
	query := `
	INSERT INTO api_calls (
		id, op, target, status_code, outcome, error, duration_ms, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := b.db.ExecContext(ctx, query,
		record.ID,
		record.Op,
		record.Target,
		record.StatusCode,
		record.Outcome,
		record.Error,
		record.Duration.Milliseconds(),
		record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("context: %w", err)
	}

	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter journal.Filter) ([]*journal.Record, error) {
	query := `SELECT id, op, target, status_code, outcome, error, duration_ms, created_at FROM api_calls WHERE 1=1`
	args := []any{}

	if filter.Op != "" {
		query += ` AND op = ?`
		args = append(args, filter.Op)
	}
	if filter.Target != "" {
		query += ` AND target = ?`
		args = append(args, filter.Target)
	}
	if filter.Failed != nil {
		if *filter.Failed {
			query += ` AND outcome <> 'ok'`
		} else {
			query += ` AND outcome = 'ok'`
		}
	}
	if filter.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, filter.Since.UTC())
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}
	defer rows.Close()

	var records []*journal.Record
	for rows.Next() {
		var r journal.Record
		var errText sql.NullString
		var durationMs int64

		err := rows.Scan(
			&r.ID, &r.Op, &r.Target, &r.StatusCode, &r.Outcome, &errText, &durationMs, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("context: %w", err)
		}

		r.Error = errText.String
		r.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}

	return records, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
