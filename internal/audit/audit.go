// Package audit persists one row per tools/call in SQLite.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/golovatskygroup/mcp-xai/internal/router"
)

// Log is a SQLite-backed router.Recorder
type Log struct {
	db *sql.DB
	mu sync.Mutex
}

var _ router.Recorder = (*Log)(nil)

// Open opens (creating if needed) the audit database at path
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	l, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// New wraps an existing database handle
func New(db *sql.DB) (*Log, error) {
	l := &Log{db: db}
	if err := l.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return l, nil
}

func (l *Log) initTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tool_invocations (
		id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		arguments TEXT,
		ok INTEGER NOT NULL,
		error_code TEXT,
		error_message TEXT,
		duration_ms INTEGER,
		invoked_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tool_invocations_invoked_at ON tool_invocations(invoked_at);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Record implements router.Recorder
func (l *Log) Record(ctx context.Context, inv router.Invocation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var args sql.NullString
	if len(inv.Arguments) > 0 {
		args = sql.NullString{String: string(inv.Arguments), Valid: true}
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO tool_invocations (id, tool, arguments, ok, error_code, error_message, duration_ms, invoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.Tool, args, inv.OK, nullIfEmpty(inv.ErrorCode), nullIfEmpty(inv.Error), inv.Duration.Milliseconds(), inv.At.UTC())
	if err != nil {
		return fmt.Errorf("failed to record invocation %s: %w", inv.ID, err)
	}
	return nil
}

// Recent returns up to limit invocations, newest first
func (l *Log) Recent(ctx context.Context, limit int) ([]router.Invocation, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, tool, arguments, ok, error_code, error_message, duration_ms, invoked_at
		FROM tool_invocations
		ORDER BY invoked_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	defer rows.Close()

	out := []router.Invocation{}
	for rows.Next() {
		var (
			inv        router.Invocation
			args       sql.NullString
			code, msg  sql.NullString
			durationMS int64
		)
		if err := rows.Scan(&inv.ID, &inv.Tool, &args, &inv.OK, &code, &msg, &durationMS, &inv.At); err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}
		if args.Valid {
			inv.Arguments = []byte(args.String)
		}
		inv.ErrorCode = code.String
		inv.Error = msg.String
		inv.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Close closes the underlying database
func (l *Log) Close() error {
	return l.db.Close()
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
