// Package history records the outcome of every compile in a SQLite database
// inside the project, so watch mode and the inspection API can show recent
// builds.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timeFormat is fixed width so stored timestamps sort as text
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded compile
type Entry struct {
	RunID     string    `json:"runId"`
	Kind      string    `json:"kind"`   // compile or scratch
	Mode      string    `json:"mode"`   // planner mode
	Status    string    `json:"status"` // succeeded, failed or up_to_date
	Stale     int       `json:"stale"`
	Compiled  int       `json:"compiled"`
	Message   string    `json:"message,omitempty"`
	StartedAt time.Time `json:"startedAt"`
	// Duration covers planning and compiling
	Duration time.Duration `json:"durationNs"`
}

// Store persists entries in SQLite
type Store struct {
	conn *sql.DB
	path string
}

// Open opens or creates the database at path, creating its directory
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{conn: conn, path: path}
	if err := s.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS builds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			mode TEXT NOT NULL,
			status TEXT NOT NULL,
			stale INTEGER NOT NULL DEFAULT 0,
			compiled INTEGER NOT NULL DEFAULT 0,
			message TEXT,
			started_at TEXT NOT NULL,
			duration_ns INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at DESC);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Path returns the database location
func (s *Store) Path() string {
	return s.path
}

// Record appends an entry
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO builds (run_id, kind, mode, status, stale, compiled, message, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Kind, e.Mode, e.Status, e.Stale, e.Compiled, e.Message,
		e.StartedAt.UTC().Format(timeFormat), int64(e.Duration))
	if err != nil {
		return fmt.Errorf("failed to record build: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT run_id, kind, mode, status, stale, compiled, COALESCE(message, ''), started_at, duration_ns
		FROM builds ORDER BY started_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []Entry{}
	for rows.Next() {
		var (
			e        Entry
			started  string
			duration int64
		)
		if err := rows.Scan(&e.RunID, &e.Kind, &e.Mode, &e.Status, &e.Stale, &e.Compiled, &e.Message, &started, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if e.StartedAt, err = time.Parse(timeFormat, started); err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", started, err)
		}
		e.Duration = time.Duration(duration)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
