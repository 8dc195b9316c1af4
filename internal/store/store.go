// Package store keeps a local log of orchestration activity: one row per
// clarify/plan/fix/compile attempt, keyed by request and graph content hash.
// This records what the pipeline did, not workflow state; it backs the
// history command and post-hoc debugging of model behavior.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for the session log.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Attempt is one orchestration step's outcome.
type Attempt struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"requestId"`
	Phase      string    `json:"phase"` // clarify | plan | fix | compile
	Prompt     string    `json:"prompt,omitempty"`
	GraphHash  string    `json:"graphHash,omitempty"`
	ErrorCount int       `json:"errorCount"`
	WarnCount  int       `json:"warnCount"`
	Fallback   bool      `json:"fallback"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Open creates or opens the SQLite database at path, applying pragmas and
// the schema. Idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one attempt. A missing id or timestamp is filled in.
func (s *Store) Record(ctx context.Context, a Attempt) error {
	if a.ID == "" {
		a.ID = uuid.Must(uuid.NewV7()).String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (id, request_id, phase, prompt, graph_hash,
			error_count, warn_count, fallback, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.RequestID, a.Phase, a.Prompt, a.GraphHash,
		a.ErrorCount, a.WarnCount, boolToInt(a.Fallback),
		a.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording attempt: %w", err)
	}
	return nil
}

// List returns the most recent attempts, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, phase, prompt, graph_hash,
			error_count, warn_count, fallback, created_at
		FROM attempts
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}
	defer rows.Close()
	return scanAttempts(rows)
}

// ByRequest returns every attempt for one request, oldest first.
func (s *Store) ByRequest(ctx context.Context, requestID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, phase, prompt, graph_hash,
			error_count, warn_count, fallback, created_at
		FROM attempts
		WHERE request_id = ?
		ORDER BY created_at ASC, id ASC`, requestID)
	if err != nil {
		return nil, fmt.Errorf("listing attempts for request %q: %w", requestID, err)
	}
	defer rows.Close()
	return scanAttempts(rows)
}

func scanAttempts(rows *sql.Rows) ([]Attempt, error) {
	var out []Attempt
	for rows.Next() {
		var a Attempt
		var fallback int
		var created string
		if err := rows.Scan(&a.ID, &a.RequestID, &a.Phase, &a.Prompt, &a.GraphHash,
			&a.ErrorCount, &a.WarnCount, &fallback, &created); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		a.Fallback = fallback != 0
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parsing attempt timestamp %q: %w", created, err)
		}
		a.CreatedAt = t
		out = append(out, a)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
