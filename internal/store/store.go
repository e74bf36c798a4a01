// Package store provides a SQLite-backed consultation log for the Docify
// assistant. Every answered chat turn is persisted with the tier that
// produced it, so operators can review past consultations and audit how
// often the pipeline degraded.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Consultation is a single answered chat turn.
type Consultation struct {
	// Query is the user's question as submitted.
	Query string
	// Symptoms is the optional free-text symptoms field. May be empty.
	Symptoms string
	// Reply is the answer shown to the user.
	Reply string
	// Tier is the wire name of the pipeline level that answered
	// ("generator", "retrieval", or "rules").
	Tier string
	// CreatedAt is when the turn was persisted.
	CreatedAt time.Time
}

// ConsultationStore persists and retrieves answered chat turns.
// Implementations must be safe for concurrent use.
type ConsultationStore interface {
	// Append persists a single consultation record.
	Append(ctx context.Context, c Consultation) error
	// Recent returns the most recent n consultations, ordered oldest-first.
	// If fewer than n exist, all are returned.
	Recent(ctx context.Context, n int) ([]Consultation, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a ConsultationStore backed by a local SQLite database.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the consultation database.
// It resolves to ~/.docify/history.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".docify")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS consultations (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    query        TEXT    NOT NULL,
    symptoms     TEXT    NOT NULL DEFAULT '',
    reply        TEXT    NOT NULL,
    tier         TEXT    NOT NULL CHECK(tier IN ('generator','retrieval','rules')),
    created_at   INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_consultations_created
    ON consultations (created_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Append persists a single consultation record.
func (s *SQLiteStore) Append(ctx context.Context, c Consultation) error {
	const q = `INSERT INTO consultations (query, symptoms, reply, tier, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, c.Query, c.Symptoms, c.Reply, c.Tier, time.Now().Unix()); err != nil {
		return fmt.Errorf("store: append: %w", err)
	}
	return nil
}

// Recent returns the most recent n consultations, ordered oldest-first.
// Uses a subquery to select the tail then re-order for display.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]Consultation, error) {
	const q = `
SELECT query, symptoms, reply, tier, created_at FROM (
    SELECT id, query, symptoms, reply, tier, created_at
    FROM   consultations
    ORDER  BY created_at DESC, id DESC
    LIMIT  ?
) ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("store: recent: %w", err)
	}
	defer rows.Close()

	var recs []Consultation
	for rows.Next() {
		var c Consultation
		var ts int64
		if err := rows.Scan(&c.Query, &c.Symptoms, &c.Reply, &c.Tier, &ts); err != nil {
			return nil, fmt.Errorf("store: recent scan: %w", err)
		}
		c.CreatedAt = time.Unix(ts, 0)
		recs = append(recs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent rows: %w", err)
	}
	return recs, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}
