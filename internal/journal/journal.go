// Package journal provides the best-effort decision journal.
//
// The journal records gate decisions for later inspection. It is strictly
// advisory infrastructure: a journal failure must never change a decision
// or block the agent, so callers on the gate path swallow every error.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrEntryNotFound is returned when an entry is not found.
var ErrEntryNotFound = errors.New("journal entry not found")

// Entry is one recorded gate decision.
type Entry struct {
	// ID is a generated UUID.
	ID string `json:"id"`
	// Tool is the intercepted tool name (Bash, Write, Edit).
	Tool string `json:"tool"`
	// Input is the classified command or file path.
	Input string `json:"input"`
	// Decision is the rendered decision (allow, block, warn).
	Decision string `json:"decision"`
	// Category is the matched rule category, empty for plain allows.
	Category string `json:"category,omitempty"`
	// CreatedAt is the decision time, UTC.
	CreatedAt time.Time `json:"created_at"`
}

// DB wraps the journal database handle.
type DB struct {
	*sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id TEXT PRIMARY KEY,
	tool TEXT NOT NULL,
	input TEXT NOT NULL,
	decision TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions(created_at);
`

// OpenAndMigrate opens the journal database, creating the parent directory
// and schema as needed.
func OpenAndMigrate(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("journal path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	if _, err := handle.Exec(schema); err != nil {
		handle.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}

	return &DB{handle}, nil
}

// Record inserts one decision. ID and CreatedAt are generated when unset.
func (db *DB) Record(e *Entry) error {
	if e.Tool == "" {
		return fmt.Errorf("tool is required")
	}
	if e.Decision == "" {
		return fmt.Errorf("decision is required")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(`
		INSERT INTO decisions (id, tool, input, decision, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.Tool, e.Input, e.Decision, e.Category, e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording decision: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. limit <= 0 returns all.
func (db *DB) List(limit int) ([]*Entry, error) {
	query := `
		SELECT id, tool, input, decision, category, created_at
		FROM decisions ORDER BY created_at DESC, id DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("listing decisions: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		var created string
		if err := rows.Scan(&e.ID, &e.Tool, &e.Input, &e.Decision, &e.Category, &created); err != nil {
			return nil, fmt.Errorf("scanning decision: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		e.CreatedAt = ts
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns a single entry by ID.
func (db *DB) Get(id string) (*Entry, error) {
	e := &Entry{}
	var created string
	err := db.QueryRow(`
		SELECT id, tool, input, decision, category, created_at
		FROM decisions WHERE id = ?
	`, id).Scan(&e.ID, &e.Tool, &e.Input, &e.Decision, &e.Category, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting decision: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	e.CreatedAt = ts
	return e, nil
}

// Clear removes all entries and returns the number removed.
func (db *DB) Clear() (int64, error) {
	result, err := db.Exec(`DELETE FROM decisions`)
	if err != nil {
		return 0, fmt.Errorf("clearing journal: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return n, nil
}
