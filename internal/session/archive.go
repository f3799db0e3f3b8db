package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Archive is a durable transcript log backed by SQLite. The in-memory session
// store is authoritative; the archive only records what was said and which
// briefs were confirmed, for later inspection.
type Archive struct {
	db *sql.DB
}

const archiveSchema = `
CREATE TABLE IF NOT EXISTS transcripts (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL CHECK(role IN ('user','bot')),
    content TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_transcripts_user ON transcripts(user_id, created_at);

CREATE TABLE IF NOT EXISTS briefs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    summary TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// OpenArchive creates or opens the transcript archive at the given path.
func OpenArchive(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging archive: %w", err)
	}
	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating archive: %w", err)
	}
	return &Archive{db: db}, nil
}

// OpenMemoryArchive creates an in-memory archive (useful for testing).
func OpenMemoryArchive() (*Archive, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory archive: %w", err)
	}
	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating archive: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error { return a.db.Close() }

// Record appends one exchanged message to the transcript log.
func (a *Archive) Record(ctx context.Context, userID, role, content string) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO transcripts (id, user_id, role, content) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), userID, role, content)
	if err != nil {
		return fmt.Errorf("recording transcript: %w", err)
	}
	return nil
}

// RecordBrief logs a confirmed brief.
func (a *Archive) RecordBrief(ctx context.Context, briefID, userID, summary string) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO briefs (id, user_id, summary) VALUES (?, ?, ?)`,
		briefID, userID, summary)
	if err != nil {
		return fmt.Errorf("recording brief: %w", err)
	}
	return nil
}

// TranscriptEntry is one archived message.
type TranscriptEntry struct {
	Role    string
	Content string
}

// Transcript returns the most recent limit messages for a user, oldest first.
func (a *Archive) Transcript(ctx context.Context, userID string, limit int) ([]TranscriptEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	// rowid breaks ties: created_at only has second resolution.
	rows, err := a.db.QueryContext(ctx,
		`SELECT role, content FROM (
		    SELECT role, content, created_at, rowid AS rid FROM transcripts
		    WHERE user_id = ? ORDER BY created_at DESC, rid DESC LIMIT ?
		 ) ORDER BY created_at ASC, rid ASC`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading transcript: %w", err)
	}
	defer rows.Close()

	var entries []TranscriptEntry
	for rows.Next() {
		var e TranscriptEntry
		if err := rows.Scan(&e.Role, &e.Content); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
