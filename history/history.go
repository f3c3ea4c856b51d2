// Package history keeps a local journal of connect attempts.
//
// The journal is write-mostly and never consulted for connection state;
// every state question still goes to the client.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yllada/mullvadctl/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
	id         TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	location   TEXT NOT NULL,
	connected  INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS attempts_started_at ON attempts (started_at);
`

// Entry is one recorded connect attempt.
type Entry struct {
	ID        string
	StartedAt time.Time
	Location  string
	Connected bool
	Elapsed   time.Duration
}

// NewEntry creates an entry with a fresh ID.
func NewEntry(location string, startedAt time.Time, connected bool, elapsed time.Duration) Entry {
	return Entry{
		ID:        common.GenerateID(),
		StartedAt: startedAt,
		Location:  location,
		Connected: connected,
		Elapsed:   elapsed,
	}
}

// Store is a SQLite-backed attempt journal.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default journal location.
func DefaultPath() (string, error) {
	dir, err := common.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.HistoryFileName), nil
}

// Open opens or creates the journal at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history: %w", err)
	}

	return &Store{db: db}, nil
}

// Record appends an entry to the journal.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, started_at, location, connected, elapsed_ms) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.StartedAt.UnixNano(), e.Location, e.Connected, e.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording attempt %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, location, connected, elapsed_ms FROM attempts
		 ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			startedAt int64
			elapsedMS int64
		)
		if err := rows.Scan(&e.ID, &startedAt, &e.Location, &e.Connected, &elapsedMS); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		e.StartedAt = time.Unix(0, startedAt)
		e.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the journal.
func (s *Store) Close() error {
	return s.db.Close()
}
