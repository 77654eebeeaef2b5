// Package sessionlog keeps the user-visible session log.
//
// Entries live in an in-memory SQLite database for the lifetime of the
// process so the frontend can page and filter them by level. Nothing is
// written to disk.
package sessionlog

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"Ascend/pkg/types"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Level is the severity tag shown next to a session log line
type Level string

const (
	Info    Level = "INFO"
	Error   Level = "ERROR"
	Success Level = "SUCCESS"
	Cmd     Level = "CMD"
)

// Sink receives session log lines
type Sink interface {
	Add(level Level, message string)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    timestamp INTEGER NOT NULL,
    level TEXT NOT NULL,
    message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_level ON entries(level, seq);
`

// Store is the session log backed by an in-memory SQLite database
type Store struct {
	db *sql.DB
	mu sync.Mutex

	stmtInsert *sql.Stmt

	// now is swapped in tests
	now func() time.Time
}

// Open creates an empty session log
func Open() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}

	// Every connection to ":memory:" is a separate database, so pin one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init session log schema: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO entries (id, timestamp, level, message) VALUES (?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}

	return &Store{db: db, stmtInsert: stmt, now: time.Now}, nil
}

// Close releases the database
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stmtInsert != nil {
		s.stmtInsert.Close()
	}
	return s.db.Close()
}

// Append stores one entry and returns it
func (s *Store) Append(level Level, message string) (types.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := types.LogEntry{
		ID:        uuid.New().String(),
		Timestamp: s.now().UnixMilli(),
		Level:     string(level),
		Message:   message,
	}
	if _, err := s.stmtInsert.Exec(entry.ID, entry.Timestamp, entry.Level, entry.Message); err != nil {
		return types.LogEntry{}, fmt.Errorf("failed to append log entry: %w", err)
	}
	return entry, nil
}

// Query returns entries in insertion order. An empty level matches every
// level; limit <= 0 returns everything, otherwise the newest limit entries.
func (s *Store) Query(level Level, limit int) ([]types.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT id, timestamp, level, message FROM entries`
	var args []interface{}
	if level != "" {
		query += ` WHERE level = ?`
		args = append(args, string(level))
	}
	query += ` ORDER BY seq DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query session log: %w", err)
	}
	defer rows.Close()

	var entries []types.LogEntry
	for rows.Next() {
		var e types.LogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Level, &e.Message); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// newest-first from SQL, flip back to reading order
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Counts returns the number of entries per level
func (s *Store) Counts() (map[Level]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT level, COUNT(*) FROM entries GROUP BY level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Level]int)
	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		counts[Level(level)] = n
	}
	return counts, rows.Err()
}

// Clear drops every entry
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM entries`)
	return err
}

// Format renders an entry the way the session log panel shows it:
// "[15:04:05] [TYPE] message"
func Format(e types.LogEntry) string {
	ts := time.UnixMilli(e.Timestamp).Format("15:04:05")
	return fmt.Sprintf("[%s] [%s] %s", ts, e.Level, e.Message)
}

// FormatAll renders entries one per line
func FormatAll(entries []types.LogEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(Format(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}
