package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Store is the durable event, category and privacy-rule storage backed
// by a SQLite database. Writes are serialized by SQLite; reads run
// concurrently under WAL mode.
type Store struct {
	db *sql.DB

	// Prepared statements for the hot write path.
	upsertEvent *sql.Stmt
}

// NewStore wraps an already-opened and migrated database.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	return s, nil
}

// Open opens (creating directories as needed) the database at path,
// runs migrations, and returns a ready store.
func Open(path string) (*Store, *sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	runner := NewMigrationRunner(db)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return store, db, nil
}

func (s *Store) prepareStatements() error {
	var err error

	s.upsertEvent, err = s.db.Prepare(`
		INSERT OR REPLACE INTO events (id, device_id, start_ts, end_ts, wm_class, title, is_idle)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	return nil
}

// Close releases prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *Store) Close() error {
	if s.upsertEvent != nil {
		s.upsertEvent.Close()
	}
	return nil
}

// builder returns a squirrel statement builder using SQLite `?`
// placeholders.
func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// tsLayout is the stored timestamp format. The fraction is zero-padded
// to a fixed nine digits so lexicographic order in SQL matches time
// order; RFC3339Nano trims trailing zeros and would sort
// "10:00:00.5Z" before "10:00:00Z".
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTS renders a timestamp in the stored wire format.
func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

// parseTS tries the stored format plus a few common SQLite variants.
func parseTS(s string) (time.Time, error) {
	formats := []string{
		tsLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}
