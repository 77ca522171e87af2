package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based run history store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		changed INTEGER NOT NULL,
		sections TEXT,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts or replaces a run outcome.
func (s *SQLiteStore) Record(rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sectionsJSON []byte
	if rec.Sections != nil {
		var err error
		sectionsJSON, err = json.Marshal(rec.Sections)
		if err != nil {
			return fmt.Errorf("marshal sections: %w", err)
		}
	}

	changed := 0
	if rec.Changed {
		changed = 1
	}

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO runs (id, started_at, finished_at, changed, sections, error) VALUES (?, ?, ?, ?, ?, ?)",
		rec.ID, rec.StartedAt.Unix(), rec.FinishedAt.Unix(), changed, sectionsJSON, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *SQLiteStore) Recent(limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		"SELECT id, started_at, finished_at, changed, sections, error FROM runs ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var startedUnix, finishedUnix int64
		var changed int
		var sectionsJSON []byte
		var errStr sql.NullString

		if err := rows.Scan(&rec.ID, &startedUnix, &finishedUnix, &changed, &sectionsJSON, &errStr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt = time.Unix(startedUnix, 0).UTC()
		rec.FinishedAt = time.Unix(finishedUnix, 0).UTC()
		rec.Changed = changed == 1
		if len(sectionsJSON) > 0 {
			if err := json.Unmarshal(sectionsJSON, &rec.Sections); err != nil {
				return nil, fmt.Errorf("unmarshal sections: %w", err)
			}
		}
		if errStr.Valid {
			rec.Error = errStr.String
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
