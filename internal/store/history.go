// Package store persists processed files and their analysis results in a
// local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"runscan/internal/logging"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no record has the requested ID.
var ErrNotFound = errors.New("history record not found")

// Record is one processed file.
type Record struct {
	ID       string     `json:"id"`
	FileName string     `json:"file_name"`
	Input    [][]string `json:"input"`
	Output   [][]string `json:"output"`
	// SortedOutput is nil when ranking was disabled or failed.
	SortedOutput [][]string `json:"sorted_output,omitempty"`
	Ranker       string     `json:"ranker,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// HistoryStore keeps the newest maxItems records.
type HistoryStore struct {
	db       *sql.DB
	dbPath   string
	maxItems int
	mu       sync.RWMutex
}

// Open creates or opens the history database at path. maxItems <= 0 keeps
// every record.
func Open(path string, maxItems int) (*HistoryStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			logging.StoreError("Failed to create directory for %s: %v", path, err)
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}

	s := &HistoryStore{db: db, dbPath: path, maxItems: maxItems}
	if err := s.initSchema(); err != nil {
		db.Close()
		logging.StoreError("Failed to initialize schema: %v", err)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("History store opened at %s (max_items=%d)", path, maxItems)
	return s, nil
}

func (s *HistoryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		file_name TEXT NOT NULL,
		input_json TEXT NOT NULL,
		output_json TEXT NOT NULL,
		sorted_output_json TEXT,
		ranker TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *HistoryStore) Path() string {
	return s.dbPath
}

// Save inserts rec, filling in ID and CreatedAt when unset, then drops the
// oldest records beyond the configured limit.
func (s *HistoryStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	inputJSON, err := json.Marshal(rec.Input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}
	outputJSON, err := json.Marshal(rec.Output)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	var sortedJSON sql.NullString
	if rec.SortedOutput != nil {
		b, err := json.Marshal(rec.SortedOutput)
		if err != nil {
			return fmt.Errorf("failed to marshal sorted output: %w", err)
		}
		sortedJSON = sql.NullString{String: string(b), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history (id, file_name, input_json, output_json, sorted_output_json, ranker, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.FileName, string(inputJSON), string(outputJSON), sortedJSON, rec.Ranker, rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	if s.maxItems > 0 {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM history WHERE seq NOT IN (
				SELECT seq FROM history ORDER BY created_at DESC, seq DESC LIMIT ?
			)
		`, s.maxItems)
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			logging.StoreDebug("Pruned %d old history records", n)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit record: %w", err)
	}
	logging.StoreDebug("Saved history record %s (%s, %d sequences)", rec.ID, rec.FileName, len(rec.Input))
	return nil
}

const selectColumns = `id, file_name, input_json, output_json, sorted_output_json, ranker, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var inputJSON, outputJSON string
	var sortedJSON sql.NullString
	var createdAt int64
	if err := row.Scan(&rec.ID, &rec.FileName, &inputJSON, &outputJSON, &sortedJSON, &rec.Ranker, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(inputJSON), &rec.Input); err != nil {
		return nil, fmt.Errorf("record %s: bad input: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(outputJSON), &rec.Output); err != nil {
		return nil, fmt.Errorf("record %s: bad output: %w", rec.ID, err)
	}
	if sortedJSON.Valid {
		if err := json.Unmarshal([]byte(sortedJSON.String), &rec.SortedOutput); err != nil {
			return nil, fmt.Errorf("record %s: bad sorted output: %w", rec.ID, err)
		}
	}
	rec.CreatedAt = time.Unix(0, createdAt)
	return &rec, nil
}

// Recent returns up to limit records, newest first. limit <= 0 returns all.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM history
		ORDER BY created_at DESC, seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			logging.StoreWarn("Skipping unreadable history row: %v", err)
			continue
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Get returns the record with the given ID.
func (s *HistoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM history WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", id, err)
	}
	return rec, nil
}

// Clear deletes every record.
func (s *HistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	n, _ := res.RowsAffected()
	logging.Store("Cleared %d history records", n)
	return nil
}

// Count returns the number of stored records.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}
