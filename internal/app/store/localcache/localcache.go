// Package localcache is the SQLite-backed local mirror of performance
// records. Every save lands here first; the remote store is mirrored
// best-effort afterwards, with failures parked in the pending_sync queue.
package localcache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"go.uber.org/zap"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const lastSyncKey = "last_sync"

// Store is the local performance-record cache.
type Store struct {
	conn   *sql.DB
	logger *zap.Logger
	dbPath string
}

// Open opens or creates the cache database at the given path, creating
// parent directories as needed.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{conn: conn, logger: logger, dbPath: path}
	if err := s.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return s, nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS performance_records (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			payload     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_records_user ON performance_records(user_id);
		CREATE INDEX IF NOT EXISTS idx_records_recorded ON performance_records(recorded_at DESC);

		CREATE TABLE IF NOT EXISTS pending_sync (
			record_id TEXT PRIMARY KEY,
			queued_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sync_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Ping verifies the cache database is reachable.
func (s *Store) Ping() error {
	return s.conn.Ping()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Put inserts or replaces a record.
func (s *Store) Put(rec models.PerformanceRecord) error {
	if rec.ID == "" || rec.UserID == "" {
		return fmt.Errorf("%w: record id and user id are required", faults.ErrValidation)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	_, err = s.conn.Exec(`
		INSERT OR REPLACE INTO performance_records (id, user_id, recorded_at, updated_at, payload)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID,
		rec.RecordedAt.UTC().Format(time.RFC3339Nano),
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
		string(payload),
	)
	return err
}

// Get retrieves a record by ID.
func (s *Store) Get(id string) (*models.PerformanceRecord, error) {
	var payload string
	err := s.conn.QueryRow(
		`SELECT payload FROM performance_records WHERE id = ?`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: record %s", faults.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var rec models.PerformanceRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", id, err)
	}
	return &rec, nil
}

// ListByUser returns a user's cached records, newest first.
func (s *Store) ListByUser(userID string) ([]models.PerformanceRecord, error) {
	rows, err := s.conn.Query(`
		SELECT payload FROM performance_records
		WHERE user_id = ?
		ORDER BY recorded_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Enqueue marks a record as awaiting a remote mirror. Re-enqueueing is a
// no-op.
func (s *Store) Enqueue(recordID string) error {
	_, err := s.conn.Exec(`
		INSERT OR IGNORE INTO pending_sync (record_id, queued_at)
		VALUES (?, ?)`,
		recordID, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// Pending returns the records queued for remote mirroring, oldest first.
// Queue entries whose record has since been deleted are skipped.
func (s *Store) Pending() ([]models.PerformanceRecord, error) {
	rows, err := s.conn.Query(`
		SELECT r.payload
		FROM pending_sync q
		JOIN performance_records r ON r.id = q.record_id
		ORDER BY q.queued_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Dequeue removes a record from the pending queue after a successful
// mirror.
func (s *Store) Dequeue(recordID string) error {
	_, err := s.conn.Exec(`DELETE FROM pending_sync WHERE record_id = ?`, recordID)
	return err
}

// PendingCount returns the number of queued records.
func (s *Store) PendingCount() (int, error) {
	var n int
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM pending_sync`).Scan(&n)
	return n, err
}

// SetLastSync records the completion time of the latest successful sync.
func (s *Store) SetLastSync(t time.Time) error {
	_, err := s.conn.Exec(`
		INSERT OR REPLACE INTO sync_meta (key, value) VALUES (?, ?)`,
		lastSyncKey, t.UTC().Format(time.RFC3339Nano))
	return err
}

// LastSync returns the completion time of the latest successful sync, or
// the zero time if no sync has completed.
func (s *Store) LastSync() (time.Time, error) {
	var v string
	err := s.conn.QueryRow(`SELECT value FROM sync_meta WHERE key = ?`, lastSyncKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, v)
}

// Compact drops orphaned pending-queue entries and reclaims space.
func (s *Store) Compact() error {
	if _, err := s.conn.Exec(`
		DELETE FROM pending_sync
		WHERE record_id NOT IN (SELECT id FROM performance_records)`); err != nil {
		return err
	}
	_, err := s.conn.Exec(`PRAGMA optimize`)
	return err
}

func scanRecords(rows *sql.Rows) ([]models.PerformanceRecord, error) {
	var recs []models.PerformanceRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rec models.PerformanceRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode cached record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
