package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS job_history (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id    TEXT NOT NULL,
    job_type      TEXT NOT NULL,
    queue         TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL,
    handle_times  INTEGER NOT NULL DEFAULT 0,
    error_message TEXT NOT NULL DEFAULT '',
    started_at    TEXT NOT NULL,
    completed_at  TEXT NOT NULL,
    duration_ms   INTEGER NOT NULL,
    worker_id     TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL DEFAULT (datetime('now')),
    UNIQUE (message_id, handle_times, status)
);
CREATE INDEX IF NOT EXISTS idx_job_history_message ON job_history(message_id);
`

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const selectColumns = `
	SELECT id, message_id, job_type, queue, status, handle_times, error_message,
	       started_at, completed_at, duration_ms, worker_id
	FROM job_history`

// Store provides SQLite-backed storage for history records.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the history database at dbPath and runs migrations.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	// WAL lets the CLI read while a consumer writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Insert stores a record. Re-inserting the same message attempt is silently ignored.
func (s *Store) Insert(r Record) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO job_history (
			message_id, job_type, queue, status, handle_times, error_message,
			started_at, completed_at, duration_ms, worker_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MessageID, r.JobType, r.Queue, r.Status, r.HandleTimes, r.ErrorMessage,
		r.StartedAt.UTC().Format(timeLayout), r.CompletedAt.UTC().Format(timeLayout),
		r.DurationMs, r.WorkerID,
	)
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	rows, err := s.db.Query(selectColumns+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ForMessage returns every record of one message, oldest first.
func (s *Store) ForMessage(messageID string) ([]Record, error) {
	rows, err := s.db.Query(selectColumns+` WHERE message_id = ? ORDER BY id ASC`, messageID)
	if err != nil {
		return nil, fmt.Errorf("query message %s: %w", messageID, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CountByStatus returns the number of records per status.
func (s *Store) CountByStatus() (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM job_history GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Prune deletes records completed before cutoff and returns how many were removed.
func (s *Store) Prune(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM job_history WHERE completed_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		var startedAt, completedAt string
		if err := rows.Scan(
			&r.ID, &r.MessageID, &r.JobType, &r.Queue, &r.Status, &r.HandleTimes, &r.ErrorMessage,
			&startedAt, &completedAt, &r.DurationMs, &r.WorkerID,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if t, err := time.Parse(timeLayout, startedAt); err == nil {
			r.StartedAt = t
		}
		if t, err := time.Parse(timeLayout, completedAt); err == nil {
			r.CompletedAt = t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
