package tracking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"

	"llmdeploy/internal/models"
)

const (
	// MemoryPath opens a private, non-durable database.
	MemoryPath = ":memory:"

	busyTimeoutMS   = 5000
	maxOpenConns    = 1
	maxIdleConns    = 1
	connMaxLifetime = 0
)

// SQLiteStore keeps both tables in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and applies migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := configureDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func configureDB(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMS),
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// A single connection keeps an in-memory database alive and shared.
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	return nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("db path is required")
	}
	if path == MemoryPath {
		return path, nil
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String(), nil
}

func (s *SQLiteStore) Get(ctx context.Context, key models.TrackingKey) (models.TrackingEntry, bool, error) {
	var (
		status      string
		errText     sql.NullString
		resultJSON  sql.NullString
		fingerprint sql.NullString
		updatedAt   string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT status, error, result, fingerprint, updated_at FROM task_tracking WHERE repo_name = ? AND round = ?",
		key.Name, int(key.Round),
	).Scan(&status, &errText, &resultJSON, &fingerprint, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TrackingEntry{}, false, nil
	}
	if err != nil {
		return models.TrackingEntry{}, false, err
	}

	parsedStatus, err := models.ParseTrackingStatus(status)
	if err != nil {
		return models.TrackingEntry{}, false, err
	}
	entry := models.TrackingEntry{
		Status:      parsedStatus,
		Error:       errText.String,
		Fingerprint: fingerprint.String,
	}
	if resultJSON.Valid && resultJSON.String != "" {
		var result models.DeploymentResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return models.TrackingEntry{}, false, fmt.Errorf("decode result for %s: %w", key, err)
		}
		entry.Result = &result
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		entry.UpdatedAt = t
	}
	return entry, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key models.TrackingKey, entry models.TrackingEntry) error {
	var result any
	if entry.Result != nil {
		data, err := json.Marshal(entry.Result)
		if err != nil {
			return err
		}
		result = string(data)
	}
	updatedAt := entry.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO task_tracking (repo_name, round, status, error, result, fingerprint, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(repo_name, round) DO UPDATE SET
  status = excluded.status,
  error = excluded.error,
  result = excluded.result,
  fingerprint = excluded.fingerprint,
  updated_at = excluded.updated_at`,
		key.Name, int(key.Round), string(entry.Status), nullIfEmpty(entry.Error), result,
		nullIfEmpty(entry.Fingerprint), updatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) Has(ctx context.Context, key models.TrackingKey) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM task_tracking WHERE repo_name = ? AND round = ? LIMIT 1", key.Name, int(key.Round),
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) LastTaskName(ctx context.Context, requesterID string) (string, bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT task_name FROM requester_tasks WHERE requester_id = ?", requesterID,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

func (s *SQLiteStore) SetLastTaskName(ctx context.Context, requesterID, taskName string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO requester_tasks (requester_id, task_name, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(requester_id) DO UPDATE SET
  task_name = excluded.task_name,
  updated_at = excluded.updated_at`,
		requesterID, taskName, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
