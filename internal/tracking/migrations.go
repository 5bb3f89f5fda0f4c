package tracking

import (
	"database/sql"
	"fmt"
	"sort"
)

// Migration represents a schema migration step.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// MigrationStatus reports the current and available migration versions.
type MigrationStatus struct {
	CurrentVersion   int             `json:"current_version"`
	AvailableVersion int             `json:"available_version"`
	Pending          []MigrationInfo `json:"pending"`
}

// MigrationInfo describes a single migration.
type MigrationInfo struct {
	Version     int    `json:"version"`
	Description string `json:"description"`
}

// migrations is the ordered list of all schema migrations.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema: task_tracking and requester_tasks tables",
		SQL: `
CREATE TABLE IF NOT EXISTS task_tracking (
  repo_name TEXT NOT NULL,
  round INTEGER NOT NULL,
  status TEXT NOT NULL,
  error TEXT,
  result TEXT,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (repo_name, round)
);

CREATE TABLE IF NOT EXISTS requester_tasks (
  requester_id TEXT PRIMARY KEY,
  task_name TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_task_tracking_status ON task_tracking(status, updated_at);
`,
	},
	{
		Version:     2,
		Description: "add file set fingerprint to task_tracking",
		SQL: `
ALTER TABLE task_tracking ADD COLUMN fingerprint TEXT;
`,
	},
}

const migrationsTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at TEXT NOT NULL
);
`

func currentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// runMigrations applies all pending migrations in order.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(migrationsTableSQL); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	for _, m := range sortedMigrations() {
		if m.Version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))", m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

func sortedMigrations() []Migration {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return sorted
}

// migrationPlan reports applied and pending migrations without applying any.
func migrationPlan(db *sql.DB) (*MigrationStatus, error) {
	if _, err := db.Exec(migrationsTableSQL); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}
	current, err := currentVersion(db)
	if err != nil {
		return nil, err
	}

	sorted := sortedMigrations()
	status := &MigrationStatus{CurrentVersion: current, Pending: []MigrationInfo{}}
	if len(sorted) > 0 {
		status.AvailableVersion = sorted[len(sorted)-1].Version
	}
	for _, m := range sorted {
		if m.Version > current {
			status.Pending = append(status.Pending, MigrationInfo{Version: m.Version, Description: m.Description})
		}
	}
	return status, nil
}

// InspectSQLite opens the database at path and reports its migration state
// without applying anything.
func InspectSQLite(path string) (*MigrationStatus, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return migrationPlan(db)
}

// MigrationStatus reports the schema state of an open store.
func (s *SQLiteStore) MigrationStatus() (*MigrationStatus, error) {
	return migrationPlan(s.db)
}
