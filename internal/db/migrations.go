package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_obligations_and_failures",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_ops_tasks_for_sla_monitoring",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_audit_log",
		Up:      migrationV3,
	},
}

// RunMigrations executes all pending migrations.
func RunMigrations() error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Printf("Running migration %d: %s\n", migration.Version, migration.Name)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(db); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		fmt.Printf("✓ Migration %d completed\n", migration.Version)
	}

	return nil
}

// migrationV1 creates the obligations table with the stage ledger
// columns and the append-only failure log.
func migrationV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS obligations (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('open', 'in_progress', 'waiting', 'blocked', 'done')) DEFAULT 'open',
			assignee TEXT NOT NULL,
			due_at TEXT NOT NULL,
			priority INTEGER NOT NULL DEFAULT 4,
			source_ref TEXT,
			promise_text TEXT,
			timeframe_kind TEXT,
			resolution TEXT,
			reminder_24h_sent_at TEXT,
			reminder_4h_sent_at TEXT,
			reminder_1h_sent_at TEXT,
			overdue_escalated_at TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_obligations_status ON obligations(status);
		CREATE INDEX IF NOT EXISTS idx_obligations_assignee_source ON obligations(assignee, source_ref);

		CREATE TABLE IF NOT EXISTS failures (
			event_id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			reason TEXT NOT NULL,
			detail TEXT,
			action TEXT NOT NULL DEFAULT 'fail_open',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_failures_created ON failures(created_at);
	`)
	return err
}

// migrationV2 adds operational tasks for the SLA monitor.
func migrationV2(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ops_tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			assignee TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('open', 'responded', 'done')) DEFAULT 'open',
			sla_due_at TEXT NOT NULL,
			nudge_sent_at TEXT,
			breach_notified_at TEXT,
			responded_at TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_ops_tasks_status ON ops_tasks(status);
	`)
	return err
}

// migrationV3 adds the audit log for obligation mutations.
func migrationV3(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_id TEXT NOT NULL,
			actor TEXT,
			action TEXT NOT NULL,
			detail TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_id);
	`)
	return err
}
