// Package sqlite_test contains integration tests for SQLite
// repositories.
//
// All test setup goes through setupTestDB(), which loads the
// authoritative schema via db.GetSchemaSQL(). Do not hardcode CREATE
// TABLE statements in test files; use the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/chase/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative
// schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedObligation inserts a test obligation and returns its ID.
func seedObligation(t *testing.T, db *sql.DB, id, assignee, status, dueAt string) string {
	t.Helper()
	if id == "" {
		id = "OBL-001"
	}
	if status == "" {
		status = "open"
	}
	_, err := db.Exec(
		"INSERT INTO obligations (id, title, status, assignee, due_at, priority, source_ref) VALUES (?, ?, ?, ?, ?, 4, ?)",
		id, "Test obligation "+id, status, assignee, dueAt, "thread-"+id)
	if err != nil {
		t.Fatalf("failed to seed obligation: %v", err)
	}
	return id
}

// seedOpsTask inserts a test operational task and returns its ID.
func seedOpsTask(t *testing.T, db *sql.DB, id, assignee, slaDueAt string) string {
	t.Helper()
	if id == "" {
		id = "OPS-001"
	}
	_, err := db.Exec(
		"INSERT INTO ops_tasks (id, title, assignee, status, sla_due_at) VALUES (?, ?, ?, 'open', ?)",
		id, "Test task "+id, assignee, slaDueAt)
	if err != nil {
		t.Fatalf("failed to seed ops task: %v", err)
	}
	return id
}
