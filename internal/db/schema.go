package db

// SchemaSQL is the complete schema for fresh chase installs. It is the
// single source of truth: tests load it via GetSchemaSQL() so
// repository code and test databases cannot drift apart. Keep it in
// sync with the migrations list when adding columns or tables.
const SchemaSQL = `
-- Obligations (tracked commitments with a staged escalation ledger).
-- The four *_sent_at columns are the stage ledger: NULL means the
-- stage has not fired; a timestamp is the idempotency flag.
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

-- Operational tasks with a first-response SLA deadline.
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

-- Append-only failure log (pruned by external housekeeping).
CREATE TABLE IF NOT EXISTS failures (
	event_id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	reason TEXT NOT NULL,
	detail TEXT,
	action TEXT NOT NULL DEFAULT 'fail_open',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_failures_created ON failures(created_at);

-- Audit log for obligation mutations.
CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_id TEXT NOT NULL,
	actor TEXT,
	action TEXT NOT NULL,
	detail TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_id);
`

// InitSchema creates the database schema.
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	// Fresh installs get the full schema directly and mark every
	// migration as applied; existing installs run pending migrations.
	var tableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		if _, err := db.Exec(SchemaSQL); err != nil {
			return err
		}
		_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`)
		if err != nil {
			return err
		}
		for _, m := range migrations {
			if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
				return err
			}
		}
		return nil
	}

	return RunMigrations()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to
// prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
