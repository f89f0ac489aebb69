// Package sqlite contains SQLite implementations of repository
// interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/chase/internal/core/obligation"
	"github.com/example/chase/internal/ports/secondary"
)

// stageColumns maps ledger stage names to their sent-at columns. Only
// names in this map may be marked; anything else is a programming
// error, not data.
var stageColumns = map[string]string{
	string(obligation.StageReminder24h): "reminder_24h_sent_at",
	string(obligation.StageReminder4h):  "reminder_4h_sent_at",
	string(obligation.StageReminder1h):  "reminder_1h_sent_at",
	string(obligation.StageOverdue):     "overdue_escalated_at",
}

const obligationColumns = `id, title, status, assignee, due_at, priority, source_ref, promise_text, timeframe_kind, resolution, reminder_24h_sent_at, reminder_4h_sent_at, reminder_1h_sent_at, overdue_escalated_at, created_at, updated_at`

// ObligationRepository implements secondary.ObligationRepository with
// SQLite.
type ObligationRepository struct {
	db *sql.DB
}

// NewObligationRepository creates a new SQLite obligation repository.
func NewObligationRepository(db *sql.DB) *ObligationRepository {
	return &ObligationRepository{db: db}
}

// Create persists a new obligation.
func (r *ObligationRepository) Create(ctx context.Context, o *secondary.ObligationRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO obligations (id, title, status, assignee, due_at, priority, source_ref, promise_text, timeframe_kind) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID,
		o.Title,
		o.Status,
		o.Assignee,
		o.DueAt,
		o.Priority,
		nullable(o.SourceRef),
		nullable(o.PromiseText),
		nullable(o.TimeframeKind),
	)
	if err != nil {
		return fmt.Errorf("failed to create obligation: %w", err)
	}

	return nil
}

// GetByID retrieves an obligation by its ID.
func (r *ObligationRepository) GetByID(ctx context.Context, id string) (*secondary.ObligationRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+obligationColumns+` FROM obligations WHERE id = ?`, id)

	record, err := scanObligation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("obligation %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get obligation: %w", err)
	}

	return record, nil
}

// FindOpen returns the open or in-progress obligation for an
// (assignee, source ref) pair, or nil if none exists.
func (r *ObligationRepository) FindOpen(ctx context.Context, assignee, sourceRef string) (*secondary.ObligationRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+obligationColumns+` FROM obligations WHERE assignee = ? AND source_ref = ? AND status IN ('open', 'in_progress') LIMIT 1`,
		assignee, sourceRef)

	record, err := scanObligation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open obligation: %w", err)
	}

	return record, nil
}

// ListByStatuses retrieves obligations in any of the given statuses,
// ordered by due time.
func (r *ObligationRepository) ListByStatuses(ctx context.Context, statuses []string) ([]*secondary.ObligationRecord, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(statuses)-1) + "?"
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = s
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+obligationColumns+` FROM obligations WHERE status IN (`+placeholders+`) ORDER BY due_at ASC`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list obligations by status: %w", err)
	}
	defer rows.Close()

	return collectObligations(rows)
}

// List retrieves obligations matching the given filters.
func (r *ObligationRepository) List(ctx context.Context, filters secondary.ObligationFilters) ([]*secondary.ObligationRecord, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations WHERE 1=1`
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	if filters.Assignee != "" {
		query += " AND assignee = ?"
		args = append(args, filters.Assignee)
	}

	query += " ORDER BY priority ASC, due_at ASC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list obligations: %w", err)
	}
	defer rows.Close()

	return collectObligations(rows)
}

// UpdateStatus updates the status of an obligation.
func (r *ObligationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE obligations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, id)
	if err != nil {
		return fmt.Errorf("failed to update obligation status: %w", err)
	}

	return requireRow(result, id)
}

// MarkStage records the sent-at timestamp for an escalation stage. The
// WHERE clause requires the column to still be NULL, so a concurrent
// or repeated mark cannot overwrite the idempotency flag.
func (r *ObligationRepository) MarkStage(ctx context.Context, id, stage, sentAt string) error {
	column, ok := stageColumns[stage]
	if !ok {
		return fmt.Errorf("unknown escalation stage %q", stage)
	}

	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE obligations SET %s = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND %s IS NULL", column, column),
		sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark stage %s: %w", stage, err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("stage %s already marked for obligation %s (or obligation not found)", stage, id)
	}

	return nil
}

// SetDue updates the due timestamp.
func (r *ObligationRepository) SetDue(ctx context.Context, id, dueAt string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE obligations SET due_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		dueAt, id)
	if err != nil {
		return fmt.Errorf("failed to set due date: %w", err)
	}

	return requireRow(result, id)
}

// Reassign changes the assignee. Stage flags are untouched.
func (r *ObligationRepository) Reassign(ctx context.Context, id, assignee string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE obligations SET assignee = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		assignee, id)
	if err != nil {
		return fmt.Errorf("failed to reassign obligation: %w", err)
	}

	return requireRow(result, id)
}

// SetResolution records the resolution note.
func (r *ObligationRepository) SetResolution(ctx context.Context, id, resolution string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE obligations SET resolution = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		resolution, id)
	if err != nil {
		return fmt.Errorf("failed to set resolution: %w", err)
	}

	return requireRow(result, id)
}

// AppendAudit records an audit entry for an obligation mutation.
func (r *ObligationRepository) AppendAudit(ctx context.Context, entityID, actor, action, detail string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO audit_log (entity_id, actor, action, detail) VALUES (?, ?, ?, ?)",
		entityID, actor, action, detail)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// GetNextID returns the next available obligation ID.
func (r *ObligationRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("OBL-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM obligations", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next obligation ID: %w", err)
	}

	return fmt.Sprintf("OBL-%03d", maxID+1), nil
}

// Helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObligation(row rowScanner) (*secondary.ObligationRecord, error) {
	var (
		sourceRef     sql.NullString
		promiseText   sql.NullString
		timeframeKind sql.NullString
		resolution    sql.NullString
		reminder24h   sql.NullString
		reminder4h    sql.NullString
		reminder1h    sql.NullString
		overdue       sql.NullString
		createdAt     time.Time
		updatedAt     time.Time
	)

	record := &secondary.ObligationRecord{}
	err := row.Scan(
		&record.ID, &record.Title, &record.Status, &record.Assignee, &record.DueAt, &record.Priority,
		&sourceRef, &promiseText, &timeframeKind, &resolution,
		&reminder24h, &reminder4h, &reminder1h, &overdue,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.SourceRef = sourceRef.String
	record.PromiseText = promiseText.String
	record.TimeframeKind = timeframeKind.String
	record.Resolution = resolution.String
	record.Reminder24hAt = reminder24h.String
	record.Reminder4hAt = reminder4h.String
	record.Reminder1hAt = reminder1h.String
	record.OverdueAt = overdue.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

func collectObligations(rows *sql.Rows) ([]*secondary.ObligationRecord, error) {
	var records []*secondary.ObligationRecord
	for rows.Next() {
		record, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func requireRow(result sql.Result, id string) error {
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("obligation %s not found", id)
	}
	return nil
}

// Ensure ObligationRepository implements the interface
var _ secondary.ObligationRepository = (*ObligationRepository)(nil)
