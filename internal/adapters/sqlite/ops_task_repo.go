package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/chase/internal/ports/secondary"
)

const opsTaskColumns = `id, title, assignee, status, sla_due_at, nudge_sent_at, breach_notified_at, responded_at, created_at, updated_at`

// OpsTaskRepository implements secondary.OpsTaskRepository with
// SQLite.
type OpsTaskRepository struct {
	db *sql.DB
}

// NewOpsTaskRepository creates a new SQLite ops task repository.
func NewOpsTaskRepository(db *sql.DB) *OpsTaskRepository {
	return &OpsTaskRepository{db: db}
}

// Create persists a new operational task.
func (r *OpsTaskRepository) Create(ctx context.Context, task *secondary.OpsTaskRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ops_tasks (id, title, assignee, status, sla_due_at) VALUES (?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Assignee, task.Status, task.SLADueAt)
	if err != nil {
		return fmt.Errorf("failed to create ops task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by its ID.
func (r *OpsTaskRepository) GetByID(ctx context.Context, id string) (*secondary.OpsTaskRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+opsTaskColumns+` FROM ops_tasks WHERE id = ?`, id)

	record, err := scanOpsTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ops task %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ops task: %w", err)
	}

	return record, nil
}

// ListUnresponded retrieves tasks still awaiting a first response,
// oldest deadline first.
func (r *OpsTaskRepository) ListUnresponded(ctx context.Context) ([]*secondary.OpsTaskRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+opsTaskColumns+` FROM ops_tasks WHERE responded_at IS NULL AND status = 'open' ORDER BY sla_due_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unresponded tasks: %w", err)
	}
	defer rows.Close()

	return collectOpsTasks(rows)
}

// List retrieves tasks matching the given filters.
func (r *OpsTaskRepository) List(ctx context.Context, filters secondary.OpsTaskFilters) ([]*secondary.OpsTaskRecord, error) {
	query := `SELECT ` + opsTaskColumns + ` FROM ops_tasks WHERE 1=1`
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	if filters.Assignee != "" {
		query += " AND assignee = ?"
		args = append(args, filters.Assignee)
	}

	query += " ORDER BY sla_due_at ASC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ops tasks: %w", err)
	}
	defer rows.Close()

	return collectOpsTasks(rows)
}

// MarkNudge records the pre-deadline nudge send time. The NULL guard
// keeps the flag one-shot.
func (r *OpsTaskRepository) MarkNudge(ctx context.Context, id, sentAt string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE ops_tasks SET nudge_sent_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND nudge_sent_at IS NULL",
		sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark nudge: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("nudge already sent for task %s (or task not found)", id)
	}
	return nil
}

// MarkBreachNotified records the breach notification send time.
func (r *OpsTaskRepository) MarkBreachNotified(ctx context.Context, id, sentAt string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE ops_tasks SET breach_notified_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND breach_notified_at IS NULL",
		sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark breach notification: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("breach already notified for task %s (or task not found)", id)
	}
	return nil
}

// MarkResponded records the first response and ends SLA tracking.
func (r *OpsTaskRepository) MarkResponded(ctx context.Context, id, respondedAt string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE ops_tasks SET responded_at = ?, status = 'responded', updated_at = CURRENT_TIMESTAMP WHERE id = ? AND responded_at IS NULL",
		respondedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark responded: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("task %s already responded (or task not found)", id)
	}
	return nil
}

// GetNextID returns the next available task ID.
func (r *OpsTaskRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("OPS-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM ops_tasks", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next ops task ID: %w", err)
	}

	return fmt.Sprintf("OPS-%03d", maxID+1), nil
}

// Helpers

func scanOpsTask(row rowScanner) (*secondary.OpsTaskRecord, error) {
	var (
		nudgeSentAt    sql.NullString
		breachNotified sql.NullString
		respondedAt    sql.NullString
		createdAt      time.Time
		updatedAt      time.Time
	)

	record := &secondary.OpsTaskRecord{}
	err := row.Scan(
		&record.ID, &record.Title, &record.Assignee, &record.Status, &record.SLADueAt,
		&nudgeSentAt, &breachNotified, &respondedAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.NudgeSentAt = nudgeSentAt.String
	record.BreachNotifiedAt = breachNotified.String
	record.RespondedAt = respondedAt.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

func collectOpsTasks(rows *sql.Rows) ([]*secondary.OpsTaskRecord, error) {
	var records []*secondary.OpsTaskRecord
	for rows.Next() {
		record, err := scanOpsTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ops task: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Ensure OpsTaskRepository implements the interface
var _ secondary.OpsTaskRepository = (*OpsTaskRepository)(nil)
