package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/chase/internal/ports/secondary"
)

// FailureRepository implements secondary.FailureRepository with
// SQLite. The table is append-only; pruning is external housekeeping.
type FailureRepository struct {
	db *sql.DB
}

// NewFailureRepository creates a new SQLite failure repository.
func NewFailureRepository(db *sql.DB) *FailureRepository {
	return &FailureRepository{db: db}
}

// Append persists a failure record.
func (r *FailureRepository) Append(ctx context.Context, record *secondary.FailureRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO failures (event_id, source, reason, detail, action, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		record.EventID, record.Source, record.Reason, record.Detail, record.Action, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append failure record: %w", err)
	}
	return nil
}

// CountSince counts failures recorded at or after the cutoff.
// Timestamps are RFC3339 strings, which order lexicographically.
func (r *FailureRepository) CountSince(ctx context.Context, cutoff string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM failures WHERE created_at >= ?", cutoff).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count failures: %w", err)
	}
	return count, nil
}

// ListRecent retrieves the most recent failures, newest first.
func (r *FailureRepository) ListRecent(ctx context.Context, limit int) ([]*secondary.FailureRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT event_id, source, reason, detail, action, created_at FROM failures ORDER BY created_at DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list failures: %w", err)
	}
	defer rows.Close()

	var records []*secondary.FailureRecord
	for rows.Next() {
		var detail sql.NullString
		record := &secondary.FailureRecord{}
		err := rows.Scan(&record.EventID, &record.Source, &record.Reason, &detail, &record.Action, &record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan failure record: %w", err)
		}
		record.Detail = detail.String
		records = append(records, record)
	}

	return records, rows.Err()
}

// Ensure FailureRepository implements the interface
var _ secondary.FailureRepository = (*FailureRepository)(nil)
