// Package secondary defines the secondary ports (driven adapters) for
// the application. These are the interfaces through which the
// application drives external systems.
package secondary

import "context"

// ObligationRepository defines the secondary port for obligation
// persistence.
type ObligationRepository interface {
	// Create persists a new obligation.
	Create(ctx context.Context, obligation *ObligationRecord) error

	// GetByID retrieves an obligation by its ID.
	GetByID(ctx context.Context, id string) (*ObligationRecord, error)

	// FindOpen returns the open or in-progress obligation for an
	// (assignee, source ref) pair, or nil if none exists. Used for
	// duplicate suppression before creation.
	FindOpen(ctx context.Context, assignee, sourceRef string) (*ObligationRecord, error)

	// ListByStatuses retrieves obligations in any of the given statuses,
	// ordered by due time.
	ListByStatuses(ctx context.Context, statuses []string) ([]*ObligationRecord, error)

	// List retrieves obligations matching the given filters.
	List(ctx context.Context, filters ObligationFilters) ([]*ObligationRecord, error)

	// UpdateStatus updates the status of an obligation.
	UpdateStatus(ctx context.Context, id, status string) error

	// MarkStage records the sent-at timestamp for an escalation stage.
	// Stage names are validated against the known stage enumeration.
	MarkStage(ctx context.Context, id, stage, sentAt string) error

	// SetDue updates the due timestamp.
	SetDue(ctx context.Context, id, dueAt string) error

	// Reassign changes the assignee, preserving stage flags.
	Reassign(ctx context.Context, id, assignee string) error

	// SetResolution records the resolution note.
	SetResolution(ctx context.Context, id, resolution string) error

	// AppendAudit records an audit entry for an obligation mutation.
	AppendAudit(ctx context.Context, entityID, actor, action, detail string) error

	// GetNextID returns the next available obligation ID.
	GetNextID(ctx context.Context) (string, error)
}

// ObligationRecord represents an obligation as stored in persistence.
// Timestamps are RFC3339 strings; unset stage timestamps are empty.
type ObligationRecord struct {
	ID            string
	Title         string
	Status        string
	Assignee      string
	DueAt         string
	Priority      int
	SourceRef     string
	PromiseText   string
	TimeframeKind string
	Resolution    string
	Reminder24hAt string
	Reminder4hAt  string
	Reminder1hAt  string
	OverdueAt     string
	CreatedAt     string
	UpdatedAt     string
}

// ObligationFilters contains filter options for querying obligations.
type ObligationFilters struct {
	Status   string
	Assignee string
	Limit    int
}

// OpsTaskRepository defines the secondary port for operational task
// persistence (tasks carrying a first-response SLA deadline).
type OpsTaskRepository interface {
	// Create persists a new operational task.
	Create(ctx context.Context, task *OpsTaskRecord) error

	// GetByID retrieves a task by its ID.
	GetByID(ctx context.Context, id string) (*OpsTaskRecord, error)

	// ListUnresponded retrieves tasks still awaiting a first response.
	ListUnresponded(ctx context.Context) ([]*OpsTaskRecord, error)

	// List retrieves tasks matching the given filters.
	List(ctx context.Context, filters OpsTaskFilters) ([]*OpsTaskRecord, error)

	// MarkNudge records the pre-deadline nudge send time.
	MarkNudge(ctx context.Context, id, sentAt string) error

	// MarkBreachNotified records the breach notification send time.
	MarkBreachNotified(ctx context.Context, id, sentAt string) error

	// MarkResponded records the first response and ends SLA tracking.
	MarkResponded(ctx context.Context, id, respondedAt string) error

	// GetNextID returns the next available task ID.
	GetNextID(ctx context.Context) (string, error)
}

// OpsTaskRecord represents an operational task as stored in
// persistence.
type OpsTaskRecord struct {
	ID               string
	Title            string
	Assignee         string
	Status           string
	SLADueAt         string
	NudgeSentAt      string
	BreachNotifiedAt string
	RespondedAt      string
	CreatedAt        string
	UpdatedAt        string
}

// OpsTaskFilters contains filter options for querying operational
// tasks.
type OpsTaskFilters struct {
	Status   string
	Assignee string
	Limit    int
}

// FailureRepository defines the secondary port for the append-only
// failure log.
type FailureRepository interface {
	// Append persists a failure record.
	Append(ctx context.Context, record *FailureRecord) error

	// CountSince counts failures recorded at or after the cutoff.
	CountSince(ctx context.Context, cutoff string) (int, error)

	// ListRecent retrieves the most recent failures, newest first.
	ListRecent(ctx context.Context, limit int) ([]*FailureRecord, error)
}

// FailureRecord represents one captured failure. Action records the
// chosen recovery; the engine always fails open.
type FailureRecord struct {
	EventID   string
	Source    string
	Reason    string
	Detail    string
	Action    string
	CreatedAt string
}
