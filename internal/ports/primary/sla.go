package primary

import "context"

// SLAMonitor defines the primary port for operational tasks with a
// first-response deadline and their two-stage ladder (pre-deadline
// nudge, breach).
type SLAMonitor interface {
	// RunTick performs one monitor pass over unresponded tasks.
	RunTick(ctx context.Context) (*SLAReport, error)

	// CreateTask creates an operational task with an SLA deadline.
	CreateTask(ctx context.Context, req CreateTaskRequest) (*OpsTask, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, taskID string) (*OpsTask, error)

	// ListTasks lists tasks with optional filters.
	ListTasks(ctx context.Context, filters OpsTaskFilters) ([]*OpsTask, error)

	// Respond records the first response, ending SLA tracking.
	Respond(ctx context.Context, taskID string) (*OpsTask, error)
}

// OpsTask represents an operational task at the port boundary.
// Breached is computed from current time vs the SLA deadline; the
// breach notification has its own one-shot flag separate from the
// nudge flag.
type OpsTask struct {
	ID               string
	Title            string
	Assignee         string
	Status           string
	SLADueAt         string
	NudgeSentAt      string
	BreachNotifiedAt string
	RespondedAt      string
	Breached         bool
	CreatedAt        string
	UpdatedAt        string
}

// OpsTask status constants.
const (
	OpsTaskStatusOpen      = "open"
	OpsTaskStatusResponded = "responded"
	OpsTaskStatusDone      = "done"
)

// CreateTaskRequest carries the operational task creation inputs.
type CreateTaskRequest struct {
	Title      string
	Assignee   string
	SLAMinutes int
}

// OpsTaskFilters contains filter options for listing tasks.
type OpsTaskFilters struct {
	Status       string
	Assignee     string
	BreachedOnly bool
	Limit        int
}

// SLAReport summarizes one monitor tick.
type SLAReport struct {
	Scanned       int
	NudgesFired   int
	Breached      int
	BreachNotices int
	Failures      int
}
