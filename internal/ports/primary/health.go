package primary

import "context"

// FailureService defines the primary port for the failure recorder.
// Record never returns an error: a failure while recording a failure
// is logged locally and swallowed, and the triggering business action
// always proceeds (fail-open).
type FailureService interface {
	// Record captures a categorized failure from a subsystem.
	Record(ctx context.Context, source, reason, detail string)

	// Rate returns the count of failures within the window.
	Rate(ctx context.Context, windowHours int) (int, error)

	// Health classifies the recent failure rate against a threshold.
	Health(ctx context.Context, windowHours, threshold int) (string, error)

	// RecentFailures lists the newest failure events.
	RecentFailures(ctx context.Context, limit int) ([]*FailureEvent, error)

	// Counts returns a snapshot of in-memory counters keyed by
	// "source/reason".
	Counts() map[string]int
}

// FailureEvent represents a captured failure at the port boundary.
type FailureEvent struct {
	EventID   string
	Source    string
	Reason    string
	Detail    string
	Action    string
	CreatedAt string
}

// Failure reason categories.
const (
	ReasonTimeout    = "timeout"
	ReasonConnection = "connection_error"
	ReasonQuery      = "query_error"
	ReasonDatabase   = "database_error"
	ReasonUnknown    = "unknown"
)

// Health classifications.
const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
	HealthCritical = "critical"
)

// RecoveryFailOpen is the only recovery action this engine takes: the
// triggering operation proceeds despite the monitoring failure.
const RecoveryFailOpen = "fail_open"
