package secondary

import "context"

// Severity indicates how urgent a notification is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Notification is one message handed to the delivery channel.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
	Severity  Severity
}

// Notifier defines the secondary port for message delivery. The
// channel need not dedupe: at-most-once per escalation stage is
// guaranteed by the stage ledger, not by the channel.
type Notifier interface {
	// Deliver sends a notification. Implementations should respect
	// context cancellation; a timeout is a recoverable failure.
	Deliver(ctx context.Context, n Notification) error

	// Name returns the channel type for failure records.
	Name() string
}
