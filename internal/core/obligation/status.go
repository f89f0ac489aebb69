// Package obligation contains the pure lifecycle logic for tracked
// commitments: statuses, the escalation stage ledger, priority
// derivation, and transition guards.
package obligation

// Obligation status constants.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusWaiting    = "waiting"
	StatusBlocked    = "blocked"
	StatusDone       = "done"
)

// ActiveStatuses returns the statuses the escalation scanner loads
// each tick. Blocked obligations are excluded until explicitly
// unblocked; done obligations are terminal.
func ActiveStatuses() []string {
	return []string{StatusOpen, StatusInProgress, StatusWaiting}
}

// ValidStatus reports whether s is a known obligation status.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusWaiting, StatusBlocked, StatusDone:
		return true
	}
	return false
}
