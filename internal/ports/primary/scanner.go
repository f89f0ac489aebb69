package primary

import "context"

// EscalationScanner defines the primary port for the recurring
// follow-up scan. A tick loads every active obligation, fires each
// crossed, unset escalation stage, and isolates per-obligation
// failures.
type EscalationScanner interface {
	// RunTick performs one scan pass. It only returns an error when the
	// obligation list itself cannot be loaded; per-obligation failures
	// are captured in the report and the failure log.
	RunTick(ctx context.Context) (*ScanReport, error)
}

// ScanReport summarizes one scan tick.
type ScanReport struct {
	Scanned     int
	StagesFired int
	Failures    int
	Fired       []FiredStage
}

// FiredStage identifies one stage notification sent during a tick.
type FiredStage struct {
	ObligationID string
	Stage        string
	Recipient    string
}
