package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/chase/internal/core/obligation"
	"github.com/example/chase/internal/ports/primary"
	"github.com/example/chase/internal/ports/secondary"
)

// EscalationScannerImpl implements the EscalationScanner interface.
// Each tick is strictly sequential: obligations are processed one at a
// time in list order, and a failure on one never aborts the scan.
type EscalationScannerImpl struct {
	repo              secondary.ObligationRepository
	notifier          secondary.Notifier
	failures          primary.FailureService
	clock             secondary.Clock
	ladder            []obligation.Threshold
	escalationChannel string
}

// NewEscalationScanner creates a new EscalationScanner with injected
// dependencies.
func NewEscalationScanner(
	repo secondary.ObligationRepository,
	notifier secondary.Notifier,
	failures primary.FailureService,
	clock secondary.Clock,
	ladder []obligation.Threshold,
	escalationChannel string,
) *EscalationScannerImpl {
	return &EscalationScannerImpl{
		repo:              repo,
		notifier:          notifier,
		failures:          failures,
		clock:             clock,
		ladder:            ladder,
		escalationChannel: escalationChannel,
	}
}

// RunTick performs one scan pass over all active obligations.
func (s *EscalationScannerImpl) RunTick(ctx context.Context) (*primary.ScanReport, error) {
	records, err := s.repo.ListByStatuses(ctx, obligation.ActiveStatuses())
	if err != nil {
		s.failures.Record(ctx, "escalation_scan", ClassifyReason(err), err.Error())
		return nil, fmt.Errorf("failed to load active obligations: %w", err)
	}

	report := &primary.ScanReport{}
	now := s.clock.Now()

	for _, record := range records {
		report.Scanned++
		s.processObligation(ctx, record, now, report)
	}

	return report, nil
}

// processObligation fires every crossed, unset stage for one
// obligation. A process resuming after downtime may fire several
// stages in the same pass; each is attempted and flagged
// independently, so a failure sending one stage does not prevent the
// others.
func (s *EscalationScannerImpl) processObligation(ctx context.Context, record *secondary.ObligationRecord, now time.Time, report *primary.ScanReport) {
	due, err := time.Parse(time.RFC3339, record.DueAt)
	if err != nil {
		s.failures.Record(ctx, "escalation_scan", primary.ReasonUnknown,
			fmt.Sprintf("%s: unparseable due date %q", record.ID, record.DueAt))
		report.Failures++
		return
	}

	ledger := ledgerFromRecord(record)
	remaining := due.Sub(now)
	fired := 0

	for _, stage := range obligation.DueStages(s.ladder, ledger, remaining) {
		if err := s.fireStage(ctx, record, stage, remaining); err != nil {
			// Flag stays unset; the stage retries next tick.
			s.failures.Record(ctx, "escalation_notify", ClassifyReason(err), fmt.Sprintf("%s %s: %v", record.ID, stage, err))
			report.Failures++
			continue
		}

		// The flag is set only after the delivery attempt has been
		// dispatched. A crash between dispatch and flag means a
		// duplicate notification next tick, never a silent drop.
		if err := s.repo.MarkStage(ctx, record.ID, string(stage), now.Format(time.RFC3339)); err != nil {
			s.failures.Record(ctx, "escalation_flag", ClassifyReason(err), fmt.Sprintf("%s %s: %v", record.ID, stage, err))
			report.Failures++
			continue
		}

		fired++
		report.StagesFired++
		report.Fired = append(report.Fired, primary.FiredStage{
			ObligationID: record.ID,
			Stage:        string(stage),
			Recipient:    record.Assignee,
		})
	}

	// After the first reminder an open obligation moves to waiting so
	// the next tick does not treat it as untouched.
	if fired > 0 && record.Status == obligation.StatusOpen {
		if err := s.repo.UpdateStatus(ctx, record.ID, obligation.StatusWaiting); err != nil {
			s.failures.Record(ctx, "escalation_scan", ClassifyReason(err), fmt.Sprintf("%s: %v", record.ID, err))
			report.Failures++
		}
	}
}

// fireStage delivers the notification(s) for one stage. The overdue
// stage goes to the supervisory channel and to the assignee; both must
// dispatch before the flag is set.
func (s *EscalationScannerImpl) fireStage(ctx context.Context, record *secondary.ObligationRecord, stage obligation.Stage, remaining time.Duration) error {
	switch stage {
	case obligation.StageOverdue:
		overdueBy := (-remaining).Round(time.Minute)
		if err := s.notifier.Deliver(ctx, secondary.Notification{
			Recipient: s.escalationChannel,
			Subject:   fmt.Sprintf("OVERDUE: %s (%s)", record.ID, record.Assignee),
			Body:      fmt.Sprintf("%s — due %s, overdue by %s", record.Title, record.DueAt, overdueBy),
			Severity:  secondary.SeverityCritical,
		}); err != nil {
			return err
		}
		return s.notifier.Deliver(ctx, secondary.Notification{
			Recipient: record.Assignee,
			Subject:   fmt.Sprintf("Overdue: %s", record.ID),
			Body:      fmt.Sprintf("%s was due %s and has been escalated", record.Title, record.DueAt),
			Severity:  secondary.SeverityCritical,
		})

	default:
		return s.notifier.Deliver(ctx, secondary.Notification{
			Recipient: record.Assignee,
			Subject:   fmt.Sprintf("Reminder: %s due %s", record.ID, record.DueAt),
			Body:      fmt.Sprintf("%s — %s remaining", record.Title, remaining.Round(time.Minute)),
			Severity:  reminderSeverity(stage),
		})
	}
}

func reminderSeverity(stage obligation.Stage) secondary.Severity {
	if stage == obligation.StageReminder1h {
		return secondary.SeverityWarning
	}
	return secondary.SeverityInfo
}

// ledgerFromRecord rebuilds the stage ledger from the persisted
// sent-at columns.
func ledgerFromRecord(r *secondary.ObligationRecord) obligation.Ledger {
	ledger := obligation.NewLedger()
	mark := func(stage obligation.Stage, sentAt string) {
		if sentAt == "" {
			return
		}
		at, err := time.Parse(time.RFC3339, sentAt)
		if err != nil {
			at = time.Time{}
		}
		// Mark only fails for unknown or re-marked stages; neither can
		// happen for a fresh ledger and the fixed enumeration.
		_ = ledger.Mark(stage, at)
	}
	mark(obligation.StageReminder24h, r.Reminder24hAt)
	mark(obligation.StageReminder4h, r.Reminder4hAt)
	mark(obligation.StageReminder1h, r.Reminder1hAt)
	mark(obligation.StageOverdue, r.OverdueAt)
	return ledger
}

// Ensure EscalationScannerImpl implements the interface
var _ primary.EscalationScanner = (*EscalationScannerImpl)(nil)
