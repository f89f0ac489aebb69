package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/chase/internal/core/commitment"
	"github.com/example/chase/internal/core/obligation"
	"github.com/example/chase/internal/core/timeframe"
	"github.com/example/chase/internal/ctxutil"
	"github.com/example/chase/internal/ports/primary"
	"github.com/example/chase/internal/ports/secondary"
)

// ObligationServiceImpl implements the ObligationService interface.
type ObligationServiceImpl struct {
	repo     secondary.ObligationRepository
	notifier secondary.Notifier
	failures primary.FailureService
	clock    secondary.Clock
	matcher  *commitment.Matcher
	calendar timeframe.CalendarConfig
}

// NewObligationService creates a new ObligationService with injected
// dependencies.
func NewObligationService(
	repo secondary.ObligationRepository,
	notifier secondary.Notifier,
	failures primary.FailureService,
	clock secondary.Clock,
	matcher *commitment.Matcher,
	calendar timeframe.CalendarConfig,
) *ObligationServiceImpl {
	return &ObligationServiceImpl{
		repo:     repo,
		notifier: notifier,
		failures: failures,
		clock:    clock,
		matcher:  matcher,
		calendar: calendar,
	}
}

// DetectFromText runs the detection pipeline: pattern match, timeframe
// resolution, due-date calculation, duplicate suppression, creation.
func (s *ObligationServiceImpl) DetectFromText(ctx context.Context, req primary.DetectRequest) (*primary.DetectionResult, error) {
	if req.Assignee == "" {
		return nil, fmt.Errorf("assignee is required")
	}

	match := s.matcher.Match(req.Text)
	if !match.Matched {
		return &primary.DetectionResult{Detected: false}, nil
	}

	desc := timeframe.Resolve(req.Text)
	now := s.clock.Now()
	due := timeframe.DueDate(desc, now, s.calendar)

	// At most one open obligation per (assignee, source ref): a second
	// commitment in the same thread is suppressed, not an error.
	existing, err := s.repo.FindOpen(ctx, req.Assignee, req.SourceRef)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate obligation: %w", err)
	}
	if existing != nil {
		return &primary.DetectionResult{
			Detected:      true,
			Duplicate:     true,
			MatchedRules:  match.Rules,
			TimeframeKind: string(desc.Kind),
			Obligation:    recordToObligation(existing),
		}, nil
	}

	id, err := s.repo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate obligation ID: %w", err)
	}

	title := match.Promise
	if title == "" {
		title = truncate(req.Text, 120)
	}

	record := &secondary.ObligationRecord{
		ID:            id,
		Title:         title,
		Status:        obligation.StatusOpen,
		Assignee:      req.Assignee,
		DueAt:         due.Format(time.RFC3339),
		Priority:      obligation.PriorityFor(desc.Kind),
		SourceRef:     req.SourceRef,
		PromiseText:   match.Promise,
		TimeframeKind: string(desc.Kind),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create obligation: %w", err)
	}

	// Side effects are non-blocking: a failed acknowledgment or audit
	// entry never rolls back the obligation write.
	s.acknowledgeSource(ctx, record)
	s.audit(ctx, id, "created", fmt.Sprintf("detected from %s, due %s", req.SourceRef, record.DueAt))

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created obligation: %w", err)
	}

	return &primary.DetectionResult{
		Detected:      true,
		MatchedRules:  match.Rules,
		TimeframeKind: string(desc.Kind),
		Obligation:    recordToObligation(created),
	}, nil
}

// CreateObligation creates an obligation with an explicit due date.
func (s *ObligationServiceImpl) CreateObligation(ctx context.Context, req primary.CreateObligationRequest) (*primary.Obligation, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if req.Assignee == "" {
		return nil, fmt.Errorf("assignee is required")
	}
	if _, err := time.Parse(time.RFC3339, req.DueAt); err != nil {
		return nil, fmt.Errorf("invalid due date %q: %w", req.DueAt, err)
	}

	existing, err := s.repo.FindOpen(ctx, req.Assignee, req.SourceRef)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate obligation: %w", err)
	}
	if existing != nil && req.SourceRef != "" {
		return nil, fmt.Errorf("open obligation %s already exists for %s on %s", existing.ID, req.Assignee, req.SourceRef)
	}

	id, err := s.repo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate obligation ID: %w", err)
	}

	record := &secondary.ObligationRecord{
		ID:            id,
		Title:         req.Title,
		Status:        obligation.StatusOpen,
		Assignee:      req.Assignee,
		DueAt:         req.DueAt,
		Priority:      obligation.PriorityRoutine,
		SourceRef:     req.SourceRef,
		TimeframeKind: string(timeframe.KindDefault),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create obligation: %w", err)
	}

	s.audit(ctx, id, "created", "manual creation")

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created obligation: %w", err)
	}
	return recordToObligation(created), nil
}

// GetObligation retrieves an obligation by ID.
func (s *ObligationServiceImpl) GetObligation(ctx context.Context, obligationID string) (*primary.Obligation, error) {
	record, err := s.repo.GetByID(ctx, obligationID)
	if err != nil {
		return nil, err
	}
	return recordToObligation(record), nil
}

// ListObligations lists obligations with optional filters.
func (s *ObligationServiceImpl) ListObligations(ctx context.Context, filters primary.ObligationFilters) ([]*primary.Obligation, error) {
	records, err := s.repo.List(ctx, secondary.ObligationFilters{
		Status:   filters.Status,
		Assignee: filters.Assignee,
		Limit:    filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list obligations: %w", err)
	}

	obligations := make([]*primary.Obligation, len(records))
	for i, r := range records {
		obligations[i] = recordToObligation(r)
	}
	return obligations, nil
}

// Satisfy marks an obligation done. Allowed from any non-done state;
// stage flags are irrelevant and a subsequent scan tick ignores the
// obligation.
func (s *ObligationServiceImpl) Satisfy(ctx context.Context, req primary.SatisfyRequest) (*primary.Obligation, error) {
	record, err := s.repo.GetByID(ctx, req.ObligationID)
	if err != nil {
		return nil, fmt.Errorf("obligation not found: %w", err)
	}

	if err := obligation.CanSatisfy(record.ID, record.Status).Error(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, record.ID, obligation.StatusDone); err != nil {
		return nil, fmt.Errorf("failed to mark obligation done: %w", err)
	}
	if req.Note != "" {
		if err := s.repo.SetResolution(ctx, record.ID, req.Note); err != nil {
			return nil, fmt.Errorf("failed to record resolution: %w", err)
		}
	}

	s.audit(ctx, record.ID, "satisfied", req.Note)

	updated, err := s.repo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated obligation: %w", err)
	}
	return recordToObligation(updated), nil
}

// ExtendDeadline moves the due date with a reason.
func (s *ObligationServiceImpl) ExtendDeadline(ctx context.Context, req primary.ExtendRequest) (*primary.Obligation, error) {
	record, err := s.repo.GetByID(ctx, req.ObligationID)
	if err != nil {
		return nil, fmt.Errorf("obligation not found: %w", err)
	}

	if err := obligation.CanExtend(record.ID, record.Status).Error(); err != nil {
		return nil, err
	}
	if _, err := time.Parse(time.RFC3339, req.NewDueAt); err != nil {
		return nil, fmt.Errorf("invalid due date %q: %w", req.NewDueAt, err)
	}

	if err := s.repo.SetDue(ctx, record.ID, req.NewDueAt); err != nil {
		return nil, fmt.Errorf("failed to extend deadline: %w", err)
	}

	s.audit(ctx, record.ID, "extended", fmt.Sprintf("new due %s: %s", req.NewDueAt, req.Reason))

	updated, err := s.repo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated obligation: %w", err)
	}
	return recordToObligation(updated), nil
}

// TransferOwnership reassigns an obligation in place. Stage flags are
// preserved so the new owner is not re-sent stages that already fired.
func (s *ObligationServiceImpl) TransferOwnership(ctx context.Context, req primary.TransferRequest) (*primary.Obligation, error) {
	record, err := s.repo.GetByID(ctx, req.ObligationID)
	if err != nil {
		return nil, fmt.Errorf("obligation not found: %w", err)
	}

	if err := obligation.CanTransfer(record.ID, record.Status, req.NewAssignee).Error(); err != nil {
		return nil, err
	}

	if err := s.repo.Reassign(ctx, record.ID, req.NewAssignee); err != nil {
		return nil, fmt.Errorf("failed to transfer obligation: %w", err)
	}

	s.audit(ctx, record.ID, "transferred", fmt.Sprintf("%s -> %s", record.Assignee, req.NewAssignee))

	// Ownership-transfer notice is best-effort, like all delivery.
	if err := s.notifier.Deliver(ctx, secondary.Notification{
		Recipient: req.NewAssignee,
		Subject:   fmt.Sprintf("Obligation %s transferred to you", record.ID),
		Body:      fmt.Sprintf("%s (due %s)", record.Title, record.DueAt),
		Severity:  secondary.SeverityInfo,
	}); err != nil {
		s.failures.Record(ctx, "obligation_transfer", ClassifyReason(err), err.Error())
	}

	updated, err := s.repo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated obligation: %w", err)
	}
	return recordToObligation(updated), nil
}

// acknowledgeSource drops a lightweight tracking marker on the
// originating thread. Best-effort only.
func (s *ObligationServiceImpl) acknowledgeSource(ctx context.Context, record *secondary.ObligationRecord) {
	if record.SourceRef == "" {
		return
	}
	err := s.notifier.Deliver(ctx, secondary.Notification{
		Recipient: record.SourceRef,
		Subject:   fmt.Sprintf("Tracking %s", record.ID),
		Body:      fmt.Sprintf("Following up with %s by %s", record.Assignee, record.DueAt),
		Severity:  secondary.SeverityInfo,
	})
	if err != nil {
		s.failures.Record(ctx, "obligation_create", ClassifyReason(err), err.Error())
	}
}

// audit appends an audit entry without blocking the caller's write.
func (s *ObligationServiceImpl) audit(ctx context.Context, entityID, action, detail string) {
	actor := ctxutil.ActorFromContext(ctx)
	if err := s.repo.AppendAudit(ctx, entityID, actor, action, detail); err != nil {
		s.failures.Record(ctx, "obligation_audit", ClassifyReason(err), err.Error())
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// recordToObligation maps a persistence record to the boundary entity,
// expanding the stage columns into the ledger view.
func recordToObligation(r *secondary.ObligationRecord) *primary.Obligation {
	return &primary.Obligation{
		ID:            r.ID,
		Title:         r.Title,
		Status:        r.Status,
		Assignee:      r.Assignee,
		DueAt:         r.DueAt,
		Priority:      r.Priority,
		SourceRef:     r.SourceRef,
		PromiseText:   r.PromiseText,
		TimeframeKind: r.TimeframeKind,
		Resolution:    r.Resolution,
		Stages: []primary.StageState{
			{Name: string(obligation.StageReminder24h), Sent: r.Reminder24hAt != "", SentAt: r.Reminder24hAt},
			{Name: string(obligation.StageReminder4h), Sent: r.Reminder4hAt != "", SentAt: r.Reminder4hAt},
			{Name: string(obligation.StageReminder1h), Sent: r.Reminder1hAt != "", SentAt: r.Reminder1hAt},
			{Name: string(obligation.StageOverdue), Sent: r.OverdueAt != "", SentAt: r.OverdueAt},
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Ensure ObligationServiceImpl implements the interface
var _ primary.ObligationService = (*ObligationServiceImpl)(nil)
