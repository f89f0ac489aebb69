package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/chase/internal/ports/primary"
	"github.com/example/chase/internal/ports/secondary"
)

// SLAMonitorImpl implements the SLAMonitor interface: a two-stage
// ladder (pre-deadline nudge, breach notice) over operational tasks,
// with the same per-stage idempotency discipline as the escalation
// scanner.
type SLAMonitorImpl struct {
	repo      secondary.OpsTaskRepository
	notifier  secondary.Notifier
	failures  primary.FailureService
	clock     secondary.Clock
	nudgeLead time.Duration
}

// NewSLAMonitor creates a new SLAMonitor with injected dependencies.
func NewSLAMonitor(
	repo secondary.OpsTaskRepository,
	notifier secondary.Notifier,
	failures primary.FailureService,
	clock secondary.Clock,
	nudgeLead time.Duration,
) *SLAMonitorImpl {
	return &SLAMonitorImpl{
		repo:      repo,
		notifier:  notifier,
		failures:  failures,
		clock:     clock,
		nudgeLead: nudgeLead,
	}
}

// RunTick performs one monitor pass over unresponded tasks. Breach is
// a computed property of current time vs the deadline and is counted
// on every tick; the breach notification is a one-shot stage with its
// own flag.
func (s *SLAMonitorImpl) RunTick(ctx context.Context) (*primary.SLAReport, error) {
	records, err := s.repo.ListUnresponded(ctx)
	if err != nil {
		s.failures.Record(ctx, "sla_scan", ClassifyReason(err), err.Error())
		return nil, fmt.Errorf("failed to load unresponded tasks: %w", err)
	}

	report := &primary.SLAReport{}
	now := s.clock.Now()

	for _, record := range records {
		report.Scanned++
		s.processTask(ctx, record, now, report)
	}

	return report, nil
}

func (s *SLAMonitorImpl) processTask(ctx context.Context, record *secondary.OpsTaskRecord, now time.Time, report *primary.SLAReport) {
	due, err := time.Parse(time.RFC3339, record.SLADueAt)
	if err != nil {
		s.failures.Record(ctx, "sla_scan", primary.ReasonUnknown,
			fmt.Sprintf("%s: unparseable SLA deadline %q", record.ID, record.SLADueAt))
		report.Failures++
		return
	}

	remaining := due.Sub(now)

	if remaining > 0 {
		if remaining <= s.nudgeLead && record.NudgeSentAt == "" {
			s.fireNudge(ctx, record, remaining, now, report)
		}
		return
	}

	report.Breached++
	if record.BreachNotifiedAt == "" {
		s.fireBreach(ctx, record, -remaining, now, report)
	}
}

func (s *SLAMonitorImpl) fireNudge(ctx context.Context, record *secondary.OpsTaskRecord, remaining time.Duration, now time.Time, report *primary.SLAReport) {
	err := s.notifier.Deliver(ctx, secondary.Notification{
		Recipient: record.Assignee,
		Subject:   fmt.Sprintf("SLA nudge: %s", record.ID),
		Body:      fmt.Sprintf("%s — first response due in %s", record.Title, remaining.Round(time.Minute)),
		Severity:  secondary.SeverityWarning,
	})
	if err != nil {
		s.failures.Record(ctx, "sla_notify", ClassifyReason(err), fmt.Sprintf("%s nudge: %v", record.ID, err))
		report.Failures++
		return
	}

	if err := s.repo.MarkNudge(ctx, record.ID, now.Format(time.RFC3339)); err != nil {
		s.failures.Record(ctx, "sla_flag", ClassifyReason(err), fmt.Sprintf("%s nudge: %v", record.ID, err))
		report.Failures++
		return
	}
	report.NudgesFired++
}

func (s *SLAMonitorImpl) fireBreach(ctx context.Context, record *secondary.OpsTaskRecord, overdueBy time.Duration, now time.Time, report *primary.SLAReport) {
	err := s.notifier.Deliver(ctx, secondary.Notification{
		Recipient: record.Assignee,
		Subject:   fmt.Sprintf("SLA BREACH: %s", record.ID),
		Body:      fmt.Sprintf("%s — first response deadline missed by %s", record.Title, overdueBy.Round(time.Minute)),
		Severity:  secondary.SeverityCritical,
	})
	if err != nil {
		s.failures.Record(ctx, "sla_notify", ClassifyReason(err), fmt.Sprintf("%s breach: %v", record.ID, err))
		report.Failures++
		return
	}

	if err := s.repo.MarkBreachNotified(ctx, record.ID, now.Format(time.RFC3339)); err != nil {
		s.failures.Record(ctx, "sla_flag", ClassifyReason(err), fmt.Sprintf("%s breach: %v", record.ID, err))
		report.Failures++
		return
	}
	report.BreachNotices++
}

// CreateTask creates an operational task with a first-response SLA.
func (s *SLAMonitorImpl) CreateTask(ctx context.Context, req primary.CreateTaskRequest) (*primary.OpsTask, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if req.Assignee == "" {
		return nil, fmt.Errorf("assignee is required")
	}
	if req.SLAMinutes <= 0 {
		return nil, fmt.Errorf("sla minutes must be positive")
	}

	id, err := s.repo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate task ID: %w", err)
	}

	due := s.clock.Now().Add(time.Duration(req.SLAMinutes) * time.Minute)
	record := &secondary.OpsTaskRecord{
		ID:       id,
		Title:    req.Title,
		Assignee: req.Assignee,
		Status:   primary.OpsTaskStatusOpen,
		SLADueAt: due.Format(time.RFC3339),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created task: %w", err)
	}
	return s.recordToTask(created), nil
}

// GetTask retrieves a task by ID.
func (s *SLAMonitorImpl) GetTask(ctx context.Context, taskID string) (*primary.OpsTask, error) {
	record, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return s.recordToTask(record), nil
}

// ListTasks lists tasks with optional filters.
func (s *SLAMonitorImpl) ListTasks(ctx context.Context, filters primary.OpsTaskFilters) ([]*primary.OpsTask, error) {
	records, err := s.repo.List(ctx, secondary.OpsTaskFilters{
		Status:   filters.Status,
		Assignee: filters.Assignee,
		Limit:    filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var tasks []*primary.OpsTask
	for _, r := range records {
		task := s.recordToTask(r)
		if filters.BreachedOnly && !task.Breached {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Respond records the first response, ending SLA tracking for the
// task.
func (s *SLAMonitorImpl) Respond(ctx context.Context, taskID string) (*primary.OpsTask, error) {
	record, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("task not found: %w", err)
	}
	if record.RespondedAt != "" {
		return nil, fmt.Errorf("task %s already responded at %s", taskID, record.RespondedAt)
	}

	if err := s.repo.MarkResponded(ctx, taskID, s.clock.Now().Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("failed to record response: %w", err)
	}

	updated, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated task: %w", err)
	}
	return s.recordToTask(updated), nil
}

// Helper methods

func (s *SLAMonitorImpl) recordToTask(r *secondary.OpsTaskRecord) *primary.OpsTask {
	task := &primary.OpsTask{
		ID:               r.ID,
		Title:            r.Title,
		Assignee:         r.Assignee,
		Status:           r.Status,
		SLADueAt:         r.SLADueAt,
		NudgeSentAt:      r.NudgeSentAt,
		BreachNotifiedAt: r.BreachNotifiedAt,
		RespondedAt:      r.RespondedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.RespondedAt == "" {
		if due, err := time.Parse(time.RFC3339, r.SLADueAt); err == nil {
			task.Breached = s.clock.Now().After(due)
		}
	}
	return task
}

// Ensure SLAMonitorImpl implements the interface
var _ primary.SLAMonitor = (*SLAMonitorImpl)(nil)
