package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/chase/internal/ports/primary"
	"github.com/example/chase/internal/ports/secondary"
)

// FailureRecorderImpl implements the FailureService interface. The
// counters are safe for concurrent increment: the escalation scanner
// and the SLA monitor may record failures at the same time. Record
// never raises; a failure while recording a failure is written to the
// local log writer and swallowed.
type FailureRecorderImpl struct {
	repo  secondary.FailureRepository
	clock secondary.Clock
	logw  io.Writer

	mu       sync.Mutex
	counters map[string]int
}

// NewFailureRecorder creates a new FailureRecorder with injected
// dependencies. logw receives recorder-internal errors only.
func NewFailureRecorder(repo secondary.FailureRepository, clock secondary.Clock, logw io.Writer) *FailureRecorderImpl {
	return &FailureRecorderImpl{
		repo:     repo,
		clock:    clock,
		logw:     logw,
		counters: make(map[string]int),
	}
}

// Record captures a categorized failure. The recovery action is always
// fail-open: the triggering business operation proceeds regardless.
func (s *FailureRecorderImpl) Record(ctx context.Context, source, reason, detail string) {
	s.mu.Lock()
	s.counters[source+"/"+reason]++
	s.mu.Unlock()

	record := &secondary.FailureRecord{
		EventID:   uuid.NewString(),
		Source:    source,
		Reason:    reason,
		Detail:    detail,
		Action:    primary.RecoveryFailOpen,
		CreatedAt: s.clock.Now().Format(time.RFC3339),
	}
	if err := s.repo.Append(ctx, record); err != nil {
		fmt.Fprintf(s.logw, "failure recorder: could not append %s/%s: %v\n", source, reason, err)
	}
}

// Rate returns the count of failures within the window.
func (s *FailureRecorderImpl) Rate(ctx context.Context, windowHours int) (int, error) {
	cutoff := s.clock.Now().Add(-time.Duration(windowHours) * time.Hour).Format(time.RFC3339)
	count, err := s.repo.CountSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent failures: %w", err)
	}
	return count, nil
}

// Health classifies the recent failure rate: degraded at or above the
// threshold, critical at or above twice the threshold.
func (s *FailureRecorderImpl) Health(ctx context.Context, windowHours, threshold int) (string, error) {
	rate, err := s.Rate(ctx, windowHours)
	if err != nil {
		return "", err
	}
	switch {
	case rate >= 2*threshold:
		return primary.HealthCritical, nil
	case rate >= threshold:
		return primary.HealthDegraded, nil
	default:
		return primary.HealthHealthy, nil
	}
}

// RecentFailures lists the newest failure events.
func (s *FailureRecorderImpl) RecentFailures(ctx context.Context, limit int) ([]*primary.FailureEvent, error) {
	records, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list failures: %w", err)
	}

	events := make([]*primary.FailureEvent, len(records))
	for i, r := range records {
		events[i] = &primary.FailureEvent{
			EventID:   r.EventID,
			Source:    r.Source,
			Reason:    r.Reason,
			Detail:    r.Detail,
			Action:    r.Action,
			CreatedAt: r.CreatedAt,
		}
	}
	return events, nil
}

// Counts returns a snapshot of the in-memory counters keyed by
// "source/reason".
func (s *FailureRecorderImpl) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]int, len(s.counters))
	for k, v := range s.counters {
		snapshot[k] = v
	}
	return snapshot
}

// ClassifyReason categorizes an error for the failure log by
// inspecting its text. Unrecognized errors are ReasonUnknown.
func ClassifyReason(err error) string {
	if err == nil {
		return primary.ReasonUnknown
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") || strings.Contains(msg, "timed out"):
		return primary.ReasonTimeout
	case strings.Contains(msg, "connection") || strings.Contains(msg, "connect"):
		return primary.ReasonConnection
	case strings.Contains(msg, "query") || strings.Contains(msg, "syntax") || strings.Contains(msg, "no such column"):
		return primary.ReasonQuery
	case strings.Contains(msg, "database") || strings.Contains(msg, "locked") || strings.Contains(msg, "constraint"):
		return primary.ReasonDatabase
	default:
		return primary.ReasonUnknown
	}
}

// Ensure FailureRecorderImpl implements the interface
var _ primary.FailureService = (*FailureRecorderImpl)(nil)
