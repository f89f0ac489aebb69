package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/example/chase/internal/ports/primary"
)

func TestRecordAppendsAndCounts(t *testing.T) {
	repo := newMockFailureRepository()
	recorder := NewFailureRecorder(repo, fixedClock{now: testNow}, discard{})
	ctx := context.Background()

	recorder.Record(ctx, "escalation_notify", primary.ReasonConnection, "connection refused")
	recorder.Record(ctx, "escalation_notify", primary.ReasonConnection, "connection refused")
	recorder.Record(ctx, "sla_scan", primary.ReasonTimeout, "deadline exceeded")

	counts := recorder.Counts()
	if counts["escalation_notify/connection_error"] != 2 {
		t.Errorf("counter = %d, want 2", counts["escalation_notify/connection_error"])
	}
	if counts["sla_scan/timeout"] != 1 {
		t.Errorf("counter = %d, want 1", counts["sla_scan/timeout"])
	}

	if repo.len() != 3 {
		t.Errorf("persisted %d records, want 3", repo.len())
	}

	events, err := recorder.RecentFailures(ctx, 10)
	if err != nil {
		t.Fatalf("RecentFailures failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for _, e := range events {
		if e.Action != primary.RecoveryFailOpen {
			t.Errorf("Action = %q, want fail_open", e.Action)
		}
		if e.EventID == "" {
			t.Error("event should carry a generated ID")
		}
	}
}

func TestRecordSwallowsAppendErrors(t *testing.T) {
	repo := newMockFailureRepository()
	repo.appendErr = errors.New("disk full")
	var log bytes.Buffer
	recorder := NewFailureRecorder(repo, fixedClock{now: testNow}, &log)

	// Must not panic or surface the error.
	recorder.Record(context.Background(), "escalation_notify", primary.ReasonUnknown, "boom")

	if log.Len() == 0 {
		t.Error("append error should be written to the local log")
	}
	if counts := recorder.Counts(); counts["escalation_notify/unknown"] != 1 {
		t.Error("counter should increment even when persistence fails")
	}
}

func TestHealthThresholds(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		want     string
	}{
		{"quiet", 0, primary.HealthHealthy},
		{"below threshold", 9, primary.HealthHealthy},
		{"at threshold", 10, primary.HealthDegraded},
		{"between", 15, primary.HealthDegraded},
		{"at double", 20, primary.HealthCritical},
		{"beyond", 31, primary.HealthCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockFailureRepository()
			recorder := NewFailureRecorder(repo, fixedClock{now: testNow}, discard{})
			ctx := context.Background()

			for i := 0; i < tt.failures; i++ {
				recorder.Record(ctx, "sla_notify", primary.ReasonConnection, fmt.Sprintf("failure %d", i))
			}

			got, err := recorder.Health(ctx, 24, 10)
			if err != nil {
				t.Fatalf("Health failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Health(%d failures) = %q, want %q", tt.failures, got, tt.want)
			}
		})
	}
}

func TestRecordConcurrentSafe(t *testing.T) {
	repo := newMockFailureRepository()
	recorder := NewFailureRecorder(repo, fixedClock{now: testNow}, discard{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				recorder.Record(ctx, "escalation_notify", primary.ReasonTimeout, "timed out")
			}
		}()
	}
	wg.Wait()

	if got := recorder.Counts()["escalation_notify/timeout"]; got != 1000 {
		t.Errorf("counter = %d, want 1000", got)
	}
	if repo.len() != 1000 {
		t.Errorf("persisted %d records, want 1000", repo.len())
	}
}

func TestClassifyReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, primary.ReasonUnknown},
		{"timeout", errors.New("context deadline exceeded"), primary.ReasonTimeout},
		{"timed out", errors.New("dial timed out"), primary.ReasonTimeout},
		{"connection", errors.New("connection refused"), primary.ReasonConnection},
		{"query", errors.New("no such column: due_at"), primary.ReasonQuery},
		{"syntax", errors.New("syntax error near SELECT"), primary.ReasonQuery},
		{"locked", errors.New("database is locked"), primary.ReasonDatabase},
		{"constraint", errors.New("UNIQUE constraint failed"), primary.ReasonDatabase},
		{"other", errors.New("something odd"), primary.ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyReason(tt.err); got != tt.want {
				t.Errorf("ClassifyReason(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
