package sqlite_test

import (
	"context"
	"strings"
	"testing"

	"github.com/example/chase/internal/adapters/sqlite"
	"github.com/example/chase/internal/ports/secondary"
)

func TestObligationCreateAndGet(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewObligationRepository(testDB)
	ctx := context.Background()

	record := &secondary.ObligationRecord{
		ID:            "OBL-001",
		Title:         "send the summary",
		Status:        "open",
		Assignee:      "dana",
		DueAt:         "2026-03-02T17:00:00Z",
		Priority:      3,
		SourceRef:     "thread-42",
		PromiseText:   "I'll send the summary by 5pm",
		TimeframeKind: "specific_time",
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "OBL-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != record.Title || got.Assignee != "dana" || got.Priority != 3 {
		t.Errorf("got %+v", got)
	}
	if got.Reminder24hAt != "" || got.OverdueAt != "" {
		t.Error("stage flags should start empty")
	}
	if got.CreatedAt == "" {
		t.Error("created_at should be populated")
	}
}

func TestObligationGetByIDNotFound(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewObligationRepository(testDB)

	if _, err := repo.GetByID(context.Background(), "OBL-999"); err == nil {
		t.Fatal("expected error for missing obligation")
	}
}

func TestObligationFindOpen(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewObligationRepository(testDB)
	ctx := context.Background()

	seedObligation(t, testDB, "OBL-001", "dana", "open", "2026-03-02T17:00:00Z")

	got, err := repo.FindOpen(ctx, "dana", "thread-OBL-001")
	if err != nil {
		t.Fatalf("FindOpen failed: %v", err)
	}
	if got == nil || got.ID != "OBL-001" {
		t.Fatalf("FindOpen = %v, want OBL-001", got)
	}

	// No match is nil, not an error.
	got, err = repo.FindOpen(ctx, "dana", "thread-other")
	if err != nil {
		t.Fatalf("FindOpen failed: %v", err)
	}
	if got != nil {
		t.Errorf("FindOpen = %v, want nil for unknown source", got)
	}

	// A done obligation does not block a new one.
	if err := repo.UpdateStatus(ctx, "OBL-001", "done"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	got, err = repo.FindOpen(ctx, "dana", "thread-OBL-001")
	if err != nil {
		t.Fatalf("FindOpen failed: %v", err)
	}
	if got != nil {
		t.Errorf("FindOpen = %v, want nil once the obligation is done", got)
	}
}

func TestObligationListByStatuses(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewObligationRepository(testDB)
	ctx := context.Background()

	seedObligation(t, testDB, "OBL-001", "dana", "open", "2026-03-03T09:00:00Z")
	seedObligation(t, testDB, "OBL-002", "sam", "waiting", "2026-03-02T17:00:00Z")
	seedObligation(t, testDB, "OBL-003", "dana", "done", "2026-03-01T09:00:00Z")
	seedObligation(t, testDB, "OBL-004", "kim", "blocked", "2026-03-02T12:00:00Z")

	got, err := repo.ListByStatuses(ctx, []string{"open", "in_progress", "waiting"})
	if err != nil {
		t.Fatalf("ListByStatuses failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	// Ordered by due time ascending.
	if got[0].ID != "OBL-002" || got[1].ID != "OBL-001" {
		t.Errorf("order = [%s %s], want [OBL-002 OBL-001]", got[0].ID, got[1].ID)
	}
}

func TestObligationMarkStageIdempotent(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewObligationRepository(testDB)
	ctx := context.Background()

	seedObligation(t, testDB, "OBL-001", "dana", "open", "2026-03-02T17:00:00Z")

	if err := repo.MarkStage(ctx, "OBL-001", "reminder_24h_sent", "2026-03-01T17:00:00Z"); err != nil {
		t.Fatalf("MarkStage failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, "OBL-001")
	if got.Reminder24hAt != "2026-03-01T17:00:00Z" {
		t.Errorf("Reminder24hAt = %q", got.Reminder24hAt)
	}

	// The NULL guard makes a second mark fail instead of overwriting.
	err := repo.MarkStage(ctx, "OBL-001", "reminder_24h_sent", "2026-03-01T18:00:00Z")
	if err == nil || !strings.Contains(err.Error(), "already marked") {
		t.Errorf("second MarkStage err = %v, want already-marked error", err)
	}
	got, _ = repo.GetByID(ctx, "OBL-001")
	if got.Reminder24hAt != "2026-03-01T17:00:00Z" {
		t.Errorf("Reminder24hAt overwritten to %q", got.Reminder24hAt)
	}
}

func TestObligationMarkStageUnknownStage(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewObligationRepository(testDB)

	seedObligation(t, testDB, "OBL-001", "dana", "open", "2026-03-02T17:00:00Z")

	err := repo.MarkStage(context.Background(), "OBL-001", "reminder_2h_sent", "2026-03-01T17:00:00Z")
	if err == nil || !strings.Contains(err.Error(), "unknown escalation stage") {
		t.Errorf("err = %v, want unknown stage error", err)
	}
}

func TestObligationReassignPreservesStages(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewObligationRepository(testDB)
	ctx := context.Background()

	seedObligation(t, testDB, "OBL-001", "dana", "waiting", "2026-03-02T17:00:00Z")
	if err := repo.MarkStage(ctx, "OBL-001", "reminder_4h_sent", "2026-03-02T13:00:00Z"); err != nil {
		t.Fatalf("MarkStage failed: %v", err)
	}

	if err := repo.Reassign(ctx, "OBL-001", "sam"); err != nil {
		t.Fatalf("Reassign failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, "OBL-001")
	if got.Assignee != "sam" {
		t.Errorf("Assignee = %q, want sam", got.Assignee)
	}
	if got.Reminder4hAt == "" {
		t.Error("reassignment must not reset stage flags")
	}
}

func TestObligationSetDueAndResolution(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewObligationRepository(testDB)
	ctx := context.Background()

	seedObligation(t, testDB, "OBL-001", "dana", "open", "2026-03-02T17:00:00Z")

	if err := repo.SetDue(ctx, "OBL-001", "2026-03-05T09:00:00Z"); err != nil {
		t.Fatalf("SetDue failed: %v", err)
	}
	if err := repo.SetResolution(ctx, "OBL-001", "handled offline"); err != nil {
		t.Fatalf("SetResolution failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, "OBL-001")
	if got.DueAt != "2026-03-05T09:00:00Z" || got.Resolution != "handled offline" {
		t.Errorf("got due=%q resolution=%q", got.DueAt, got.Resolution)
	}

	if err := repo.SetDue(ctx, "OBL-999", "2026-03-05T09:00:00Z"); err == nil {
		t.Error("SetDue on missing obligation should fail")
	}
}

func TestObligationListFilters(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewObligationRepository(testDB)
	ctx := context.Background()

	seedObligation(t, testDB, "OBL-001", "dana", "open", "2026-03-03T09:00:00Z")
	seedObligation(t, testDB, "OBL-002", "sam", "open", "2026-03-02T17:00:00Z")
	seedObligation(t, testDB, "OBL-003", "dana", "done", "2026-03-01T09:00:00Z")

	got, err := repo.List(ctx, secondary.ObligationFilters{Assignee: "dana"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("assignee filter returned %d, want 2", len(got))
	}

	got, err = repo.List(ctx, secondary.ObligationFilters{Status: "open", Limit: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("limited list returned %d, want 1", len(got))
	}
}

func TestObligationGetNextID(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewObligationRepository(testDB)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "OBL-001" {
		t.Errorf("first ID = %q, want OBL-001", id)
	}

	seedObligation(t, testDB, "OBL-007", "dana", "open", "2026-03-02T17:00:00Z")
	id, err = repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "OBL-008" {
		t.Errorf("next ID = %q, want OBL-008", id)
	}
}

func TestObligationAppendAudit(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewObligationRepository(testDB)
	ctx := context.Background()

	seedObligation(t, testDB, "OBL-001", "dana", "open", "2026-03-02T17:00:00Z")

	if err := repo.AppendAudit(ctx, "OBL-001", "operator", "created", "detected from thread-42"); err != nil {
		t.Fatalf("AppendAudit failed: %v", err)
	}

	var count int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM audit_log WHERE entity_id = 'OBL-001'").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("audit entries = %d, want 1", count)
	}
}
