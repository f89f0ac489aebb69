package sqlite_test

import (
	"context"
	"strings"
	"testing"

	"github.com/example/chase/internal/adapters/sqlite"
	"github.com/example/chase/internal/ports/secondary"
)

func TestOpsTaskCreateAndGet(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewOpsTaskRepository(testDB)
	ctx := context.Background()

	record := &secondary.OpsTaskRecord{
		ID:       "OPS-001",
		Title:    "pager alert",
		Assignee: "dana",
		Status:   "open",
		SLADueAt: "2026-03-02T14:30:00Z",
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "OPS-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "pager alert" || got.SLADueAt != "2026-03-02T14:30:00Z" {
		t.Errorf("got %+v", got)
	}
	if got.NudgeSentAt != "" || got.BreachNotifiedAt != "" || got.RespondedAt != "" {
		t.Error("flags should start empty")
	}
}

func TestOpsTaskListUnresponded(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewOpsTaskRepository(testDB)
	ctx := context.Background()

	seedOpsTask(t, testDB, "OPS-001", "dana", "2026-03-02T15:00:00Z")
	seedOpsTask(t, testDB, "OPS-002", "sam", "2026-03-02T14:10:00Z")
	seedOpsTask(t, testDB, "OPS-003", "kim", "2026-03-02T13:00:00Z")
	if err := repo.MarkResponded(ctx, "OPS-003", "2026-03-02T12:30:00Z"); err != nil {
		t.Fatalf("MarkResponded failed: %v", err)
	}

	got, err := repo.ListUnresponded(ctx)
	if err != nil {
		t.Fatalf("ListUnresponded failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d tasks, want 2", len(got))
	}
	// Oldest deadline first.
	if got[0].ID != "OPS-002" || got[1].ID != "OPS-001" {
		t.Errorf("order = [%s %s], want [OPS-002 OPS-001]", got[0].ID, got[1].ID)
	}
}

func TestOpsTaskMarkNudgeOneShot(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewOpsTaskRepository(testDB)
	ctx := context.Background()

	seedOpsTask(t, testDB, "OPS-001", "dana", "2026-03-02T15:00:00Z")

	if err := repo.MarkNudge(ctx, "OPS-001", "2026-03-02T14:45:00Z"); err != nil {
		t.Fatalf("MarkNudge failed: %v", err)
	}

	err := repo.MarkNudge(ctx, "OPS-001", "2026-03-02T14:50:00Z")
	if err == nil || !strings.Contains(err.Error(), "already sent") {
		t.Errorf("second MarkNudge err = %v, want already-sent error", err)
	}

	got, _ := repo.GetByID(ctx, "OPS-001")
	if got.NudgeSentAt != "2026-03-02T14:45:00Z" {
		t.Errorf("NudgeSentAt = %q, first mark must win", got.NudgeSentAt)
	}
}

func TestOpsTaskMarkBreachNotifiedOneShot(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewOpsTaskRepository(testDB)
	ctx := context.Background()

	seedOpsTask(t, testDB, "OPS-001", "dana", "2026-03-02T13:00:00Z")

	if err := repo.MarkBreachNotified(ctx, "OPS-001", "2026-03-02T14:00:00Z"); err != nil {
		t.Fatalf("MarkBreachNotified failed: %v", err)
	}
	if err := repo.MarkBreachNotified(ctx, "OPS-001", "2026-03-02T14:05:00Z"); err == nil {
		t.Error("second MarkBreachNotified should fail")
	}
}

func TestOpsTaskMarkResponded(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewOpsTaskRepository(testDB)
	ctx := context.Background()

	seedOpsTask(t, testDB, "OPS-001", "dana", "2026-03-02T15:00:00Z")

	if err := repo.MarkResponded(ctx, "OPS-001", "2026-03-02T14:20:00Z"); err != nil {
		t.Fatalf("MarkResponded failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, "OPS-001")
	if got.Status != "responded" || got.RespondedAt != "2026-03-02T14:20:00Z" {
		t.Errorf("got status=%q respondedAt=%q", got.Status, got.RespondedAt)
	}

	if err := repo.MarkResponded(ctx, "OPS-001", "2026-03-02T14:25:00Z"); err == nil {
		t.Error("responding twice should fail")
	}
}

func TestOpsTaskListFilters(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewOpsTaskRepository(testDB)
	ctx := context.Background()

	seedOpsTask(t, testDB, "OPS-001", "dana", "2026-03-02T15:00:00Z")
	seedOpsTask(t, testDB, "OPS-002", "sam", "2026-03-02T14:00:00Z")
	if err := repo.MarkResponded(ctx, "OPS-002", "2026-03-02T13:30:00Z"); err != nil {
		t.Fatalf("MarkResponded failed: %v", err)
	}

	got, err := repo.List(ctx, secondary.OpsTaskFilters{Status: "responded"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "OPS-002" {
		t.Errorf("status filter = %v, want OPS-002", got)
	}

	got, err = repo.List(ctx, secondary.OpsTaskFilters{Assignee: "dana"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "OPS-001" {
		t.Errorf("assignee filter = %v, want OPS-001", got)
	}
}

func TestOpsTaskGetNextID(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewOpsTaskRepository(testDB)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "OPS-001" {
		t.Errorf("first ID = %q, want OPS-001", id)
	}

	seedOpsTask(t, testDB, "OPS-012", "dana", "2026-03-02T15:00:00Z")
	id, err = repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "OPS-013" {
		t.Errorf("next ID = %q, want OPS-013", id)
	}
}
