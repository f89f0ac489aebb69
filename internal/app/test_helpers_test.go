package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/chase/internal/ports/secondary"
)

// fixedClock returns a constant instant so scan windows are exact.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// testNow is the reference instant used across app tests.
var testNow = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

func rfc3339(t time.Time) string { return t.Format(time.RFC3339) }

// mockObligationRepository is an in-memory ObligationRepository with
// per-method error injection.
type mockObligationRepository struct {
	records map[string]*secondary.ObligationRecord
	nextID  int
	audits  []string

	listErr      error
	markStageErr error
	createErr    error
}

func newMockObligationRepository() *mockObligationRepository {
	return &mockObligationRepository{records: make(map[string]*secondary.ObligationRecord)}
}

func (m *mockObligationRepository) Create(ctx context.Context, record *secondary.ObligationRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *record
	if cp.CreatedAt == "" {
		cp.CreatedAt = rfc3339(testNow)
		cp.UpdatedAt = cp.CreatedAt
	}
	m.records[cp.ID] = &cp
	return nil
}

func (m *mockObligationRepository) GetByID(ctx context.Context, id string) (*secondary.ObligationRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("obligation %s not found", id)
	}
	cp := *r
	return &cp, nil
}

func (m *mockObligationRepository) FindOpen(ctx context.Context, assignee, sourceRef string) (*secondary.ObligationRecord, error) {
	if sourceRef == "" {
		return nil, nil
	}
	for _, r := range m.sorted() {
		if r.Assignee == assignee && r.SourceRef == sourceRef &&
			(r.Status == "open" || r.Status == "in_progress" || r.Status == "waiting") {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockObligationRepository) ListByStatuses(ctx context.Context, statuses []string) ([]*secondary.ObligationRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.ObligationRecord
	for _, r := range m.sorted() {
		for _, s := range statuses {
			if r.Status == s {
				cp := *r
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (m *mockObligationRepository) List(ctx context.Context, filters secondary.ObligationFilters) ([]*secondary.ObligationRecord, error) {
	var out []*secondary.ObligationRecord
	for _, r := range m.sorted() {
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		if filters.Assignee != "" && r.Assignee != filters.Assignee {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockObligationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	r, ok := m.records[id]
	if !ok {
		return fmt.Errorf("obligation %s not found", id)
	}
	r.Status = status
	return nil
}

func (m *mockObligationRepository) MarkStage(ctx context.Context, id, stage, sentAt string) error {
	if m.markStageErr != nil {
		return m.markStageErr
	}
	r, ok := m.records[id]
	if !ok {
		return fmt.Errorf("obligation %s not found", id)
	}
	switch stage {
	case "reminder_24h_sent":
		if r.Reminder24hAt != "" {
			return fmt.Errorf("stage %s already marked", stage)
		}
		r.Reminder24hAt = sentAt
	case "reminder_4h_sent":
		if r.Reminder4hAt != "" {
			return fmt.Errorf("stage %s already marked", stage)
		}
		r.Reminder4hAt = sentAt
	case "reminder_1h_sent":
		if r.Reminder1hAt != "" {
			return fmt.Errorf("stage %s already marked", stage)
		}
		r.Reminder1hAt = sentAt
	case "overdue_escalated":
		if r.OverdueAt != "" {
			return fmt.Errorf("stage %s already marked", stage)
		}
		r.OverdueAt = sentAt
	default:
		return fmt.Errorf("unknown stage %s", stage)
	}
	return nil
}

func (m *mockObligationRepository) SetDue(ctx context.Context, id, dueAt string) error {
	r, ok := m.records[id]
	if !ok {
		return fmt.Errorf("obligation %s not found", id)
	}
	r.DueAt = dueAt
	return nil
}

func (m *mockObligationRepository) Reassign(ctx context.Context, id, assignee string) error {
	r, ok := m.records[id]
	if !ok {
		return fmt.Errorf("obligation %s not found", id)
	}
	r.Assignee = assignee
	return nil
}

func (m *mockObligationRepository) SetResolution(ctx context.Context, id, resolution string) error {
	r, ok := m.records[id]
	if !ok {
		return fmt.Errorf("obligation %s not found", id)
	}
	r.Resolution = resolution
	return nil
}

func (m *mockObligationRepository) AppendAudit(ctx context.Context, entityID, actor, action, detail string) error {
	m.audits = append(m.audits, entityID+" "+action)
	return nil
}

func (m *mockObligationRepository) GetNextID(ctx context.Context) (string, error) {
	m.nextID++
	return fmt.Sprintf("OBL-%03d", m.nextID), nil
}

func (m *mockObligationRepository) sorted() []*secondary.ObligationRecord {
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*secondary.ObligationRecord, len(ids))
	for i, id := range ids {
		out[i] = m.records[id]
	}
	return out
}

// mockOpsTaskRepository is an in-memory OpsTaskRepository.
type mockOpsTaskRepository struct {
	records map[string]*secondary.OpsTaskRecord
	nextID  int

	listErr error
}

func newMockOpsTaskRepository() *mockOpsTaskRepository {
	return &mockOpsTaskRepository{records: make(map[string]*secondary.OpsTaskRecord)}
}

func (m *mockOpsTaskRepository) Create(ctx context.Context, record *secondary.OpsTaskRecord) error {
	cp := *record
	if cp.CreatedAt == "" {
		cp.CreatedAt = rfc3339(testNow)
		cp.UpdatedAt = cp.CreatedAt
	}
	m.records[cp.ID] = &cp
	return nil
}

func (m *mockOpsTaskRepository) GetByID(ctx context.Context, id string) (*secondary.OpsTaskRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("task %s not found", id)
	}
	cp := *r
	return &cp, nil
}

func (m *mockOpsTaskRepository) ListUnresponded(ctx context.Context) ([]*secondary.OpsTaskRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.OpsTaskRecord
	for _, r := range m.sorted() {
		if r.RespondedAt == "" {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockOpsTaskRepository) List(ctx context.Context, filters secondary.OpsTaskFilters) ([]*secondary.OpsTaskRecord, error) {
	var out []*secondary.OpsTaskRecord
	for _, r := range m.sorted() {
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		if filters.Assignee != "" && r.Assignee != filters.Assignee {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockOpsTaskRepository) MarkNudge(ctx context.Context, id, sentAt string) error {
	r, ok := m.records[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	if r.NudgeSentAt != "" {
		return fmt.Errorf("nudge already marked for %s", id)
	}
	r.NudgeSentAt = sentAt
	return nil
}

func (m *mockOpsTaskRepository) MarkBreachNotified(ctx context.Context, id, sentAt string) error {
	r, ok := m.records[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	if r.BreachNotifiedAt != "" {
		return fmt.Errorf("breach already notified for %s", id)
	}
	r.BreachNotifiedAt = sentAt
	return nil
}

func (m *mockOpsTaskRepository) MarkResponded(ctx context.Context, id, respondedAt string) error {
	r, ok := m.records[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	if r.RespondedAt != "" {
		return fmt.Errorf("task %s already responded", id)
	}
	r.RespondedAt = respondedAt
	r.Status = "responded"
	return nil
}

func (m *mockOpsTaskRepository) GetNextID(ctx context.Context) (string, error) {
	m.nextID++
	return fmt.Sprintf("OPS-%03d", m.nextID), nil
}

func (m *mockOpsTaskRepository) sorted() []*secondary.OpsTaskRecord {
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*secondary.OpsTaskRecord, len(ids))
	for i, id := range ids {
		out[i] = m.records[id]
	}
	return out
}

// mockFailureRepository is an in-memory append-only failure log.
type mockFailureRepository struct {
	mu      sync.Mutex
	records []*secondary.FailureRecord

	appendErr error
}

func newMockFailureRepository() *mockFailureRepository {
	return &mockFailureRepository{}
}

func (m *mockFailureRepository) Append(ctx context.Context, record *secondary.FailureRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	m.records = append(m.records, &cp)
	return nil
}

func (m *mockFailureRepository) CountSince(ctx context.Context, cutoff string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, r := range m.records {
		if r.CreatedAt >= cutoff {
			count++
		}
	}
	return count, nil
}

func (m *mockFailureRepository) ListRecent(ctx context.Context, limit int) ([]*secondary.FailureRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*secondary.FailureRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *m.records[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockFailureRepository) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// mockNotifier records deliveries and can be told to fail on matching
// recipients.
type mockNotifier struct {
	delivered     []secondary.Notification
	failRecipient string
	failAll       bool
}

func (m *mockNotifier) Deliver(ctx context.Context, n secondary.Notification) error {
	if m.failAll || (m.failRecipient != "" && n.Recipient == m.failRecipient) {
		return fmt.Errorf("connection refused delivering to %s", n.Recipient)
	}
	m.delivered = append(m.delivered, n)
	return nil
}

func (m *mockNotifier) Name() string { return "mock" }

func (m *mockNotifier) subjects() []string {
	out := make([]string, len(m.delivered))
	for i, n := range m.delivered {
		out[i] = n.Subject
	}
	return out
}

// newTestFailureRecorder returns a recorder writing to an in-memory
// repo, for use as the FailureService dependency of other services.
func newTestFailureRecorder() (*FailureRecorderImpl, *mockFailureRepository) {
	repo := newMockFailureRepository()
	return NewFailureRecorder(repo, fixedClock{now: testNow}, discard{}), repo
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
