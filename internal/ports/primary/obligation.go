// Package primary defines the primary ports (driving interfaces) for
// the application and the entities exposed at the port boundary.
package primary

import "context"

// ObligationService defines the primary port for commitment tracking.
type ObligationService interface {
	// DetectFromText runs the detection pipeline on free text. A text
	// with no commitment pattern yields Detected=false, not an error.
	// A duplicate (assignee, source ref) yields Duplicate=true with the
	// existing obligation; no new obligation is created.
	DetectFromText(ctx context.Context, req DetectRequest) (*DetectionResult, error)

	// CreateObligation creates an obligation with an explicit due date
	// (the manual creation path).
	CreateObligation(ctx context.Context, req CreateObligationRequest) (*Obligation, error)

	// GetObligation retrieves an obligation by ID.
	GetObligation(ctx context.Context, obligationID string) (*Obligation, error)

	// ListObligations lists obligations with optional filters.
	ListObligations(ctx context.Context, filters ObligationFilters) ([]*Obligation, error)

	// Satisfy marks an obligation done with a resolution note,
	// regardless of which stage flags are set.
	Satisfy(ctx context.Context, req SatisfyRequest) (*Obligation, error)

	// ExtendDeadline moves the due date forward with a reason.
	ExtendDeadline(ctx context.Context, req ExtendRequest) (*Obligation, error)

	// TransferOwnership reassigns an obligation in place, preserving
	// stage flags.
	TransferOwnership(ctx context.Context, req TransferRequest) (*Obligation, error)
}

// Obligation represents a tracked commitment at the port boundary.
// Timestamps are RFC3339 strings; unset stage timestamps are empty.
type Obligation struct {
	ID            string
	Title         string
	Status        string
	Assignee      string
	DueAt         string
	Priority      int
	SourceRef     string
	PromiseText   string
	TimeframeKind string
	Resolution    string
	Stages        []StageState
	CreatedAt     string
	UpdatedAt     string
}

// StageState is one slot of the escalation ledger as exposed at the
// boundary.
type StageState struct {
	Name   string
	Sent   bool
	SentAt string
}

// DetectRequest carries the inputs of the detection pipeline.
type DetectRequest struct {
	Text      string
	Assignee  string
	SourceRef string
}

// DetectionResult reports the outcome of a detection run.
type DetectionResult struct {
	Detected      bool
	Duplicate     bool
	MatchedRules  []string
	TimeframeKind string
	Obligation    *Obligation // the created (or, if Duplicate, existing) obligation
}

// CreateObligationRequest carries the manual creation inputs. DueAt is
// RFC3339.
type CreateObligationRequest struct {
	Title     string
	Assignee  string
	DueAt     string
	SourceRef string
}

// SatisfyRequest marks an obligation done.
type SatisfyRequest struct {
	ObligationID string
	Note         string
}

// ExtendRequest moves a due date. NewDueAt is RFC3339.
type ExtendRequest struct {
	ObligationID string
	NewDueAt     string
	Reason       string
}

// TransferRequest reassigns an obligation.
type TransferRequest struct {
	ObligationID string
	NewAssignee  string
}

// ObligationFilters contains filter options for listing obligations.
type ObligationFilters struct {
	Status   string
	Assignee string
	Limit    int
}
