// Package cli provides thin CLI adapters that translate between CLI
// concerns and application services. Adapters handle output
// formatting but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/example/chase/internal/ports/primary"
)

// ObligationAdapter is a thin adapter that translates CLI operations
// to ObligationService calls. It depends only on the service
// interface, enabling easy testing with mocks.
type ObligationAdapter struct {
	service primary.ObligationService
	out     io.Writer
}

// NewObligationAdapter creates a new ObligationAdapter with the given
// service.
func NewObligationAdapter(service primary.ObligationService, out io.Writer) *ObligationAdapter {
	return &ObligationAdapter{
		service: service,
		out:     out,
	}
}

// Detect runs the detection pipeline on text and prints the outcome.
func (a *ObligationAdapter) Detect(ctx context.Context, text, assignee, sourceRef string) error {
	result, err := a.service.DetectFromText(ctx, primary.DetectRequest{
		Text:      text,
		Assignee:  assignee,
		SourceRef: sourceRef,
	})
	if err != nil {
		return err
	}

	if !result.Detected {
		fmt.Fprintln(a.out, "No commitment detected.")
		return nil
	}

	if result.Duplicate {
		fmt.Fprintf(a.out, "Duplicate suppressed: %s already tracks this thread for %s\n",
			result.Obligation.ID, result.Obligation.Assignee)
		return nil
	}

	o := result.Obligation
	fmt.Fprintf(a.out, "✓ Created obligation %s: %s\n", o.ID, o.Title)
	fmt.Fprintf(a.out, "  Assignee: %s\n", o.Assignee)
	fmt.Fprintf(a.out, "  Due: %s (timeframe: %s, priority %d)\n", o.DueAt, o.TimeframeKind, o.Priority)
	return nil
}

// Create creates an obligation with an explicit due date.
func (a *ObligationAdapter) Create(ctx context.Context, title, assignee, dueAt, sourceRef string) error {
	o, err := a.service.CreateObligation(ctx, primary.CreateObligationRequest{
		Title:     title,
		Assignee:  assignee,
		DueAt:     dueAt,
		SourceRef: sourceRef,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created obligation %s: %s (due %s)\n", o.ID, o.Title, o.DueAt)
	return nil
}

// List lists obligations with optional filters. overdueOnly keeps only
// unresolved obligations whose deadline has passed.
func (a *ObligationAdapter) List(ctx context.Context, status, assignee string, overdueOnly bool) error {
	obligations, err := a.service.ListObligations(ctx, primary.ObligationFilters{
		Status:   status,
		Assignee: assignee,
	})
	if err != nil {
		return fmt.Errorf("failed to list obligations: %w", err)
	}

	if overdueOnly {
		now := time.Now()
		kept := obligations[:0]
		for _, o := range obligations {
			due, err := time.Parse(time.RFC3339, o.DueAt)
			if err != nil || o.Status == "done" || !now.After(due) {
				continue
			}
			kept = append(kept, o)
		}
		obligations = kept
	}

	if len(obligations) == 0 {
		fmt.Fprintln(a.out, "No obligations found.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRI\tSTATUS\tASSIGNEE\tDUE\tTITLE")
	fmt.Fprintln(w, "--\t---\t------\t--------\t---\t-----")
	for _, o := range obligations {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			o.ID, o.Priority, o.Status, o.Assignee, o.DueAt, o.Title)
	}
	w.Flush()
	return nil
}

// Show prints obligation details including the stage ledger.
func (a *ObligationAdapter) Show(ctx context.Context, obligationID string) error {
	o, err := a.service.GetObligation(ctx, obligationID)
	if err != nil {
		return fmt.Errorf("obligation not found: %w", err)
	}

	fmt.Fprintf(a.out, "Obligation: %s\n", o.ID)
	fmt.Fprintf(a.out, "Title: %s\n", o.Title)
	fmt.Fprintf(a.out, "Status: %s\n", o.Status)
	fmt.Fprintf(a.out, "Assignee: %s\n", o.Assignee)
	fmt.Fprintf(a.out, "Due: %s\n", o.DueAt)
	fmt.Fprintf(a.out, "Priority: %d\n", o.Priority)
	if o.SourceRef != "" {
		fmt.Fprintf(a.out, "Source: %s\n", o.SourceRef)
	}
	if o.PromiseText != "" {
		fmt.Fprintf(a.out, "Promise: %s\n", o.PromiseText)
	}
	if o.TimeframeKind != "" {
		fmt.Fprintf(a.out, "Timeframe: %s\n", o.TimeframeKind)
	}
	if o.Resolution != "" {
		fmt.Fprintf(a.out, "Resolution: %s\n", o.Resolution)
	}

	fmt.Fprintln(a.out, "Escalation ledger:")
	for _, stage := range o.Stages {
		if stage.Sent {
			fmt.Fprintf(a.out, "  %s: sent %s\n", stage.Name, stage.SentAt)
		} else {
			fmt.Fprintf(a.out, "  %s: -\n", stage.Name)
		}
	}

	fmt.Fprintf(a.out, "Created: %s\n", o.CreatedAt)
	fmt.Fprintf(a.out, "Updated: %s\n", o.UpdatedAt)
	return nil
}

// Satisfy marks an obligation done.
func (a *ObligationAdapter) Satisfy(ctx context.Context, obligationID, note string) error {
	o, err := a.service.Satisfy(ctx, primary.SatisfyRequest{
		ObligationID: obligationID,
		Note:         note,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Obligation %s satisfied\n", o.ID)
	if note != "" {
		fmt.Fprintf(a.out, "  Resolution: %s\n", note)
	}
	return nil
}

// Extend moves an obligation's due date.
func (a *ObligationAdapter) Extend(ctx context.Context, obligationID, newDueAt, reason string) error {
	o, err := a.service.ExtendDeadline(ctx, primary.ExtendRequest{
		ObligationID: obligationID,
		NewDueAt:     newDueAt,
		Reason:       reason,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Obligation %s extended to %s\n", o.ID, o.DueAt)
	return nil
}

// Transfer reassigns an obligation.
func (a *ObligationAdapter) Transfer(ctx context.Context, obligationID, newAssignee string) error {
	o, err := a.service.TransferOwnership(ctx, primary.TransferRequest{
		ObligationID: obligationID,
		NewAssignee:  newAssignee,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Obligation %s transferred to %s\n", o.ID, o.Assignee)
	return nil
}
