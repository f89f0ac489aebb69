package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/chase/internal/wire"
)

var obligationCmd = &cobra.Command{
	Use:   "obligation",
	Short: "Manage tracked obligations",
	Long:  "Create, list, and resolve obligations in the chase ledger",
}

var obligationCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create an obligation with an explicit due date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		assignee, _ := cmd.Flags().GetString("assignee")
		dueAt, _ := cmd.Flags().GetString("due")
		sourceRef, _ := cmd.Flags().GetString("source")

		if assignee == "" {
			return fmt.Errorf("--assignee is required")
		}
		if dueAt == "" {
			return fmt.Errorf("--due is required (RFC3339, e.g. 2026-09-01T17:00:00Z)")
		}

		return wire.ObligationAdapter().Create(ctx, args[0], assignee, dueAt, sourceRef)
	},
}

var obligationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List obligations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		status, _ := cmd.Flags().GetString("status")
		assignee, _ := cmd.Flags().GetString("assignee")
		overdue, _ := cmd.Flags().GetBool("overdue")

		return wire.ObligationAdapter().List(ctx, status, assignee, overdue)
	},
}

var obligationShowCmd = &cobra.Command{
	Use:   "show [obligation-id]",
	Short: "Show obligation details and its escalation ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		return wire.ObligationAdapter().Show(ctx, args[0])
	},
}

var obligationSatisfyCmd = &cobra.Command{
	Use:   "satisfy [obligation-id]",
	Short: "Mark an obligation done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		note, _ := cmd.Flags().GetString("note")
		return wire.ObligationAdapter().Satisfy(ctx, args[0], note)
	},
}

var obligationExtendCmd = &cobra.Command{
	Use:   "extend [obligation-id]",
	Short: "Move an obligation's deadline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		dueAt, _ := cmd.Flags().GetString("due")
		reason, _ := cmd.Flags().GetString("reason")

		if dueAt == "" {
			return fmt.Errorf("--due is required (RFC3339)")
		}

		return wire.ObligationAdapter().Extend(ctx, args[0], dueAt, reason)
	},
}

var obligationTransferCmd = &cobra.Command{
	Use:   "transfer [obligation-id]",
	Short: "Transfer an obligation to a new owner",
	Long:  "Reassign an obligation in place. Escalation stage flags are preserved, not reset.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		to, _ := cmd.Flags().GetString("to")

		if to == "" {
			return fmt.Errorf("--to is required")
		}

		return wire.ObligationAdapter().Transfer(ctx, args[0], to)
	},
}

func init() {
	obligationCreateCmd.Flags().StringP("assignee", "a", "", "Assignee (required)")
	obligationCreateCmd.Flags().StringP("due", "d", "", "Due timestamp, RFC3339 (required)")
	obligationCreateCmd.Flags().StringP("source", "s", "", "Source message/thread reference")

	obligationListCmd.Flags().StringP("status", "s", "", "Filter by status (open|in_progress|waiting|blocked|done)")
	obligationListCmd.Flags().StringP("assignee", "a", "", "Filter by assignee")
	obligationListCmd.Flags().BoolP("overdue", "o", false, "Only unresolved obligations past their deadline")

	obligationSatisfyCmd.Flags().StringP("note", "n", "", "Resolution note")

	obligationExtendCmd.Flags().StringP("due", "d", "", "New due timestamp, RFC3339 (required)")
	obligationExtendCmd.Flags().StringP("reason", "r", "", "Reason for the extension")

	obligationTransferCmd.Flags().StringP("to", "t", "", "New assignee (required)")

	obligationCmd.AddCommand(obligationCreateCmd)
	obligationCmd.AddCommand(obligationListCmd)
	obligationCmd.AddCommand(obligationShowCmd)
	obligationCmd.AddCommand(obligationSatisfyCmd)
	obligationCmd.AddCommand(obligationExtendCmd)
	obligationCmd.AddCommand(obligationTransferCmd)
}

// ObligationCmd returns the obligation command
func ObligationCmd() *cobra.Command {
	return obligationCmd
}
