package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/chase/internal/ports/primary"
	"github.com/example/chase/internal/wire"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "Manage operational tasks with a first-response SLA",
	Long:  "Create and track tasks that need a first response within a deadline",
}

var opsCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create an operational task with an SLA deadline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		assignee, _ := cmd.Flags().GetString("assignee")
		slaMinutes, _ := cmd.Flags().GetInt("sla-minutes")

		if assignee == "" {
			return fmt.Errorf("--assignee is required")
		}
		if slaMinutes <= 0 {
			return fmt.Errorf("--sla-minutes must be positive")
		}

		task, err := wire.SLAMonitor().CreateTask(ctx, primary.CreateTaskRequest{
			Title:      args[0],
			Assignee:   assignee,
			SLAMinutes: slaMinutes,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✓ Created task %s: %s (respond by %s)\n", task.ID, task.Title, task.SLADueAt)
		return nil
	},
}

var opsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List operational tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		status, _ := cmd.Flags().GetString("status")
		assignee, _ := cmd.Flags().GetString("assignee")
		breached, _ := cmd.Flags().GetBool("breached")

		tasks, err := wire.SLAMonitor().ListTasks(ctx, primary.OpsTaskFilters{
			Status:       status,
			Assignee:     assignee,
			BreachedOnly: breached,
		})
		if err != nil {
			return err
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tASSIGNEE\tRESPOND BY\tSLA\tTITLE")
		for _, t := range tasks {
			sla := "ok"
			if t.Breached {
				sla = "BREACHED"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				t.ID, t.Status, t.Assignee, t.SLADueAt, sla, t.Title)
		}
		return w.Flush()
	},
}

var opsShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show operational task details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		task, err := wire.SLAMonitor().GetTask(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:         %s\n", task.ID)
		fmt.Printf("Title:      %s\n", task.Title)
		fmt.Printf("Assignee:   %s\n", task.Assignee)
		fmt.Printf("Status:     %s\n", task.Status)
		fmt.Printf("Respond by: %s\n", task.SLADueAt)
		if task.Breached {
			fmt.Println("SLA:        BREACHED")
		}
		if task.NudgeSentAt != "" {
			fmt.Printf("Nudged:     %s\n", task.NudgeSentAt)
		}
		if task.BreachNotifiedAt != "" {
			fmt.Printf("Breach notified: %s\n", task.BreachNotifiedAt)
		}
		if task.RespondedAt != "" {
			fmt.Printf("Responded:  %s\n", task.RespondedAt)
		}
		return nil
	},
}

var opsRespondCmd = &cobra.Command{
	Use:   "respond [task-id]",
	Short: "Record the first response on a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		task, err := wire.SLAMonitor().Respond(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("✓ Task %s responded at %s\n", task.ID, task.RespondedAt)
		return nil
	},
}

func init() {
	opsCreateCmd.Flags().StringP("assignee", "a", "", "Assignee (required)")
	opsCreateCmd.Flags().IntP("sla-minutes", "m", 0, "Minutes allowed for the first response (required)")

	opsListCmd.Flags().StringP("status", "s", "", "Filter by status (open|responded|done)")
	opsListCmd.Flags().StringP("assignee", "a", "", "Filter by assignee")
	opsListCmd.Flags().BoolP("breached", "b", false, "Only tasks past their SLA deadline")

	opsCmd.AddCommand(opsCreateCmd)
	opsCmd.AddCommand(opsListCmd)
	opsCmd.AddCommand(opsShowCmd)
	opsCmd.AddCommand(opsRespondCmd)
}

// OpsCmd returns the ops command
func OpsCmd() *cobra.Command {
	return opsCmd
}
