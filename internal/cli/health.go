package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/chase/internal/ports/primary"
	"github.com/example/chase/internal/wire"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show monitoring engine health",
	Long: `Classify the engine's recent failure rate. The engine never lets a
monitoring failure block business work; it records the failure and
moves on, and this command is how those records surface.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		window, _ := cmd.Flags().GetInt("window")
		threshold, _ := cmd.Flags().GetInt("threshold")

		svc := wire.FailureService()

		status, err := svc.Health(ctx, window, threshold)
		if err != nil {
			return err
		}
		rate, err := svc.Rate(ctx, window)
		if err != nil {
			return err
		}

		fmt.Printf("Health:   %s\n", colorizeHealth(status))
		fmt.Printf("Failures: %d in the last %dh (threshold %d)\n", rate, window, threshold)

		// In-process counters only populate in long-running modes like
		// scan --watch; one-shot invocations start clean.
		if counts := svc.Counts(); len(counts) > 0 {
			keys := make([]string, 0, len(counts))
			for k := range counts {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Println("This process:")
			for _, k := range keys {
				fmt.Printf("  %s: %d\n", k, counts[k])
			}
		}
		return nil
	},
}

var healthFailuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "List recent recorded failures",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		limit, _ := cmd.Flags().GetInt("limit")

		events, err := wire.FailureService().RecentFailures(ctx, limit)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			fmt.Println("No failures recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tSOURCE\tREASON\tDETAIL")
		for _, e := range events {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt, e.Source, e.Reason, e.Detail)
		}
		return w.Flush()
	},
}

func colorizeHealth(status string) string {
	switch status {
	case primary.HealthHealthy:
		return color.GreenString(status)
	case primary.HealthDegraded:
		return color.YellowString(status)
	case primary.HealthCritical:
		return color.New(color.FgRed, color.Bold).Sprint(status)
	default:
		return status
	}
}

func init() {
	healthCmd.Flags().IntP("window", "w", 24, "Failure window in hours")
	healthCmd.Flags().IntP("threshold", "t", 10, "Failure count at which health degrades")

	healthFailuresCmd.Flags().IntP("limit", "l", 20, "Maximum number of failures to list")

	healthCmd.AddCommand(healthFailuresCmd)
}

// HealthCmd returns the health command
func HealthCmd() *cobra.Command {
	return healthCmd
}
