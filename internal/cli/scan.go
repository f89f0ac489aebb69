package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/chase/internal/wire"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the escalation scanner and SLA monitor",
	Long: `Run one scan tick over active obligations and unresponded SLA tasks,
firing any escalation stages whose threshold has been crossed. With
--watch, both jobs run on their own recurring intervals until
interrupted. Each job is sequential within itself; a tick that runs
long simply delays the next one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		if !watch {
			return runOnce(NewContext())
		}
		return runWatch(NewContext())
	},
}

func runOnce(ctx context.Context) error {
	report, err := wire.EscalationScanner().RunTick(ctx)
	if err != nil {
		return fmt.Errorf("escalation scan failed: %w", err)
	}
	fmt.Printf("Follow-ups: scanned %d, fired %d stage(s), %d failure(s)\n",
		report.Scanned, report.StagesFired, report.Failures)
	for _, fired := range report.Fired {
		fmt.Printf("  %s: %s → %s\n", fired.ObligationID, fired.Stage, fired.Recipient)
	}

	slaReport, err := wire.SLAMonitor().RunTick(ctx)
	if err != nil {
		return fmt.Errorf("SLA scan failed: %w", err)
	}
	fmt.Printf("SLA: scanned %d, nudges %d, breached %d, breach notices %d, %d failure(s)\n",
		slaReport.Scanned, slaReport.NudgesFired, slaReport.Breached, slaReport.BreachNotices, slaReport.Failures)

	return nil
}

// runWatch runs both jobs concurrently, each strictly sequential
// within its own loop. Tick errors are printed and the loop continues:
// nothing here is fatal to the process.
func runWatch(base context.Context) error {
	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := wire.Config()
	scanEvery := time.Duration(cfg.ScanIntervalMinutes) * time.Minute
	slaEvery := time.Duration(cfg.SLAIntervalMinutes) * time.Minute

	fmt.Printf("Watching: follow-ups every %s, SLA every %s (Ctrl-C to stop)\n", scanEvery, slaEvery)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		runLoop(ctx, scanEvery, func() {
			report, err := wire.EscalationScanner().RunTick(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "escalation scan: %v\n", err)
				return
			}
			if report.StagesFired > 0 || report.Failures > 0 {
				fmt.Printf("Follow-ups: fired %d stage(s), %d failure(s)\n", report.StagesFired, report.Failures)
			}
		})
	}()

	go func() {
		defer wg.Done()
		runLoop(ctx, slaEvery, func() {
			report, err := wire.SLAMonitor().RunTick(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "SLA scan: %v\n", err)
				return
			}
			if report.NudgesFired > 0 || report.BreachNotices > 0 || report.Failures > 0 {
				fmt.Printf("SLA: nudges %d, breach notices %d, %d failure(s)\n",
					report.NudgesFired, report.BreachNotices, report.Failures)
			}
		})
	}()

	wg.Wait()
	fmt.Println("Stopped.")
	return nil
}

// runLoop invokes tick on the interval. The tick runs synchronously,
// so a slow pass delays the next one instead of overlapping it.
func runLoop(ctx context.Context, every time.Duration, tick func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}

func init() {
	scanCmd.Flags().BoolP("watch", "w", false, "Keep scanning on the configured intervals")
}

// ScanCmd returns the scan command
func ScanCmd() *cobra.Command {
	return scanCmd
}
