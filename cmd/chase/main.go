package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/chase/internal/cli"
	"github.com/example/chase/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "chase",
		Short:   "chase - commitment tracking and deadline escalation",
		Version: version.String(),
		Long: `chase detects commitments in message text, tracks the resulting
obligations with due dates, and escalates them through a reminder
ladder as deadlines approach. It also monitors first-response SLAs on
operational tasks.`,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DetectCmd())
	rootCmd.AddCommand(cli.ObligationCmd())
	rootCmd.AddCommand(cli.ScanCmd())
	rootCmd.AddCommand(cli.OpsCmd())
	rootCmd.AddCommand(cli.HealthCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
