package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/chase/internal/wire"
)

var detectCmd = &cobra.Command{
	Use:   "detect [text]",
	Short: "Detect a commitment in message text",
	Long: `Run the detection pipeline on a message: commitment pattern match,
timeframe resolution, due-date calculation, and duplicate suppression.
Text is read from the argument, or from stdin when omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		assignee, _ := cmd.Flags().GetString("from")
		sourceRef, _ := cmd.Flags().GetString("source")

		if assignee == "" {
			return fmt.Errorf("--from is required (who made the commitment)")
		}

		var text string
		if len(args) == 1 {
			text = args[0]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(data)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("no text to scan")
		}

		return wire.ObligationAdapter().Detect(ctx, text, assignee, sourceRef)
	},
}

func init() {
	detectCmd.Flags().StringP("from", "f", "", "Author of the message / assignee of the obligation (required)")
	detectCmd.Flags().StringP("source", "s", "", "Source message/thread reference for de-duplication")
}

// DetectCmd returns the detect command
func DetectCmd() *cobra.Command {
	return detectCmd
}
