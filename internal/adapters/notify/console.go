// Package notify contains delivery-channel implementations of the
// Notifier port. The console notifier is the local channel; chat or
// webhook channels plug in behind the same interface.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/example/chase/internal/ports/secondary"
)

// ConsoleNotifier writes notifications to a writer, colorized by
// severity.
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleNotifier creates a console notifier writing to out.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

// Deliver writes one notification line. The mutex keeps concurrent
// scanner and monitor output from interleaving.
func (n *ConsoleNotifier) Deliver(ctx context.Context, msg secondary.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	tag := severityTag(msg.Severity)
	_, err := fmt.Fprintf(n.out, "%s → %s: %s — %s\n", tag, msg.Recipient, msg.Subject, msg.Body)
	if err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}
	return nil
}

// Name returns the channel type for failure records.
func (n *ConsoleNotifier) Name() string {
	return "console"
}

func severityTag(s secondary.Severity) string {
	switch s {
	case secondary.SeverityCritical:
		return color.New(color.FgRed, color.Bold).Sprint("[CRITICAL]")
	case secondary.SeverityWarning:
		return color.New(color.FgYellow).Sprint("[WARNING]")
	default:
		return color.New(color.FgCyan).Sprint("[INFO]")
	}
}

// Ensure ConsoleNotifier implements the interface
var _ secondary.Notifier = (*ConsoleNotifier)(nil)
