package cli

import (
	"context"
	"os"

	"github.com/example/chase/internal/ctxutil"
)

// NewContext returns the base context for CLI commands with the acting
// identity attached for audit entries. CHASE_ACTOR overrides the OS
// user.
func NewContext() context.Context {
	actor := os.Getenv("CHASE_ACTOR")
	if actor == "" {
		actor = os.Getenv("USER")
	}
	if actor == "" {
		actor = "operator"
	}
	return ctxutil.WithActor(context.Background(), actor)
}
