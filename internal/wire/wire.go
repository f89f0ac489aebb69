// Package wire provides dependency injection for the chase
// application. It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"os"
	"sync"

	cliadapter "github.com/example/chase/internal/adapters/cli"
	"github.com/example/chase/internal/adapters/notify"
	"github.com/example/chase/internal/adapters/sqlite"
	"github.com/example/chase/internal/app"
	"github.com/example/chase/internal/config"
	"github.com/example/chase/internal/core/commitment"
	"github.com/example/chase/internal/core/obligation"
	"github.com/example/chase/internal/db"
	"github.com/example/chase/internal/ports/primary"
	"github.com/example/chase/internal/ports/secondary"
)

var (
	obligationService primary.ObligationService
	escalationScanner primary.EscalationScanner
	slaMonitor        primary.SLAMonitor
	failureService    primary.FailureService
	cfg               *config.Config
	once              sync.Once
)

// ObligationService returns the singleton ObligationService instance.
func ObligationService() primary.ObligationService {
	once.Do(initServices)
	return obligationService
}

// EscalationScanner returns the singleton EscalationScanner instance.
func EscalationScanner() primary.EscalationScanner {
	once.Do(initServices)
	return escalationScanner
}

// SLAMonitor returns the singleton SLAMonitor instance.
func SLAMonitor() primary.SLAMonitor {
	once.Do(initServices)
	return slaMonitor
}

// FailureService returns the singleton FailureService instance.
func FailureService() primary.FailureService {
	once.Do(initServices)
	return failureService
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	cfg, err = config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	matcher := commitment.NewMatcher()
	if cfg.RulesPath != "" {
		rules, err := commitment.LoadRules(cfg.RulesPath)
		if err != nil {
			log.Fatalf("failed to load commitment rules: %v", err)
		}
		matcher, err = commitment.NewMatcherFromRules(rules)
		if err != nil {
			log.Fatalf("failed to compile commitment rules: %v", err)
		}
	}

	// Repository adapters (secondary ports) - sqlite adapters with injected DB
	obligationRepo := sqlite.NewObligationRepository(database)
	opsTaskRepo := sqlite.NewOpsTaskRepository(database)
	failureRepo := sqlite.NewFailureRepository(database)

	notifier := notify.NewConsoleNotifier(os.Stdout)
	clock := secondary.SystemClock{}

	// Services (primary ports implementation)
	failureService = app.NewFailureRecorder(failureRepo, clock, os.Stderr)
	obligationService = app.NewObligationService(obligationRepo, notifier, failureService, clock, matcher, cfg.Calendar())

	r24, r4, r1 := cfg.ReminderWindows()
	escalationScanner = app.NewEscalationScanner(obligationRepo, notifier, failureService, clock,
		obligation.Ladder(r24, r4, r1), cfg.EscalationChannel)
	slaMonitor = app.NewSLAMonitor(opsTaskRepo, notifier, failureService, clock, cfg.NudgeLead())
}

// ObligationAdapter returns a new ObligationAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func ObligationAdapter() *cliadapter.ObligationAdapter {
	return ObligationAdapterWithOutput(os.Stdout)
}

// ObligationAdapterWithOutput returns a new ObligationAdapter writing
// to the given output. This variant allows testing or alternate output
// destinations.
func ObligationAdapterWithOutput(out io.Writer) *cliadapter.ObligationAdapter {
	once.Do(initServices)
	return cliadapter.NewObligationAdapter(obligationService, out)
}
