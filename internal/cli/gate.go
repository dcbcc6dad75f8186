package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hmesfin/agentgate/internal/config"
	"github.com/hmesfin/agentgate/internal/hook"
	"github.com/hmesfin/agentgate/internal/journal"
	"github.com/hmesfin/agentgate/internal/probe"
)

func init() {
	rootCmd.AddCommand(gateCmd)
}

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Evaluate one PreToolUse event from stdin",
	Long: `Read a single PreToolUse event from stdin and render the decision.

This is the command the agent runtime invokes once per proposed action.
It exits 0 to proceed (silently, or with an advisory already written to
stderr) and 2 to block (explanation already written to stderr). No other
exit codes are used, and no internal failure ever produces a block: the
gate degrades to a no-op under any fault.

Not intended for interactive use; see 'agentgate check' for dry runs.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runGate())
	},
}

// runGate builds the dispatcher and evaluates the stdin event. Every setup
// failure falls back rather than erroring: a broken config file or an
// unopenable journal must not stall the agent.
func runGate() int {
	cfg, err := loadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	logger := newLogger(cfg)
	if err != nil {
		logger.Debug("config load failed, using defaults", "err", err)
	}

	dispatcher := &hook.Dispatcher{
		Catalog:     newCatalog(cfg),
		SideChannel: os.Stderr,
		Logger:      logger,
	}

	if cfg.Probe.Enabled {
		dispatcher.Prober = &probe.Prober{
			Service: cfg.Probe.Service,
			Timeout: time.Duration(cfg.Probe.TimeoutSeconds) * time.Second,
			Logger:  logger,
		}
	}

	if cfg.Journal.Enabled {
		if db, err := journal.OpenAndMigrate(cfg.Journal.DatabasePath); err == nil {
			defer db.Close()
			dispatcher.Journal = db
		} else {
			logger.Debug("journal unavailable", "err", err)
		}
	}

	return dispatcher.Handle(context.Background(), os.Stdin)
}
