package hook

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/hmesfin/agentgate/internal/journal"
	"github.com/hmesfin/agentgate/internal/policy"
)

// Exit codes rendered to the agent runtime. No others are used.
const (
	// ExitAllow lets the action proceed; any advisory text was already
	// written to the side channel.
	ExitAllow = 0
	// ExitBlock stops the action; the explanation was already written.
	ExitBlock = 2
)

// diagPrefix distinguishes internal-fault diagnostics from policy messages.
const diagPrefix = "agentgate hook error"

// ErrorCounter reports the outstanding type-check error count.
// ok is false when no count is available.
type ErrorCounter interface {
	ErrorCount(ctx context.Context) (count int, ok bool)
}

// Dispatcher routes one event to the right classifier and renders the
// decision as an exit code plus side-channel text.
//
// The dispatcher is fail-open end to end: a malformed event, an unknown
// tool, a journal failure, or a panic anywhere below Handle all resolve to
// ExitAllow. The gate degrading to a no-op is always preferable to the gate
// stalling the agent.
type Dispatcher struct {
	// Catalog supplies the compiled rule collections (required).
	Catalog *policy.Catalog
	// Prober enriches advisory messages; nil disables enrichment.
	Prober ErrorCounter
	// Journal records decisions best-effort; nil disables journaling.
	Journal *journal.DB
	// SideChannel receives guidance text (default os.Stderr).
	SideChannel io.Writer
	// Logger receives diagnostics (default log.Default).
	Logger *log.Logger
}

// Handle reads one event from r and returns the process exit code.
func (d *Dispatcher) Handle(ctx context.Context, r io.Reader) (code int) {
	defer func() {
		if rec := recover(); rec != nil {
			fmt.Fprintf(d.sideChannel(), "%s: %v\n", diagPrefix, rec)
			code = ExitAllow
		}
	}()

	ev, err := DecodeEvent(r)
	if err != nil {
		// Unreadable input is nothing to police.
		d.logger().Debug("undecodable event", "err", err)
		return ExitAllow
	}

	switch ev.ToolName {
	case ToolBash:
		return d.handleCommand(ev)
	case ToolWrite, ToolEdit:
		return d.handleFileWrite(ctx, ev)
	default:
		return ExitAllow
	}
}

func (d *Dispatcher) handleCommand(ev *Event) int {
	command := strings.TrimSpace(ev.ToolInput.Command)
	if command == "" {
		return ExitAllow
	}

	result := d.Catalog.Commands.Classify(command)
	d.record(ev.ToolName, command, result.Decision, result.Category)

	if result.Decision == policy.DecisionBlock {
		fmt.Fprint(d.sideChannel(), policy.ResolveBlockMessage(result.Category))
		return ExitBlock
	}
	return ExitAllow
}

func (d *Dispatcher) handleFileWrite(ctx context.Context, ev *Event) int {
	path := strings.TrimSpace(ev.ToolInput.FilePath)
	if path == "" {
		return ExitAllow
	}

	category, ok := d.Catalog.MatchAdvisory(path)
	if !ok {
		d.record(ev.ToolName, path, policy.DecisionAllow, "")
		return ExitAllow
	}

	message, ok := policy.ResolveAdvisoryMessage(category)
	if !ok {
		d.record(ev.ToolName, path, policy.DecisionAllow, "")
		return ExitAllow
	}

	if d.Prober != nil {
		if count, ok := d.Prober.ErrorCount(ctx); ok && count > 0 {
			message += fmt.Sprintf("\n⚠️  CURRENT TYPESCRIPT ERRORS: %d\n", count)
			message += "   Consider fixing existing errors before adding new code.\n"
			message += "   Run: docker compose run --rm frontend npm run type-check\n"
		}
	}

	d.record(ev.ToolName, path, policy.DecisionWarn, category)
	fmt.Fprint(d.sideChannel(), message)

	// Quality reminders never block a write.
	return ExitAllow
}

// record journals a decision. Journal trouble is logged and dropped; it
// must never influence the decision.
func (d *Dispatcher) record(tool, input string, decision policy.Decision, category string) {
	if d.Journal == nil {
		return
	}
	err := d.Journal.Record(&journal.Entry{
		Tool:     tool,
		Input:    input,
		Decision: string(decision),
		Category: category,
	})
	if err != nil {
		d.logger().Debug("journal write failed", "err", err)
	}
}

func (d *Dispatcher) sideChannel() io.Writer {
	if d.SideChannel != nil {
		return d.SideChannel
	}
	return os.Stderr
}

func (d *Dispatcher) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}
