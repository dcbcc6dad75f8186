package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hmesfin/agentgate/internal/policy"
)

// Catppuccin Mocha color palette
var (
	colorMauve   = lipgloss.Color("#cba6f7") // Title
	colorBlue    = lipgloss.Color("#89b4fa") // Section headers
	colorGreen   = lipgloss.Color("#a6e3a1") // Commands / ALLOW
	colorYellow  = lipgloss.Color("#f9e2af") // WARN
	colorRed     = lipgloss.Color("#f38ba8") // BLOCK
	colorOverlay = lipgloss.Color("#6c7086") // Muted text
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorMauve).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue).
			MarginTop(1)

	commandStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	allowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)

	blockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorOverlay)
)

func showQuickReference() {
	var b strings.Builder

	b.WriteString(titleStyle.Render("AGENTGATE — Docker-aware command gate"))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Decisions"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  conflicts with compose services, exit 2\n", blockStyle.Render("BLOCK")))
	b.WriteString(fmt.Sprintf("  %s   quality reminder on stderr, exit 0\n", warnStyle.Render("WARN")))
	b.WriteString(fmt.Sprintf("  %s  proceeds silently, exit 0\n", allowStyle.Render("ALLOW")))

	b.WriteString(sectionStyle.Render("Common commands"))
	b.WriteString("\n")
	for _, row := range [][2]string{
		{"agentgate check \"npm run dev\"", "dry-run a command"},
		{"agentgate check --path src/Foo.vue", "dry-run a file path"},
		{"agentgate patterns list", "show the rule catalogs"},
		{"agentgate hook install", "wire up Claude Code"},
		{"agentgate journal list", "recent decisions"},
	} {
		b.WriteString(fmt.Sprintf("  %s\n    %s\n",
			commandStyle.Render(row[0]), mutedStyle.Render(row[1])))
	}

	b.WriteString(sectionStyle.Render("Remember"))
	b.WriteString("\n")
	b.WriteString("  Blocked commands have a compose equivalent:\n")
	b.WriteString(commandStyle.Render("    docker compose run --rm <service> <command>"))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  catalog %s", policy.Default().ComputeHash()[:12])))
	b.WriteString("\n")

	fmt.Fprint(os.Stderr, b.String())
}

func decisionLabel(d policy.Decision) string {
	switch d {
	case policy.DecisionBlock:
		return blockStyle.Render("BLOCK")
	case policy.DecisionWarn:
		return warnStyle.Render("WARN")
	default:
		return allowStyle.Render("ALLOW")
	}
}

func printCheckResult(command string, result policy.Result) {
	fmt.Fprintf(os.Stderr, "%s  %s\n", decisionLabel(result.Decision), command)
	if result.MatchedPattern != "" {
		fmt.Fprintf(os.Stderr, "%s\n", mutedStyle.Render("  pattern: "+result.MatchedPattern))
	}
	if result.Decision == policy.DecisionBlock {
		fmt.Fprintf(os.Stderr, "%s\n", mutedStyle.Render("  category: "+result.Category))
		fmt.Fprint(os.Stderr, policy.ResolveBlockMessage(result.Category))
	}
}

func printPathResult(path, category string, matched bool) {
	if !matched {
		fmt.Fprintf(os.Stderr, "%s  %s\n", decisionLabel(policy.DecisionAllow), path)
		return
	}
	fmt.Fprintf(os.Stderr, "%s  %s\n", decisionLabel(policy.DecisionWarn), path)
	fmt.Fprintf(os.Stderr, "%s\n", mutedStyle.Render("  trigger: "+category))
	if msg, ok := policy.ResolveAdvisoryMessage(category); ok {
		fmt.Fprint(os.Stderr, msg)
	}
}
