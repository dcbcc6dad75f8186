package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hmesfin/agentgate/internal/output"
	"github.com/hmesfin/agentgate/internal/policy"
)

var flagHookForce bool

func init() {
	hookInstallCmd.Flags().BoolVarP(&flagHookForce, "force", "f", false, "overwrite existing agentgate hooks")

	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookCmd.AddCommand(hookStatusCmd)

	rootCmd.AddCommand(hookCmd)
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage Claude Code hook integration",
	Long: `Manage the Claude Code PreToolUse hooks that run agentgate.

Two hooks are installed: one on the Bash tool (command gate) and one on
Write|Edit (TypeScript quality advisories). Both invoke 'agentgate gate'.

Quick start:
  agentgate hook install    # Configure Claude Code to call the gate
  agentgate hook status     # Check installation status
  agentgate hook uninstall  # Remove the hooks`,
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install hooks into Claude Code settings",
	Long: `Update ~/.claude/settings.json with PreToolUse entries invoking
'agentgate gate' for Bash and Write|Edit tools. Existing non-agentgate
hooks are preserved; use --force to replace existing agentgate entries.`,
	RunE: runHookInstall,
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove hooks from Claude Code settings",
	RunE:  runHookUninstall,
}

var hookStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show hook installation status",
	RunE:  runHookStatus,
}

// hookMatchers are the tool matchers the gate installs under.
var hookMatchers = []string{"Bash", "Write|Edit"}

// gateCommand returns the hook command line for the current binary.
func gateCommand() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolving executable path: %w", err)
	}
	return exe + " gate", nil
}

// isGateHookCommand reports whether a configured hook command is ours.
func isGateHookCommand(cmd string) bool {
	fields := strings.Fields(cmd)
	if len(fields) < 2 || fields[len(fields)-1] != "gate" {
		return false
	}
	return filepath.Base(fields[0]) == "agentgate"
}

func settingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "settings.json"), nil
}

func readSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}

func writeSettings(path string, settings map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create .claude directory: %w", err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

func runHookInstall(cmd *cobra.Command, args []string) error {
	command, err := gateCommand()
	if err != nil {
		return err
	}

	path, err := settingsPath()
	if err != nil {
		return err
	}
	settings, err := readSettings(path)
	if err != nil {
		return err
	}

	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		hooks = make(map[string]any)
	}
	preToolUse, ok := hooks["PreToolUse"].([]any)
	if !ok {
		preToolUse = []any{}
	}

	alreadyExisted := false
	for _, matcher := range hookMatchers {
		entry := map[string]any{
			"matcher": matcher,
			"hooks": []map[string]any{
				{"type": "command", "command": command},
			},
		}

		found := false
		for i, h := range preToolUse {
			hm, ok := h.(map[string]any)
			if !ok || hm["matcher"] != matcher {
				continue
			}
			if hookListHasGate(hm) {
				found = true
				alreadyExisted = true
				if flagHookForce {
					preToolUse[i] = entry
				}
				break
			}
		}
		if !found {
			preToolUse = append(preToolUse, entry)
		}
	}

	hooks["PreToolUse"] = preToolUse
	settings["hooks"] = hooks

	if err := writeSettings(path, settings); err != nil {
		return err
	}

	out := output.New(output.Format(GetOutput()))
	return out.Write(map[string]any{
		"status":          "installed",
		"settings_path":   path,
		"hook_command":    command,
		"matchers":        hookMatchers,
		"already_existed": alreadyExisted && !flagHookForce,
	})
}

func hookListHasGate(entry map[string]any) bool {
	hookList, ok := entry["hooks"].([]any)
	if !ok {
		return false
	}
	for _, hk := range hookList {
		hkMap, ok := hk.(map[string]any)
		if !ok {
			continue
		}
		if cmd, ok := hkMap["command"].(string); ok && isGateHookCommand(cmd) {
			return true
		}
	}
	return false
}

func runHookUninstall(cmd *cobra.Command, args []string) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}
	out := output.New(output.Format(GetOutput()))

	settings, err := readSettings(path)
	if err != nil {
		return err
	}
	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		return out.Write(map[string]any{
			"status":  "not_installed",
			"message": "No hooks configured",
		})
	}
	preToolUse, ok := hooks["PreToolUse"].([]any)
	if !ok {
		return out.Write(map[string]any{
			"status":  "not_installed",
			"message": "No PreToolUse hooks configured",
		})
	}

	var filtered []any
	removed := false
	for _, h := range preToolUse {
		if hm, ok := h.(map[string]any); ok && hookListHasGate(hm) {
			removed = true
			continue
		}
		filtered = append(filtered, h)
	}

	hooks["PreToolUse"] = filtered
	settings["hooks"] = hooks

	if err := writeSettings(path, settings); err != nil {
		return err
	}

	return out.Write(map[string]any{
		"status":  "uninstalled",
		"removed": removed,
	})
}

func runHookStatus(cmd *cobra.Command, args []string) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}

	status := map[string]any{
		"settings_path": path,
		"catalog_hash":  policy.Default().ComputeHash(),
	}

	configured := map[string]bool{}
	for _, m := range hookMatchers {
		configured[m] = false
	}

	settings, err := readSettings(path)
	if err == nil {
		if hooks, ok := settings["hooks"].(map[string]any); ok {
			if preToolUse, ok := hooks["PreToolUse"].([]any); ok {
				for _, h := range preToolUse {
					hm, ok := h.(map[string]any)
					if !ok || !hookListHasGate(hm) {
						continue
					}
					if matcher, ok := hm["matcher"].(string); ok {
						if _, tracked := configured[matcher]; tracked {
							configured[matcher] = true
						}
					}
				}
			}
		}
	}

	allConfigured := true
	anyConfigured := false
	for _, ok := range configured {
		allConfigured = allConfigured && ok
		anyConfigured = anyConfigured || ok
	}
	status["matchers"] = configured

	switch {
	case allConfigured:
		status["status"] = "installed"
	case anyConfigured:
		status["status"] = "partial"
	default:
		status["status"] = "not_installed"
	}

	out := output.New(output.Format(GetOutput()))
	return out.Write(status)
}
