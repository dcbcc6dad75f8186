package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hmesfin/agentgate/internal/output"
	"github.com/hmesfin/agentgate/internal/policy"
)

var (
	flagCheckPath     string
	flagCheckExitCode bool
)

func init() {
	checkCmd.Flags().StringVarP(&flagCheckPath, "path", "p", "", "classify a file path instead of a command")
	checkCmd.Flags().BoolVar(&flagCheckExitCode, "exit-code", false, "return exit code 2 if the input would be blocked")

	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [command]",
	Short: "Dry-run the gate for a command or file path",
	Long: `Simulate the gate's decision without an agent event.

Examples:
  agentgate check "npm run dev"
  agentgate check "docker compose run --rm django python manage.py migrate"
  agentgate check --path frontend/src/components/Foo.vue`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog := newCatalog(cfg)
	out := output.New(output.Format(GetOutput()))

	if flagCheckPath != "" {
		if len(args) > 0 {
			return fmt.Errorf("pass either a command or --path, not both")
		}
		return checkPath(out, catalog, flagCheckPath)
	}

	if len(args) == 0 {
		return fmt.Errorf("command argument or --path required")
	}
	return checkCommand(out, catalog, args[0])
}

func checkCommand(out *output.Writer, catalog *policy.Catalog, command string) error {
	result := catalog.Commands.Classify(command)

	payload := map[string]any{
		"input":           command,
		"decision":        string(result.Decision),
		"matched_pattern": result.MatchedPattern,
	}
	if result.Decision == policy.DecisionBlock {
		payload["category"] = result.Category
		payload["message"] = policy.ResolveBlockMessage(result.Category)
	}

	if GetOutput() == "text" {
		printCheckResult(command, result)
	} else if err := out.Write(payload); err != nil {
		return err
	}

	if flagCheckExitCode && result.Decision == policy.DecisionBlock {
		return &exitCodeError{code: 2}
	}
	return nil
}

func checkPath(out *output.Writer, catalog *policy.Catalog, path string) error {
	category, matched := catalog.MatchAdvisory(path)

	payload := map[string]any{
		"input":    path,
		"decision": string(policy.DecisionAllow),
	}
	if matched {
		payload["decision"] = string(policy.DecisionWarn)
		payload["category"] = category
		if msg, ok := policy.ResolveAdvisoryMessage(category); ok {
			payload["message"] = msg
		}
	}

	if GetOutput() == "text" {
		printPathResult(path, category, matched)
		return nil
	}
	return out.Write(payload)
}

// exitCodeError carries a specific process exit code out of a RunE.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// ExitCode extracts a requested exit code from an Execute error.
func ExitCode(err error) (int, bool) {
	if e, ok := err.(*exitCodeError); ok {
		return e.code, true
	}
	return 0, false
}
