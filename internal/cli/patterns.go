package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hmesfin/agentgate/internal/output"
)

var (
	flagPatternDomain     string
	flagPatternFormat     string
	flagPatternOutputFile string
)

func init() {
	patternsListCmd.Flags().StringVarP(&flagPatternDomain, "domain", "d", "", "filter by domain: allow, block, paths")

	patternsExportCmd.Flags().StringVarP(&flagPatternFormat, "format", "f", "json", "export format: json, yaml")
	patternsExportCmd.Flags().StringVarP(&flagPatternOutputFile, "output-file", "O", "", "output file (default: stdout)")

	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsTestCmd)
	patternsCmd.AddCommand(patternsExportCmd)
	patternsCmd.AddCommand(patternsVersionCmd)

	rootCmd.AddCommand(patternsCmd)
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect the gate's rule catalogs",
	Long: `Inspect the ordered rule catalogs used to classify actions.

Rules are evaluated in declaration order with first-match-wins semantics,
and the allow list is always checked in full before any block rule. An
explicit allow match overrides every block rule, so commands are opted
back in by adding a narrower allow rule, never by loosening the block
list. Project configs may append extra rules after the builtins; builtin
ordering is never disturbed.`,
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in declaration order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		export := newCatalog(cfg).ExportCatalog()
		out := output.New(output.Format(GetOutput()))

		switch flagPatternDomain {
		case "":
			return out.Write(export)
		case "allow":
			return out.Write(export.Commands.Allow)
		case "block":
			return out.Write(export.Commands.Block)
		case "paths":
			return out.Write(export.Paths)
		default:
			return fmt.Errorf("invalid domain: %s (must be allow, block, or paths)", flagPatternDomain)
		}
	},
}

var patternsTestCmd = &cobra.Command{
	Use:   "test <command>",
	Short: "Test which rule a command matches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		result := newCatalog(cfg).Commands.Classify(args[0])

		out := output.New(output.Format(GetOutput()))
		return out.Write(map[string]any{
			"input":           args[0],
			"decision":        string(result.Decision),
			"category":        result.Category,
			"matched_pattern": result.MatchedPattern,
			"parse_error":     result.ParseError,
		})
	},
}

var patternsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalogs for external tools",
	Long: `Export all rules with a deterministic SHA256 catalog hash.

The hash changes whenever any rule changes, letting external tooling
detect stale copies of the catalog.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog := newCatalog(cfg)

		var target *os.File
		if flagPatternOutputFile != "" {
			f, err := os.Create(flagPatternOutputFile)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			target = f
		} else {
			target = os.Stdout
		}

		switch flagPatternFormat {
		case "json":
			data, err := catalog.ExportJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(target, data)
			return err
		case "yaml":
			out := output.New(output.FormatYAML, output.WithOutput(target))
			return out.Write(catalog.ExportCatalog())
		default:
			return fmt.Errorf("invalid format: %s (must be json or yaml)", flagPatternFormat)
		}
	},
}

var patternsVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the catalog hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog := newCatalog(cfg)
		out := output.New(output.Format(GetOutput()))
		return out.Write(map[string]any{
			"sha256":     catalog.ComputeHash(),
			"rule_count": catalog.ExportCatalog().Metadata.RuleCount,
		})
	},
}
