// Package cli implements the Cobra command-line interface for agentgate.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hmesfin/agentgate/internal/config"
	"github.com/hmesfin/agentgate/internal/output"
	"github.com/hmesfin/agentgate/internal/policy"
)

// Version information set by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flag values
var (
	flagConfig  string
	flagOutput  string
	flagJSON    bool
	flagVerbose bool
	flagProject string
)

var rootCmd = &cobra.Command{
	Use:   "agentgate",
	Short: "Command gate between coding agents and Docker-managed services",
	Long: `agentgate intercepts agent tool calls before they run and checks them
against the project's Docker topology.

Commands that conflict with services already running under docker compose
(dev servers, Django management commands, celery workers) are blocked with
guidance pointing at the compose equivalent. Writes to TypeScript/Vue
sources get a non-blocking quality reminder, optionally enriched with the
live type-check error count.

Decisions:
  BLOCK  - exit 2, explanation on stderr (command conflicts with compose)
  WARN   - exit 0, advisory on stderr (quality reminder, never blocks)
  ALLOW  - exit 0, silent`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagProject == "" {
			return nil
		}
		if err := os.Chdir(flagProject); err != nil {
			return fmt.Errorf("changing directory to %s: %w", flagProject, err)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		// When no subcommand given, show quick reference card
		showQuickReference()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		goVersion := runtime.Version()
		configPath := flagConfig
		if configPath == "" {
			home, _ := os.UserHomeDir()
			configPath = filepath.Join(home, ".agentgate", "config.toml")
		}
		projectPath, _ := os.Getwd()

		payload := map[string]any{
			"version":      version,
			"commit":       commit,
			"build_date":   date,
			"go_version":   goVersion,
			"config_path":  configPath,
			"project_path": projectPath,
			"catalog_hash": policy.Default().ComputeHash(),
		}

		switch GetOutput() {
		case "json", "yaml":
			out := output.New(output.Format(GetOutput()))
			return out.Write(payload)
		case "text":
			fmt.Printf("agentgate %s\n", version)
			fmt.Printf("  commit:  %s\n", commit)
			fmt.Printf("  built:   %s\n", date)
			fmt.Printf("  go:      %s\n", goVersion)
			fmt.Printf("  config:  %s\n", configPath)
			fmt.Printf("  project: %s\n", projectPath)
			return nil
		default:
			return fmt.Errorf("unsupported format: %s", GetOutput())
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetOutput returns the configured output format.
// Precedence: CLI flags > AGENTGATE_OUTPUT_FORMAT env > default
func GetOutput() string {
	if flagJSON {
		return "json"
	}
	if flagOutput != "text" {
		return flagOutput
	}

	if envFormat := os.Getenv("AGENTGATE_OUTPUT_FORMAT"); envFormat != "" {
		switch envFormat {
		case "json", "yaml", "text":
			return envFormat
		}
	}

	return flagOutput
}

// loadConfig loads the layered configuration for the current project.
func loadConfig() (config.Config, error) {
	project, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("getting working directory: %w", err)
	}
	return config.Load(config.LoadOptions{
		ProjectDir: project,
		ConfigPath: flagConfig,
	})
}

// newCatalog builds the catalog from config extras merged after builtins.
func newCatalog(cfg config.Config) *policy.Catalog {
	if len(cfg.Rules.ExtraAllow) == 0 && len(cfg.Rules.ExtraBlock) == 0 {
		return policy.Default()
	}
	return policy.NewCatalog(policy.CatalogOptions{
		ExtraAllow: cfg.Rules.ExtraAllow,
		ExtraBlock: cfg.Rules.ExtraBlock,
	})
}

// newLogger returns a stderr logger honoring config and --verbose.
func newLogger(cfg config.Config) *log.Logger {
	level := log.WarnLevel
	switch cfg.General.LogLevel {
	case "debug":
		level = log.DebugLevel
	case "info":
		level = log.InfoLevel
	case "error":
		level = log.ErrorLevel
	}
	if flagVerbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:  level,
		Prefix: "agentgate",
	})
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "output format: text, json, yaml (env: AGENTGATE_OUTPUT_FORMAT)")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "shorthand for --output=json")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "C", "", "project directory")

	rootCmd.AddCommand(versionCmd)
}
