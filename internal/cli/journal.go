package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hmesfin/agentgate/internal/journal"
	"github.com/hmesfin/agentgate/internal/output"
)

var flagJournalLimit int

func init() {
	journalListCmd.Flags().IntVarP(&flagJournalLimit, "limit", "n", 50, "maximum entries to show (0 for all)")

	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalClearCmd)

	rootCmd.AddCommand(journalCmd)
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect recorded gate decisions",
	Long: `Inspect the decision journal.

The gate records each decision (allow, block, warn) best-effort. The
journal is purely observational: it never influences classification and
journal failures never block the agent.`,
}

func openJournal() (*journal.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, fmt.Errorf("journal is disabled (journal.enabled = false)")
	}
	return journal.OpenAndMigrate(cfg.Journal.DatabasePath)
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent decisions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openJournal()
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.List(flagJournalLimit)
		if err != nil {
			return err
		}

		out := output.New(output.Format(GetOutput()))
		if GetOutput() == "text" {
			for _, e := range entries {
				line := fmt.Sprintf("%s  %-5s  %-8s  %s",
					e.CreatedAt.Format("2006-01-02 15:04:05"), e.Tool, e.Decision, e.Input)
				if e.Category != "" {
					line += fmt.Sprintf("  [%s]", e.Category)
				}
				fmt.Println(line)
			}
			return nil
		}
		return out.Write(map[string]any{
			"count":   len(entries),
			"entries": entries,
		})
	},
}

var journalClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all journal entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openJournal()
		if err != nil {
			return err
		}
		defer db.Close()

		removed, err := db.Clear()
		if err != nil {
			return err
		}

		out := output.New(output.Format(GetOutput()))
		return out.Write(map[string]any{
			"status":  "cleared",
			"removed": removed,
		})
	},
}
