package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/huangsam/safe/core"
	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/outwriter"
	"github.com/huangsam/safe/internal/tracker"
	"github.com/spf13/cobra"
)

// readStateFile reads a state document from path, or stdin when path is "-".
func readStateFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read state file: %w", err)
	}
	return data, nil
}

// scoreCmd evaluates a state file without touching any store.
var scoreCmd = &cobra.Command{
	Use:   "score <state.json>",
	Short: "Score an assessment state file.",
	Long: `Evaluate a state document against the catalog and print the report.

The report holds dimension and overall scores, completion, the performance
category, critical metrics and insights. Nothing is stored.

Pass "-" to read the state from stdin. Use --legacy for documents whose keys
were joined with "||"; keys that match nothing in the catalog are skipped.

Examples:
  # Score a state file
  safe score state.json

  # Score a legacy export with the alternate policies
  safe score old.json --legacy --completion-policy fieldWeighted --critical-policy bottomDecile

  # Write an Excel workbook
  safe score state.json --output xlsx --output-file report.xlsx`,
	Args:    cobra.ExactArgs(1),
	PreRunE: catalogSetup,
	Run: func(cmd *cobra.Command, args []string) {
		data, err := readStateFile(args[0])
		if err != nil {
			contract.LogFatal("Cannot score state", err)
		}
		legacy, _ := cmd.Flags().GetBool("legacy")
		state, skipped, err := tracker.DecodeState(taxonomy, data, legacy)
		if err != nil {
			contract.LogFatal("Invalid state document", err)
		}
		for _, key := range skipped {
			contract.LogWarn("Skipped unknown key", fmt.Errorf("%q", key))
		}

		report := core.Evaluate(taxonomy, state, cfg.Engine)
		if err := outwriter.WriteReport(filepath.Base(args[0]), report, cfg); err != nil {
			contract.LogFatal("Cannot write report", err)
		}
	},
}
