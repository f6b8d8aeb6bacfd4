package cmd

import (
	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/outwriter"
	"github.com/spf13/cobra"
)

// reportCmd groups reporting across many assessments.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report across stored assessments",
}

// reportBatchCmd evaluates every matching assessment concurrently.
var reportBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate all stored assessments concurrently",
	Long: `Evaluate every stored assessment, or those of one city or status, using
--workers goroutines. Results keep the listing order. Nothing is recorded in the
score history.

Examples:
  # All assessments in one city
  safe report batch --city Leeds

  # Every assessment to a workbook
  safe report batch --output xlsx --output-file batch.xlsx --workers 8`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		filter, err := filterFromFlags(cmd)
		if err != nil {
			contract.LogFatal("Invalid filter", err)
		}
		entries, err := mustService().Batch(rootCtx, filter, cfg.Engine, cfg.Workers)
		if err != nil {
			contract.LogFatal("Cannot run batch report", err)
		}
		if err := outwriter.WriteBatch(entries, cfg); err != nil {
			contract.LogFatal("Cannot write batch report", err)
		}
	},
}
