package cmd

import (
	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/outwriter"
	"github.com/spf13/cobra"
)

// catalogCmd lists the metric catalog.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the dimensions, KPI themes and metrics of the catalog.",
	Long: `Show the catalog that assessments are rated against.

By default prints one row per dimension with its KPI theme and metric counts.
With --detail every metric is listed with its default priority.

A custom catalog can be supplied as YAML with --catalog.

Examples:
  # Summary of the embedded SAFE catalog
  safe catalog

  # Every metric, as CSV
  safe catalog --detail --output csv --output-file metrics.csv`,
	Args:    cobra.NoArgs,
	PreRunE: catalogSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := outwriter.WriteCatalog(taxonomy, cfg); err != nil {
			contract.LogFatal("Cannot write catalog", err)
		}
	},
}
