// Package cmd defines the command-line interface for safe.
package cmd

import (
	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(assessmentCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the assessment subcommands to the parent assessment command
	assessmentCmd.AddCommand(assessmentCreateCmd)
	assessmentCmd.AddCommand(assessmentListCmd)
	assessmentCmd.AddCommand(assessmentShowCmd)
	assessmentCmd.AddCommand(assessmentRateCmd)
	assessmentCmd.AddCommand(assessmentPriorityCmd)
	assessmentCmd.AddCommand(assessmentWeightCmd)
	assessmentCmd.AddCommand(assessmentImportCmd)
	assessmentCmd.AddCommand(assessmentScoreCmd)
	assessmentCmd.AddCommand(assessmentSubmitCmd)

	// Add the report subcommands to the parent report command
	reportCmd.AddCommand(reportBatchCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("catalog", "", "Path to a YAML catalog (defaults to the embedded SAFE catalog)")
	rootCmd.PersistentFlags().String("completion-policy", string(schema.SimpleCompletion), "Completion measure: simple or fieldWeighted")
	rootCmd.PersistentFlags().String("critical-policy", string(schema.FullCritical), "Critical metrics reported: full or bottomDecile")
	rootCmd.PersistentFlags().String("naming", string(schema.StandardNaming), "Category labels: standard or medal")
	rootCmd.PersistentFlags().Bool("detail", false, "Print KPI-level scores and full catalog listings")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or xlsx")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for scores (1 or 2)")
	rootCmd.PersistentFlags().Int("top", contract.DefaultTop, "Maximum number of critical metrics to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers for batch reports")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("state-backend", string(schema.SQLiteBackend), "State backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("state-db-connect", "", "Database connection string for the state store (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("assessment-backend", string(schema.SQLiteBackend), "Assessment backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("assessment-db-connect", "", "Database connection string for assessments and score history")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Flags below are read straight from the command, not through Viper
	scoreCmd.Flags().Bool("legacy", false, "Read the legacy joined-key state format")
	assessmentImportCmd.Flags().Bool("legacy", false, "Read the legacy joined-key state format")

	assessmentCreateCmd.Flags().String("respondent", "", "Name of the person answering the assessment")
	assessmentCreateCmd.Flags().String("organisation", "", "Organisation of the respondent")
	assessmentCreateCmd.Flags().String("city", "", "City being assessed (required)")
	assessmentCreateCmd.Flags().String("borough", "", "Borough within the city")
	assessmentCreateCmd.Flags().String("ward", "", "Ward within the borough")
	_ = assessmentCreateCmd.MarkFlagRequired("city")

	assessmentListCmd.Flags().String("city", "", "Only list assessments for this city")
	assessmentListCmd.Flags().String("status", "", "Only list assessments with this status: draft or submitted")
	reportBatchCmd.Flags().String("city", "", "Only evaluate assessments for this city")
	reportBatchCmd.Flags().String("status", "", "Only evaluate assessments with this status: draft or submitted")

	for _, c := range []*cobra.Command{assessmentRateCmd, assessmentPriorityCmd, assessmentWeightCmd} {
		c.Flags().String("dimension", "", "Dimension name")
		c.Flags().String("kpi", "", "KPI theme name")
		_ = c.MarkFlagRequired("dimension")
		_ = c.MarkFlagRequired("kpi")
	}
	assessmentRateCmd.Flags().String("metric", "", "Metric name")
	assessmentRateCmd.Flags().Int("rating", 0, "Rating from 1 to 5")
	_ = assessmentRateCmd.MarkFlagRequired("metric")
	_ = assessmentRateCmd.MarkFlagRequired("rating")
	assessmentPriorityCmd.Flags().String("metric", "", "Metric name")
	assessmentPriorityCmd.Flags().String("priority", "", "Priority: A or B or C")
	_ = assessmentPriorityCmd.MarkFlagRequired("metric")
	_ = assessmentPriorityCmd.MarkFlagRequired("priority")
	assessmentWeightCmd.Flags().String("metric", "", "Metric name (omit to weight the KPI theme)")
	assessmentWeightCmd.Flags().Float64("weight", 0, "Weight as a percentage of the parent group")
	_ = assessmentWeightCmd.MarkFlagRequired("weight")

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
