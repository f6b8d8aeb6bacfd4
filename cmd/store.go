package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/persist"
	"github.com/huangsam/safe/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sqlitePath resolves the database file of a SQLite store.
func sqlitePath(connStr, def string) string {
	if connStr != "" {
		return connStr
	}
	return def
}

// storeCmd focused on storage management.
//
// Note: clear and migrate only validate config. They must not hold the
// database open while removing files or running migrations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage assessment state and score history storage",
	Long: `Manage the two stores that hold assessments.

The state store keeps the ratings, priorities and weights of each assessment.
The assessment store keeps assessment records and the score history.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None

Subcommands:
  status  - Show store statistics and connection info
  clear   - Remove all stored data
  migrate - Run assessment schema migrations
  export  - Export assessments and scores to Parquet`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show backend, connection health, row counts and timestamps of both stores.

Examples:
  safe store status
  SAFE_ASSESSMENT_BACKEND=postgresql SAFE_ASSESSMENT_DB_CONNECT="host=... dbname=safe" safe store status`,
	Args:    cobra.NoArgs,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := persist.GetStoreStatus(storeManager)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		persist.PrintStateStatus(status.State)
		fmt.Println()
		persist.PrintAssessmentStatus(status.Assessments)
	},
}

// storeClearCmd clears both stores.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all assessment state and score history",
	Long: `Delete all stored data from the configured backends.

For SQLite: Deletes the database files
For MySQL/PostgreSQL: Drops the tables

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  safe store export --output-file backup
  safe store clear`,
	Args:    cobra.NoArgs,
	PreRunE: configOnlySetup,
	Run: func(_ *cobra.Command, _ []string) {
		statePath := sqlitePath(cfg.StateDBConnect, contract.GetStateDBFilePath())
		if err := persist.ClearState(cfg.StateBackend, statePath, cfg.StateDBConnect); err != nil {
			contract.LogFatal("Failed to clear state", err)
		}
		assessmentPath := sqlitePath(cfg.AssessmentDBConnect, contract.GetAssessmentDBFilePath())
		if err := persist.ClearAssessments(cfg.AssessmentBackend, assessmentPath, cfg.AssessmentDBConnect); err != nil {
			contract.LogFatal("Failed to clear assessments", err)
		}
		fmt.Println("Stores cleared successfully.")
	},
}

// storeMigrateCmd runs database migrations for the assessment store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run assessment schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the assessment store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  safe store migrate

  # Migrate to specific version
  safe store migrate --target-version 1

  # Rollback to initial state
  safe store migrate --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: configOnlySetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		connStr := cfg.AssessmentDBConnect
		if cfg.AssessmentBackend == schema.SQLiteBackend {
			connStr = sqlitePath(connStr, contract.GetAssessmentDBFilePath())
		}
		if err := persist.MigrateAssessments(cfg.AssessmentBackend, connStr, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// storeExportCmd exports assessments to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export assessments and score history to Parquet",
	Long: `Export every assessment and score record to two Parquet files named after
--output-file, for use with DuckDB, pandas or BI tools.

Requires: --output-file parameter

Examples:
  safe store export --output-file safe-data
  duckdb -c "SELECT city, avg(overall) FROM read_parquet('safe-data.score_records.parquet') JOIN read_parquet('safe-data.assessments.parquet') USING (assessment_id) GROUP BY city"`,
	Args:    cobra.NoArgs,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.OutputFile == "" {
			contract.LogFatal("Failed to export assessments", errors.New("--output-file is required for export command"))
		}
		if err := persist.ExportAssessments(storeManager.GetAssessmentStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export assessments", err)
		}
	},
}
