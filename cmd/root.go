package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/huangsam/safe/internal/catalog"
	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/persist"
	"github.com/huangsam/safe/internal/tracker"
	"github.com/huangsam/safe/schema"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// taxonomy is the catalog loaded during setup.
var taxonomy *schema.Taxonomy

// storeManager is the global persistence manager instance.
var storeManager contract.StoreManager = persist.Manager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "safe",
	Short:              "Score age-friendly city assessments.",
	Long:               `SAFE records city assessments against a catalog of metrics and turns ratings into dimension scores, categories and critical gaps.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A .env file is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		contract.LogWarn("Cannot load .env file", err)
	}

	setConfigFile()

	// Set environment variable prefix
	viper.SetEnvPrefix("SAFE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("top", contract.DefaultTop)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("completion-policy", schema.SimpleCompletion)
	viper.SetDefault("critical-policy", schema.FullCritical)
	viper.SetDefault("naming", schema.StandardNaming)
	viper.SetDefault("state-backend", schema.SQLiteBackend)
	viper.SetDefault("state-db-connect", "")
	viper.SetDefault("assessment-backend", schema.SQLiteBackend)
	viper.SetDefault("assessment-db-connect", "")
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("color", "yes")
}

// setConfigFile points viper at --config or the default .safe.yaml locations.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".safe") // Name of config file (without extension)
	viper.SetConfigType("yaml")  // We'll use YAML format
	viper.AddConfigPath(".")     // Look in the current directory
	viper.AddConfigPath("$HOME") // Look in the home directory
}

// configSetup merges all config sources, validates them and starts the logger.
func configSetup() error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 4. Structured logs go to stderr at the configured level
	if err := contract.InitLogger(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	contract.Logger().Debug("configuration loaded",
		zap.String("output", string(cfg.Output)),
		zap.String("completionPolicy", string(cfg.Engine.CompletionPolicy)),
		zap.String("criticalPolicy", string(cfg.Engine.CriticalPolicy)),
		zap.String("stateBackend", string(cfg.StateBackend)),
		zap.String("assessmentBackend", string(cfg.AssessmentBackend)))
	return nil
}

// catalogSetup validates config and loads the taxonomy. No store is opened.
func catalogSetup(_ *cobra.Command, _ []string) error {
	if err := configSetup(); err != nil {
		return err
	}
	tax, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	taxonomy = tax
	return nil
}

// sharedSetup loads config and taxonomy and opens both stores.
func sharedSetup(cmd *cobra.Command, args []string) error {
	if err := catalogSetup(cmd, args); err != nil {
		return err
	}
	return initStores()
}

// storeSetup validates config and opens both stores without loading the taxonomy.
func storeSetup(_ *cobra.Command, _ []string) error {
	if err := configSetup(); err != nil {
		return err
	}
	return initStores()
}

// configOnlySetup validates config for commands that manage storage without opening it.
func configOnlySetup(_ *cobra.Command, _ []string) error {
	return configSetup()
}

func initStores() error {
	if err := persist.InitStores(cfg.StateBackend, cfg.StateDBConnect, cfg.AssessmentBackend, cfg.AssessmentDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// newService builds the assessment service over the global stores.
func newService() (*tracker.Service, error) {
	return tracker.NewService(taxonomy, storeManager)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetStoreManager sets the global store manager.
func SetStoreManager(mgr contract.StoreManager) {
	storeManager = mgr
}
