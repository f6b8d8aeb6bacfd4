package contract

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/huangsam/safe/schema"
	"go.uber.org/zap/zapcore"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	DefaultTop       = 10
	MaxTop           = 1000
	DefaultLogLevel  = "warn"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the validated runtime configuration.
type Config struct {
	CatalogPath string // Empty means the embedded SAFE catalog

	Engine schema.EngineOptions

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Top        int
	Detail     bool
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	Workers  int
	LogLevel zapcore.Level

	StateBackend   schema.DatabaseBackend
	StateDBConnect string // Please use env var as this is plaintext

	AssessmentBackend   schema.DatabaseBackend
	AssessmentDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	Catalog             string `mapstructure:"catalog"`
	CompletionPolicy    string `mapstructure:"completion-policy"`
	CriticalPolicy      string `mapstructure:"critical-policy"`
	Naming              string `mapstructure:"naming"`
	Output              string `mapstructure:"output"`
	OutputFile          string `mapstructure:"output-file"`
	Precision           int    `mapstructure:"precision"`
	Top                 int    `mapstructure:"top"`
	Detail              bool   `mapstructure:"detail"`
	Width               int    `mapstructure:"width"`
	Color               string `mapstructure:"color"`
	Workers             int    `mapstructure:"workers"`
	LogLevel            string `mapstructure:"log-level"`
	StateBackend        string `mapstructure:"state-backend"`
	StateDBConnect      string `mapstructure:"state-db-connect"`
	AssessmentBackend   string `mapstructure:"assessment-backend"`
	AssessmentDBConnect string `mapstructure:"assessment-db-connect"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateEngineOptions(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// parseChoice matches raw case-insensitively against valid. Empty input yields def.
func parseChoice[T ~string](raw string, valid map[T]struct{}, def T, what string) (T, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	for v := range valid {
		if strings.EqualFold(string(v), raw) {
			return v, nil
		}
	}
	choices := make([]string, 0, len(valid))
	for v := range valid {
		choices = append(choices, string(v))
	}
	slices.Sort(choices)
	return "", fmt.Errorf("invalid %s '%s'. must be %s", what, raw, strings.Join(choices, ", "))
}

// validateEngineOptions resolves the scoring policies.
func validateEngineOptions(cfg *Config, input *ConfigRawInput) error {
	def := schema.DefaultEngineOptions()
	var err error
	if cfg.Engine.CompletionPolicy, err = parseChoice(input.CompletionPolicy, schema.ValidCompletionPolicies, def.CompletionPolicy, "completion policy"); err != nil {
		return err
	}
	if cfg.Engine.CriticalPolicy, err = parseChoice(input.CriticalPolicy, schema.ValidCriticalPolicies, def.CriticalPolicy, "critical policy"); err != nil {
		return err
	}
	if cfg.Engine.Naming, err = parseChoice(input.Naming, schema.ValidNamingSchemes, def.Naming, "naming scheme"); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates state and assessment backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	var err error

	// --- State Backend Validation ---
	cfg.StateBackend, err = parseChoice(input.StateBackend, schema.ValidDatabaseBackends, schema.SQLiteBackend, "state backend")
	if err != nil {
		return err
	}
	cfg.StateDBConnect = input.StateDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StateBackend, cfg.StateDBConnect); err != nil {
		return fmt.Errorf("state-db-connect: %w", err)
	}

	// --- Assessment Backend Validation ---
	cfg.AssessmentBackend, err = parseChoice(input.AssessmentBackend, schema.ValidDatabaseBackends, schema.SQLiteBackend, "assessment backend")
	if err != nil {
		return err
	}
	cfg.AssessmentDBConnect = input.AssessmentDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AssessmentBackend, cfg.AssessmentDBConnect); err != nil {
		return fmt.Errorf("assessment-db-connect: %w", err)
	}

	// Both stores in one SQLite file would fight over the schema
	if cfg.StateBackend == schema.SQLiteBackend && cfg.AssessmentBackend == schema.SQLiteBackend {
		statePath := cfg.StateDBConnect
		if statePath == "" {
			statePath = GetStateDBFilePath()
		}
		assessmentPath := cfg.AssessmentDBConnect
		if assessmentPath == "" {
			assessmentPath = GetAssessmentDBFilePath()
		}
		if statePath == assessmentPath {
			return fmt.Errorf("state and assessment storage must use different SQLite database files. Both resolve to %q", statePath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates presentation and execution fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.CatalogPath = strings.TrimSpace(input.Catalog)
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Top Validation ---
	if input.Top <= 0 || input.Top > MaxTop {
		return fmt.Errorf("top must be greater than 0 and cannot exceed %d (received %d)", MaxTop, input.Top)
	}
	cfg.Top = input.Top

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	if cfg.Output, err = parseChoice(input.Output, schema.ValidOutputModes, schema.TextOut, "output format"); err != nil {
		return err
	}
	if cfg.Output == schema.XLSXOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for xlsx output")
	}

	// --- 4. Log Level ---
	level := input.LogLevel
	if strings.TrimSpace(level) == "" {
		level = DefaultLogLevel
	}
	if cfg.LogLevel, err = zapcore.ParseLevel(level); err != nil {
		return fmt.Errorf("invalid --log-level value: %w", err)
	}

	return nil
}
