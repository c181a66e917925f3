package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/internal/validation"
)

// EnvPrefix namespaces all environment overrides, e.g. OSPS_LOGGING_LEVEL
const EnvPrefix = "OSPS"

// Config represents the complete application configuration
type Config struct {
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Paths       PathsConfig       `yaml:"paths" envconfig:"PATHS"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" envconfig:"CONCURRENCY"`
	Import      ImportConfig      `yaml:"import" envconfig:"IMPORT"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" envconfig:"TELEMETRY"`
	Storage     StorageConfig     `yaml:"storage" envconfig:"STORAGE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PathsConfig contains file system paths. Relative directories are
// resolved against BaseDir, or the working directory when it is empty.
type PathsConfig struct {
	BaseDir   string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// ConcurrencyConfig bounds the worker pools. Zero selects the CPU-based default.
type ConcurrencyConfig struct {
	MaxDegreeOfParallelism int `yaml:"max_degree_of_parallelism" envconfig:"MAX_DEGREE_OF_PARALLELISM" validate:"gte=0"`
}

// ImportConfig contains defaults for observed-data and PK-analysis import
type ImportConfig struct {
	Delimiter     string `yaml:"delimiter" envconfig:"DELIMITER" validate:"delimiter"`
	Configuration string `yaml:"configuration" envconfig:"CONFIGURATION"`
	WriteBOM      bool   `yaml:"write_bom" envconfig:"WRITE_BOM"`
}

// TelemetryConfig enables tracing and the metrics textfile
type TelemetryConfig struct {
	Tracing     bool   `yaml:"tracing" envconfig:"TRACING"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// StorageConfig locates the repository database
type StorageConfig struct {
	Enabled      bool   `yaml:"enabled" envconfig:"ENABLED"`
	DatabaseFile string `yaml:"database_file" envconfig:"DATABASE_FILE" validate:"required"`
}

// Load builds the configuration from defaults, then the YAML file at
// path (or the first file found in the usual locations), then
// environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file at path onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
	}
	return nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	return validation.Default().Struct(c)
}

// DelimiterRune returns the import delimiter as a rune
func (c *Config) DelimiterRune() rune {
	if c.Import.Delimiter == "" {
		return ','
	}
	return []rune(c.Import.Delimiter)[0]
}

// findConfigFile returns the first existing config file in the usual locations
func findConfigFile() string {
	locations := []string{
		"ospsuite.yaml",
		"configs/ospsuite.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "ospsuite.log",
		},
		Paths: PathsConfig{
			DataDir:   "data",
			OutputDir: "output",
			LogsDir:   "logs",
		},
		Import: ImportConfig{
			Delimiter: ",",
		},
		Storage: StorageConfig{
			DatabaseFile: "observed_data.db",
		},
	}
}
