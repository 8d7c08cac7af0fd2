// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. Values resolve in
// order: built-in defaults, then the YAML file, then the environment
// (a .env file is honored), then command-line flags on top.
type Config struct {
	// Directories for the survey CSV files
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`

	// AuditDB is the SQLite file collecting normalized audit events
	// across runs. Empty disables it; the CSV logs are always written.
	AuditDB string `yaml:"audit_db"`

	// Sensitivity selects the outlier fences: "extreme" or "mild"
	Sensitivity string `yaml:"sensitivity"`

	// Datasets restricts a run to the named kinds. Empty means every
	// kind discovered in the input directory.
	Datasets []string `yaml:"datasets"`

	Logging Logging `yaml:"logging"`
}

// Logging configures the zap logger and its optional rotating file.
type Logging struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "console" or "json"
	File       string `yaml:"file"`   // empty logs to stderr only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		InputDir:    "data/incoming",
		OutputDir:   "data/validated",
		AuditDB:     "surveyqc_audit.db",
		Sensitivity: "extreme",
		Logging: Logging{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load builds the configuration from the optional YAML file at path
// and the environment.
func Load(path string) (*Config, error) {
	// A .env file keeps per-machine settings out of the shell profile.
	// Missing files are fine.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.InputDir = getEnv("SURVEYQC_INPUT_DIR", c.InputDir)
	c.OutputDir = getEnv("SURVEYQC_OUTPUT_DIR", c.OutputDir)
	c.AuditDB = getEnv("SURVEYQC_AUDIT_DB", c.AuditDB)
	c.Sensitivity = getEnv("SURVEYQC_SENSITIVITY", c.Sensitivity)

	c.Logging.Level = getEnv("SURVEYQC_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("SURVEYQC_LOG_FORMAT", c.Logging.Format)
	c.Logging.File = getEnv("SURVEYQC_LOG_FILE", c.Logging.File)
	c.Logging.MaxSizeMB = getEnvAsInt("SURVEYQC_LOG_MAX_SIZE_MB", c.Logging.MaxSizeMB)
	c.Logging.MaxBackups = getEnvAsInt("SURVEYQC_LOG_MAX_BACKUPS", c.Logging.MaxBackups)
	c.Logging.MaxAgeDays = getEnvAsInt("SURVEYQC_LOG_MAX_AGE_DAYS", c.Logging.MaxAgeDays)
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("input directory is required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if c.Sensitivity != "extreme" && c.Sensitivity != "mild" {
		return fmt.Errorf("sensitivity must be \"extreme\" or \"mild\", got %q", c.Sensitivity)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("log format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return errors.New("log rotation settings cannot be negative")
	}
	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
