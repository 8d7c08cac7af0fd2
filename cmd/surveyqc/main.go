// cmd/surveyqc/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/borealfield/surveyqc/pkg/config"
	"github.com/borealfield/surveyqc/pkg/logger"
)

var (
	// Global flags
	configPath string
	inputDir   string
	outputDir  string
	auditDB    string
	logLevel   string
	logFile    string

	cfg *config.Config
	log *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "surveyqc",
	Short: "Human-in-the-loop validation for field-survey datasets",
	Long: `surveyqc screens tabular field-survey data for suspect records:
statistical outliers, out-of-bounds cover values, implausible site
coordinates and terrain measures, and mismatched site codes.

Each flagged value is presented to the operator for a decision (keep,
correct, or remove). Corrected datasets are written alongside a per-pass
audit log of every flag and decision.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Flags given on the command line win over config and env.
		if cmd.Flags().Changed("input") {
			cfg.InputDir = inputDir
		}
		if cmd.Flags().Changed("output") {
			cfg.OutputDir = outputDir
		}
		if cmd.Flags().Changed("audit-db") {
			cfg.AuditDB = auditDB
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("log-file") {
			cfg.Logging.File = logFile
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log, err = logger.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to a surveyqc.yaml config file")
	pf.StringVar(&inputDir, "input", "", "directory holding the survey CSV files")
	pf.StringVar(&outputDir, "output", "", "directory for corrected records and pass logs")
	pf.StringVar(&auditDB, "audit-db", "", "SQLite audit-event database (empty disables)")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "rotating JSON log file (empty logs to stderr only)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
