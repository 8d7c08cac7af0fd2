// cmd/surveyqc/run.go
package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/borealfield/surveyqc/pkg/checks"
	"github.com/borealfield/surveyqc/pkg/dataset"
	"github.com/borealfield/surveyqc/pkg/review"
	"github.com/borealfield/surveyqc/pkg/runner"
	"github.com/borealfield/surveyqc/pkg/store"
)

var (
	sensitivityFlag string
	yearFlag        string
	datasetsFlag    []string
)

// runCmd drives the validation passes over the configured datasets
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the validation passes over the survey datasets",
	Long: `Loads each dataset from the input directory, runs its validation
passes in order, and writes the corrected records plus one audit log per
pass to the output directory.

Flagged values block on the operator. The run is strictly sequential:
one dataset, one pass, one decision at a time.`,
	RunE: runValidation,
}

func init() {
	runCmd.Flags().StringVar(&sensitivityFlag, "sensitivity", "",
		`outlier fences to enforce: "extreme" or "mild"`)
	runCmd.Flags().StringVar(&yearFlag, "year", "",
		"survey year or season label for the run (prompted when empty)")
	runCmd.Flags().StringSliceVar(&datasetsFlag, "datasets", nil,
		"dataset kinds to process (default: all discovered)")
}

func runValidation(cmd *cobra.Command, args []string) (err error) {
	if cmd.Flags().Changed("sensitivity") {
		cfg.Sensitivity = sensitivityFlag
	}
	if len(datasetsFlag) > 0 {
		cfg.Datasets = datasetsFlag
	}
	sensitivity, err := checks.ParseSensitivity(cfg.Sensitivity)
	if err != nil {
		return err
	}

	var kinds []dataset.DatasetKind
	for _, name := range cfg.Datasets {
		k, err := dataset.ParseKind(name)
		if err != nil {
			return err
		}
		kinds = append(kinds, k)
	}

	console := review.NewConsole(os.Stdin, os.Stdout)
	year := yearFlag
	if year == "" {
		if year, err = console.ReadLine("Survey year or season label: "); err != nil {
			return err
		}
	}

	st, err := store.NewCSVStore(cfg.InputDir, cfg.OutputDir, log)
	if err != nil {
		return err
	}

	r, err := runner.New(st, console, sensitivity, log)
	if err != nil {
		st.Close()
		return err
	}
	if cfg.AuditDB != "" {
		db, err := store.OpenAuditDB(cfg.AuditDB, log)
		if err != nil {
			st.Close()
			return err
		}
		r = r.WithAuditDB(db)
	}
	r = r.WithYearLabel(year)
	defer func() {
		err = multierr.Append(err, r.Close())
	}()

	summary, err := r.Run(cmd.Context(), kinds)
	if err != nil {
		return err
	}
	printSummary(summary)

	if !summary.Success() {
		log.Warn("Some datasets did not complete",
			zap.Int("failed_passes", summary.FailedCount),
			zap.Int("failed_datasets", len(summary.DatasetErrors)))
		return fmt.Errorf("run completed with failures")
	}
	return nil
}

func printSummary(s *runner.RunSummary) {
	fmt.Println()
	fmt.Printf("Run %s finished in %s\n", s.RunID, s.Duration.Round(time.Millisecond))
	fmt.Printf("  datasets:    %d\n", len(s.Datasets))
	fmt.Printf("  passes:      %d (%d succeeded, %d failed)\n",
		len(s.Passes), s.SucceededCount, s.FailedCount)
	fmt.Printf("  log entries: %d\n", s.TotalEntries)

	actions := make([]string, 0, len(s.Decisions))
	for a := range s.Decisions {
		actions = append(actions, a)
	}
	sort.Strings(actions)
	for _, a := range actions {
		fmt.Printf("  %-11s %d\n", a+":", s.Decisions[a])
	}

	for _, p := range s.Passes {
		for _, w := range p.Warnings {
			fmt.Printf("  warning [%s/%s]: %s\n", p.Dataset, p.Pass, w)
		}
	}
	for name, err := range s.DatasetErrors {
		fmt.Printf("  failed [%s]: %v\n", name, err)
	}
}
