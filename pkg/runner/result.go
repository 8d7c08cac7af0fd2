// pkg/runner/result.go
package runner

import (
	"time"

	"go.uber.org/zap"

	"github.com/borealfield/surveyqc/pkg/audit"
	"github.com/borealfield/surveyqc/pkg/dataset"
)

// PassResult records the outcome of one validation pass over one
// dataset.
type PassResult struct {
	RunID     string
	Dataset   string
	Pass      dataset.PassName
	Rows      int
	Entries   int            // audit log rows the pass produced
	Decisions map[string]int // reviewer actions by name ("keep", "correct", ...)
	Warnings  []string
	Err       error
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// NewPassResult starts timing a pass.
func NewPassResult(runID, datasetName string, pass dataset.PassName) *PassResult {
	return &PassResult{
		RunID:     runID,
		Dataset:   datasetName,
		Pass:      pass,
		Decisions: make(map[string]int),
		StartTime: time.Now(),
	}
}

// Complete stops the clock and folds the pass log into the result:
// the entry count and, for sparse logs, the per-action tally.
func (r *PassResult) Complete(log *audit.Log) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	if log == nil {
		return
	}
	r.Entries = log.Len()
	for _, row := range log.Rows() {
		if e, ok := row.(audit.Entry); ok {
			r.Decisions[e.Action]++
		}
	}
}

// Fail stops the clock and records the pass error.
func (r *PassResult) Fail(err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Err = err
}

// AddWarning appends a residual-check warning.
func (r *PassResult) AddWarning(w string) {
	r.Warnings = append(r.Warnings, w)
}

// Success reports whether the pass completed.
func (r *PassResult) Success() bool {
	return r.Err == nil
}

// RunSummary aggregates every pass of one run across all datasets.
type RunSummary struct {
	RunID          string
	Datasets       []string
	Passes         []PassResult
	SucceededCount int
	FailedCount    int
	TotalEntries   int
	Decisions      map[string]int
	DatasetErrors  map[string]error // datasets that failed before or during a pass
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}

// NewRunSummary starts timing a run.
func NewRunSummary(runID string) *RunSummary {
	return &RunSummary{
		RunID:         runID,
		Decisions:     make(map[string]int),
		DatasetErrors: make(map[string]error),
		StartTime:     time.Now(),
	}
}

// AddDataset registers a dataset the run touched.
func (s *RunSummary) AddDataset(name string) {
	s.Datasets = append(s.Datasets, name)
}

// AddPass incorporates one pass result.
func (s *RunSummary) AddPass(r PassResult) {
	s.Passes = append(s.Passes, r)
	if r.Success() {
		s.SucceededCount++
	} else {
		s.FailedCount++
	}
	s.TotalEntries += r.Entries
	for action, n := range r.Decisions {
		s.Decisions[action] += n
	}
}

// AddDatasetError records a dataset that could not be processed.
func (s *RunSummary) AddDatasetError(name string, err error) {
	s.DatasetErrors[name] = err
}

// Complete stops the clock.
func (s *RunSummary) Complete() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// Success reports whether every dataset and pass completed.
func (s *RunSummary) Success() bool {
	return s.FailedCount == 0 && len(s.DatasetErrors) == 0
}

// Log writes the run summary as structured fields.
func (s *RunSummary) Log(logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("run_id", s.RunID),
		zap.Strings("datasets", s.Datasets),
		zap.Int("passes", len(s.Passes)),
		zap.Int("succeeded", s.SucceededCount),
		zap.Int("failed", s.FailedCount),
		zap.Int("log_entries", s.TotalEntries),
		zap.Duration("duration", s.Duration),
	}
	for action, n := range s.Decisions {
		fields = append(fields, zap.Int("decisions_"+action, n))
	}
	if s.Success() {
		logger.Info("Run complete", fields...)
		return
	}
	for name, err := range s.DatasetErrors {
		fields = append(fields, zap.NamedError("dataset_"+name, err))
	}
	logger.Warn("Run completed with failures", fields...)
}
