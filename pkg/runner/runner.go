// pkg/runner/runner.go
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/borealfield/surveyqc/pkg/audit"
	"github.com/borealfield/surveyqc/pkg/checks"
	"github.com/borealfield/surveyqc/pkg/dataset"
	"github.com/borealfield/surveyqc/pkg/store"
)

// Runner drives the validation passes over each dataset, strictly
// sequentially: every pass may block on the reviewer, and decisions
// mutate record state that later checks in the same pass depend on.
type Runner struct {
	store       store.Store
	reviewer    checks.Reviewer
	sensitivity checks.Sensitivity
	auditDB     *store.AuditDB // optional cross-run event sink
	runID       string
	yearLabel   string
	logger      *zap.Logger
}

// New creates a runner for one run. The run gets a fresh identifier
// that tags every audit event it records.
func New(st store.Store, reviewer checks.Reviewer, sensitivity checks.Sensitivity, logger *zap.Logger) (*Runner, error) {
	if st == nil {
		return nil, errors.New("store cannot be nil")
	}
	if reviewer == nil {
		return nil, errors.New("reviewer cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if _, err := checks.ParseSensitivity(string(sensitivity)); err != nil {
		return nil, err
	}
	return &Runner{
		store:       st,
		reviewer:    reviewer,
		sensitivity: sensitivity,
		runID:       uuid.New().String(),
		logger:      logger,
	}, nil
}

// WithAuditDB attaches the SQLite event sink and returns the runner.
func (r *Runner) WithAuditDB(db *store.AuditDB) *Runner {
	r.auditDB = db
	return r
}

// WithYearLabel tags the run with the operator-supplied season label
// and returns the runner.
func (r *Runner) WithYearLabel(label string) *Runner {
	r.yearLabel = label
	return r
}

// RunID returns the identifier tagging this run's audit events.
func (r *Runner) RunID() string { return r.runID }

// Run processes the named dataset kinds in order. With no kinds given
// it processes every kind the store discovers. A dataset that fails is
// recorded in the summary and the run moves on to the next one.
func (r *Runner) Run(ctx context.Context, kinds []dataset.DatasetKind) (*RunSummary, error) {
	if len(kinds) == 0 {
		discovered, err := r.store.Kinds(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to discover datasets: %w", err)
		}
		kinds = discovered
	}

	summary := NewRunSummary(r.runID)
	r.logger.Info("Starting validation run",
		zap.String("run_id", r.runID),
		zap.String("year", r.yearLabel),
		zap.String("sensitivity", string(r.sensitivity)),
		zap.Int("datasets", len(kinds)))

	for _, kind := range kinds {
		results, err := r.RunDataset(ctx, kind)
		for _, res := range results {
			summary.AddPass(*res)
		}
		if err != nil {
			r.logger.Error("Dataset failed",
				zap.String("dataset", string(kind)),
				zap.Error(err))
			summary.AddDatasetError(string(kind), err)
			continue
		}
		summary.AddDataset(string(kind))
	}

	summary.Complete()
	summary.Log(r.logger)
	return summary, nil
}

// RunDataset loads one dataset and runs each of its schema's passes in
// order, persisting the corrected records and the pass log after every
// pass. The results cover the passes attempted, including a failed
// one; the error reports the first failure.
func (r *Runner) RunDataset(ctx context.Context, kind dataset.DatasetKind) ([]*PassResult, error) {
	schema, err := dataset.SchemaFor(kind)
	if err != nil {
		return nil, err
	}

	rs, err := r.store.Load(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	if err := schema.Validate(rs); err != nil {
		// Structural error: the checks assume the schema's columns
		// exist, so the dataset cannot be processed at all.
		return nil, err
	}

	r.logger.Info("Processing dataset",
		zap.String("dataset", rs.Name),
		zap.String("kind", string(kind)),
		zap.Int("rows", rs.Len()),
		zap.Int("passes", len(schema.Passes)))

	var results []*PassResult
	for _, pass := range schema.Passes {
		res, err := r.runPass(ctx, rs, pass)
		results = append(results, res)
		if err != nil {
			return results, fmt.Errorf("%s pass over %s failed: %w", pass, rs.Name, err)
		}
	}
	return results, nil
}

// runPass executes one pass over an already-loaded record set and
// persists its output. Nothing is persisted when the pass fails.
func (r *Runner) runPass(ctx context.Context, rs *dataset.RecordSet, pass dataset.PassName) (*PassResult, error) {
	check, err := r.checkFor(pass)
	if err != nil {
		return nil, err
	}

	res := NewPassResult(r.runID, rs.Name, pass)
	res.Rows = rs.Len()
	log := audit.NewLog()

	r.logger.Info("Starting pass",
		zap.String("dataset", rs.Name),
		zap.String("pass", string(pass)))

	if err := check.Run(rs, log); err != nil {
		res.Fail(err)
		return res, err
	}
	res.Complete(log)

	if pass == dataset.PassGeo {
		for _, w := range VerifyGeo(rs) {
			res.AddWarning(w)
			r.logger.Warn("Residual coordinate violation",
				zap.String("dataset", rs.Name),
				zap.String("detail", w))
		}
	}

	if err := r.store.SaveLog(ctx, rs.Name, pass, log); err != nil {
		res.Fail(err)
		return res, err
	}
	if err := r.store.SaveRecords(ctx, rs); err != nil {
		res.Fail(err)
		return res, err
	}
	if r.auditDB != nil {
		events := log.Events(r.runID, rs.Name, string(pass))
		if err := r.auditDB.RecordEvents(ctx, events); err != nil {
			// The CSV log is the canonical record; a sink failure is
			// worth a warning, not a failed pass.
			r.logger.Warn("Failed to record audit events",
				zap.String("dataset", rs.Name),
				zap.String("pass", string(pass)),
				zap.Error(err))
		}
	}

	r.logger.Info("Pass complete",
		zap.String("dataset", rs.Name),
		zap.String("pass", string(pass)),
		zap.Int("entries", res.Entries),
		zap.Duration("duration", res.Duration))
	return res, nil
}

// checkFor builds the check implementing a pass.
func (r *Runner) checkFor(pass dataset.PassName) (checks.Check, error) {
	switch pass {
	case dataset.PassOutliers:
		return checks.NewOutlierCheck(r.sensitivity, r.reviewer, r.logger)
	case dataset.PassCover:
		return checks.NewCoverCheck(r.reviewer, r.logger)
	case dataset.PassGeo:
		return checks.NewGeoCheck(r.reviewer, r.logger)
	case dataset.PassSiteCodes:
		return checks.NewSiteCodeCheck(r.logger)
	default:
		return nil, fmt.Errorf("no check registered for pass %q", pass)
	}
}

// Close releases the store and, when attached, the audit sink.
func (r *Runner) Close() error {
	err := r.store.Close()
	if r.auditDB != nil {
		err = multierr.Append(err, r.auditDB.Close())
	}
	return err
}
