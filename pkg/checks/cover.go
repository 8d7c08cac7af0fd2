// pkg/checks/cover.go
package checks

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/borealfield/surveyqc/pkg/audit"
	"github.com/borealfield/surveyqc/pkg/dataset"
)

// Percent cover is bounded by protocol, not by distribution. Crews
// record 0.1 for species present in trace amounts below 1%.
const (
	CoverMax   = 100.0
	CoverMin   = 1.0
	CoverTrace = 0.1
)

// CoverCheck enforces the protocol bounds on the percent_cover column.
type CoverCheck struct {
	reviewer Reviewer
	logger   *zap.Logger
}

// NewCoverCheck creates the bounded cover check for one run.
func NewCoverCheck(reviewer Reviewer, logger *zap.Logger) (*CoverCheck, error) {
	if reviewer == nil {
		return nil, errors.New("reviewer cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &CoverCheck{reviewer: reviewer, logger: logger}, nil
}

func (c *CoverCheck) Name() dataset.PassName { return dataset.PassCover }

// Run flags cover values outside [1, 100] that are not the 0.1 trace
// code. In-bounds values are silent; only flags produce log entries.
func (c *CoverCheck) Run(rs *dataset.RecordSet, log *audit.Log) error {
	for i, row := range rs.Rows {
		v := row.Get(dataset.FieldPercentCover)
		f, ok := v.Float()
		if !ok {
			continue
		}

		dir, explain, flagged := classifyCover(f)
		if !flagged {
			continue
		}

		dec, err := c.reviewer.Review(Anomaly{
			Kind:        OutOfCoverBounds,
			Direction:   dir,
			Dataset:     rs.Name,
			Row:         i + 1,
			Site:        rs.Site(i),
			Field:       dataset.FieldPercentCover,
			Value:       v,
			Explanation: explain,
			Options:     []Action{ActionKeep, ActionCorrect, ActionRemove},
			FieldType:   dataset.FieldNumber,
		})
		if err != nil {
			return fmt.Errorf("review of %s row %d failed: %w", dataset.FieldPercentCover, i+1, err)
		}
		result := applyDecision(row, dataset.FieldPercentCover, dec)

		if err := log.Append(audit.Entry{
			RowIndex:  i + 1,
			Site:      rs.Site(i),
			Column:    dataset.FieldPercentCover,
			Original:  v.String(),
			Kind:      OutOfCoverBounds.String(),
			Direction: dir.String(),
			Action:    dec.Action.String(),
			Result:    result.String(),
			Note:      noteOrDefault(dec.Note),
		}); err != nil {
			return err
		}
	}
	return nil
}

// classifyCover applies the bounds in order: the upper bound first,
// then the lower bound with its trace-code carve-out.
func classifyCover(v float64) (Direction, string, bool) {
	switch {
	case v > CoverMax:
		return DirectionHigh,
			fmt.Sprintf("cover %g%% exceeds the %g%% maximum", v, CoverMax), true
	case v < CoverMin && v != CoverTrace:
		if v < 0 {
			return DirectionLow,
				fmt.Sprintf("cover %g%% is negative, which is not possible", v), true
		}
		return DirectionLow,
			fmt.Sprintf("cover %g%% is below the %g%% minimum and is not the %g trace code", v, CoverMin, CoverTrace), true
	}
	return DirectionNone, "", false
}
