// pkg/checks/outlier.go
package checks

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/borealfield/surveyqc/pkg/audit"
	"github.com/borealfield/surveyqc/pkg/dataset"
	"github.com/borealfield/surveyqc/pkg/stats"
)

// OutlierCheck screens every numeric column of a dataset against Tukey
// fences computed from that column's own non-zero values, and routes
// each flagged value through the reviewer.
type OutlierCheck struct {
	sensitivity Sensitivity
	reviewer    Reviewer
	logger      *zap.Logger
}

// NewOutlierCheck creates the outlier screen for one run.
func NewOutlierCheck(sensitivity Sensitivity, reviewer Reviewer, logger *zap.Logger) (*OutlierCheck, error) {
	if reviewer == nil {
		return nil, errors.New("reviewer cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if _, err := ParseSensitivity(string(sensitivity)); err != nil {
		return nil, err
	}
	return &OutlierCheck{sensitivity: sensitivity, reviewer: reviewer, logger: logger}, nil
}

func (c *OutlierCheck) Name() dataset.PassName { return dataset.PassOutliers }

// Run screens the record set column by column, then row by row within
// each column, so the reviewer sees one column's anomalies together.
func (c *OutlierCheck) Run(rs *dataset.RecordSet, log *audit.Log) error {
	schema, err := dataset.SchemaFor(rs.Kind)
	if err != nil {
		return err
	}

	for _, f := range schema.NumericFields() {
		values := make([]float64, 0, rs.Len())
		for _, row := range rs.Rows {
			if v, ok := row.Get(f.Name).Float(); ok {
				values = append(values, v)
			}
		}

		col, ok := stats.Describe(values)
		if !ok {
			c.logger.Debug("Skipping column without enough non-zero values",
				zap.String("dataset", rs.Name),
				zap.String("column", f.Name),
				zap.Int("nonzero", col.NonZero))
			continue
		}
		c.logger.Debug("Column statistics computed",
			zap.String("dataset", rs.Name),
			zap.String("column", f.Name),
			zap.Float64("q1", col.Q1),
			zap.Float64("q3", col.Q3),
			zap.Int("zeros", col.Zeros))

		for i, row := range rs.Rows {
			if err := c.screenValue(rs, row, i, f.Name, col, log); err != nil {
				return err
			}
		}
	}
	return nil
}

// screenValue classifies one cell and, when flagged, blocks on the
// reviewer before logging the outcome.
func (c *OutlierCheck) screenValue(
	rs *dataset.RecordSet,
	row dataset.Record,
	i int,
	column string,
	col stats.Column,
	log *audit.Log,
) error {
	v := row.Get(column)
	f, isNumber := v.Float()
	if !isNumber {
		// Missing cells (and stray text in numeric columns) carry no
		// signal for the fences.
		return nil
	}

	kind, dir, explain := c.classify(f, col)

	entry := audit.Entry{
		RowIndex: i + 1,
		Site:     rs.Site(i),
		Column:   column,
		Original: v.String(),
		Kind:     kind.String(),
	}

	switch kind {
	case Valid:
		entry.Action = ActionKeep.String()
		entry.Result = v.String()
		entry.Note = NoteText
		return log.Append(entry)

	case ZeroRare, MildLow, MildHigh, ExtremeLow, ExtremeHigh:
		colStats := col
		dec, err := c.reviewer.Review(Anomaly{
			Kind:        kind,
			Direction:   dir,
			Dataset:     rs.Name,
			Row:         i + 1,
			Site:        rs.Site(i),
			Field:       column,
			Value:       v,
			Explanation: explain,
			Stats:       &colStats,
			Options:     []Action{ActionKeep, ActionCorrect, ActionRemove},
			FieldType:   dataset.FieldNumber,
		})
		if err != nil {
			return fmt.Errorf("review of %s row %d failed: %w", column, i+1, err)
		}
		result := applyDecision(row, column, dec)

		entry.Direction = dir.String()
		entry.Action = dec.Action.String()
		entry.Result = result.String()
		entry.Note = noteOrDefault(dec.Note)
		return log.Append(entry)

	default:
		// common zeros: structural absence, not an anomaly
		return nil
	}
}

// classify orders the rules: rare zeros first, then extreme fences,
// then mild fences when enabled.
func (c *OutlierCheck) classify(v float64, col stats.Column) (Kind, Direction, string) {
	mild := c.sensitivity == SensitivityMild

	if v == 0 {
		if col.RareZeros() {
			explain := fmt.Sprintf("zero appears in only %d of %d values (under 5%%), so it may be a data-entry error",
				col.Zeros, col.Length)
			return ZeroRare, DirectionNone, explain
		}
		return kindSkip, DirectionNone, ""
	}

	switch {
	case v < col.ExtremeLow():
		explain := fmt.Sprintf("below extreme lower fence %g (Q1 - 3*IQR)", col.ExtremeLow())
		if mild {
			explain += fmt.Sprintf("; mild lower fence is %g", col.MildLow())
		}
		return ExtremeLow, DirectionLow, explain

	case mild && v < col.MildLow():
		return MildLow, DirectionLow,
			fmt.Sprintf("below mild lower fence %g (Q1 - 1.5*IQR)", col.MildLow())

	case v > col.ExtremeHigh():
		explain := fmt.Sprintf("above extreme upper fence %g (Q3 + 3*IQR)", col.ExtremeHigh())
		if mild {
			explain += fmt.Sprintf("; mild upper fence is %g", col.MildHigh())
		}
		return ExtremeHigh, DirectionHigh, explain

	case mild && v > col.MildHigh():
		return MildHigh, DirectionHigh,
			fmt.Sprintf("above mild upper fence %g (Q3 + 1.5*IQR)", col.MildHigh())
	}

	return Valid, DirectionNone, ""
}
