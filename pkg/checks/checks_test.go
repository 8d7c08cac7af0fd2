package checks

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borealfield/surveyqc/pkg/audit"
	"github.com/borealfield/surveyqc/pkg/dataset"
)

// scriptedReviewer feeds canned decisions in order and records every
// anomaly it was shown.
type scriptedReviewer struct {
	decisions []Decision
	seen      []Anomaly
}

func (r *scriptedReviewer) Review(a Anomaly) (Decision, error) {
	r.seen = append(r.seen, a)
	if len(r.decisions) == 0 {
		return Decision{}, fmt.Errorf("unexpected prompt for %s row %d", a.Field, a.Row)
	}
	d := r.decisions[0]
	r.decisions = r.decisions[1:]
	return d, nil
}

// treesSet builds a trees record set with one populated numeric column.
func treesSet(dbh ...dataset.Value) *dataset.RecordSet {
	rows := make([]dataset.Record, len(dbh))
	for i, v := range dbh {
		rows[i] = dataset.Record{
			dataset.FieldSite: dataset.Text(fmt.Sprintf("FRCH%02d", i+1)),
			"dbh_cm":          v,
		}
	}
	return &dataset.RecordSet{
		Kind:    dataset.KindTrees,
		Name:    "trees_2024.csv",
		Columns: []string{dataset.FieldSite, "dbh_cm"},
		Rows:    rows,
	}
}

func nums(vals ...float64) []dataset.Value {
	out := make([]dataset.Value, len(vals))
	for i, v := range vals {
		out[i] = dataset.Number(v)
	}
	return out
}

// entries unwraps a log built from sparse rows.
func entries(t *testing.T, log *audit.Log) []audit.Entry {
	t.Helper()
	out := make([]audit.Entry, 0, log.Len())
	for _, r := range log.Rows() {
		e, ok := r.(audit.Entry)
		require.True(t, ok, "expected a sparse log row, got %T", r)
		out = append(out, e)
	}
	return out
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "valid", Valid.String())
	assert.Equal(t, "zero_rare", ZeroRare.String())
	assert.Equal(t, "extreme_high", ExtremeHigh.String())
	assert.Equal(t, "out_of_cover_bounds", OutOfCoverBounds.String())
	assert.Equal(t, "geo_swapped", GeoSwapped.String())
	assert.Equal(t, "categorical_invalid", CategoricalInvalid.String())
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "keep", ActionKeep.String())
	assert.Equal(t, "correct", ActionCorrect.String())
	assert.Equal(t, "remove", ActionRemove.String())
	assert.Equal(t, "defer", ActionDefer.String())
}

func TestParseSensitivity(t *testing.T) {
	s, err := ParseSensitivity("mild")
	require.NoError(t, err)
	assert.Equal(t, SensitivityMild, s)

	s, err = ParseSensitivity("extreme")
	require.NoError(t, err)
	assert.Equal(t, SensitivityExtreme, s)

	_, err = ParseSensitivity("paranoid")
	assert.Error(t, err)
}

func TestIntDigits(t *testing.T) {
	assert.Equal(t, 1, intDigits(0))
	assert.Equal(t, 1, intDigits(0.93))
	assert.Equal(t, 2, intDigits(65.1))
	assert.Equal(t, 3, intDigits(147.86))
	assert.Equal(t, 3, intDigits(-147.86))
	assert.Equal(t, 4, intDigits(1042))
	assert.Equal(t, 5, intDigits(10042.7))
}

func TestApplyDecision(t *testing.T) {
	rec := dataset.Record{"dbh_cm": dataset.Number(210)}

	got := applyDecision(rec, "dbh_cm", Decision{Action: ActionKeep})
	assert.Equal(t, dataset.Number(210), got)

	got = applyDecision(rec, "dbh_cm", Decision{Action: ActionCorrect, NewValue: dataset.Number(21)})
	assert.Equal(t, dataset.Number(21), got)
	assert.Equal(t, dataset.Number(21), rec.Get("dbh_cm"))

	got = applyDecision(rec, "dbh_cm", Decision{Action: ActionRemove})
	assert.True(t, got.IsMissing())
	assert.True(t, rec.Get("dbh_cm").IsMissing())
}
