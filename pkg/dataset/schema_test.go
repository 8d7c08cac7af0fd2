package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFor(t *testing.T) {
	for _, k := range Kinds() {
		s, err := SchemaFor(k)
		require.NoError(t, err)
		assert.Equal(t, k, s.Kind)
		assert.NotEmpty(t, s.Fields)
		assert.NotEmpty(t, s.Passes)

		_, ok := s.Field(s.SiteField)
		assert.True(t, ok, "site field must be part of the schema")
	}

	_, err := SchemaFor(DatasetKind("plots"))
	assert.Error(t, err)
}

func TestNumericFieldsExcludesSkipped(t *testing.T) {
	s, err := SchemaFor(KindCover)
	require.NoError(t, err)

	names := make([]string, 0, len(s.NumericFields()))
	for _, f := range s.NumericFields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"height_cm"}, names,
		"percent_cover is bounded-checked, not fence-checked")
}

func TestSchemaValidate(t *testing.T) {
	s, err := SchemaFor(KindTrees)
	require.NoError(t, err)

	rs := &RecordSet{
		Kind:    KindTrees,
		Name:    "trees_2024.csv",
		Columns: []string{"site", "species", "dbh_cm", "height_m", "density_ha", "crew"},
	}
	assert.NoError(t, s.Validate(rs), "extra columns are allowed")

	rs.Columns = []string{"site", "species", "dbh_cm"}
	err = s.Validate(rs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "height_m")
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("saplings")
	require.NoError(t, err)
	assert.Equal(t, KindSaplings, k)

	_, err = ParseKind("shrubs")
	assert.Error(t, err)
}
