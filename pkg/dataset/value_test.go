package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseValue(t *testing.T) {
	t.Run("missing sentinels", func(t *testing.T) {
		for _, raw := range []string{"", "NA", "na", "N/A", "n/a", "NaN", "null", "NULL", "nil", "  NA  "} {
			v := ParseValue(raw, FieldNumber)
			assert.True(t, v.IsMissing(), "raw %q should parse as missing", raw)
		}
	})

	t.Run("numbers", func(t *testing.T) {
		v := ParseValue(" 12.5 ", FieldNumber)
		f, ok := v.Float()
		assert.True(t, ok)
		assert.Equal(t, 12.5, f)

		v = ParseValue("-147.86", FieldNumber)
		f, ok = v.Float()
		assert.True(t, ok)
		assert.Equal(t, -147.86, f)

		v = ParseValue("0", FieldNumber)
		assert.True(t, v.IsZero())
	})

	t.Run("unparseable numeric cell survives as text", func(t *testing.T) {
		v := ParseValue("12..5", FieldNumber)
		assert.Equal(t, ValueText, v.Kind)
		assert.Equal(t, "12..5", v.Text)
	})

	t.Run("text fields keep spelling", func(t *testing.T) {
		v := ParseValue(" Mesic ", FieldText)
		assert.Equal(t, ValueText, v.Kind)
		assert.Equal(t, "Mesic", v.Text)
	})
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "NA", Missing().String())
	assert.Equal(t, "12.5", Number(12.5).String())
	assert.Equal(t, "65", Number(65).String())
	assert.Equal(t, "-147.86", Number(-147.86).String())
	assert.Equal(t, "mesic", Text("mesic").String())
}

func TestRecordGetSet(t *testing.T) {
	r := Record{"dbh_cm": Number(14)}

	f, ok := r.Get("dbh_cm").Float()
	assert.True(t, ok)
	assert.Equal(t, 14.0, f)

	assert.True(t, r.Get("absent").IsMissing())

	r.Set("dbh_cm", Missing())
	assert.True(t, r.Get("dbh_cm").IsMissing())
}

func TestRecordSetClone(t *testing.T) {
	rs := &RecordSet{
		Kind:    KindTrees,
		Name:    "trees_2024.csv",
		Columns: []string{"site", "dbh_cm"},
		Rows: []Record{
			{"site": Text("FRCH04"), "dbh_cm": Number(14)},
		},
	}

	cp := rs.Clone()
	cp.Rows[0].Set("dbh_cm", Number(99))

	f, _ := rs.Rows[0].Get("dbh_cm").Float()
	assert.Equal(t, 14.0, f, "mutating the clone must not touch the original")
}
