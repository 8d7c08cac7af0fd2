package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/borealfield/surveyqc/pkg/audit"
	"github.com/borealfield/surveyqc/pkg/dataset"
)

// siteRow builds a row that passes every geo check, with overrides.
func siteRow(over map[string]dataset.Value) dataset.Record {
	row := dataset.Record{
		dataset.FieldSite:      dataset.Text("SpCr04"),
		dataset.FieldFireScar:  dataset.Text("Spruce Creek"),
		dataset.FieldLat0m:     dataset.Number(64.91),
		dataset.FieldLon0m:     dataset.Number(-147.86),
		dataset.FieldLat30m:    dataset.Number(64.92),
		dataset.FieldLon30m:    dataset.Number(-147.87),
		dataset.FieldElevation: dataset.Number(320),
		dataset.FieldSlope:     dataset.Number(12),
		dataset.FieldAspect:    dataset.Number(270),
		dataset.FieldTransect:  dataset.Number(135),
		dataset.FieldMoisture:  dataset.Text("mesic"),
	}
	for k, v := range over {
		row[k] = v
	}
	return row
}

func sitesSet(rows ...dataset.Record) *dataset.RecordSet {
	return &dataset.RecordSet{
		Kind: dataset.KindSites,
		Name: "sites_2024.csv",
		Columns: []string{
			dataset.FieldSite, dataset.FieldFireScar,
			dataset.FieldLat0m, dataset.FieldLon0m,
			dataset.FieldLat30m, dataset.FieldLon30m,
			dataset.FieldElevation, dataset.FieldSlope,
			dataset.FieldAspect, dataset.FieldTransect,
			dataset.FieldMoisture,
		},
		Rows: rows,
	}
}

func geoEntries(t *testing.T, log *audit.Log) []audit.GeoEntry {
	t.Helper()
	out := make([]audit.GeoEntry, 0, log.Len())
	for _, r := range log.Rows() {
		g, ok := r.(audit.GeoEntry)
		require.True(t, ok, "expected a dense geo row, got %T", r)
		out = append(out, g)
	}
	return out
}

func runGeo(t *testing.T, rs *dataset.RecordSet, rev *scriptedReviewer) []audit.GeoEntry {
	t.Helper()
	chk, err := NewGeoCheck(rev, zap.NewNop())
	require.NoError(t, err)
	log := audit.NewLog()
	require.NoError(t, chk.Run(rs, log))
	require.Equal(t, rs.Len(), log.Len(), "one dense entry per site row")
	return geoEntries(t, log)
}

func TestGeoCleanRow(t *testing.T) {
	rs := sitesSet(siteRow(nil))
	rev := &scriptedReviewer{}

	es := runGeo(t, rs, rev)

	assert.Empty(t, rev.seen)
	g := es[0]
	assert.Equal(t, 1, g.RowIndex)
	assert.Equal(t, "SpCr04", g.Site)
	for _, status := range []string{
		g.Lat0, g.Lat30, g.Lon0, g.Lon30, g.West0, g.West30,
		g.Elevation, g.Slope, g.Aspect, g.Transect, g.Moisture,
	} {
		assert.Equal(t, "ok", status)
	}
}

func TestGeoLatitudeSignCorrected(t *testing.T) {
	rs := sitesSet(siteRow(map[string]dataset.Value{
		dataset.FieldLat0m: dataset.Number(-64.91),
	}))

	es := runGeo(t, rs, &scriptedReviewer{})

	assert.Equal(t, "sign corrected to 64.91", es[0].Lat0)
	f, _ := rs.Rows[0].Get(dataset.FieldLat0m).Float()
	assert.Equal(t, 64.91, f)
}

func TestGeoLatitudeMissingOrZero(t *testing.T) {
	t.Run("corrected", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldLat0m: dataset.Number(0),
		}))
		rev := &scriptedReviewer{decisions: []Decision{
			{Action: ActionCorrect, NewValue: dataset.Number(64.93)},
		}}

		es := runGeo(t, rs, rev)

		require.Len(t, rev.seen, 1)
		assert.Equal(t, GeoMissingOrZero, rev.seen[0].Kind)
		assert.Equal(t, []Action{ActionCorrect, ActionDefer}, rev.seen[0].Options)
		assert.Equal(t, "entered 64.93", es[0].Lat0)

		f, _ := rs.Rows[0].Get(dataset.FieldLat0m).Float()
		assert.Equal(t, 64.93, f)
	})

	t.Run("deferred", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldLat30m: dataset.Missing(),
		}))
		rev := &scriptedReviewer{decisions: []Decision{
			{Action: ActionDefer, Note: "gps track lost"},
		}}

		es := runGeo(t, rs, rev)

		assert.Equal(t, "deferred for manual correction (note: gps track lost)", es[0].Lat30)
		assert.True(t, rs.Rows[0].Get(dataset.FieldLat30m).IsMissing())
	})
}

func TestGeoSwappedPair(t *testing.T) {
	rs := sitesSet(siteRow(map[string]dataset.Value{
		dataset.FieldLat0m: dataset.Number(147.86),
		dataset.FieldLon0m: dataset.Number(64.91),
	}))

	es := runGeo(t, rs, &scriptedReviewer{})

	g := es[0]
	assert.Equal(t, "swapped with lon_0m", g.Lat0)
	assert.Equal(t, "ok", g.Lon0)
	assert.Equal(t, "negated to -147.86", g.West0,
		"the swapped-in longitude still gets hemisphere-normalized")

	lat, _ := rs.Rows[0].Get(dataset.FieldLat0m).Float()
	lon, _ := rs.Rows[0].Get(dataset.FieldLon0m).Float()
	assert.Equal(t, 64.91, lat)
	assert.Equal(t, -147.86, lon)
}

func TestGeoWesternHemisphere(t *testing.T) {
	t.Run("positive longitude negated", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldLon30m: dataset.Number(147.87),
		}))

		es := runGeo(t, rs, &scriptedReviewer{})

		assert.Equal(t, "negated to -147.87", es[0].West30)
		f, _ := rs.Rows[0].Get(dataset.FieldLon30m).Float()
		assert.Equal(t, -147.87, f)
	})

	t.Run("deferred longitude is skipped", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldLon0m: dataset.Missing(),
		}))
		rev := &scriptedReviewer{decisions: []Decision{{Action: ActionDefer}}}

		es := runGeo(t, rs, rev)

		assert.Equal(t, "deferred for manual correction", es[0].Lon0)
		assert.Equal(t, "skipped (missing)", es[0].West0)
	})

	t.Run("entered longitude is normalized", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldLon0m: dataset.Missing(),
		}))
		rev := &scriptedReviewer{decisions: []Decision{
			{Action: ActionCorrect, NewValue: dataset.Number(147.9)},
		}}

		es := runGeo(t, rs, rev)

		assert.Equal(t, "entered 147.9", es[0].Lon0)
		assert.Equal(t, "negated to -147.9", es[0].West0)
	})
}

func TestGeoElevation(t *testing.T) {
	t.Run("five digits prompts", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldElevation: dataset.Number(10042),
		}))
		rev := &scriptedReviewer{decisions: []Decision{
			{Action: ActionCorrect, NewValue: dataset.Number(1042)},
		}}

		es := runGeo(t, rs, rev)

		require.Len(t, rev.seen, 1)
		assert.Equal(t, GeoMagnitudeSuspect, rev.seen[0].Kind)
		assert.Equal(t, []Action{ActionKeep, ActionCorrect}, rev.seen[0].Options)
		assert.Equal(t, "entered 1042", es[0].Elevation)
	})

	t.Run("zero prompts as missing", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldElevation: dataset.Number(0),
		}))
		rev := &scriptedReviewer{decisions: []Decision{{Action: ActionKeep}}}

		es := runGeo(t, rs, rev)

		require.Len(t, rev.seen, 1)
		assert.Equal(t, GeoMissingOrZero, rev.seen[0].Kind)
		assert.Equal(t, "confirmed 0", es[0].Elevation)
	})

	t.Run("four digits passes", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldElevation: dataset.Number(1042),
		}))
		es := runGeo(t, rs, &scriptedReviewer{})
		assert.Equal(t, "ok", es[0].Elevation)
	})
}

func TestGeoTerrainFields(t *testing.T) {
	t.Run("missing slope defers without prompt", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldSlope: dataset.Missing(),
		}))
		rev := &scriptedReviewer{}

		es := runGeo(t, rs, rev)

		assert.Empty(t, rev.seen)
		assert.Equal(t, "missing; deferred to prior-year value", es[0].Slope)
	})

	t.Run("three digit slope prompts", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldSlope: dataset.Number(120),
		}))
		rev := &scriptedReviewer{decisions: []Decision{
			{Action: ActionCorrect, NewValue: dataset.Number(12)},
		}}

		es := runGeo(t, rs, rev)

		require.Len(t, rev.seen, 1)
		assert.Contains(t, rev.seen[0].Explanation, "slope")
		assert.Equal(t, "entered 12", es[0].Slope)
	})

	t.Run("negative transect prompts, negative aspect does not", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldTransect: dataset.Number(-135),
			dataset.FieldAspect:   dataset.Number(-270),
		}))
		rev := &scriptedReviewer{decisions: []Decision{{Action: ActionKeep}}}

		es := runGeo(t, rs, rev)

		require.Len(t, rev.seen, 1)
		assert.Equal(t, dataset.FieldTransect, rev.seen[0].Field)
		assert.Equal(t, "confirmed -135", es[0].Transect)
		assert.Equal(t, "ok", es[0].Aspect)
	})

	t.Run("four digit aspect prompts", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldAspect: dataset.Number(2700),
		}))
		rev := &scriptedReviewer{decisions: []Decision{
			{Action: ActionCorrect, NewValue: dataset.Number(270)},
		}}

		es := runGeo(t, rs, rev)

		assert.Equal(t, "entered 270", es[0].Aspect)
	})
}

func TestGeoMoisture(t *testing.T) {
	t.Run("unique near miss is corrected automatically", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldMoisture: dataset.Text("mesi"),
		}))
		rev := &scriptedReviewer{}

		es := runGeo(t, rs, rev)

		assert.Empty(t, rev.seen)
		assert.Equal(t, `corrected "mesi" to "mesic"`, es[0].Moisture)
		assert.Equal(t, "mesic", rs.Rows[0].Get(dataset.FieldMoisture).String())
	})

	t.Run("nearest class wins over a farther in-tolerance one", func(t *testing.T) {
		// "mesic-subhyric" is one edit from "mesic-subhygric" but also
		// two edits from "mesic-subxeric", which its tolerance admits;
		// the closer class must be taken without a prompt.
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldMoisture: dataset.Text("mesic-subhyric"),
		}))
		rev := &scriptedReviewer{}

		es := runGeo(t, rs, rev)

		assert.Empty(t, rev.seen)
		assert.Equal(t, `corrected "mesic-subhyric" to "mesic-subhygric"`, es[0].Moisture)
		assert.Equal(t, "mesic-subhygric", rs.Rows[0].Get(dataset.FieldMoisture).String())
	})

	t.Run("casing is normalized", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldMoisture: dataset.Text("Mesic"),
		}))

		es := runGeo(t, rs, &scriptedReviewer{})

		assert.Equal(t, `normalized "Mesic" to "mesic"`, es[0].Moisture)
	})

	t.Run("ambiguous spelling prompts", func(t *testing.T) {
		// "meric" is one edit from both "mesic" and "xeric"
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldMoisture: dataset.Text("meric"),
		}))
		rev := &scriptedReviewer{decisions: []Decision{
			{Action: ActionCorrect, NewValue: dataset.Text("xeric")},
		}}

		es := runGeo(t, rs, rev)

		require.Len(t, rev.seen, 1)
		assert.Equal(t, CategoricalInvalid, rev.seen[0].Kind)
		assert.Equal(t, []Action{ActionCorrect}, rev.seen[0].Options)
		assert.NotNil(t, rev.seen[0].Parse)
		assert.Equal(t, "entered xeric", es[0].Moisture)
	})

	t.Run("missing moisture prompts", func(t *testing.T) {
		rs := sitesSet(siteRow(map[string]dataset.Value{
			dataset.FieldMoisture: dataset.Missing(),
		}))
		rev := &scriptedReviewer{decisions: []Decision{
			{Action: ActionCorrect, NewValue: dataset.Text("subhygric")},
		}}

		es := runGeo(t, rs, rev)

		require.Len(t, rev.seen, 1)
		assert.Equal(t, "entered subhygric", es[0].Moisture)
	})
}

func TestParseMoistureClass(t *testing.T) {
	v, err := ParseMoistureClass(" Xeric ")
	require.NoError(t, err)
	assert.Equal(t, "xeric", v.Text)

	_, err = ParseMoistureClass("soggy")
	assert.Error(t, err)
}

func TestMoistureMatches(t *testing.T) {
	assert.Equal(t, []string{"mesic"}, moistureMatches("mesi"))
	assert.Equal(t, []string{"mesic", "xeric"}, moistureMatches("meric"))
	assert.Empty(t, moistureMatches("damp"))
	assert.Empty(t, moistureMatches(""))
	// the tolerance truncates: one edit allowed for "subxeric" (8 chars)
	assert.Equal(t, []string{"subxeric"}, moistureMatches("subxerc"))
	// "mesic-subxeric" sits within its own tolerance here too, but at
	// distance 2; only the distance-1 class comes back
	assert.Equal(t, []string{"mesic-subhygric"}, moistureMatches("mesic-subhyric"))
}
