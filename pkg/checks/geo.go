// pkg/checks/geo.go
package checks

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/borealfield/surveyqc/pkg/audit"
	"github.com/borealfield/surveyqc/pkg/dataset"
)

// moistureClasses is the fixed moisture regime vocabulary, driest to
// wettest ordering is not significant here.
var moistureClasses = []string{
	"subhygric", "mesic-subhygric", "mesic", "mesic-subxeric", "subxeric", "xeric",
}

// moistureTolerance is the share of a class name's length that may
// differ for a misspelling to be corrected without a prompt.
const moistureTolerance = 0.2

// GeoCheck validates the location and terrain fields of the sites
// dataset row by row. Every row yields one dense log entry recording
// what happened to each checked field.
type GeoCheck struct {
	reviewer Reviewer
	logger   *zap.Logger
}

// NewGeoCheck creates the geospatial check for one run.
func NewGeoCheck(reviewer Reviewer, logger *zap.Logger) (*GeoCheck, error) {
	if reviewer == nil {
		return nil, errors.New("reviewer cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &GeoCheck{reviewer: reviewer, logger: logger}, nil
}

func (c *GeoCheck) Name() dataset.PassName { return dataset.PassGeo }

// Run checks each row's fields in a fixed order. Mutations apply
// immediately, so later checks in the same row see them: a longitude
// swapped in by the latitude check still gets hemisphere-normalized.
func (c *GeoCheck) Run(rs *dataset.RecordSet, log *audit.Log) error {
	for i, row := range rs.Rows {
		entry := audit.GeoEntry{RowIndex: i + 1, Site: rs.Site(i)}
		var err error

		if entry.Lat0, err = c.checkLatitude(rs, row, i, dataset.FieldLat0m, dataset.FieldLon0m); err != nil {
			return err
		}
		if entry.Lat30, err = c.checkLatitude(rs, row, i, dataset.FieldLat30m, dataset.FieldLon30m); err != nil {
			return err
		}
		if entry.Lon0, err = c.checkLongitude(rs, row, i, dataset.FieldLon0m); err != nil {
			return err
		}
		if entry.Lon30, err = c.checkLongitude(rs, row, i, dataset.FieldLon30m); err != nil {
			return err
		}
		entry.West0 = normalizeWest(row, dataset.FieldLon0m)
		entry.West30 = normalizeWest(row, dataset.FieldLon30m)

		if entry.Elevation, err = c.checkElevation(rs, row, i); err != nil {
			return err
		}
		if entry.Slope, err = c.checkTerrain(rs, row, i, dataset.FieldSlope, terrainRule{
			label: "slope", maxDigits: 2, flagNegative: true,
		}); err != nil {
			return err
		}
		if entry.Aspect, err = c.checkTerrain(rs, row, i, dataset.FieldAspect, terrainRule{
			label: "aspect", maxDigits: 3,
		}); err != nil {
			return err
		}
		if entry.Transect, err = c.checkTerrain(rs, row, i, dataset.FieldTransect, terrainRule{
			label: "transect orientation", maxDigits: 3, flagNegative: true,
		}); err != nil {
			return err
		}
		if entry.Moisture, err = c.checkMoisture(rs, row, i); err != nil {
			return err
		}

		if err := log.Append(entry); err != nil {
			return err
		}
	}
	return nil
}

// checkLatitude normalizes the sign, then flags absent points, then
// spots longitudes typed into the latitude column. Three integer
// digits cannot be a latitude, so the paired fields are exchanged.
func (c *GeoCheck) checkLatitude(rs *dataset.RecordSet, row dataset.Record, i int, latField, lonField string) (string, error) {
	var fixes []string
	if f, ok := row.Get(latField).Float(); ok && f < 0 {
		// hemisphere is known a priori; negative latitudes are sign slips
		abs := dataset.Number(math.Abs(f))
		row.Set(latField, abs)
		fixes = append(fixes, "sign corrected to "+abs.String())
	}

	v := row.Get(latField)
	f, ok := v.Float()
	if !ok || f == 0 {
		dec, err := c.reviewer.Review(Anomaly{
			Kind:        GeoMissingOrZero,
			Dataset:     rs.Name,
			Row:         i + 1,
			Site:        rs.Site(i),
			Field:       latField,
			Value:       v,
			Explanation: "latitude is missing or zero; the point cannot be mapped",
			Options:     []Action{ActionCorrect, ActionDefer},
			FieldType:   dataset.FieldNumber,
		})
		if err != nil {
			return "", fmt.Errorf("review of %s row %d failed: %w", latField, i+1, err)
		}
		if dec.Action == ActionCorrect {
			row.Set(latField, dec.NewValue)
			return withNote("entered "+dec.NewValue.String(), dec.Note), nil
		}
		return withNote("deferred for manual correction", dec.Note), nil
	}

	if intDigits(f) == 3 {
		lon := row.Get(lonField)
		row.Set(latField, lon)
		row.Set(lonField, dataset.Number(f))
		c.logger.Info("Swapped transposed coordinate pair",
			zap.String("dataset", rs.Name),
			zap.Int("row", i+1),
			zap.String("lat_field", latField),
			zap.String("lon_field", lonField))
		fixes = append(fixes, "swapped with "+lonField)
		return strings.Join(fixes, "; "), nil
	}
	if len(fixes) > 0 {
		return strings.Join(fixes, "; "), nil
	}
	return "ok", nil
}

// checkLongitude flags absent points. Hemisphere handling is separate
// so that freshly entered values get normalized too.
func (c *GeoCheck) checkLongitude(rs *dataset.RecordSet, row dataset.Record, i int, lonField string) (string, error) {
	v := row.Get(lonField)
	if f, ok := v.Float(); ok && f != 0 {
		return "ok", nil
	}

	dec, err := c.reviewer.Review(Anomaly{
		Kind:        GeoMissingOrZero,
		Dataset:     rs.Name,
		Row:         i + 1,
		Site:        rs.Site(i),
		Field:       lonField,
		Value:       v,
		Explanation: "longitude is missing or zero; the point cannot be mapped",
		Options:     []Action{ActionCorrect, ActionDefer},
		FieldType:   dataset.FieldNumber,
	})
	if err != nil {
		return "", fmt.Errorf("review of %s row %d failed: %w", lonField, i+1, err)
	}
	if dec.Action == ActionCorrect {
		row.Set(lonField, dec.NewValue)
		return withNote("entered "+dec.NewValue.String(), dec.Note), nil
	}
	return withNote("deferred for manual correction", dec.Note), nil
}

// normalizeWest forces longitudes into the western hemisphere. All
// survey sites sit west of the antimeridian, so a positive longitude
// is always a dropped sign.
func normalizeWest(row dataset.Record, lonField string) string {
	v := row.Get(lonField)
	f, ok := v.Float()
	switch {
	case !ok:
		return "skipped (missing)"
	case f > 0:
		neg := dataset.Number(-f)
		row.Set(lonField, neg)
		return "negated to " + neg.String()
	case f == 0:
		return "still zero"
	}
	return "ok"
}

func (c *GeoCheck) checkElevation(rs *dataset.RecordSet, row dataset.Record, i int) (string, error) {
	v := row.Get(dataset.FieldElevation)
	f, ok := v.Float()

	var kind Kind
	var reason string
	switch {
	case !ok:
		kind, reason = GeoMissingOrZero, "elevation is missing"
	case f == 0:
		kind, reason = GeoMissingOrZero, "elevation of zero is implausible for these sites"
	case f < 0:
		kind, reason = GeoMagnitudeSuspect, "elevation is negative"
	case intDigits(f) > 4:
		kind, reason = GeoMagnitudeSuspect,
			fmt.Sprintf("elevation %s has more than 4 integer digits", v.String())
	default:
		return "ok", nil
	}

	dec, err := c.reviewer.Review(Anomaly{
		Kind:        kind,
		Dataset:     rs.Name,
		Row:         i + 1,
		Site:        rs.Site(i),
		Field:       dataset.FieldElevation,
		Value:       v,
		Explanation: reason,
		Options:     []Action{ActionKeep, ActionCorrect},
		FieldType:   dataset.FieldNumber,
	})
	if err != nil {
		return "", fmt.Errorf("review of %s row %d failed: %w", dataset.FieldElevation, i+1, err)
	}
	if dec.Action == ActionCorrect {
		row.Set(dataset.FieldElevation, dec.NewValue)
		return withNote("entered "+dec.NewValue.String(), dec.Note), nil
	}
	return withNote("confirmed "+v.String(), dec.Note), nil
}

// terrainRule parameterizes the shared slope/aspect/transect check.
type terrainRule struct {
	label        string
	maxDigits    int
	flagNegative bool
}

// checkTerrain applies digit-count plausibility to a terrain field.
// Missing values defer automatically: crews fill them from prior-year
// records, which this tool cannot see.
func (c *GeoCheck) checkTerrain(rs *dataset.RecordSet, row dataset.Record, i int, field string, rule terrainRule) (string, error) {
	v := row.Get(field)
	f, ok := v.Float()
	if !ok {
		return "missing; deferred to prior-year value", nil
	}

	var reason string
	switch {
	case rule.flagNegative && f < 0:
		reason = rule.label + " is negative"
	case intDigits(f) > rule.maxDigits:
		reason = fmt.Sprintf("%s %s has more than %d integer digits",
			rule.label, v.String(), rule.maxDigits)
	default:
		return "ok", nil
	}

	dec, err := c.reviewer.Review(Anomaly{
		Kind:        GeoMagnitudeSuspect,
		Dataset:     rs.Name,
		Row:         i + 1,
		Site:        rs.Site(i),
		Field:       field,
		Value:       v,
		Explanation: reason,
		Options:     []Action{ActionKeep, ActionCorrect},
		FieldType:   dataset.FieldNumber,
	})
	if err != nil {
		return "", fmt.Errorf("review of %s row %d failed: %w", field, i+1, err)
	}
	if dec.Action == ActionCorrect {
		row.Set(field, dec.NewValue)
		return withNote("entered "+dec.NewValue.String(), dec.Note), nil
	}
	return withNote("confirmed "+v.String(), dec.Note), nil
}

// checkMoisture validates the moisture class against the fixed
// vocabulary. A unique near-miss is corrected without a prompt; an
// unrecognizable or ambiguous spelling goes to the reviewer, who must
// enter a class from the vocabulary.
func (c *GeoCheck) checkMoisture(rs *dataset.RecordSet, row dataset.Record, i int) (string, error) {
	v := row.Get(dataset.FieldMoisture)
	raw := strings.ToLower(strings.TrimSpace(v.String()))
	if v.IsMissing() {
		raw = ""
	}

	if isMoistureClass(raw) {
		if raw != v.String() {
			row.Set(dataset.FieldMoisture, dataset.Text(raw))
			return fmt.Sprintf("normalized %q to %q", v.String(), raw), nil
		}
		return "ok", nil
	}

	if matches := moistureMatches(raw); len(matches) == 1 {
		row.Set(dataset.FieldMoisture, dataset.Text(matches[0]))
		c.logger.Info("Corrected misspelled moisture class",
			zap.String("dataset", rs.Name),
			zap.Int("row", i+1),
			zap.String("from", v.String()),
			zap.String("to", matches[0]))
		return fmt.Sprintf("corrected %q to %q", v.String(), matches[0]), nil
	}

	dec, err := c.reviewer.Review(Anomaly{
		Kind:    CategoricalInvalid,
		Dataset: rs.Name,
		Row:     i + 1,
		Site:    rs.Site(i),
		Field:   dataset.FieldMoisture,
		Value:   v,
		Explanation: fmt.Sprintf("moisture class %q is not one of: %s",
			v.String(), strings.Join(moistureClasses, ", ")),
		Options:   []Action{ActionCorrect},
		FieldType: dataset.FieldText,
		Parse:     ParseMoistureClass,
	})
	if err != nil {
		return "", fmt.Errorf("review of %s row %d failed: %w", dataset.FieldMoisture, i+1, err)
	}
	row.Set(dataset.FieldMoisture, dec.NewValue)
	return withNote("entered "+dec.NewValue.String(), dec.Note), nil
}

// ParseMoistureClass accepts only vocabulary members, any casing.
func ParseMoistureClass(s string) (dataset.Value, error) {
	cls := strings.ToLower(strings.TrimSpace(s))
	if !isMoistureClass(cls) {
		return dataset.Value{}, fmt.Errorf("%q is not a moisture class (want one of: %s)",
			s, strings.Join(moistureClasses, ", "))
	}
	return dataset.Text(cls), nil
}

func isMoistureClass(s string) bool {
	for _, cls := range moistureClasses {
		if s == cls {
			return true
		}
	}
	return false
}

// moistureMatches returns the nearest vocabulary entries within the
// tolerance of the given spelling. The allowed distance scales with
// the class name's length, truncated, so "mesic" admits one edit.
// Only the candidates at the smallest distance are returned: a class
// strictly closer than every other wins outright, true ties stay
// ambiguous and go to the reviewer.
func moistureMatches(raw string) []string {
	if raw == "" {
		return nil
	}
	best := -1
	var out []string
	for _, cls := range moistureClasses {
		allowed := int(moistureTolerance * float64(len(cls)))
		d := levenshtein.ComputeDistance(raw, cls)
		if d > allowed {
			continue
		}
		switch {
		case best == -1 || d < best:
			best = d
			out = []string{cls}
		case d == best:
			out = append(out, cls)
		}
	}
	return out
}

// withNote appends a reviewer note to a status cell when one was given.
func withNote(status, note string) string {
	if note == "" {
		return status
	}
	return status + " (note: " + note + ")"
}
