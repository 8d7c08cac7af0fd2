// pkg/runner/verify.go
package runner

import (
	"fmt"

	"github.com/borealfield/surveyqc/pkg/dataset"
)

// VerifyGeo sweeps a sites record set after the geo pass and reports
// rows whose coordinates still violate the stored-form invariants:
// latitude non-negative, longitude non-positive. Violations are
// warnings, not errors, since a reviewer may have kept a value on
// purpose.
func VerifyGeo(rs *dataset.RecordSet) []string {
	var warnings []string
	pairs := []struct{ lat, lon string }{
		{dataset.FieldLat0m, dataset.FieldLon0m},
		{dataset.FieldLat30m, dataset.FieldLon30m},
	}
	for i, row := range rs.Rows {
		for _, p := range pairs {
			if lat, ok := row.Get(p.lat).Float(); ok && lat < 0 {
				warnings = append(warnings,
					fmt.Sprintf("row %d: %s still negative (%g)", i+1, p.lat, lat))
			}
			if lon, ok := row.Get(p.lon).Float(); ok && lon > 0 {
				warnings = append(warnings,
					fmt.Sprintf("row %d: %s still positive (%g)", i+1, p.lon, lon))
			}
		}
	}
	return warnings
}
