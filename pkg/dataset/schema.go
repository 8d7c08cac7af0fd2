// pkg/dataset/schema.go
package dataset

import (
	"errors"
	"fmt"
)

// DatasetKind names one of the fixed survey dataset shapes.
type DatasetKind string

const (
	KindSites    DatasetKind = "sites"
	KindTrees    DatasetKind = "trees"
	KindSaplings DatasetKind = "saplings"
	KindCover    DatasetKind = "cover"
)

// String returns the kind's keyword, which is also the token matched
// against input file names during discovery.
func (k DatasetKind) String() string {
	return string(k)
}

// Kinds returns every dataset kind in processing order.
func Kinds() []DatasetKind {
	return []DatasetKind{KindSites, KindTrees, KindSaplings, KindCover}
}

// ParseKind resolves a kind keyword, for flag and config values.
func ParseKind(s string) (DatasetKind, error) {
	for _, k := range Kinds() {
		if s == string(k) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown dataset kind %q", s)
}

// PassName identifies one validation pass.
type PassName string

const (
	PassOutliers  PassName = "outliers"
	PassCover     PassName = "cover"
	PassGeo       PassName = "geo"
	PassSiteCodes PassName = "sitecodes"
)

// FieldType is the declared type of a schema field.
type FieldType int

const (
	FieldText   FieldType = iota // free text or categorical
	FieldNumber                  // float64
)

// FieldSpec declares one expected column of a dataset.
type FieldSpec struct {
	Name        string
	Type        FieldType
	SkipOutlier bool // numeric but excluded from outlier screening
}

// Schema fixes the expected columns and the validation passes of a
// dataset kind. Schemas are static; surveys in new shapes get a new
// kind rather than runtime configuration.
type Schema struct {
	Kind      DatasetKind
	SiteField string
	Fields    []FieldSpec
	Passes    []PassName
}

// Column names shared between schemas and the checks that read them.
const (
	FieldSite         = "site"
	FieldFireScar     = "fire_scar"
	FieldLat0m        = "lat_0m"
	FieldLon0m        = "lon_0m"
	FieldLat30m       = "lat_30m"
	FieldLon30m       = "lon_30m"
	FieldElevation    = "elevation_m"
	FieldSlope        = "slope_deg"
	FieldAspect       = "aspect_deg"
	FieldTransect     = "transect_deg"
	FieldMoisture     = "moisture_class"
	FieldSpecies      = "species"
	FieldPercentCover = "percent_cover"
)

var schemas = map[DatasetKind]*Schema{
	KindSites: {
		Kind:      KindSites,
		SiteField: FieldSite,
		Fields: []FieldSpec{
			{Name: FieldSite, Type: FieldText},
			{Name: FieldFireScar, Type: FieldText},
			{Name: FieldLat0m, Type: FieldNumber},
			{Name: FieldLon0m, Type: FieldNumber},
			{Name: FieldLat30m, Type: FieldNumber},
			{Name: FieldLon30m, Type: FieldNumber},
			{Name: FieldElevation, Type: FieldNumber},
			{Name: FieldSlope, Type: FieldNumber},
			{Name: FieldAspect, Type: FieldNumber},
			{Name: FieldTransect, Type: FieldNumber},
			{Name: FieldMoisture, Type: FieldText},
		},
		Passes: []PassName{PassGeo, PassSiteCodes},
	},
	KindTrees: {
		Kind:      KindTrees,
		SiteField: FieldSite,
		Fields: []FieldSpec{
			{Name: FieldSite, Type: FieldText},
			{Name: FieldSpecies, Type: FieldText},
			{Name: "dbh_cm", Type: FieldNumber},
			{Name: "height_m", Type: FieldNumber},
			{Name: "density_ha", Type: FieldNumber},
		},
		Passes: []PassName{PassOutliers},
	},
	KindSaplings: {
		Kind:      KindSaplings,
		SiteField: FieldSite,
		Fields: []FieldSpec{
			{Name: FieldSite, Type: FieldText},
			{Name: FieldSpecies, Type: FieldText},
			{Name: "count", Type: FieldNumber},
			{Name: "basal_diameter_cm", Type: FieldNumber},
			{Name: "height_cm", Type: FieldNumber},
		},
		Passes: []PassName{PassOutliers},
	},
	KindCover: {
		Kind:      KindCover,
		SiteField: FieldSite,
		Fields: []FieldSpec{
			{Name: FieldSite, Type: FieldText},
			{Name: FieldSpecies, Type: FieldText},
			// Cover percentages have their own bounded check; the
			// distribution is too skewed for fences to mean anything.
			{Name: FieldPercentCover, Type: FieldNumber, SkipOutlier: true},
			{Name: "height_cm", Type: FieldNumber},
		},
		Passes: []PassName{PassOutliers, PassCover},
	},
}

// SchemaFor returns the schema registered for a kind.
func SchemaFor(kind DatasetKind) (*Schema, error) {
	s, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("no schema registered for dataset kind %q", kind)
	}
	return s, nil
}

// Field returns the spec for a named column and whether it exists.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// NumericFields returns the columns subject to outlier screening, in
// schema order.
func (s *Schema) NumericFields() []FieldSpec {
	var out []FieldSpec
	for _, f := range s.Fields {
		if f.Type == FieldNumber && !f.SkipOutlier {
			out = append(out, f)
		}
	}
	return out
}

// ErrMissingField marks a dataset whose file lacks a schema column.
// This is a structural failure: checks assume the column exists, so
// the dataset cannot be processed at all.
var ErrMissingField = errors.New("required column missing")

// Validate confirms every schema column is present in the record set.
func (s *Schema) Validate(rs *RecordSet) error {
	present := make(map[string]struct{}, len(rs.Columns))
	for _, c := range rs.Columns {
		present[c] = struct{}{}
	}
	for _, f := range s.Fields {
		if _, ok := present[f.Name]; !ok {
			return fmt.Errorf("dataset %s: %w: %s", rs.Name, ErrMissingField, f.Name)
		}
	}
	return nil
}
