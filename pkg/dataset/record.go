// pkg/dataset/record.go
package dataset

// Record is one survey row keyed by column name. Columns absent from
// the map read as missing.
type Record map[string]Value

// Get returns the cell for a column, or the missing marker when the
// column is not present.
func (r Record) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Missing()
}

// Set stores a cell for a column.
func (r Record) Set(column string, v Value) {
	r[column] = v
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RecordSet is one loaded dataset: its kind, the file it came from,
// the column order of that file, and the rows in file order.
type RecordSet struct {
	Kind    DatasetKind
	Name    string   // source file name, e.g. "trees_2024.csv"
	Columns []string // column order as read, preserved on write
	Rows    []Record
}

// Len returns the number of data rows.
func (rs *RecordSet) Len() int {
	return len(rs.Rows)
}

// Site returns the site identifier of the row at i (zero-based), or ""
// when the dataset kind has no schema or the cell is missing.
func (rs *RecordSet) Site(i int) string {
	schema, err := SchemaFor(rs.Kind)
	if err != nil || i < 0 || i >= len(rs.Rows) {
		return ""
	}
	v := rs.Rows[i].Get(schema.SiteField)
	if v.IsMissing() {
		return ""
	}
	return v.String()
}

// Clone returns a deep copy of the record set. Checks mutate rows in
// place, so callers that need the pre-pass state must copy first.
func (rs *RecordSet) Clone() *RecordSet {
	out := &RecordSet{
		Kind:    rs.Kind,
		Name:    rs.Name,
		Columns: append([]string(nil), rs.Columns...),
		Rows:    make([]Record, len(rs.Rows)),
	}
	for i, row := range rs.Rows {
		out.Rows[i] = row.Clone()
	}
	return out
}

// ColumnValues returns the column's cells in row order.
func (rs *RecordSet) ColumnValues(column string) []Value {
	out := make([]Value, len(rs.Rows))
	for i, row := range rs.Rows {
		out[i] = row.Get(column)
	}
	return out
}
