// pkg/audit/log.go
package audit

import (
	"fmt"
	"strconv"
)

// Row is one line of a pass log table.
type Row interface {
	Header() []string
	Fields() []string
}

// Entry is the sparse log row written by the outlier, cover and
// site-code passes: one line per value that was reviewed or changed,
// in encounter order.
type Entry struct {
	RowIndex  int    // 1-based data row in the source file
	Site      string // site identifier of the row
	Column    string
	Original  string // value as loaded, before any decision
	Kind      string // classification that triggered the entry
	Direction string // "low", "high" or ""
	Action    string
	Result    string // value stored after the decision
	Note      string // reviewer note, "No note" when none was given
}

var entryHeader = []string{
	"row", "site", "column", "original", "kind", "direction", "action", "result", "note",
}

func (e Entry) Header() []string { return entryHeader }

func (e Entry) Fields() []string {
	return []string{
		strconv.Itoa(e.RowIndex), e.Site, e.Column, e.Original,
		e.Kind, e.Direction, e.Action, e.Result, e.Note,
	}
}

// GeoEntry is the dense log row written by the geospatial pass: one
// line per site row, each cell recording what happened to one checked
// field ("ok" when nothing did).
type GeoEntry struct {
	RowIndex  int
	Site      string
	Lat0      string // lat_0m presence and magnitude
	Lat30     string
	Lon0      string // lon_0m presence
	Lon30     string
	West0     string // lon_0m western-hemisphere normalization
	West30    string
	Elevation string
	Slope     string
	Aspect    string
	Transect  string
	Moisture  string
}

var geoHeader = []string{
	"row", "site",
	"lat_0m", "lat_30m", "lon_0m", "lon_30m",
	"lon_west_0m", "lon_west_30m",
	"elevation_m", "slope_deg", "aspect_deg", "transect_deg", "moisture_class",
}

func (g GeoEntry) Header() []string { return geoHeader }

func (g GeoEntry) Fields() []string {
	return []string{
		strconv.Itoa(g.RowIndex), g.Site,
		g.Lat0, g.Lat30, g.Lon0, g.Lon30,
		g.West0, g.West30,
		g.Elevation, g.Slope, g.Aspect, g.Transect, g.Moisture,
	}
}

// Log is the append-only table built during one pass over one dataset.
// Every row must share the header of the first row appended; a pass
// never mixes sparse and dense rows.
type Log struct {
	header []string
	rows   []Row
}

func NewLog() *Log {
	return &Log{}
}

// Append adds one row, fixing the table header on first use.
func (l *Log) Append(r Row) error {
	h := r.Header()
	if l.header == nil {
		l.header = h
	} else if !sameHeader(l.header, h) {
		return fmt.Errorf("log row header %v does not match table header %v", h, l.header)
	}
	l.rows = append(l.rows, r)
	return nil
}

func (l *Log) Len() int    { return len(l.rows) }
func (l *Log) Empty() bool { return len(l.rows) == 0 }

// Rows returns the appended rows in order.
func (l *Log) Rows() []Row { return l.rows }

// Records flattens the table for CSV output: header first, then one
// record per row. An empty log flattens to nil.
func (l *Log) Records() [][]string {
	if l.Empty() {
		return nil
	}
	out := make([][]string, 0, len(l.rows)+1)
	out = append(out, l.header)
	for _, r := range l.rows {
		out = append(out, r.Fields())
	}
	return out
}

func sameHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
