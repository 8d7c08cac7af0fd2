// pkg/audit/event.go
package audit

// Event is one normalized audit record for the run database. Sparse
// log rows map to a single event; dense geo rows fan out into one
// event per checked field.
type Event struct {
	RunID     string `db:"run_id"`
	Dataset   string `db:"dataset"`
	Pass      string `db:"pass"`
	RowIndex  int    `db:"row_idx"`
	Site      string `db:"site"`
	Field     string `db:"field"`
	Original  string `db:"original"`
	Kind      string `db:"kind"`
	Direction string `db:"direction"`
	Action    string `db:"action"`
	Result    string `db:"result"`
	Note      string `db:"note"`
}

// Eventer is implemented by log rows that can flatten themselves into
// audit events.
type Eventer interface {
	Events(runID, dataset, pass string) []Event
}

func (e Entry) Events(runID, dataset, pass string) []Event {
	return []Event{{
		RunID:     runID,
		Dataset:   dataset,
		Pass:      pass,
		RowIndex:  e.RowIndex,
		Site:      e.Site,
		Field:     e.Column,
		Original:  e.Original,
		Kind:      e.Kind,
		Direction: e.Direction,
		Action:    e.Action,
		Result:    e.Result,
		Note:      e.Note,
	}}
}

func (g GeoEntry) Events(runID, dataset, pass string) []Event {
	fields := []struct {
		name   string
		status string
	}{
		{"lat_0m", g.Lat0},
		{"lat_30m", g.Lat30},
		{"lon_0m", g.Lon0},
		{"lon_30m", g.Lon30},
		{"lon_west_0m", g.West0},
		{"lon_west_30m", g.West30},
		{"elevation_m", g.Elevation},
		{"slope_deg", g.Slope},
		{"aspect_deg", g.Aspect},
		{"transect_deg", g.Transect},
		{"moisture_class", g.Moisture},
	}
	out := make([]Event, 0, len(fields))
	for _, f := range fields {
		out = append(out, Event{
			RunID:    runID,
			Dataset:  dataset,
			Pass:     pass,
			RowIndex: g.RowIndex,
			Site:     g.Site,
			Field:    f.name,
			Kind:     "geo",
			Result:   f.status,
		})
	}
	return out
}

// Events flattens the whole log for the run database.
func (l *Log) Events(runID, dataset, pass string) []Event {
	var out []Event
	for _, r := range l.rows {
		if ev, ok := r.(Eventer); ok {
			out = append(out, ev.Events(runID, dataset, pass)...)
		}
	}
	return out
}
