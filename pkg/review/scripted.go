// pkg/review/scripted.go
package review

import (
	"fmt"

	"github.com/borealfield/surveyqc/pkg/checks"
)

// Scripted replays a fixed list of decisions in order and records
// every anomaly it is shown. It backs tests and canned reprocessing
// runs where the decisions are already known.
type Scripted struct {
	Decisions []checks.Decision
	Seen      []checks.Anomaly

	next int
}

func (s *Scripted) Review(a checks.Anomaly) (checks.Decision, error) {
	s.Seen = append(s.Seen, a)
	if s.next >= len(s.Decisions) {
		return checks.Decision{}, fmt.Errorf("no scripted decision left for %s row %d", a.Field, a.Row)
	}
	d := s.Decisions[s.next]
	s.next++
	return d, nil
}
