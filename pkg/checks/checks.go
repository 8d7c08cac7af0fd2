// pkg/checks/checks.go
package checks

import (
	"fmt"
	"math"

	"github.com/borealfield/surveyqc/pkg/audit"
	"github.com/borealfield/surveyqc/pkg/dataset"
	"github.com/borealfield/surveyqc/pkg/stats"
)

// Kind classifies why a value was flagged (or confirmed).
type Kind int

const (
	Valid Kind = iota
	ZeroRare
	MildLow
	MildHigh
	ExtremeLow
	ExtremeHigh
	OutOfCoverBounds
	GeoMissingOrZero
	GeoMagnitudeSuspect
	GeoSwapped
	CategoricalInvalid
)

// kindSkip marks values a screen passes over without logging, such as
// zeros common enough to be structural. It never reaches the reviewer
// or a log.
const kindSkip Kind = -1

// String returns the log spelling of the classification.
func (k Kind) String() string {
	switch k {
	case Valid:
		return "valid"
	case ZeroRare:
		return "zero_rare"
	case MildLow:
		return "mild_low"
	case MildHigh:
		return "mild_high"
	case ExtremeLow:
		return "extreme_low"
	case ExtremeHigh:
		return "extreme_high"
	case OutOfCoverBounds:
		return "out_of_cover_bounds"
	case GeoMissingOrZero:
		return "geo_missing_or_zero"
	case GeoMagnitudeSuspect:
		return "geo_magnitude_suspect"
	case GeoSwapped:
		return "geo_swapped"
	case CategoricalInvalid:
		return "categorical_invalid"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Direction says which side of the expected range a flagged value sits on.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionLow
	DirectionHigh
)

func (d Direction) String() string {
	switch d {
	case DirectionLow:
		return "low"
	case DirectionHigh:
		return "high"
	default:
		return ""
	}
}

// Action is what the reviewer chose to do with a flagged value.
type Action int

const (
	ActionKeep Action = iota
	ActionCorrect
	ActionRemove
	ActionDefer
)

func (a Action) String() string {
	switch a {
	case ActionKeep:
		return "keep"
	case ActionCorrect:
		return "correct"
	case ActionRemove:
		return "remove"
	case ActionDefer:
		return "defer"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Sensitivity selects which fences the outlier screen enforces.
type Sensitivity string

const (
	// SensitivityExtreme flags only values beyond the 3 IQR fences.
	SensitivityExtreme Sensitivity = "extreme"
	// SensitivityMild also flags values beyond the 1.5 IQR fences.
	SensitivityMild Sensitivity = "mild"
)

// ParseSensitivity resolves a config or flag spelling.
func ParseSensitivity(s string) (Sensitivity, error) {
	switch Sensitivity(s) {
	case SensitivityExtreme, SensitivityMild:
		return Sensitivity(s), nil
	}
	return "", fmt.Errorf("unknown sensitivity %q (want %q or %q)",
		s, SensitivityExtreme, SensitivityMild)
}

// Anomaly is one flagged value handed to the reviewer. It carries
// everything needed to render a prompt: where the value sits, why it
// was flagged, and which actions the flagging check allows.
type Anomaly struct {
	Kind      Kind
	Direction Direction

	Dataset string // source file name, for the prompt header
	Row     int    // 1-based data row
	Site    string
	Field   string
	Value   dataset.Value

	// Explanation is the human-readable reason, including the bound or
	// rule that triggered the flag.
	Explanation string

	// Stats is set for fence-based flags so the reviewer sees the
	// column's distribution.
	Stats *stats.Column

	// Options are the actions the check accepts, in prompt order.
	Options []Action

	// FieldType drives replacement parsing: numeric fields re-prompt
	// until the input parses as a number.
	FieldType dataset.FieldType

	// Parse, when set, replaces the default replacement parser. Used
	// for categorical fields that only admit a fixed domain.
	Parse func(string) (dataset.Value, error)
}

// Decision is the reviewer's verdict on one anomaly.
type Decision struct {
	Action   Action
	NewValue dataset.Value // set when Action is ActionCorrect
	Note     string        // optional; empty means no note
}

// Reviewer resolves flagged anomalies. Implementations block until a
// usable decision exists; a returned error means review itself broke
// (for example, input closed) and aborts the pass.
type Reviewer interface {
	Review(a Anomaly) (Decision, error)
}

// Check is one validation pass over a record set. Run mutates rows in
// place according to reviewer decisions and appends every loggable
// outcome to log.
type Check interface {
	Name() dataset.PassName
	Run(rs *dataset.RecordSet, log *audit.Log) error
}

// NoteText is what an empty reviewer note is normalized to in logs.
const NoteText = "No note"

func noteOrDefault(note string) string {
	if note == "" {
		return NoteText
	}
	return note
}

// applyDecision mutates the record per the decision and returns the
// value now stored in the field. Keep leaves the cell alone, remove
// blanks it to missing, correct installs the replacement.
func applyDecision(rec dataset.Record, field string, d Decision) dataset.Value {
	switch d.Action {
	case ActionCorrect:
		rec.Set(field, d.NewValue)
	case ActionRemove:
		rec.Set(field, dataset.Missing())
	}
	return rec.Get(field)
}

// intDigits counts the digits of the integer part of v's magnitude.
// Values below 1 count as one digit.
func intDigits(v float64) int {
	n := int64(math.Abs(v))
	digits := 1
	for n >= 10 {
		n /= 10
		digits++
	}
	return digits
}
