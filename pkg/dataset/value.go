// pkg/dataset/value.go
package dataset

import (
	"strconv"
	"strings"
)

// ValueKind discriminates the three states a survey cell can be in.
type ValueKind int

const (
	ValueMissing ValueKind = iota // cell was empty or an NA sentinel
	ValueNumber                   // cell parsed as a float64
	ValueText                     // cell holds free text
)

// Value is one scalar cell of a survey record: a number, free text, or
// a missing marker. The zero Value is missing.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
}

// Missing returns the missing-cell marker.
func Missing() Value {
	return Value{Kind: ValueMissing}
}

// Number returns a numeric cell value.
func Number(f float64) Value {
	return Value{Kind: ValueNumber, Num: f}
}

// Text returns a free-text cell value.
func Text(s string) Value {
	return Value{Kind: ValueText, Text: s}
}

// IsMissing reports whether the cell carries no value.
func (v Value) IsMissing() bool {
	return v.Kind == ValueMissing
}

// Float returns the numeric value and whether the cell holds one.
func (v Value) Float() (float64, bool) {
	if v.Kind != ValueNumber {
		return 0, false
	}
	return v.Num, true
}

// IsZero reports whether the cell holds the number zero.
func (v Value) IsZero() bool {
	return v.Kind == ValueNumber && v.Num == 0
}

// String renders the cell the way it is written back to storage:
// "NA" for missing cells, the shortest exact decimal form for numbers,
// and the text itself otherwise.
func (v Value) String() string {
	switch v.Kind {
	case ValueMissing:
		return "NA"
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return v.Text
	}
}

// missingSentinels are the raw spellings treated as an absent value.
// Field crews export from several tools, so both R-style and SQL-style
// markers show up in the same file.
var missingSentinels = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"nil":  {},
}

// isMissingToken reports whether a raw cell spelling means "no value".
func isMissingToken(raw string) bool {
	_, ok := missingSentinels[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// ParseValue converts one raw cell into a Value according to the field
// type. Numeric fields that fail to parse are preserved as text rather
// than dropped, so nothing is lost before review.
func ParseValue(raw string, ft FieldType) Value {
	if isMissingToken(raw) {
		return Missing()
	}
	trimmed := strings.TrimSpace(raw)
	if ft == FieldNumber {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return Number(f)
		}
		return Text(trimmed)
	}
	return Text(trimmed)
}
