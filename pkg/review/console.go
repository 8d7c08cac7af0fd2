// Package review implements the blocking console protocol that turns
// flagged survey values into decisions. Prompts re-ask until they get
// a usable answer; the only way a review fails is the input closing.
package review

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/borealfield/surveyqc/pkg/checks"
	"github.com/borealfield/surveyqc/pkg/dataset"
)

// Console prompts a human operator on the given reader/writer pair,
// usually stdin and stdout.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a console reviewer.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Review renders the anomaly, asks for one of the allowed actions,
// collects a replacement value when the action is correct, and always
// offers a note. It blocks until the operator answers.
func (c *Console) Review(a checks.Anomaly) (checks.Decision, error) {
	c.printAnomaly(a)

	action, err := c.promptAction(a.Options)
	if err != nil {
		return checks.Decision{}, err
	}

	dec := checks.Decision{Action: action}
	if action == checks.ActionCorrect {
		v, err := c.promptReplacement(a)
		if err != nil {
			return checks.Decision{}, err
		}
		dec.NewValue = v
	}

	note, err := c.ReadLine("note (press enter for none): ")
	if err != nil {
		return checks.Decision{}, err
	}
	dec.Note = note
	return dec, nil
}

func (c *Console) printAnomaly(a checks.Anomaly) {
	fmt.Fprintf(c.out, "\n---- flagged value ---------------------------------------\n")
	fmt.Fprintf(c.out, "dataset: %s    row %d    site %s\n", a.Dataset, a.Row, a.Site)
	fmt.Fprintf(c.out, "field:   %s = %s\n", a.Field, a.Value.String())

	issue := a.Kind.String()
	if d := a.Direction.String(); d != "" {
		issue += " (" + d + ")"
	}
	fmt.Fprintf(c.out, "issue:   %s: %s\n", issue, a.Explanation)
	if a.Stats != nil {
		fmt.Fprintf(c.out, "stats:   %s\n", a.Stats)
	}
}

// promptAction loops until the answer names one of the allowed
// actions, by full word or first letter.
func (c *Console) promptAction(options []checks.Action) (checks.Action, error) {
	labels := make([]string, len(options))
	for i, o := range options {
		name := o.String()
		labels[i] = "[" + name[:1] + "]" + name[1:]
	}
	prompt := strings.Join(labels, ", ") + ": "

	for {
		line, err := c.ReadLine(prompt)
		if err != nil {
			return 0, err
		}
		choice := strings.ToLower(line)
		for _, o := range options {
			if choice == o.String() || choice == o.String()[:1] {
				return o, nil
			}
		}
		fmt.Fprintf(c.out, "unrecognized choice %q\n", line)
	}
}

// promptReplacement loops until the entered value parses. Numeric
// fields demand a number; categorical fields validate through the
// anomaly's own parser.
func (c *Console) promptReplacement(a checks.Anomaly) (dataset.Value, error) {
	parse := a.Parse
	if parse == nil {
		if a.FieldType == dataset.FieldNumber {
			parse = parseNumber
		} else {
			parse = parseText
		}
	}

	prompt := fmt.Sprintf("replacement for %s: ", a.Field)
	for {
		line, err := c.ReadLine(prompt)
		if err != nil {
			return dataset.Value{}, err
		}
		v, perr := parse(line)
		if perr != nil {
			fmt.Fprintf(c.out, "invalid value: %v\n", perr)
			continue
		}
		return v, nil
	}
}

func parseNumber(s string) (dataset.Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return dataset.Value{}, fmt.Errorf("%q is not a number", s)
	}
	return dataset.Number(f), nil
}

func parseText(s string) (dataset.Value, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return dataset.Value{}, fmt.Errorf("a replacement value is required")
	}
	return dataset.Text(trimmed), nil
}

// ReadLine prints a prompt and reads one trimmed line. A closed input
// is the one condition that surfaces as an error.
func (c *Console) ReadLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question, re-asking until it gets one.
func (c *Console) Confirm(prompt string) (bool, error) {
	for {
		line, err := c.ReadLine(prompt + " [y/n]: ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(c.out, `please answer "y" or "n"`)
	}
}
