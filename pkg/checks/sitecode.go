// pkg/checks/sitecode.go
package checks

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/borealfield/surveyqc/pkg/audit"
	"github.com/borealfield/surveyqc/pkg/dataset"
)

// fireScarAliases canonicalizes scar names that crews shorten in the
// field before any code is derived from them.
var fireScarAliases = map[string]string{
	"Aggie": "Aggie Creek",
}

// SiteCodeCheck rewrites each site code to the form derived from the
// row's fire scar name, keeping the numeric suffix already on the
// record. It runs without a reviewer: the derivation is deterministic
// and the original code is preserved in the log.
type SiteCodeCheck struct {
	logger *zap.Logger
}

// NewSiteCodeCheck creates the site-code normalizer for one run.
func NewSiteCodeCheck(logger *zap.Logger) (*SiteCodeCheck, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &SiteCodeCheck{logger: logger}, nil
}

func (c *SiteCodeCheck) Name() dataset.PassName { return dataset.PassSiteCodes }

// Run derives codes row by row. Rows whose fire scar is absent are
// skipped: there is nothing to derive from, and the field is filled
// from prior-year records offline. Codes that already match produce
// no log entry.
func (c *SiteCodeCheck) Run(rs *dataset.RecordSet, log *audit.Log) error {
	for i, row := range rs.Rows {
		scar := row.Get(dataset.FieldFireScar)
		name := strings.TrimSpace(scar.String())
		if scar.IsMissing() || name == "" {
			continue
		}
		if alias, ok := fireScarAliases[name]; ok {
			name = alias
		}

		existing := row.Get(dataset.FieldSite).String()
		derived := deriveSiteCode(name) + trailingDigits(existing)
		if derived == existing {
			continue
		}

		row.Set(dataset.FieldSite, dataset.Text(derived))
		c.logger.Info("Rewrote site code",
			zap.String("dataset", rs.Name),
			zap.Int("row", i+1),
			zap.String("from", existing),
			zap.String("to", derived))

		if err := log.Append(audit.Entry{
			RowIndex: i + 1,
			Site:     derived,
			Column:   dataset.FieldSite,
			Original: existing,
			Kind:     CategoricalInvalid.String(),
			Action:   ActionCorrect.String(),
			Result:   derived,
			Note:     fmt.Sprintf("derived from fire scar %q", name),
		}); err != nil {
			return err
		}
	}
	return nil
}

// deriveSiteCode builds the code prefix from a fire scar name:
// two-word names contribute the first two characters of each word
// ("Spruce Creek" gives "SpCr"), single-word names their first four
// characters. Shorter names contribute what they have.
func deriveSiteCode(scar string) string {
	words := strings.Fields(scar)
	if len(words) >= 2 {
		return head(words[0], 2) + head(words[1], 2)
	}
	return head(scar, 4)
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// trailingDigits pulls the digit characters out of an existing code,
// in order, so "SC04" keeps its "04" through a rewrite.
func trailingDigits(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
