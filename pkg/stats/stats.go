// pkg/stats/stats.go
package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// zeroRarity is the share of a column below which zeros are treated as
// suspicious rather than structural.
const zeroRarity = 0.05

// Column summarizes one numeric survey column. Quartiles, mean and
// standard deviation are computed over the non-zero values only; zeros
// are counted separately so the rarity rule can see them.
type Column struct {
	NonZero int // values used for the quartiles
	Zeros   int
	Length  int // all non-missing values, NonZero + Zeros

	Q1   float64
	Q3   float64
	IQR  float64
	Mean float64
	SD   float64 // sample standard deviation
}

// Describe computes column statistics over values, which must already
// exclude missing cells. It reports false when fewer than two non-zero
// values exist; such a column carries no usable distribution and is
// skipped by the outlier screen.
func Describe(values []float64) (Column, bool) {
	col := Column{Length: len(values)}

	nonzero := make([]float64, 0, len(values))
	for _, v := range values {
		if v == 0 {
			col.Zeros++
			continue
		}
		nonzero = append(nonzero, v)
	}
	col.NonZero = len(nonzero)
	if col.NonZero < 2 {
		return col, false
	}

	sorted := append([]float64(nil), nonzero...)
	sort.Float64s(sorted)

	col.Q1 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	col.Q3 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	col.IQR = col.Q3 - col.Q1
	col.Mean = stat.Mean(nonzero, nil)
	col.SD = stat.StdDev(nonzero, nil)
	return col, true
}

// Tukey fences. Mild fences sit 1.5 IQR outside the quartiles, extreme
// fences 3 IQR.

func (c Column) MildLow() float64     { return c.Q1 - 1.5*c.IQR }
func (c Column) MildHigh() float64    { return c.Q3 + 1.5*c.IQR }
func (c Column) ExtremeLow() float64  { return c.Q1 - 3*c.IQR }
func (c Column) ExtremeHigh() float64 { return c.Q3 + 3*c.IQR }

// RareZeros reports whether the column's zeros are rare enough to be
// suspected sensor or entry errors: present, but under 5% of the
// column's non-missing length.
func (c Column) RareZeros() bool {
	return c.Zeros > 0 && float64(c.Zeros) < zeroRarity*float64(c.Length)
}

// String renders the summary line shown to the reviewer beneath a
// flagged value.
func (c Column) String() string {
	return fmt.Sprintf("mean %.4g  sd %.4g  q1 %g  q3 %g  iqr %g  (n=%d, zeros=%d)",
		c.Mean, c.SD, c.Q1, c.Q3, c.IQR, c.Length, c.Zeros)
}
