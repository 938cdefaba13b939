package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Head renders the first n rows as a fixed-width text block, with
// categorical columns shown by their level labels.
func (t *Table) Head(n int) string {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	var b strings.Builder
	for _, c := range t.cols {
		fmt.Fprintf(&b, "%-12s", c.Name)
	}
	b.WriteByte('\n')
	for i := 0; i < n; i++ {
		for _, c := range t.cols {
			fmt.Fprintf(&b, "%-12s", cellString(&c, i))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Describe renders summary statistics for every column: five-number summary
// plus mean and standard deviation for numeric columns, frequency tables
// for categorical ones. Missing values are excluded from the statistics and
// reported as a separate count.
func (t *Table) Describe() string {
	var b strings.Builder
	for i := range t.cols {
		c := &t.cols[i]
		switch c.Kind {
		case Categorical:
			fmt.Fprintf(&b, "%s (categorical, %d missing)\n", c.Name, c.MissingCount())
			counts := make([]int, len(c.Levels))
			for _, v := range c.Values {
				if !math.IsNaN(v) {
					counts[int(v)]++
				}
			}
			for li, level := range c.Levels {
				fmt.Fprintf(&b, "  %-20s %d\n", level, counts[li])
			}
		default:
			valid := make([]float64, 0, len(c.Values))
			for _, v := range c.Values {
				if !math.IsNaN(v) {
					valid = append(valid, v)
				}
			}
			sort.Float64s(valid)
			if len(valid) == 0 {
				fmt.Fprintf(&b, "%s (numeric): all values missing\n", c.Name)
				continue
			}
			mean := stat.Mean(valid, nil)
			std := stat.StdDev(valid, nil)
			fmt.Fprintf(&b,
				"%s (numeric, %d missing)\n  mean %.2f  std %.2f  min %.2f  q25 %.2f  median %.2f  q75 %.2f  max %.2f\n",
				c.Name, c.MissingCount(), mean, std,
				valid[0],
				stat.Quantile(0.25, stat.Empirical, valid, nil),
				stat.Quantile(0.5, stat.Empirical, valid, nil),
				stat.Quantile(0.75, stat.Empirical, valid, nil),
				valid[len(valid)-1])
		}
	}
	return b.String()
}

func cellString(c *Column, i int) string {
	v := c.Values[i]
	if math.IsNaN(v) {
		return "NA"
	}
	if c.Kind == Categorical {
		return c.Levels[int(v)]
	}
	return fmt.Sprintf("%g", v)
}
